package config

// DefaultConfigTemplate is written by `lbake config init`.
const DefaultConfigTemplate = `# lbake configuration
# Every key can be overridden with LBAKE_<SECTION>_<KEY>, e.g. LBAKE_STORE_BACKEND.

project:
  # Project directory; lightmaps go to <root>/textures.
  root: "."
  # Scene manifest, relative to root.
  scene: scene.yaml

store:
  # Where render sets are persisted: scene | file | configmap
  backend: scene
  # scene backend
  node: renderSets
  attribute: notes
  # file backend
  path: renderSets.yaml
  # configmap backend; namespace defaults to the kubeconfig context's
  # namespace, then "default"
  # namespace: lighting
  name: lbake-render-sets
  key: renderSets

kubernetes:
  # Empty uses $LBAKE_KUBECONFIG, then $KUBECONFIG, then ~/.kube/config.
  # kubeconfig: ~/.kube/config
  context: ""

renderer:
  # Bake command. Each argument is a Go template over the bake request:
  # .Objects .UVSet .Resolution .Padding .Layer .ArtifactName .OutputDir
  # .Extension .LayoutUVs .ColorMode .OutputPath
  command: []
  snapshotCommand: []
  extension: tif

compositor:
  # Helper process speaking line-delimited JSON on stdin/stdout.
  command: []
  maxAttempts: 5
  retryDelay: 2s
  gamma: 0.4545
  colorDepth: 32
  documentExtension: psd

bake:
  exportFormat: png
  pngPrefix: ""
  pngSuffix: ""
  settleDelay: 5s
  requireAllSelected: true
  requireAllBaked: false

log:
  timestamps: true
`
