// Package kubernetes builds the Kubernetes client used by the ConfigMap
// render set store.
package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	oerrors "github.com/lightbake/lbake/internal/errors"
)

// DefaultNamespace is used when neither the options nor the kubeconfig
// context name a namespace.
const DefaultNamespace = "default"

// ClientOptions configures Kubernetes client creation.
type ClientOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	// Precedence: this field > LBAKE_KUBECONFIG env > KUBECONFIG env > ~/.kube/config
	Kubeconfig string

	// Context is the kubeconfig context to use. Empty means current-context.
	Context string

	// Namespace holds the render set ConfigMap. Empty means the context's
	// namespace.
	Namespace string
}

// Client is a clientset bound to the namespace render sets live in.
type Client struct {
	Clientset kubernetes.Interface
	Namespace string

	// Context is the kubeconfig context the client was built from, for
	// log lines. Empty when current-context was used.
	Context string
}

// NewClient builds a clientset from kubeconfig and resolves the namespace.
// Failures are connectivity errors: without a cluster the ConfigMap store
// cannot work.
func NewClient(opts ClientOptions) (*Client, error) {
	cc := clientConfig(opts)

	restConfig, err := cc.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w",
			oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w",
			oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}

	ns, err := resolveNamespace(opts.Namespace, cc)
	if err != nil {
		return nil, err
	}

	return &Client{Clientset: clientset, Namespace: ns, Context: opts.Context}, nil
}

func clientConfig(opts ClientOptions) clientcmd.ClientConfig {
	rules := &clientcmd.ClientConfigLoadingRules{
		ExplicitPath: resolveKubeconfig(opts.Kubeconfig),
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)
}

// resolveNamespace picks explicit > kubeconfig context > DefaultNamespace.
func resolveNamespace(explicit string, cc clientcmd.ClientConfig) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	ns, _, err := cc.Namespace()
	if err != nil {
		return "", fmt.Errorf("reading namespace from kubeconfig: %w", err)
	}
	if ns == "" {
		return DefaultNamespace, nil
	}
	return ns, nil
}

// resolveKubeconfig resolves kubeconfig path with precedence:
// flag > LBAKE_KUBECONFIG > KUBECONFIG > ~/.kube/config
func resolveKubeconfig(flagValue string) string {
	for _, p := range []string{flagValue, os.Getenv("LBAKE_KUBECONFIG"), os.Getenv("KUBECONFIG")} {
		if p != "" {
			return expandTilde(p)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}

// expandTilde expands a leading ~ or ~/ to the user's home directory.
// ~username forms are returned unchanged.
func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
