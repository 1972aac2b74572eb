package compositor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
)

// errClosed is returned by a Bridge after Close.
var errClosed = errors.New("compositor bridge closed")

// codeBusy is the response error code for ErrBusy.
const codeBusy = "busy"

type request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RemoteError    `json:"error,omitempty"`
}

// RemoteError is an error reported by the helper process.
type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap maps the busy code onto ErrBusy.
func (e *RemoteError) Unwrap() error {
	if e.Code == codeBusy {
		return ErrBusy
	}
	return nil
}

// Bridge is a Service that talks line-delimited JSON to a helper process
// driving the compositing application. Calls are serialized.
type Bridge struct {
	mu      sync.Mutex
	w       io.Writer
	r       *bufio.Reader
	nextID  int64
	closed  bool
	closeFn func() error
}

// NewBridge returns a Bridge reading responses from r and writing requests to w.
func NewBridge(r io.Reader, w io.Writer) *Bridge {
	return &Bridge{w: w, r: bufio.NewReader(r)}
}

// StartBridge launches the helper command and connects to its stdio.
func StartBridge(ctx context.Context, argv []string) (*Bridge, error) {
	if len(argv) == 0 {
		return nil, oerrors.NewConnectivityError("no compositor command configured", nil,
			"Set compositor.command in the config file.")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("compositor stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("compositor stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, oerrors.NewConnectivityError(
			fmt.Sprintf("starting compositor %s: %v", argv[0], err),
			map[string]string{"Command": strings.Join(argv, " ")},
			"Check compositor.command in the config file.")
	}
	output.Debug("compositor bridge started", "command", strings.Join(argv, " "), "pid", cmd.Process.Pid)

	b := NewBridge(stdout, stdin)
	b.closeFn = func() error {
		if err := stdin.Close(); err != nil {
			return err
		}
		return cmd.Wait()
	}
	return b, nil
}

// Close shuts the bridge down. Further calls fail.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.closeFn != nil {
		return b.closeFn()
	}
	return nil
}

func (b *Bridge) call(ctx context.Context, method string, params, result any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}

	b.nextID++
	id := b.nextID
	line, err := json.Marshal(request{ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}
	if _, err := b.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	for {
		raw, err := b.r.ReadBytes('\n')
		if err != nil {
			return fmt.Errorf("reading %s response: %w", method, err)
		}
		var resp response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return fmt.Errorf("decoding %s response: %w", method, err)
		}
		if resp.ID != id {
			output.Debug("dropping stale compositor response", "id", resp.ID, "want", id)
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decoding %s result: %w", method, err)
			}
		}
		return nil
	}
}

// CloseIfOpen implements Service.
func (b *Bridge) CloseIfOpen(ctx context.Context, path string) error {
	return b.call(ctx, "closeIfOpen", map[string]any{"path": path}, nil)
}

// CreateLayered implements Service.
func (b *Bridge) CreateLayered(ctx context.Context, path string, width, height int, layers []LayerFile) error {
	return b.call(ctx, "createLayered", map[string]any{
		"path":   path,
		"width":  width,
		"height": height,
		"layers": layers,
	}, nil)
}

// Open implements Service.
func (b *Bridge) Open(ctx context.Context, path string) (Document, error) {
	var res struct {
		Document int `json:"document"`
	}
	if err := b.call(ctx, "open", map[string]any{"path": path}, &res); err != nil {
		return nil, err
	}
	return &bridgeDocument{bridge: b, id: res.Document}, nil
}

// Export implements Service.
func (b *Bridge) Export(ctx context.Context, docPath, outPath, format string) error {
	return b.call(ctx, "export", map[string]any{
		"path":   docPath,
		"out":    outPath,
		"format": format,
	}, nil)
}

type bridgeDocument struct {
	bridge *Bridge
	id     int
}

func (d *bridgeDocument) params(kv ...any) map[string]any {
	p := map[string]any{"document": d.id}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i].(string)] = kv[i+1]
	}
	return p
}

func (d *bridgeDocument) ConvertDepth(ctx context.Context, bits int) error {
	return d.bridge.call(ctx, "convertDepth", d.params("bits", bits), nil)
}

func (d *bridgeDocument) Layers(ctx context.Context) ([]Layer, error) {
	var infos []layerInfo
	if err := d.bridge.call(ctx, "layers", d.params(), &infos); err != nil {
		return nil, err
	}
	out := make([]Layer, 0, len(infos))
	for _, li := range infos {
		out = append(out, li.layer())
	}
	return out, nil
}

func (d *bridgeDocument) SetActive(ctx context.Context, l Layer) error {
	id, err := layerID(l)
	if err != nil {
		return err
	}
	return d.bridge.call(ctx, "setActive", d.params("layer", id), nil)
}

func (d *bridgeDocument) LinkToFile(ctx context.Context, l Layer, file string) error {
	id, err := layerID(l)
	if err != nil {
		return err
	}
	return d.bridge.call(ctx, "linkToFile", d.params("layer", id, "file", file), nil)
}

func (d *bridgeDocument) SetBlendMode(ctx context.Context, l Layer, mode renderset.BlendMode) error {
	id, err := layerID(l)
	if err != nil {
		return err
	}
	return d.bridge.call(ctx, "setBlendMode", d.params("layer", id, "mode", strings.ToLower(mode.String())), nil)
}

func (d *bridgeDocument) AddGamma(ctx context.Context, gamma float64) error {
	return d.bridge.call(ctx, "addGamma", d.params("gamma", gamma), nil)
}

func (d *bridgeDocument) FillSolid(ctx context.Context, l Layer, rgb [3]uint8) error {
	id, err := layerID(l)
	if err != nil {
		return err
	}
	return d.bridge.call(ctx, "fillSolid", d.params("layer", id, "rgb", []int{int(rgb[0]), int(rgb[1]), int(rgb[2])}), nil)
}

func (d *bridgeDocument) Save(ctx context.Context) error {
	return d.bridge.call(ctx, "save", d.params(), nil)
}

func (d *bridgeDocument) Close(ctx context.Context) error {
	return d.bridge.call(ctx, "close", d.params(), nil)
}

// layerInfo is the wire form of a layer. Groups list their children either
// positionally (layers) or as an art layer collection (artLayers).
type layerInfo struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Layers    []layerInfo `json:"layers,omitempty"`
	ArtLayers []layerInfo `json:"artLayers,omitempty"`
}

func (li layerInfo) layer() Layer {
	ref := layerRef{id: li.ID, name: li.Name}
	switch {
	case len(li.Layers) > 0:
		g := &indexedLayer{layerRef: ref}
		for _, c := range li.Layers {
			g.children = append(g.children, c.layer())
		}
		return g
	case len(li.ArtLayers) > 0:
		g := &namedLayer{layerRef: ref}
		for _, c := range li.ArtLayers {
			g.children = append(g.children, c.layer())
		}
		return g
	default:
		return &ref
	}
}

type layerRef struct {
	id   int
	name string
}

func (r *layerRef) Name() string { return r.name }
func (r *layerRef) ref() int     { return r.id }

type indexedLayer struct {
	layerRef
	children []Layer
}

func (g *indexedLayer) Count() int     { return len(g.children) }
func (g *indexedLayer) At(i int) Layer { return g.children[i] }

type namedLayer struct {
	layerRef
	children []Layer
}

func (g *namedLayer) ChildLayers() []Layer { return g.children }

func layerID(l Layer) (int, error) {
	r, ok := l.(interface{ ref() int })
	if !ok {
		return 0, fmt.Errorf("layer %q was not returned by this bridge", l.Name())
	}
	return r.ref(), nil
}

var (
	_ Service      = (*Bridge)(nil)
	_ IndexedGroup = (*indexedLayer)(nil)
	_ NamedGroup   = (*namedLayer)(nil)
)
