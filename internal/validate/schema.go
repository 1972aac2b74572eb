package validate

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/lightbake/lbake/internal/renderset"
)

//go:embed renderset.cue
var renderSetSchema []byte

// FieldError is one schema violation in a render set record.
type FieldError struct {
	Set     string
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Set, e.Field, e.Message)
}

// FieldErrors collects schema violations across a collection.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("render set schema validation failed:\n")
	for _, fe := range e {
		sb.WriteString("  ")
		sb.WriteString(fe.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// SchemaChecker validates record field ranges against the embedded CUE schema.
type SchemaChecker struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewSchemaChecker compiles the embedded schema.
func NewSchemaChecker() (*SchemaChecker, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(renderSetSchema).LookupPath(cue.ParsePath("#RenderSet"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling render set schema: %w", err)
	}
	return &SchemaChecker{ctx: ctx, schema: schema}, nil
}

// Check validates every record in c. It returns FieldErrors or nil.
func (sc *SchemaChecker) Check(c *renderset.Collection) error {
	var errs FieldErrors
	for name, s := range c.All() {
		value := sc.schema.Unify(sc.ctx.Encode(record(s)))
		err := value.Validate(cue.Concrete(true))
		if err == nil {
			continue
		}
		for _, e := range cueerrors.Errors(err) {
			field := strings.TrimPrefix(strings.Join(e.Path(), "."), "#RenderSet.")
			format, args := e.Msg()
			errs = append(errs, FieldError{Set: name, Field: field, Message: fmt.Sprintf(format, args...)})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// record converts a render set to the plain form the schema describes.
func record(s *renderset.RenderSet) map[string]any {
	r := map[string]any{
		"resolution":       int(s.Resolution),
		"colorMode":        int(s.ColorMode),
		"fillTextureSeams": s.FillTextureSeams,
		"lightMapPrefix":   s.LightMapPrefix,
		"renderMe":         s.RenderMe,
		"layoutUVs":        s.LayoutUVs,
	}
	if s.Objects != nil {
		objects := make(map[string]any, len(s.Objects))
		for k, v := range s.Objects {
			objects[k] = int(v)
		}
		r["objects"] = objects
	}
	if s.RenderLayers != nil {
		layers := make(map[string]any, s.RenderLayers.Len())
		for k, v := range s.RenderLayers.All() {
			layers[k] = int(v)
		}
		r["renderLayers"] = layers
	}
	return r
}
