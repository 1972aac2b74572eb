package renderer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	name string
	args []string
}

func recordingRenderer(t *testing.T, bakeCmd, snapCmd []string, err error) (*ExecRenderer, *[]recordedCall) {
	t.Helper()
	r, perr := NewExecRenderer(bakeCmd, snapCmd)
	require.NoError(t, perr)
	var calls []recordedCall
	r.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, recordedCall{name: name, args: args})
		return []byte("ok\n"), err
	}
	return r, &calls
}

func TestRequest_OutputPath(t *testing.T) {
	req := Request{OutputDir: "textures/lightMap", ArtifactName: "BAKE_Kitchen_Diffuse_LM"}
	assert.Equal(t, filepath.Join("textures/lightMap", "BAKE_Kitchen_Diffuse_LM.tif"), req.OutputPath())

	req.Extension = "exr"
	assert.Equal(t, filepath.Join("textures/lightMap", "BAKE_Kitchen_Diffuse_LM.exr"), req.OutputPath())
}

func TestExecRenderer_Bake(t *testing.T) {
	r, calls := recordingRenderer(t, []string{
		"bake-lm", "--uv", "{{.UVSet}}", "--res", "{{.Resolution}}",
		"--pad", "{{.Padding}}", "--out", "{{.OutputPath}}", "{{join .Objects \",\"}}",
	}, nil, nil)

	err := r.Bake(context.Background(), Request{
		Objects:      []string{"chair", "table"},
		UVSet:        "uvSet",
		Resolution:   1024,
		Padding:      3,
		ArtifactName: "BAKE_Kitchen_Diffuse_LM",
		OutputDir:    "out",
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, "bake-lm", call.name)
	assert.Equal(t, []string{
		"--uv", "uvSet", "--res", "1024", "--pad", "3",
		"--out", filepath.Join("out", "BAKE_Kitchen_Diffuse_LM.tif"), "chair,table",
	}, call.args)
}

func TestExecRenderer_BakeError(t *testing.T) {
	boom := errors.New("exit status 1")
	r, _ := recordingRenderer(t, []string{"bake-lm"}, nil, boom)

	err := r.Bake(context.Background(), Request{ArtifactName: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewExecRenderer_Errors(t *testing.T) {
	_, err := NewExecRenderer(nil, nil)
	assert.ErrorIs(t, err, ErrNoCommand)

	_, err = NewExecRenderer([]string{"bake", "{{.Unclosed"}, nil)
	assert.Error(t, err)
}

func TestExecRenderer_UVSnapshot(t *testing.T) {
	r, calls := recordingRenderer(t, []string{"bake"}, nil, nil)
	assert.False(t, r.CanSnapshot())
	assert.ErrorIs(t, r.UVSnapshot(context.Background(), SnapshotRequest{}), ErrNoCommand)

	r, calls = recordingRenderer(t, []string{"bake"}, []string{"uvsnap", "{{.Path}}", "{{.Resolution}}"}, nil)
	require.True(t, r.CanSnapshot())
	require.NoError(t, r.UVSnapshot(context.Background(), SnapshotRequest{Path: "snap.png", Resolution: 512}))
	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"snap.png", "512"}, (*calls)[0].args)
}

func TestExecRenderer_MissingField(t *testing.T) {
	r, _ := recordingRenderer(t, []string{"bake", "{{.Nope}}"}, nil, nil)
	assert.Error(t, r.Bake(context.Background(), Request{}))
}
