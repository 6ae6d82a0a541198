package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyConfig = `
model:
  vocab_size: 6
  max_length: 16
  embed_dim: 8
  num_heads: 2
  num_layers: 1
  feedforward_dim: 16
vocabulary: vocabulary.json
models:
  cpp-to-pseudo: cpp.safetensors
  pseudo-to-cpp: pseudo.safetensors
decode:
  max_steps: 8
log:
  level: error
`

func setup(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	configPath = filepath.Join(dir, "transcoder.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(tinyConfig), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocabulary.json"),
		[]byte(`{"<unk>":0,"<start>":1,"<end>":2,"int":3,"x":4,";":5}`), 0o600))
	return dir, configPath
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_EndToEnd(t *testing.T) {
	dir, cfg := setup(t)

	for _, name := range []string{"cpp.safetensors", "pseudo.safetensors"} {
		code, out, errOut := runCLI(t, "", "init-weights", "-config", cfg, "-out", filepath.Join(dir, name))
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "wrote")
	}

	code, out, errOut := runCLI(t, "", "inspect", "-weights", filepath.Join(dir, "cpp.safetensors"), "-config", cfg)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "fc_out.weight")
	assert.Contains(t, out, "weights match the configuration")

	code, _, errOut = runCLI(t, "", "translate", "-config", cfg, "-direction", "cpp-to-pseudo", "-text", "int x ;")
	require.Equal(t, 0, code, errOut)

	code, out, errOut = runCLI(t, "int x ;\n\n x ;\n", "translate", "-config", cfg, "-direction", "pseudo-to-cpp")
	require.Equal(t, 0, code, errOut)
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 2)
}

func TestRun_InspectMismatch(t *testing.T) {
	dir, cfg := setup(t)
	weights := filepath.Join(dir, "cpp.safetensors")
	code, _, errOut := runCLI(t, "", "init-weights", "-config", cfg, "-out", weights)
	require.Equal(t, 0, code, errOut)

	wider := filepath.Join(dir, "wider.yaml")
	require.NoError(t, os.WriteFile(wider,
		[]byte(strings.Replace(tinyConfig, "embed_dim: 8", "embed_dim: 12", 1)), 0o600))

	code, out, _ := runCLI(t, "", "inspect", "-weights", weights, "-config", wider)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "do not match")
}

func TestRun_Errors(t *testing.T) {
	_, cfg := setup(t)

	code, _, errOut := runCLI(t, "", "translate", "-config", cfg, "-direction", "cpp-to-java", "-text", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown translation direction")

	code, _, _ = runCLI(t, "", "frobnicate")
	assert.Equal(t, 2, code)

	code, _, errOut = runCLI(t, "", "inspect")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "-weights is required")
}

func TestRun_VersionAndConfig(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, version)

	code, out, _ = runCLI(t, "", "config")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "vocab_size: 12006")
	assert.Contains(t, out, "cpp-to-pseudo:")

	code, out, _ = runCLI(t, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "init-weights")
}
