package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "tabula")
	assert.Contains(t, out, "extract")
}

func TestExtractRequiresFile(t *testing.T) {
	_, err := execute(t, "extract")
	assert.Error(t, err)
}

func TestExtractMissingInput(t *testing.T) {
	_, err := execute(t, "extract", filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
}

func TestExtractRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	out, err := execute(t, "extract", path)
	require.Error(t, err)
	// the failed result is still printed before the error returns
	assert.Contains(t, out, `"success": false`)
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "tabula.yaml")
	out, err := execute(t, "config", "--init", "--file", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	_, statErr := os.Stat(target)
	assert.NoError(t, statErr)
}
