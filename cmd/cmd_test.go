package cmd

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, root.Execute())
	return out.String()
}

func writeSource(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "source.jpeg")
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	return p
}

func TestCaptureAndList(t *testing.T) {
	storageDir := t.TempDir()
	common := []string{
		"--storage-dir", storageDir,
		"--camera-source", writeSource(t),
		"--camera-temp-dir", t.TempDir(),
	}

	var captured []gallery.Photo
	require.NoError(t, json.Unmarshal([]byte(run(t, append([]string{"capture", "--count", "2"}, common...)...)), &captured))
	require.Len(t, captured, 2)

	var listed []gallery.Photo
	require.NoError(t, yaml.Unmarshal([]byte(run(t, append([]string{"list", "-o", "yaml"}, common...)...)), &listed))
	require.Len(t, listed, 2)
	assert.ElementsMatch(t, captured, listed)
	for _, p := range listed {
		assert.FileExists(t, filepath.Join(storageDir, "DATA", filepath.Base(p.Filepath)))
	}
}

func TestList_SQLiteWeb(t *testing.T) {
	out := run(t, "list",
		"--platform", "web",
		"--storage-dir", t.TempDir(),
		"--kv-type", "sqlite",
		"--sqlite-path", filepath.Join(t.TempDir(), "kv.db"),
		"--camera-source", writeSource(t),
	)
	assert.JSONEq(t, `[]`, out)
}

func TestNewComponents_Errors(t *testing.T) {
	for name, args := range map[string][]string{
		"platform":    {"--platform", "desktop"},
		"bridge":      {"--bridge-base-url", "localhost:8080"},
		"storage":     {"--storage-type", "tape"},
		"blob scheme": {"--storage-type", "blob", "--storage-blob-bucket", "ftp://bucket"},
		"kv":          {"--kv-type", "redis"},
		"postgres":    {"--kv-type", "postgres"},
		"camera":      {"--camera-type", "scanner"},
		"source":      {"--camera-type", "file"},
		"command":     {"--camera-type", "exec", "--camera-command", "fswebcam"},
	} {
		t.Run(name, func(t *testing.T) {
			root := NewRootCommand()
			root.SetOut(&bytes.Buffer{})
			root.SetArgs(append([]string{"list", "--storage-dir", t.TempDir(), "--kv-type", "memory", "--log-level", "error"}, args...))
			require.Error(t, root.Execute())
		})
	}
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "latest\n", run(t, "version"))
}
