package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDataDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDataDir(".srefhub")
	require.NoError(t, err)

	want := filepath.Join(tmp, ".srefhub")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDataDir_AbsolutePathAndIdempotent(t *testing.T) {
	want := filepath.Join(t.TempDir(), "a", "b")

	first, err := EnsureDataDir(want)
	require.NoError(t, err)
	second, err := EnsureDataDir(want)
	require.NoError(t, err)

	require.Equal(t, want, first)
	require.Equal(t, first, second)
}

func TestEnsureDataDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("data", []byte("x"), 0o660))

	_, err := EnsureDataDir("data")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		want string
	}{
		{"a.png", "image/png"},
		{"b.JPEG", "image/jpeg"},
		{"c.webp", "image/webp"},
		{"d.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))

			data, ct, err := ReadImage(path)
			require.NoError(t, err)
			assert.Equal(t, []byte("img"), data)
			assert.Equal(t, tt.want, ct)
		})
	}

	_, _, err := ReadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
