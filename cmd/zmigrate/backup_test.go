package main

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackupExport(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dbDir := filepath.Join(root, "db")
	require.NoError(t, os.MkdirAll(filepath.Join(dbDir, "export"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dbDir, "export", "000001.vlog"), []byte("values"), 0644,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(dbDir, "MANIFEST"), []byte("manifest"), 0644,
	))

	backupDir := filepath.Join(root, "backup")
	require.NoError(t, backupExport(dbDir, backupDir))

	archives, err := filepath.Glob(filepath.Join(backupDir, "db-*.tar.gz"))
	require.NoError(t, err)
	require.Len(t, archives, 1)

	contents := readArchive(t, archives[0])
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)
	require.Equal(t, []string{
		"db", "db/MANIFEST", "db/export", "db/export/000001.vlog",
	}, names)
	require.Equal(t, "values", contents["db/export/000001.vlog"])
	require.Equal(t, "manifest", contents["db/MANIFEST"])
}

func TestBackupExportNothingToArchive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{"missing dir", func(*testing.T, string) {}},
		{"empty dir", func(t *testing.T, dir string) {
			require.NoError(t, os.MkdirAll(dir, 0755))
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			dbDir := filepath.Join(root, "db")
			backupDir := filepath.Join(root, "backup")
			tt.setup(t, dbDir)

			require.NoError(t, backupExport(dbDir, backupDir))
			require.NoDirExists(t, backupDir)
		})
	}
}

func TestArchiveAndCompressNotADirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	source := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0644))

	target := filepath.Join(root, "out.tar.gz")
	require.Error(t, archiveAndCompress(source, target))
	require.NoFileExists(t, target)
}

func readArchive(t *testing.T, path string) map[string]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	contents := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[header.Name] = string(data)
	}
	return contents
}
