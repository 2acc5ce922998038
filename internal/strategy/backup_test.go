package strategy

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func writeTestTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "b.txt"), []byte("beta"), 0o644))
}

func findArtifact(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "backup_") {
			return e.Name()
		}
	}
	t.Fatal("no backup artifact found")
	return ""
}

func TestBackupStrategy_Compressed(t *testing.T) {
	s := NewBackupStrategy(logger.NewNop())
	source := t.TempDir()
	dest := t.TempDir()
	writeTestTree(t, source)

	config := fmt.Sprintf(`{"source_path":"%s","destination_path":"%s"}`, source, dest)
	result, err := s.Execute(context.Background(), datatypes.JSON(config))
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.Contains(t, result.Output, "Created backup_")

	artifact := findArtifact(t, dest)
	assert.True(t, strings.HasSuffix(artifact, ".zip"))

	reader, err := zip.OpenReader(filepath.Join(dest, artifact))
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	base := filepath.Base(source)
	assert.Contains(t, names, base+"/a.txt")
	assert.Contains(t, names, base+"/nested/b.txt")
}

func TestBackupStrategy_Uncompressed(t *testing.T) {
	s := NewBackupStrategy(logger.NewNop())
	source := t.TempDir()
	dest := t.TempDir()
	writeTestTree(t, source)

	config := fmt.Sprintf(`{"source_path":"%s","destination_path":"%s","compress":false}`, source, dest)
	result, err := s.Execute(context.Background(), datatypes.JSON(config))
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)

	artifact := findArtifact(t, dest)
	assert.False(t, strings.HasSuffix(artifact, ".zip"))

	data, err := os.ReadFile(filepath.Join(dest, artifact, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	data, err = os.ReadFile(filepath.Join(dest, artifact, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))
}

func TestBackupStrategy_SingleFileSource(t *testing.T) {
	s := NewBackupStrategy(logger.NewNop())
	source := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(source, []byte("1,2,3"), 0o644))
	dest := t.TempDir()

	config := fmt.Sprintf(`{"source_path":"%s","destination_path":"%s"}`, source, dest)
	result, err := s.Execute(context.Background(), datatypes.JSON(config))
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)
}

func TestBackupStrategy_MissingSource(t *testing.T) {
	s := NewBackupStrategy(logger.NewNop())
	dest := t.TempDir()

	config := fmt.Sprintf(`{"source_path":"/does/not/exist","destination_path":"%s"}`, dest)
	result, err := s.Execute(context.Background(), datatypes.JSON(config))
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "source path does not exist")

	// Nothing was created in the destination.
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBackupStrategy_Retention(t *testing.T) {
	s := NewBackupStrategy(logger.NewNop())
	source := t.TempDir()
	dest := t.TempDir()
	writeTestTree(t, source)

	// One artifact well past the retention window, one recent.
	expired := filepath.Join(dest, "backup_20200101_000000.zip")
	require.NoError(t, os.WriteFile(expired, []byte("old"), 0o644))
	old := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(expired, old, old))

	fresh := filepath.Join(dest, "backup_recent.zip")
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	config := fmt.Sprintf(`{"source_path":"%s","destination_path":"%s","retention_days":7}`, source, dest)
	result, err := s.Execute(context.Background(), datatypes.JSON(config))
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.Contains(t, result.Output, "removed 1 expired backup")

	_, err = os.Stat(expired)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
