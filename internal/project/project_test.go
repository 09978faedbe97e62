package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	proj, err := Create(ctx, root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = proj.Close() })

	require.FileExists(t, filepath.Join(root, ConfigDir, ConfigFile))
	require.NotNil(t, proj.DB)
	require.Equal(t, filepath.Base(root), proj.Config.Project.Name)

	_, err = Create(ctx, root)
	require.Error(t, err)

	nested := filepath.Join(root, "deliverables", "inst-1")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := Find(ctx, nested)
	require.NoError(t, err)
	t.Cleanup(func() { _ = found.Close() })
	require.Equal(t, proj.Root, found.Root)
}

func TestFind_NoProject(t *testing.T) {
	_, err := Find(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestFind_HistoryDisabled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ConfigDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigDir, ConfigFile), []byte("[history]\nenabled = false\n"), 0644))

	proj, err := Find(context.Background(), root)
	require.NoError(t, err)
	require.Nil(t, proj.DB)
	require.NoError(t, proj.Close())
}

func TestFindOrDefault(t *testing.T) {
	proj := FindOrDefault(context.Background(), t.TempDir())
	require.NotNil(t, proj.Config)
	require.Nil(t, proj.DB)
	require.Equal(t, 50, proj.Config.Analysis.GetMaxExamples())
}
