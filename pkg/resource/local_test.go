package resource_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/iris-pipeline/pkg/resource"
)

func writeNotebook(t *testing.T) string {
	t.Helper()

	src := filepath.Join(t.TempDir(), "k_means_iris.ipynb")
	require.NoError(t, os.WriteFile(src, []byte(`{"cells": []}`), 0o600))

	return src
}

func TestLocalFileManager(t *testing.T) {
	t.Parallel()

	baseDir := filepath.Join(t.TempDir(), "storage")
	fm, err := resource.NewLocalFileManager(baseDir)
	require.NoError(t, err)

	handle, err := fm.WriteFile(t.Context(), "run-1/k_means_iris.ipynb", writeNotebook(t))
	require.NoError(t, err)

	dst := filepath.Join(baseDir, "run-1", "k_means_iris.ipynb")
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cells": []}`, string(content))
	assert.Equal(t, int64(len(content)), handle.Size)
	assert.True(t, strings.HasPrefix(handle.URI, "file://"))
	assert.True(t, strings.HasSuffix(handle.URI, "/storage/run-1/k_means_iris.ipynb"))
}

func TestLocalFileManagerErrors(t *testing.T) {
	t.Parallel()

	fm, err := resource.NewLocalFileManager(t.TempDir())
	require.NoError(t, err)

	_, err = fm.WriteFile(t.Context(), "run-1/missing.ipynb", filepath.Join(t.TempDir(), "missing.ipynb"))
	require.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = fm.WriteFile(ctx, "run-1/k_means_iris.ipynb", writeNotebook(t))
	require.ErrorIs(t, err, context.Canceled)
}
