package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askiada/iris-pipeline/pkg/solid"
	"github.com/askiada/iris-pipeline/pkg/solid/download"
)

const irisSample = "5.1,3.5,1.4,0.2,Iris-setosa\n7.0,3.2,4.7,1.4,Iris-versicolor\n6.3,3.3,6.0,2.5,Iris-virginica\n"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/iris.data", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(irisSample))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestExecute(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	baseDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(baseDir, "data"), 0o755))

	core, logs := observer.New(zap.InfoLevel)
	s := download.New(baseDir, download.WithHTTPClient(srv.Client()), download.WithLogger(zap.New(core)))

	got, err := s.Execute(t.Context(), solid.Nothing{}, download.Config{
		URL:  srv.URL + "/iris.data",
		Path: "data/iris.data",
	})
	require.NoError(t, err)

	// the output does not follow the configured path
	assert.Equal(t, "iris.data", got)
	assert.Equal(t, download.LegacyOutputPath, got)

	content, err := os.ReadFile(filepath.Join(baseDir, "data", "iris.data"))
	require.NoError(t, err)
	assert.Equal(t, irisSample, string(content))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)
	assert.Equal(t, filepath.Join(baseDir, "data", "iris.data"), entry.ContextMap()["path"])
}

func TestExecuteEmitResolvedPath(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	baseDir := t.TempDir()
	s := download.New(baseDir, download.WithHTTPClient(srv.Client()))

	got, err := s.Execute(t.Context(), solid.Nothing{}, download.Config{
		URL:              srv.URL + "/iris.data",
		Path:             "dataset.csv",
		EmitResolvedPath: true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(baseDir, "dataset.csv"), got)
	assert.FileExists(t, got)
}

func TestExecuteOverwrite(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	outputPath := filepath.Join(t.TempDir(), "iris.data")
	require.NoError(t, os.WriteFile(outputPath, []byte("stale content that is longer than the new one"+irisSample), 0o600))

	// absolute paths ignore the base directory
	s := download.New("/does/not/exist", download.WithHTTPClient(srv.Client()))
	_, err := s.Execute(t.Context(), solid.Nothing{}, download.Config{URL: srv.URL + "/iris.data", Path: outputPath})
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, irisSample, string(content))
}

func TestExecuteErrors(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	tcs := map[string]struct {
		url       string
		path      string
		expectErr error
	}{
		"unreachable":       {url: closed.URL + "/iris.data", path: "iris.data"},
		"malformed url":     {url: "://iris.data", path: "iris.data"},
		"not found":         {url: srv.URL + "/missing.data", path: "iris.data", expectErr: download.ErrUnexpectedStatus},
		"missing directory": {url: srv.URL + "/iris.data", path: "missing/iris.data", expectErr: os.ErrNotExist},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			baseDir := t.TempDir()
			s := download.New(baseDir, download.WithHTTPClient(srv.Client()))

			got, err := s.Execute(t.Context(), solid.Nothing{}, download.Config{URL: tc.url, Path: tc.path})
			require.Error(t, err)
			assert.Empty(t, got)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
			}
			if name != "missing directory" {
				assert.NoFileExists(t, filepath.Join(baseDir, tc.path))
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	s := download.New(t.TempDir(), download.WithHTTPClient(srv.Client()))
	_, err := s.Execute(ctx, solid.Nothing{}, download.Config{URL: srv.URL + "/iris.data", Path: "iris.data"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info := download.New(".").Info()
	assert.Equal(t, download.Name, info.Name)
	require.Len(t, info.Config, 3)
	assert.True(t, info.Config[0].Required)
	assert.True(t, info.Config[1].Required)
	assert.False(t, info.Config[2].Required)
}
