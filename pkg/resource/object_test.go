package resource_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/iris-pipeline/pkg/resource"
)

func TestObjectConfigValidate(t *testing.T) {
	t.Parallel()

	valid := resource.ObjectConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "iris",
		SecretKey: "irissecret",
		Region:    "us-east-1",
		Bucket:    "notebooks",
	}
	require.NoError(t, valid.Validate())

	tcs := map[string]func(c *resource.ObjectConfig){
		"no endpoint":     func(c *resource.ObjectConfig) { c.Endpoint = " " },
		"endpoint scheme": func(c *resource.ObjectConfig) { c.Endpoint = "http://localhost:9000" },
		"no access key":   func(c *resource.ObjectConfig) { c.AccessKey = "" },
		"no secret key":   func(c *resource.ObjectConfig) { c.SecretKey = "" },
		"no bucket":       func(c *resource.ObjectConfig) { c.Bucket = "" },
	}
	for name, mutate := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), resource.ErrInvalidObjectConfig)

			_, err := resource.NewObjectFileManager(cfg)
			require.ErrorIs(t, err, resource.ErrInvalidObjectConfig)
		})
	}
}

type fakeS3 struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusNotImplemented)

		return
	}

	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func TestObjectFileManager(t *testing.T) {
	t.Parallel()

	s3 := &fakeS3{}
	srv := httptest.NewServer(s3)
	t.Cleanup(srv.Close)

	endpoint, err := url.Parse(srv.URL)
	require.NoError(t, err)

	fm, err := resource.NewObjectFileManager(resource.ObjectConfig{
		Endpoint:  endpoint.Host,
		AccessKey: "iris",
		SecretKey: "irissecret",
		Region:    "us-east-1",
		Bucket:    "notebooks",
		Prefix:    "/iris/",
	})
	require.NoError(t, err)
	assert.Equal(t, "iris/run-1/k_means_iris.ipynb", fm.ObjectKey("run-1/k_means_iris.ipynb"))

	handle, err := fm.WriteFile(t.Context(), "run-1/k_means_iris.ipynb", writeNotebook(t))
	require.NoError(t, err)
	assert.Equal(t, "s3://notebooks/iris/run-1/k_means_iris.ipynb", handle.URI)
	assert.Equal(t, int64(len(`{"cells": []}`)), handle.Size)
	assert.Equal(t, []string{"/notebooks/iris/run-1/k_means_iris.ipynb"}, s3.paths)
}
