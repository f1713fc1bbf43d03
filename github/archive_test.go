package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/demo/zipball/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		http.Redirect(w, r, "https://codeload.example/acme/demo/zip/main?token=xyz", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, srv.Client(), srv.URL+"/api/v3/", "s3cret")
	require.NoError(t, err)

	got, err := Archives{Client: client}.ArchiveURL(ctx, "acme", "demo", "main")
	require.NoError(t, err)
	assert.Equal(t, "https://codeload.example/acme/demo/zip/main?token=xyz", got)

	_, err = Archives{Client: client}.ArchiveURL(ctx, "acme", "missing", "main")
	assert.Error(t, err)

	_, err = Archives{Client: client}.ArchiveURL(ctx, "", "demo", "main")
	assert.Error(t, err)
}
