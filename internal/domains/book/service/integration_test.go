package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookcatalog-backend/internal/config"
	"bookcatalog-backend/internal/infrastructure/external"
	"bookcatalog-backend/internal/infrastructure/jsonfile"
	"bookcatalog-backend/pkg/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End to end create flow against stubbed remotes: the record is stored,
// the enrichment lookup and both mirrors run, and none of them can fail
// the write.
func TestCreateBookEndToEnd(t *testing.T) {
	olMux := http.NewServeMux()
	olMux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Dune", r.URL.Query().Get("title"))
		w.Write([]byte(`{
			"docs": [{
				"key": "/works/OL893415W",
				"ratings_average": 4.25,
				"editions": {"docs": [{"isbn": ["9780441013593"]}]}
			}]
		}`))
	})
	olMux.HandleFunc("/works/OL893415W.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"description": "Set on the desert planet Arrakis."}`))
	})
	olServer := httptest.NewServer(olMux)
	defer olServer.Close()

	var mirrored map[string]interface{}
	binServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Master-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&mirrored))
		w.Write([]byte(`{"metadata": {"id": "bin-dune"}}`))
	}))
	defer binServer.Close()

	sidecarPath := filepath.Join(t.TempDir(), "books.json")

	repo := newFakeRepo()
	svc := NewService(
		repo,
		newFakeCache(),
		external.NewOpenLibraryClient(config.OpenLibraryConfig{BaseURL: olServer.URL, Timeout: 2 * time.Second}),
		external.NewJSONBinClient(config.JSONBinConfig{BaseURL: binServer.URL, APIKey: "test-key", Timeout: 2 * time.Second}),
		jsonfile.NewMirror(sidecarPath),
	)

	book, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)

	// Stored record is exactly what the client sent, enrichment untouched.
	stored, err := svc.GetBook(context.Background(), book.BookID)
	require.NoError(t, err)
	assert.Nil(t, stored.Description)

	require.NotNil(t, mirrored)
	assert.Equal(t, "Dune", mirrored["title"])

	var sidecar []map[string]interface{}
	raw, err := os.ReadFile(sidecarPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &sidecar))
	require.Len(t, sidecar, 1)
	assert.Equal(t, "Dune", sidecar[0]["title"])
}

func zeroWaitOptions() []httpclient.Option {
	return []httpclient.Option{httpclient.WithRetryPolicy(httpclient.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		Multiplier:  1,
	})}
}

// Same flow with every remote down: the create still succeeds.
func TestCreateBookEndToEndWithRemotesDown(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	noRetry := config.OpenLibraryConfig{BaseURL: dead.URL, Timeout: 200 * time.Millisecond}

	repo := newFakeRepo()
	svc := NewService(
		repo,
		newFakeCache(),
		external.NewOpenLibraryClient(noRetry, zeroWaitOptions()...),
		external.NewJSONBinClient(config.JSONBinConfig{BaseURL: dead.URL, APIKey: "k", Timeout: 200 * time.Millisecond}, zeroWaitOptions()...),
		jsonfile.NewMirror(filepath.Join(t.TempDir(), "books.json")),
	)

	book, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Len(t, repo.books, 1)
	assert.Equal(t, "Dune", book.Title)
}
