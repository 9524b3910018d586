package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookcatalog-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenLibrary(t *testing.T, handler http.Handler) *OpenLibraryClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenLibraryClient(config.OpenLibraryConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
}

func TestLookupReturnsFullResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Dune", r.URL.Query().Get("title"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Write([]byte(`{
			"docs": [{
				"key": "/works/OL893415W",
				"ratings_average": 4.25,
				"editions": {"docs": [{"isbn": ["9780441013593", "0441013597"]}]}
			}]
		}`))
	})
	mux.HandleFunc("/works/OL893415W.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"description": "Set on the desert planet Arrakis."}`))
	})

	client := newTestOpenLibrary(t, mux)

	result, err := client.Lookup(context.Background(), "Dune")
	require.NoError(t, err)

	assert.Equal(t, "Set on the desert planet Arrakis.", result.Description)
	require.NotNil(t, result.Rating)
	assert.InDelta(t, 4.25, *result.Rating, 0.001)
	require.NotNil(t, result.CoverURL)
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441013593-M.jpg", *result.CoverURL)
}

func TestLookupHandlesObjectDescription(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"docs": [{"key": "/works/OL1W"}]}`))
	})
	mux.HandleFunc("/works/OL1W.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"description": {"type": "/type/text", "value": "A classic."}}`))
	})

	client := newTestOpenLibrary(t, mux)

	result, err := client.Lookup(context.Background(), "Something")
	require.NoError(t, err)
	assert.Equal(t, "A classic.", result.Description)
	assert.Nil(t, result.Rating)
	assert.Nil(t, result.CoverURL)
}

func TestLookupNoMatchIsNotAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"docs": []}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call to %s after empty search result", r.URL.Path)
	})

	client := newTestOpenLibrary(t, mux)

	result, err := client.Lookup(context.Background(), "No Such Book Anywhere")
	require.NoError(t, err)
	assert.Equal(t, &EnrichmentResult{}, result)
}

func TestLookupSkipsDetailWhenKeyMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"docs": [{"ratings_average": 3.5}]}`))
	})

	client := newTestOpenLibrary(t, mux)

	result, err := client.Lookup(context.Background(), "Keyless")
	require.NoError(t, err)
	assert.Empty(t, result.Description)
	require.NotNil(t, result.Rating)
	assert.InDelta(t, 3.5, *result.Rating, 0.001)
}

func TestLookupPropagatesUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	client := newTestOpenLibrary(t, mux)

	_, err := client.Lookup(context.Background(), "Broken")
	require.Error(t, err)
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"just text"`, "just text"},
		{"value object", `{"value": "from value"}`, "from value"},
		{"description object", `{"description": "nested"}`, "nested"},
		{"empty", ``, ""},
		{"unknown shape", `[1,2,3]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDescription([]byte(tt.raw)))
		})
	}
}
