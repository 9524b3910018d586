package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"bookcatalog-backend/internal/config"
	"bookcatalog-backend/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// EnrichmentResult carries supplementary metadata fetched for a title.
// It is ephemeral; nothing here is persisted.
type EnrichmentResult struct {
	Description string
	Rating      *float64
	CoverURL    *string
}

// OpenLibraryClient looks up book metadata via the OpenLibrary search and
// works APIs.
type OpenLibraryClient struct {
	client *httpclient.Client
}

func NewOpenLibraryClient(cfg config.OpenLibraryConfig, opts ...httpclient.Option) *OpenLibraryClient {
	base := []httpclient.Option{httpclient.WithTimeout(cfg.Timeout)}
	return &OpenLibraryClient{
		client: httpclient.New("openlibrary", cfg.BaseURL, append(base, opts...)...),
	}
}

type searchEdition struct {
	ISBN []string `json:"isbn"`
}

type searchDoc struct {
	Key            string   `json:"key"`
	RatingsAverage *float64 `json:"ratings_average"`
	Editions       struct {
		Docs []searchEdition `json:"docs"`
	} `json:"editions"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type workDetail struct {
	Description json.RawMessage `json:"description"`
}

// Lookup performs the two-step enrichment: search by title (limit 1), then
// fetch the work detail for the first match. No match is not an error; an
// empty result is returned and no further calls are made.
func (c *OpenLibraryClient) Lookup(ctx context.Context, title string) (*EnrichmentResult, error) {
	query := url.Values{}
	query.Set("title", title)
	query.Set("limit", strconv.Itoa(1))
	query.Set("fields", "key,ratings_average,ratings_count,editions,editions.key,editions.isbn,editions.publish_date")

	resp, err := c.client.Get(ctx, "/search.json", query)
	if err != nil {
		return nil, err
	}

	var search searchResponse
	if err := resp.Decode(&search); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(search.Docs) == 0 {
		log.Info().Str("title", title).Msg("no enrichment match found")
		return &EnrichmentResult{}, nil
	}

	doc := search.Docs[0]
	result := &EnrichmentResult{Rating: doc.RatingsAverage}

	// Cover is derived from the first edition ISBN; no extra call needed.
	if len(doc.Editions.Docs) > 0 && len(doc.Editions.Docs[0].ISBN) > 0 {
		cover := fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-M.jpg", doc.Editions.Docs[0].ISBN[0])
		result.CoverURL = &cover
	}

	if doc.Key != "" {
		detail, err := c.client.Get(ctx, doc.Key+".json", nil)
		if err != nil {
			return nil, err
		}

		var work workDetail
		if err := detail.Decode(&work); err != nil {
			return nil, fmt.Errorf("decode work detail: %w", err)
		}
		result.Description = extractDescription(work.Description)
	}

	return result, nil
}

// extractDescription accepts the two shapes OpenLibrary returns for a work
// description: a plain string, or an object carrying value/description.
func extractDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Value       string `json:"value"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Value != "" {
			return obj.Value
		}
		return obj.Description
	}

	return ""
}
