package external

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog-backend/internal/config"
	"bookcatalog-backend/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// JSONBinClient mirrors record payloads to the JSONBin bin store.
type JSONBinClient struct {
	client *httpclient.Client
}

func NewJSONBinClient(cfg config.JSONBinConfig, opts ...httpclient.Option) *JSONBinClient {
	base := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithHeader("X-Master-Key", cfg.APIKey),
	}
	return &JSONBinClient{
		client: httpclient.New("jsonbin", cfg.BaseURL, append(base, opts...)...),
	}
}

type saveResponse struct {
	ID       string `json:"id"`
	Metadata struct {
		ID string `json:"id"`
	} `json:"metadata"`
}

// Save POSTs the payload and returns the remote-assigned bin id.
// Authentication failures (401/403) come back as a *ServiceError whose
// IsAuthFailure reports true; callers treat both the same way, but the
// distinction is logged.
func (c *JSONBinClient) Save(ctx context.Context, payload interface{}) (string, error) {
	resp, err := c.client.Post(ctx, "", payload)
	if err != nil {
		var svcErr *httpclient.ServiceError
		if errors.As(err, &svcErr) && svcErr.IsAuthFailure() {
			log.Error().Int("status", svcErr.StatusCode).Msg("jsonbin authentication failed")
		}
		return "", err
	}

	var result saveResponse
	if err := resp.Decode(&result); err != nil {
		return "", fmt.Errorf("decode jsonbin response: %w", err)
	}

	id := result.Metadata.ID
	if id == "" {
		id = result.ID
	}

	log.Info().Str("bin_id", id).Msg("record mirrored to jsonbin")
	return id, nil
}
