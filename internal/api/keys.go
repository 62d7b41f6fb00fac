package api

import (
	"context"
	"fmt"

	"github.com/gravitrone/keyadmin/internal/keys"
)

const (
	searchKeysPath = "/api/apikeys/search"
	saveKeyPath    = "/api/apikeys/save"
)

// --- Key Methods ---

// SearchAPIKeys runs the remote key search. Calls wait on the search
// throttle first, so a cancelled ctx returns without hitting the server.
func (c *Client) SearchAPIKeys(ctx context.Context, q keys.SearchQuery) ([]keys.Record, error) {
	if err := c.searches.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search throttle: %w", err)
	}
	data, err := c.post(ctx, searchKeysPath, q)
	if err != nil {
		return nil, err
	}
	return decodeList[keys.Record](data)
}

// SaveAPIKey creates (apiKey null) or updates an API key. The server's copy
// is returned when the response carries one.
func (c *Client) SaveAPIKey(ctx context.Context, r keys.Record) (*keys.Record, error) {
	data, err := c.post(ctx, saveKeyPath, r)
	if err != nil {
		return nil, err
	}
	saved, err := decodeOne[keys.Record](data)
	if err != nil {
		// Any 2xx is an acknowledgment; the body is optional.
		c.log.Debug().Err(err).Int("bytes", len(data)).Msg("save response not decodable, treating as ack")
		return nil, nil
	}
	return saved, nil
}

// --- Repository ---

// Repository adapts a Client to keys.Repository.
type Repository struct {
	client *Client
}

var _ keys.Repository = (*Repository)(nil)

// NewRepository wraps client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// Search implements keys.Repository.
func (r *Repository) Search(ctx context.Context, q keys.SearchQuery) ([]keys.Record, error) {
	records, err := r.client.SearchAPIKeys(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search api keys: %w", err)
	}
	return records, nil
}

// Save implements keys.Repository.
func (r *Repository) Save(ctx context.Context, rec keys.Record) (*keys.Record, error) {
	saved, err := r.client.SaveAPIKey(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("save api key: %w", err)
	}
	return saved, nil
}
