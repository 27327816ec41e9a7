package models

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.hackfix.me/hello/web/client"
)

// Fetcher retrieves an upstream resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*client.Response, error)
}

// Feed is a JSON object retrieved from an upstream API.
type Feed map[string]any

// FetchFeed retrieves the feed at url and decodes it. The body must be a
// single JSON object. Numbers are kept as json.Number so that re-encoding
// the feed doesn't lose precision.
func FetchFeed(ctx context.Context, f Fetcher, url string) (Feed, error) {
	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()

	var feed Feed
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed decoding feed: %w", err)
	}
	if feed == nil {
		return nil, errors.New("failed decoding feed: not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed decoding feed: unexpected data after JSON object")
	}

	return feed, nil
}
