package models

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/hello/web/client"
)

type fetcherFunc func(ctx context.Context, url string) (*client.Response, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (*client.Response, error) {
	return f(ctx, url)
}

func staticFetcher(body string) Fetcher {
	return fetcherFunc(func(context.Context, string) (*client.Response, error) {
		return &client.Response{StatusCode: 200, Body: []byte(body)}, nil
	})
}

func TestFetchFeed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		fetcher  Fetcher
		expected Feed
		expErr   string
	}{
		{
			name:    "ok",
			fetcher: staticFetcher(`{"url":"http://httpbin.org/delay/1","args":{},"n":12345678901234567890}`),
			expected: Feed{
				"url":  "http://httpbin.org/delay/1",
				"args": map[string]any{},
				"n":    json.Number("12345678901234567890"),
			},
		},
		{
			name:    "err/array",
			fetcher: staticFetcher(`[1, 2]`),
			expErr:  "failed decoding feed: json: cannot unmarshal array into Go value of type models.Feed",
		},
		{
			name:    "err/null",
			fetcher: staticFetcher(`null`),
			expErr:  "failed decoding feed: not a JSON object",
		},
		{
			name:    "err/malformed",
			fetcher: staticFetcher(`{"url":`),
			expErr:  "failed decoding feed: unexpected EOF",
		},
		{
			name:    "err/trailing",
			fetcher: staticFetcher(`{} {}`),
			expErr:  "failed decoding feed: unexpected data after JSON object",
		},
		{
			name: "err/fetch",
			fetcher: fetcherFunc(func(context.Context, string) (*client.Response, error) {
				return nil, errors.New("failed sending request: connection refused")
			}),
			expErr: "failed sending request: connection refused",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			feed, err := FetchFeed(context.Background(), tc.fetcher, "http://upstream/feed")
			if tc.expErr != "" {
				require.EqualError(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, feed)
		})
	}
}
