// internal/provider/dictionary/dictionary.go
//
// Client for the Free Dictionary API (dictionaryapi.dev).
//   GET {base}/{word} → 200 [ {word, meanings:[...]}, ... ] | 404
// All returned entries for a headword are merged into one DictionaryEntry.

package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/robalobadob/linkdle/internal/provider"
)

// DefaultBaseURL is the public English endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

const name = "dictionary"

// Client implements provider.Dictionary over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Lookup fetches word. A 404 is reported as provider.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, word string) (*provider.DictionaryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return nil, provider.Wrap(name, "lookup", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.Wrap(name, "lookup", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, provider.Wrap(name, "lookup", provider.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, provider.Wrap(name, "lookup", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var entries []provider.DictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, provider.Wrap(name, "decode", err)
	}
	if len(entries) == 0 {
		return nil, provider.Wrap(name, "lookup", provider.ErrNotFound)
	}

	merged := &provider.DictionaryEntry{Word: entries[0].Word}
	for _, e := range entries {
		merged.Meanings = append(merged.Meanings, e.Meanings...)
	}
	return merged, nil
}
