// internal/provider/conceptnet/conceptnet.go
//
// Client for the ConceptNet 5 web API.
//   GET {base}/relatedness?node1=/c/en/a&node2=/c/en/b → {"value": 0.42}
//   GET {base}/query?node=/c/en/a&other=/c/en/b        → {"edges":[{"rel":{"label":"RelatedTo"}}]}

package conceptnet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/robalobadob/linkdle/internal/provider"
)

// DefaultBaseURL is the public ConceptNet API.
const DefaultBaseURL = "https://api.conceptnet.io"

const name = "conceptnet"

// Client implements provider.ConceptGraph.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

type relatednessResponse struct {
	Value float64 `json:"value"`
}

type queryResponse struct {
	Edges []struct {
		Rel struct {
			Label string `json:"label"`
		} `json:"rel"`
	} `json:"edges"`
}

// Relatedness returns ConceptNet's relatedness score for a and b.
func (c *Client) Relatedness(ctx context.Context, a, b string) (float64, error) {
	q := url.Values{}
	q.Set("node1", node(a))
	q.Set("node2", node(b))

	var out relatednessResponse
	if err := c.get(ctx, "/relatedness", q, &out); err != nil {
		return 0, provider.Wrap(name, "relatedness", err)
	}
	return out.Value, nil
}

// Edges returns the relation labels of edges linking a to b.
func (c *Client) Edges(ctx context.Context, a, b string) ([]string, error) {
	q := url.Values{}
	q.Set("node", node(a))
	q.Set("other", node(b))

	var out queryResponse
	if err := c.get(ctx, "/query", q, &out); err != nil {
		return nil, provider.Wrap(name, "query", err)
	}
	labels := make([]string, 0, len(out.Edges))
	for _, e := range out.Edges {
		if e.Rel.Label != "" {
			labels = append(labels, e.Rel.Label)
		}
	}
	return labels, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func node(w string) string { return "/c/en/" + w }
