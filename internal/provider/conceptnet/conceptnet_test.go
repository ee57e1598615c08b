package conceptnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/relatedness":
			assert.Equal(t, "/c/en/ocean", q.Get("node1"))
			assert.Equal(t, "/c/en/wave", q.Get("node2"))
			_, _ = w.Write([]byte(`{"value": 0.62}`))
		case "/query":
			assert.Equal(t, "/c/en/ocean", q.Get("node"))
			assert.Equal(t, "/c/en/wave", q.Get("other"))
			_, _ = w.Write([]byte(`{"edges":[{"rel":{"label":"AtLocation"}},{"rel":{"label":""}},{"rel":{"label":"RelatedTo"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	v, err := c.Relatedness(context.Background(), "ocean", "wave")
	require.NoError(t, err)
	assert.InDelta(t, 0.62, v, 1e-9)

	labels, err := c.Edges(context.Background(), "ocean", "wave")
	require.NoError(t, err)
	assert.Equal(t, []string{"AtLocation", "RelatedTo"}, labels)
}

func TestClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Relatedness(context.Background(), "a", "b")
	assert.ErrorContains(t, err, "conceptnet relatedness")
}
