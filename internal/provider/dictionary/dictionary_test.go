package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/linkdle/internal/provider"
)

const oceanJSON = `[
  {"word":"ocean","meanings":[
    {"partOfSpeech":"noun","synonyms":["main"],"definitions":[
      {"definition":"One of the large bodies of water, the sea.","synonyms":["sea"],"antonyms":[]}
    ]}
  ]},
  {"word":"ocean","meanings":[
    {"partOfSpeech":"adjective","antonyms":["land"],"definitions":[{"definition":"Pertaining to the main or great sea."}]}
  ]}
]`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ocean":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(oceanJSON))
		case "/broken":
			_, _ = w.Write([]byte("{"))
		case "/boom":
			http.Error(w, "upstream", http.StatusBadGateway)
		default:
			http.Error(w, `{"title":"No Definitions Found"}`, http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup_MergesEntries(t *testing.T) {
	c := New(newServer(t).URL, time.Second)
	e, err := c.Lookup(context.Background(), "ocean")
	require.NoError(t, err)

	assert.Equal(t, "ocean", e.Word)
	assert.Len(t, e.Meanings, 2)
	assert.ElementsMatch(t, []string{"main", "sea"}, e.Synonyms())
	assert.Equal(t, []string{"land"}, e.Antonyms())
	assert.Len(t, e.DefinitionTexts(), 2)
}

func TestLookup_NotFound(t *testing.T) {
	c := New(newServer(t).URL, time.Second)
	_, err := c.Lookup(context.Background(), "zzzq")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrNotFound)

	var pe *provider.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "dictionary", pe.Provider)
}

func TestLookup_Failures(t *testing.T) {
	c := New(newServer(t).URL, time.Second)
	for _, w := range []string{"broken", "boom"} {
		_, err := c.Lookup(context.Background(), w)
		require.Error(t, err, w)
		assert.NotErrorIs(t, err, provider.ErrNotFound, w)
	}
}
