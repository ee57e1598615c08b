package relation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/linkdle/internal/provider"
)

func TestLexicon_CachesPositiveAndNegative(t *testing.T) {
	d := &fakeDict{entries: map[string]*provider.DictionaryEntry{"ocean": entry("ocean")}}
	lex := newLexicon(d)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := lex.Exists(ctx, "ocean")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = lex.Exists(ctx, "zzxq")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.EqualValues(t, 2, d.calls.Load())
}

func TestLexicon_FailuresNotCached(t *testing.T) {
	d := &fakeDict{entries: map[string]*provider.DictionaryEntry{"ocean": entry("ocean")}, fail: map[string]bool{"ocean": true}}
	lex := newLexicon(d)

	_, err := lex.Exists(context.Background(), "ocean")
	require.Error(t, err)

	d.fail = nil
	ok, err := lex.Exists(context.Background(), "ocean")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 2, d.calls.Load())
}

func TestLexicon_Offline(t *testing.T) {
	lex := newLexicon(nil)
	ok, err := lex.Exists(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
	e, err := lex.Entry(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestLexicon_ConcurrentLookups(t *testing.T) {
	d := &fakeDict{entries: map[string]*provider.DictionaryEntry{"ocean": entry("ocean")}}
	lex := newLexicon(d)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := lex.Exists(context.Background(), "ocean")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, d.calls.Load(), int32(16))
	assert.GreaterOrEqual(t, d.calls.Load(), int32(1))
}

// gatedDict holds each lookup until release is closed or ctx ends.
type gatedDict struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (d *gatedDict) Lookup(ctx context.Context, word string) (*provider.DictionaryEntry, error) {
	if d.calls.Add(1) == 1 {
		close(d.started)
	}
	select {
	case <-d.release:
		return entry(word), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestLexicon_SharedLookupSurvivesCallerCancel(t *testing.T) {
	d := &gatedDict{started: make(chan struct{}), release: make(chan struct{})}
	lex := newLexicon(d)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := lex.Exists(ctx, "ocean")
		first <- err
	}()

	<-d.started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	second := make(chan bool, 1)
	go func() {
		ok, err := lex.Exists(context.Background(), "ocean")
		assert.NoError(t, err)
		second <- ok
	}()
	close(d.release)

	assert.True(t, <-second)
	assert.EqualValues(t, 1, d.calls.Load())
}
