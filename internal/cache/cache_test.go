package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(step)
		return t
	}
}

// manualClock is moved explicitly by the test.
type manualClock struct{ t time.Time }

func (m *manualClock) Now() time.Time            { return m.t }
func (m *manualClock) Advance(d time.Duration) { m.t = m.t.Add(d) }

type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemStorage() *memStorage { return &memStorage{data: map[string][]byte{}} }

func (m *memStorage) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.data[name]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return b, nil
}

func (m *memStorage) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[name] = data
	return nil
}

func TestGetSet(t *testing.T) {
	c := New[bool]("words", 10, time.Hour)
	_, ok := c.Get("ocean")
	assert.False(t, ok)

	c.Set("ocean", true)
	v, ok := c.Get("ocean")
	require.True(t, ok)
	assert.True(t, v)
}

func TestGet_ExpiredEntryIsDeleted(t *testing.T) {
	clk := &manualClock{t: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)}
	c := New[string]("defs", 10, time.Minute, WithClock(clk.Now))

	c.Set("sea", "a large body of salt water")
	clk.Advance(time.Minute)
	_, ok := c.Get("sea")
	assert.True(t, ok, "entry exactly ttl old is still valid")

	clk.Advance(time.Millisecond)
	_, ok = c.Get("sea")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry removed lazily")
}

func TestSet_EvictsOldestFifth(t *testing.T) {
	c := New[int]("vectors", 10, time.Hour, WithClock(stepClock(time.Unix(0, 0), time.Millisecond)))

	for i := 1; i <= 15; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Passes at k11, k13 and k15 each drop two entries (ceil of 20% of 10).
	assert.Equal(t, 9, c.Len())
	for i := 1; i <= 6; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok, "k%d should be evicted", i)
	}
	for i := 7; i <= 15; i++ {
		v, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should survive", i)
		assert.Equal(t, i, v)
	}
}

func TestSet_OverwriteDoesNotEvict(t *testing.T) {
	c := New[int]("outcomes", 2, time.Hour, WithClock(stepClock(time.Unix(0, 0), time.Millisecond)))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("b", 3)
	assert.Equal(t, 2, c.Len())
	v, _ := c.Get("b")
	assert.Equal(t, 3, v)
}

func TestKeys_OldestFirst(t *testing.T) {
	c := New[int]("k", 5, time.Hour, WithClock(stepClock(time.Unix(0, 0), time.Second)))
	c.Set("c", 1)
	c.Set("a", 2)
	c.Set("b", 3)
	assert.Equal(t, []string{"c", "a", "b"}, c.Keys())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	clk := &manualClock{t: time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)}

	src := New[[]float32]("embeddings", 10, time.Hour, WithStorage(st), WithClock(clk.Now))
	src.Set("ocean", []float32{0.1, 0.2})
	clk.Advance(30 * time.Minute)
	src.Set("book", []float32{0.3})
	require.NoError(t, src.Save(ctx))

	clk.Advance(45 * time.Minute) // "ocean" is now 75 minutes old
	dst := New[[]float32]("embeddings", 10, time.Hour, WithStorage(st), WithClock(clk.Now))
	require.NoError(t, dst.Load(ctx))

	_, ok := dst.Get("ocean")
	assert.False(t, ok, "expired entries are dropped on load")
	v, ok := dst.Get("book")
	require.True(t, ok)
	assert.Equal(t, []float32{0.3}, v)
}

func TestLoad_MissingSnapshotIsNotAnError(t *testing.T) {
	c := New[bool]("words", 10, time.Hour, WithStorage(newMemStorage()))
	assert.NoError(t, c.Load(context.Background()))
	assert.Equal(t, 0, c.Len())
}

func TestLoad_CorruptSnapshotIgnored(t *testing.T) {
	st := newMemStorage()
	st.data["words"] = []byte("{not json")
	c := New[bool]("words", 10, time.Hour, WithStorage(st))

	err := c.Load(context.Background())
	assert.Error(t, err)

	// Cache remains usable.
	c.Set("ocean", true)
	v, ok := c.Get("ocean")
	assert.True(t, ok)
	assert.True(t, v)
}

func TestLoadAll_SwallowsStorageFailure(t *testing.T) {
	st := newMemStorage()
	st.err = errors.New("disk on fire")
	a := New[bool]("a", 10, time.Hour, WithStorage(st))
	b := New[string]("b", 10, time.Hour, WithStorage(st))

	LoadAll(context.Background(), a, b)
	assert.Error(t, SaveAll(context.Background(), a, b))
}

func TestNoStorage_IsNoop(t *testing.T) {
	c := New[int]("plain", 1, 0)
	assert.NoError(t, c.Load(context.Background()))
	assert.NoError(t, c.Save(context.Background()))
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int]("concurrent", 50, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-%d", g, i%60)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
