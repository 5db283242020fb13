package images

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentbot/internal/storage"
)

type stubFetcher struct {
	urls   []string
	random string
	err    error
	calls  int
}

func (s *stubFetcher) Search(context.Context, string, int) ([]string, error) {
	s.calls++
	return s.urls, s.err
}

func (s *stubFetcher) Random(context.Context) (string, error) {
	s.calls++
	return s.random, s.err
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := &stubFetcher{urls: []string{"https://img.example/1.jpg"}}
	secondary := &stubFetcher{urls: []string{"https://img.example/2.jpg"}}
	f := NewFallback(primary, secondary)

	urls, err := f.Search(context.Background(), "фитнес", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, urls)
	assert.Zero(t, secondary.calls)
}

func TestFallbackSwitchesOnPrimaryError(t *testing.T) {
	primary := &stubFetcher{err: errors.New("pexels down")}
	secondary := &stubFetcher{urls: []string{"https://img.example/2.jpg"}}
	f := NewFallback(primary, secondary)

	urls, err := f.Search(context.Background(), "фитнес", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example/2.jpg"}, urls)
}

func TestFallbackSwitchesOnEmptyPrimary(t *testing.T) {
	primary := &stubFetcher{}
	secondary := &stubFetcher{random: "https://img.example/r.jpg"}
	f := NewFallback(primary, secondary)

	url, err := f.Random(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/r.jpg", url)
}

func TestFallbackReportsNoResults(t *testing.T) {
	f := NewFallback(&stubFetcher{}, &stubFetcher{})

	_, err := f.Search(context.Background(), "фитнес", 3)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = f.Random(context.Background())
	assert.ErrorIs(t, err, ErrNoResults)
}

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	st, err := storage.NewStorage(filepath.Join(t.TempDir(), "images.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestCachedServesSecondSearchFromCache(t *testing.T) {
	inner := &stubFetcher{urls: []string{"https://img.example/1.jpg"}}
	c := NewCached(inner, newTestStore(t), 0)

	first, err := c.Search(context.Background(), "Фитнес", 3)
	require.NoError(t, err)

	second, err := c.Search(context.Background(), "фитнес  ", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &stubFetcher{err: errors.New("down")}
	c := NewCached(inner, newTestStore(t), 0)

	_, err := c.Search(context.Background(), "фитнес", 3)
	require.Error(t, err)

	inner.err = nil
	inner.urls = []string{"https://img.example/1.jpg"}
	urls, err := c.Search(context.Background(), "фитнес", 3)
	require.NoError(t, err)
	assert.Len(t, urls, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedRandomBypassesCache(t *testing.T) {
	inner := &stubFetcher{random: "https://img.example/r.jpg"}
	c := NewCached(inner, newTestStore(t), 0)

	for range 2 {
		url, err := c.Random(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/r.jpg", url)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "смм москва", normalizeQuery("  СММ   Москва "))
}
