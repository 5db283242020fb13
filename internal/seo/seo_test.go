package seo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentbot/internal/storage"
)

const statisticsPage = `<html><body>
<table class="b-word-statistics">
<tr>
  <td class="b-word-statistics__phrase">фитнес</td>
  <td class="b-word-statistics__td_type_shows">150 000</td>
</tr>
<tr>
  <td class="b-word-statistics__phrase">фитнес дома</td>
  <td class="b-word-statistics__td_type_shows">45000</td>
</tr>
<tr>
  <td class="b-word-statistics__phrase">фитнес клуб</td>
  <td class="b-word-statistics__td_type_shows">1 200 000</td>
</tr>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	st, err := storage.NewStorage(filepath.Join(t.TempDir(), "seo.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)

	c := NewClient(st, 5*time.Second)
	c.baseURL = srv.URL
	return c, &hits
}

func servePage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}
}

func TestLookupParsesVolumeAndRelated(t *testing.T) {
	var r *http.Request
	c, _ := newTestClient(t, func(w http.ResponseWriter, req *http.Request) {
		r = req
		servePage(statisticsPage)(w, req)
	})

	data, err := c.Lookup(context.Background(), "фитнес")

	require.NoError(t, err)
	assert.Equal(t, "фитнес", data.Keyword)
	assert.Equal(t, "150k/мес", data.Volume)
	require.Len(t, data.Related, 2)
	assert.Equal(t, Related{Keyword: "фитнес дома", Volume: "45k/мес"}, data.Related[0])
	assert.Equal(t, Related{Keyword: "фитнес клуб", Volume: "1.2M/мес"}, data.Related[1])

	assert.Equal(t, "фитнес", r.URL.Query().Get("text"))
	assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
}

func TestLookupServesRepeatFromCache(t *testing.T) {
	c, hits := newTestClient(t, servePage(statisticsPage))

	first, err := c.Lookup(context.Background(), "Фитнес")
	require.NoError(t, err)

	second, err := c.Lookup(context.Background(), "фитнес ")
	require.NoError(t, err)

	assert.Equal(t, first.Volume, second.Volume)
	assert.Equal(t, 1, *hits)
}

func TestLookupExpiredCacheScrapesAgain(t *testing.T) {
	c, hits := newTestClient(t, servePage(statisticsPage))
	c.ttl = -time.Second

	_, err := c.Lookup(context.Background(), "фитнес")
	require.NoError(t, err)
	_, err = c.Lookup(context.Background(), "фитнес")
	require.NoError(t, err)

	assert.Equal(t, 2, *hits)
}

func TestLookupVolumeFallsBackToPageNumbers(t *testing.T) {
	c, _ := newTestClient(t, servePage(`<html><body><p>Показов: 12 000 в месяц</p></body></html>`))

	data, err := c.Lookup(context.Background(), "йога")

	require.NoError(t, err)
	assert.Equal(t, "12k/мес", data.Volume)
	assert.Empty(t, data.Related)
}

func TestLookupReportsFetchFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Lookup(context.Background(), "фитнес")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 503")
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "150k/мес", formatVolume("150000"))
	assert.Equal(t, "150k/мес", formatVolume("150 000 показов"))
	assert.Equal(t, "1.5M/мес", formatVolume("1 500 000"))
	assert.Equal(t, "420/мес", formatVolume("420"))
	assert.Equal(t, "", formatVolume("N/A"))
	assert.Equal(t, "", formatVolume(""))
}
