package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPixabay(t *testing.T, handler http.HandlerFunc) *Pixabay {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewPixabay("pb-test", 5*time.Second)
	p.baseURL = srv.URL
	return p
}

func TestPixabaySearchRaisesPerPageToMinimum(t *testing.T) {
	var r *http.Request
	p := newTestPixabay(t, func(w http.ResponseWriter, req *http.Request) {
		r = req
		_, _ = w.Write([]byte(`{"hits":[
			{"largeImageURL":"https://pixabay.com/get/1.jpg"},
			{"largeImageURL":"https://pixabay.com/get/2.jpg"},
			{"largeImageURL":"https://pixabay.com/get/3.jpg"}
		]}`))
	})

	urls, err := p.Search(context.Background(), "фитнес", 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://pixabay.com/get/1.jpg"}, urls)
	assert.Equal(t, "pb-test", r.URL.Query().Get("key"))
	assert.Equal(t, "фитнес", r.URL.Query().Get("q"))
	assert.Equal(t, "photo", r.URL.Query().Get("image_type"))
	assert.Equal(t, "horizontal", r.URL.Query().Get("orientation"))
	assert.Equal(t, "3", r.URL.Query().Get("per_page"))
}

func TestPixabayRandomTakesEditorsChoice(t *testing.T) {
	var r *http.Request
	p := newTestPixabay(t, func(w http.ResponseWriter, req *http.Request) {
		r = req
		_, _ = w.Write([]byte(`{"hits":[{"largeImageURL":"https://pixabay.com/get/r.jpg"}]}`))
	})

	url, err := p.Random(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://pixabay.com/get/r.jpg", url)
	assert.Equal(t, "true", r.URL.Query().Get("editors_choice"))
}

func TestPixabayBadKey(t *testing.T) {
	p := newTestPixabay(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := p.Search(context.Background(), "фитнес", 3)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}
