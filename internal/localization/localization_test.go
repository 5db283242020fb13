package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func newTestLocalizer(t *testing.T, lang string) *Localizer {
	t.Helper()
	dir := fstest.MapFS{
		"locales/ru.json": &fstest.MapFile{Data: []byte(`{
			"greeting": "Привет, %s!",
			"ru_only":  "только по-русски"
		}`)},
		"locales/en.json": &fstest.MapFile{Data: []byte(`{
			"greeting": "Hello, %s!",
			"en_only":  "english only"
		}`)},
	}
	return NewLocalizer(dir, lang)
}

func TestGetReturnsConfiguredLanguage(t *testing.T) {
	loc := newTestLocalizer(t, "ru")

	assert.Equal(t, "Привет, %s!", loc.Get("greeting"))
	assert.Equal(t, "только по-русски", loc.Get("ru_only"))
}

func TestGetFallsBackToEnglish(t *testing.T) {
	loc := newTestLocalizer(t, "ru")

	assert.Equal(t, "english only", loc.Get("en_only"))
}

func TestGetFallsBackToKeyWhenUnknown(t *testing.T) {
	loc := newTestLocalizer(t, "ru")

	assert.Equal(t, "no_such_key", loc.Get("no_such_key"))
}

func TestUnknownLanguageUsesEnglish(t *testing.T) {
	loc := newTestLocalizer(t, "de")

	assert.Equal(t, "Hello, %s!", loc.Get("greeting"))
}

func TestGetfFormatsArguments(t *testing.T) {
	loc := newTestLocalizer(t, "en")

	assert.Equal(t, "Hello, Alice!", loc.Getf("greeting", "Alice"))
}

func TestMalformedLocaleFileIsSkipped(t *testing.T) {
	dir := fstest.MapFS{
		"locales/en.json":     &fstest.MapFile{Data: []byte(`{"greeting": "Hello"}`)},
		"locales/broken.json": &fstest.MapFile{Data: []byte(`{not json`)},
		"locales/notes.txt":   &fstest.MapFile{Data: []byte(`ignored`)},
	}
	loc := NewLocalizer(dir, "en")

	assert.Equal(t, "Hello", loc.Get("greeting"))
}
