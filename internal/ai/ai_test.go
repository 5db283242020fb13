package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitKeywordExtractsTrailer(t *testing.T) {
	raw := "Фитнес меняет жизнь.\nНачните сегодня!\n\nKEYWORD: fitness"

	text, keyword := splitKeyword(raw, "фитнес")

	assert.Equal(t, "fitness", keyword)
	assert.Equal(t, "Фитнес меняет жизнь.\nНачните сегодня!", text)
}

func TestSplitKeywordIsCaseInsensitive(t *testing.T) {
	text, keyword := splitKeyword("Пост.\n\nkeyword: gym", "спорт")

	assert.Equal(t, "gym", keyword)
	assert.Equal(t, "Пост.", text)
}

func TestSplitKeywordFallsBackToTopicWord(t *testing.T) {
	text, keyword := splitKeyword("Пост без трейлера", "the best fitness tips")

	assert.Equal(t, "Пост без трейлера", text)
	assert.Equal(t, "best", keyword)
}

func TestFallbackKeyword(t *testing.T) {
	assert.Equal(t, "СММ", fallbackKeyword("СММ Москва"))
	assert.Equal(t, "of", fallbackKeyword("of to in"))
	assert.Equal(t, "abstract", fallbackKeyword(""))
}

type stubGenerator struct {
	text string
	post Post
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

func (s stubGenerator) GenerateWithKeyword(context.Context, string) (Post, error) {
	return s.post, s.err
}

func TestChainReturnsFirstSuccess(t *testing.T) {
	chain := NewChain(
		stubGenerator{text: "первый"},
		stubGenerator{text: "второй"},
	)

	text, err := chain.Generate(context.Background(), "тема")
	require.NoError(t, err)
	assert.Equal(t, "первый", text)
}

func TestChainFallsThroughOnError(t *testing.T) {
	chain := NewChain(
		stubGenerator{err: errors.New("down")},
		stubGenerator{post: Post{Text: "запасной", Keyword: "backup"}},
	)

	post, err := chain.GenerateWithKeyword(context.Background(), "тема")
	require.NoError(t, err)
	assert.Equal(t, "запасной", post.Text)
	assert.Equal(t, "backup", post.Keyword)
}

func TestChainReportsLastError(t *testing.T) {
	sentinel := errors.New("also down")
	chain := NewChain(
		stubGenerator{err: errors.New("down")},
		stubGenerator{err: sentinel},
	)

	_, err := chain.Generate(context.Background(), "тема")
	assert.ErrorIs(t, err, sentinel)
}

func TestChainWithoutProviders(t *testing.T) {
	chain := NewChain()

	_, err := chain.Generate(context.Background(), "тема")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers")
}
