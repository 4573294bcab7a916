package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunkTextKeepsSmallTextWhole(t *testing.T) {
	chunks := NewTextChunker().ChunkText("First paragraph.\n\nSecond paragraph.", 1000, 200)

	assert.Equal(t, []string{"First paragraph.\n\nSecond paragraph."}, chunks)
}

func TestChunkTextSkipsBlankInput(t *testing.T) {
	assert.Empty(t, NewTextChunker().ChunkText("  \n\n \n\n", 100, 10))
}

func TestChunkTextSplitsParagraphsWithOverlap(t *testing.T) {
	paras := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}

	chunks := NewTextChunker().ChunkText(strings.Join(paras, "\n\n"), 50, 5)

	assert.Len(t, chunks, 3)
	assert.Equal(t, paras[0], chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "aaaaa"), chunks[1])
	assert.True(t, strings.HasSuffix(chunks[1], paras[1]), chunks[1])
}

func TestChunkTextSplitsLongParagraphIntoSentences(t *testing.T) {
	sentence := strings.Repeat("word ", 8) + "end."
	para := strings.Repeat(sentence+" ", 10)

	chunks := NewTextChunker().ChunkText(para, 100, 0)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
	}
}

func TestChunkTextNormalizesArguments(t *testing.T) {
	chunks := NewTextChunker().ChunkText("short", 0, -1)

	assert.Equal(t, []string{"short"}, chunks)
}

func TestLastRunes(t *testing.T) {
	assert.Equal(t, "", lastRunes("hello", 0))
	assert.Equal(t, "hello", lastRunes("hello", 10))
	assert.Equal(t, "dú", lastRunes("ñandú", 2))
}
