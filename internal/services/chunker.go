package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// chunkBuilder accumulates pieces until the next one would overflow, then
// starts a new chunk seeded with the tail of the previous one.
type chunkBuilder struct {
	maxSize int
	overlap int
	current strings.Builder
	size    int
	chunks  []string
}

func (cb *chunkBuilder) add(piece, sep string) {
	pieceSize := utf8.RuneCountInString(piece)
	if cb.size > 0 && cb.size+pieceSize+utf8.RuneCountInString(sep) > cb.maxSize {
		cb.flush(sep)
	}
	if cb.size > 0 {
		cb.write(sep)
	}
	cb.write(piece)
}

func (cb *chunkBuilder) flush(sep string) {
	prev := cb.current.String()
	cb.chunks = append(cb.chunks, prev)
	cb.current.Reset()
	cb.size = 0

	if tail := lastRunes(prev, cb.overlap); tail != "" {
		cb.write(tail)
	}
}

func (cb *chunkBuilder) write(s string) {
	cb.current.WriteString(s)
	cb.size += utf8.RuneCountInString(s)
}

func (cb *chunkBuilder) finish() []string {
	if cb.size > 0 {
		cb.chunks = append(cb.chunks, cb.current.String())
	}
	return cb.chunks
}

// ChunkText implements TextChunker. Paragraphs are kept whole when they fit;
// longer ones are split on sentence boundaries.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	cb := &chunkBuilder{maxSize: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			cb.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			cb.add(sentence, " ")
		}
	}

	return cb.finish()
}

func splitIntoSentences(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var result []string
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
