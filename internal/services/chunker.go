package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 150
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Resume text arrives one line per entry, so lines
// are packed into chunks of at most maxChunkSize runes and each chunk after the first
// starts with the tail of the previous one.
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

	// A piece must fit after the overlap and its separator.
	pieceLimit := maxChunkSize - overlap - 1
	if pieceLimit < 1 {
		overlap = 0
		pieceLimit = maxChunkSize
	}

	var chunks []string
	var currentChunk strings.Builder
	currentLen := 0
	fresh := false

	flush := func() {
		chunks = append(chunks, currentChunk.String())
		currentChunk.Reset()
		currentLen = 0
		fresh = false

		if overlap > 0 {
			overlapText := getLastNChars(chunks[len(chunks)-1], overlap)
			currentChunk.WriteString(overlapText)
			currentLen = utf8.RuneCountInString(overlapText)
		}
	}

	for _, piece := range splitIntoPieces(text, pieceLimit) {
		pieceLen := utf8.RuneCountInString(piece)

		if fresh && currentLen+pieceLen+1 > maxChunkSize {
			flush()
		}
		if currentLen > 0 {
			currentChunk.WriteString("\n")
			currentLen++
		}
		currentChunk.WriteString(piece)
		currentLen += pieceLen
		fresh = true
	}

	if fresh {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

// splitIntoPieces breaks text into lines, splitting any line longer than limit into
// sentences and, failing that, into fixed-size runs.
func splitIntoPieces(text string, limit int) []string {
	var pieces []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= limit {
			pieces = append(pieces, line)
			continue
		}

		for _, sentence := range splitIntoSentences(line) {
			pieces = append(pieces, splitRunes(sentence, limit)...)
		}
	}
	return pieces
}

func splitIntoSentences(text string) []string {
	var result []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				result = append(result, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

func splitRunes(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		parts = append(parts, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
