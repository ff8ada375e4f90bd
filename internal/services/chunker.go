package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits regulation circulars into overlapping passages for
// embedding.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunk bodies of at most maxChunkSize
// runes. Paragraphs longer than the limit are split on sentence boundaries
// and over-long sentences are cut hard. Each chunk after the first is
// prefixed with the last overlap runes of its predecessor, on top of the body.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChunkSize {
			units = append(units, para)
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			units = append(units, hardSplit(sentence, maxChunkSize-overlap)...)
		}
	}

	var chunks []string
	var current strings.Builder
	bodyLen := 0

	for _, unit := range units {
		unitLen := utf8.RuneCountInString(unit)
		if bodyLen > 0 && bodyLen+unitLen+2 > maxChunkSize {
			chunks = append(chunks, current.String())
			tail := lastRunes(current.String(), overlap)
			current.Reset()
			current.WriteString(tail)
			bodyLen = 0
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
			if bodyLen > 0 {
				bodyLen += 2
			}
		}
		current.WriteString(unit)
		bodyLen += unitLen
	}

	if bodyLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitIntoSentences keeps the terminating punctuation with each sentence.
func splitIntoSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == ';' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func hardSplit(s string, size int) []string {
	if size <= 0 {
		size = 1
	}
	runes := []rune(s)
	if len(runes) <= size {
		return []string{s}
	}
	var parts []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
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
