package memory

import (
	"fmt"
	"strings"
	"unicode"
)

// Chunker splits text into overlapping windows of at most Size characters,
// preferring to cut at line breaks, then at whitespace.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker validates the window configuration.
func NewChunker(size, overlap int) (Chunker, error) {
	if size <= 0 {
		return Chunker{}, fmt.Errorf("chunk size must be positive: %d", size)
	}
	if overlap < 0 || overlap >= size {
		return Chunker{}, fmt.Errorf("chunk overlap must be in [0, %d): %d", size, overlap)
	}
	return Chunker{Size: size, Overlap: overlap}, nil
}

// Split returns the non-empty chunks of text in document order.
func (c Chunker) Split(text string) []string {
	runes := []rune(strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := min(start+c.Size, len(runes))
		if end < len(runes) {
			if cut := lastBreak(runes[start:end], c.Size/2); cut > 0 {
				end = start + cut
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - c.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// lastBreak returns the position just after the last newline in window past
// floor, or after the last whitespace past floor. Zero means no break.
func lastBreak(window []rune, floor int) int {
	for i := len(window) - 1; i >= floor; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= floor; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return 0
}
