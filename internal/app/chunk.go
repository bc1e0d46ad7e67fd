package app

import "fmt"

// chunkText splits text into overlapping windows of size runes, advancing by
// size-overlap each step. Empty text yields no chunks; text no longer than
// size yields exactly one. The parameters are validated up front: a
// non-positive stride would never terminate.
func chunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap <= 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk size %d and overlap %d require 0 < overlap < size", ErrInvalidInput, size, overlap)
	}

	var chunks []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		// Once a chunk reaches the end of the text there is nothing left to
		// cover; a further window would only repeat the tail.
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
