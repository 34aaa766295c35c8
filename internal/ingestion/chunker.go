package ingestion

import "strings"

const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 100
)

// ChunkText splits text into chunks of at most chunkSize runes without
// splitting words, carrying roughly chunkOverlap runes of trailing words into
// the next chunk. A single word longer than chunkSize becomes its own chunk.
func ChunkText(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 3
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		chunks = append(chunks, strings.Join(current, " "))

		// Carry trailing words into the next chunk as overlap.
		var overlap []string
		overlapLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			wordLen := len([]rune(current[i]))
			if overlapLen+wordLen+1 > chunkOverlap {
				break
			}
			overlap = append([]string{current[i]}, overlap...)
			overlapLen += wordLen + 1
		}
		current = overlap
		currentLen = overlapLen
	}

	for _, word := range words {
		wordLen := len([]rune(word))
		if currentLen > 0 && currentLen+1+wordLen > chunkSize {
			flush()
		}
		current = append(current, word)
		if currentLen == 0 {
			currentLen = wordLen
		} else {
			currentLen += 1 + wordLen
		}
	}
	if len(current) > 0 {
		flush()
	}

	return chunks
}
