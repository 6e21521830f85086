package chunker

import (
	"regexp"
	"strings"
)

// Chunk is one bounded segment of a document's text, the unit of retrieval.
type Chunk struct {
	Content  string   `json:"content"`
	Index    int      `json:"chunk_index"`
	Metadata Metadata `json:"metadata"`
}

// Metadata carries provenance so a retrieved chunk can be traced back to its
// position in the source document.
type Metadata struct {
	DocumentLabel string `json:"document_label"`
	SentenceStart int    `json:"sentence_start"`
	SentenceEnd   int    `json:"sentence_end"`
	Length        int    `json:"length"`
}

// Splitter splits extracted document text into bounded, overlapping,
// sentence-aligned chunks. It holds no state between calls: Split is a pure
// function of the text and the configured options.
type Splitter struct {
	ChunkSize    int // soft upper bound in characters per chunk
	OverlapWords int // trailing words of a closed chunk carried into the next
	MinTailChars int // a final chunk shorter than this is merged into the previous one
}

// NewSplitter applies safe defaults for non-positive options.
func NewSplitter(chunkSize, overlapWords, minTailChars int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if minTailChars < 0 {
		minTailChars = 0
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		OverlapWords: overlapWords,
		MinTailChars: minTailChars,
	}
}

// sentenceSplitter matches one sentence including its terminator run.
// The trailing fragment of a text without a final terminator is matched too,
// so no input text is ever dropped.
var sentenceSplitter = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Split breaks text into ordered chunks tagged with label.
//
// Sentences are accumulated into a running buffer. When appending the next
// sentence would push the buffer past ChunkSize, the buffer is closed as a
// chunk and the next buffer is seeded with the trailing OverlapWords words of
// the closed chunk, preserving context across the boundary. A single sentence
// longer than ChunkSize is never split further; it becomes its own chunk.
func (s *Splitter) Split(text, label string) []Chunk {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	var buf string
	bufStart := 0

	for i, sentence := range sentences {
		prospective := len(buf) + len(sentence)
		if buf != "" {
			prospective++ // joining space
		}

		if prospective > s.ChunkSize && buf != "" {
			chunks = append(chunks, s.newChunk(buf, label, len(chunks), bufStart, i-1))

			overlap := trailingWords(buf, s.OverlapWords)
			if overlap != "" {
				buf = overlap + " " + sentence
			} else {
				buf = sentence
			}
			bufStart = i
			continue
		}

		if buf == "" {
			buf = sentence
			bufStart = i
		} else {
			buf += " " + sentence
		}
	}

	tail := strings.TrimSpace(buf)
	if tail == "" {
		return chunks
	}

	// A tiny trailing chunk retrieves poorly; fold it into the previous one.
	if s.MinTailChars > 0 && len(tail) < s.MinTailChars && len(chunks) > 0 {
		last := &chunks[len(chunks)-1]
		last.Content = last.Content + " " + tail
		last.Metadata.SentenceEnd = len(sentences) - 1
		last.Metadata.Length = len(last.Content)
		return chunks
	}

	return append(chunks, s.newChunk(buf, label, len(chunks), bufStart, len(sentences)-1))
}

func (s *Splitter) newChunk(buf, label string, index, sentenceStart, sentenceEnd int) Chunk {
	content := strings.TrimSpace(buf)
	return Chunk{
		Content: content,
		Index:   index,
		Metadata: Metadata{
			DocumentLabel: label,
			SentenceStart: sentenceStart,
			SentenceEnd:   sentenceEnd,
			Length:        len(content),
		},
	}
}

// splitSentences cuts text at sentence boundaries (. ! ?) and discards
// fragments with no content beyond terminators and whitespace.
func splitSentences(text string) []string {
	matches := sentenceSplitter.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if strings.Trim(m, ".!? \t\r\n") == "" {
			continue
		}
		sentences = append(sentences, m)
	}
	return sentences
}

// trailingWords returns the last n whitespace-separated words of s.
func trailingWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
