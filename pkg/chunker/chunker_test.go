package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter(100, 2, 0)

	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "whitespace only", text: "   \n\t  "},
		{name: "terminators only", text: "... !?"},
		{name: "terminators and whitespace", text: " .. \n ?! . "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Split(tt.text, "doc"); len(got) != 0 {
				t.Errorf("Split(%q) = %d chunks, want 0", tt.text, len(got))
			}
		})
	}
}

func TestSplitSingleChunk(t *testing.T) {
	s := NewSplitter(200, 2, 0)
	text := "First sentence here. Second sentence follows! A third one?"

	chunks := s.Split(text, "doc")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	want := "First sentence here. Second sentence follows! A third one?"
	if chunks[0].Content != want {
		t.Errorf("Content = %q, want %q", chunks[0].Content, want)
	}
	if chunks[0].Index != 0 {
		t.Errorf("Index = %d, want 0", chunks[0].Index)
	}
	if chunks[0].Metadata.SentenceStart != 0 || chunks[0].Metadata.SentenceEnd != 2 {
		t.Errorf("sentence range = [%d,%d], want [0,2]",
			chunks[0].Metadata.SentenceStart, chunks[0].Metadata.SentenceEnd)
	}
	if chunks[0].Metadata.Length != len(want) {
		t.Errorf("Length = %d, want %d", chunks[0].Metadata.Length, len(want))
	}
}

func TestSplitOverlapScenario(t *testing.T) {
	// Three sentences totalling ~130 chars against a 100 char budget must
	// produce exactly two chunks, the second seeded with the last two words
	// of the first.
	s := NewSplitter(100, 2, 0)
	text := "The quick brown fox jumps over the lazy sleeping dog. " +
		"A second sentence adds more detail here today. " +
		"Short tail sentence here."

	chunks := s.Split(text, "doc")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	first := chunks[0].Content
	if !strings.HasSuffix(first, "here today.") {
		t.Errorf("first chunk = %q, want it to end with the second sentence", first)
	}

	words := strings.Fields(first)
	overlap := strings.Join(words[len(words)-2:], " ")
	if !strings.HasPrefix(chunks[1].Content, overlap) {
		t.Errorf("second chunk = %q, want prefix %q (overlap of chunk 1)",
			chunks[1].Content, overlap)
	}
	if chunks[1].Metadata.SentenceStart != 2 || chunks[1].Metadata.SentenceEnd != 2 {
		t.Errorf("second chunk sentence range = [%d,%d], want [2,2]",
			chunks[1].Metadata.SentenceStart, chunks[1].Metadata.SentenceEnd)
	}
}

func TestSplitCoverage(t *testing.T) {
	// Every sentence must land in exactly one chunk (ignoring the seeded
	// overlap prefix), in original order, with contiguous indices.
	s := NewSplitter(80, 3, 0)
	text := "Alpha sentence number one. Bravo sentence number two. " +
		"Charlie sentence number three. Delta sentence number four. " +
		"Echo sentence number five. Foxtrot closes the document."

	sentences := splitSentences(text)
	chunks := s.Split(text, "doc")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	nextSentence := 0
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d, want %d", i, c.Index, i)
		}
		if c.Metadata.SentenceStart != nextSentence {
			t.Errorf("chunk %d starts at sentence %d, want %d",
				i, c.Metadata.SentenceStart, nextSentence)
		}
		own := strings.Join(sentences[c.Metadata.SentenceStart:c.Metadata.SentenceEnd+1], " ")
		if !strings.HasSuffix(c.Content, own) {
			t.Errorf("chunk %d = %q does not carry its sentences %q", i, c.Content, own)
		}
		nextSentence = c.Metadata.SentenceEnd + 1
	}
	if nextSentence != len(sentences) {
		t.Errorf("chunks cover %d sentences, want %d", nextSentence, len(sentences))
	}
}

func TestSplitChunkBound(t *testing.T) {
	s := NewSplitter(60, 2, 0)
	text := "One short line here. Another short line follows. A third line lands. " +
		"Then a fourth line arrives. And the fifth line wraps up."

	sentences := splitSentences(text)
	longest := 0
	for _, sent := range sentences {
		if len(sent) > longest {
			longest = len(sent)
		}
	}

	for _, c := range s.Split(text, "doc") {
		// A chunk may exceed the budget by at most the sentence that
		// triggered the overflow check.
		if len(c.Content) > s.ChunkSize+longest+1 {
			t.Errorf("chunk %d length %d exceeds bound %d",
				c.Index, len(c.Content), s.ChunkSize+longest+1)
		}
	}
}

func TestSplitOversizedSentence(t *testing.T) {
	s := NewSplitter(30, 2, 0)
	long := "This single sentence is far longer than the configured chunk size limit."
	text := "Short one. " + long + " Short two."

	chunks := s.Split(text, "doc")
	found := false
	for _, c := range chunks {
		if strings.HasSuffix(c.Content, long) {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized sentence was split or dropped: %v", chunks)
	}
}

func TestSplitMinTailMerge(t *testing.T) {
	s := NewSplitter(60, 1, 20)
	text := "A first sentence that nearly fills the whole chunk budget. Tiny end."

	chunks := s.Split(text, "doc")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (tail merged)", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Content, "Tiny end.") {
		t.Errorf("merged chunk = %q, want it to end with the tail", chunks[0].Content)
	}
	if chunks[0].Metadata.SentenceEnd != 1 {
		t.Errorf("SentenceEnd = %d, want 1", chunks[0].Metadata.SentenceEnd)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(70, 2, 0)
	text := "Same input in. Same chunks out. Every single time. No hidden state survives."

	a := s.Split(text, "doc")
	b := s.Split(text, "doc")
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
