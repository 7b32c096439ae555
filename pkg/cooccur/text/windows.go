package text

import (
	"strconv"

	"github.com/cognicore/cooccur/pkg/cooccur/vocab"
)

// Windows cuts tokens into sliding windows of size consecutive tokens with a
// stride of one. A size ≤ 0, or a document shorter than size, yields a single
// window holding every token. No tokens yields no windows.
func Windows(tokens []string, size int) [][]string {
	if len(tokens) == 0 {
		return nil
	}
	if size <= 0 || len(tokens) <= size {
		return [][]string{tokens}
	}
	out := make([][]string, 0, len(tokens)-size+1)
	for i := 0; i+size <= len(tokens); i++ {
		out = append(out, tokens[i:i+size])
	}
	return out
}

// Windower feeds tokenized documents into a matrix builder.
type Windower struct {
	Tokenizer *Tokenizer
	Size      int
}

// Observe tokenizes text and adds one observation per window, labelled
// "<docID>#<n>". It returns the number of windows added.
func (w *Windower) Observe(b *vocab.Builder, docID, text string) int {
	windows := Windows(w.Tokenizer.Tokenize(text), w.Size)
	for n, win := range windows {
		b.AddAll(docID+"#"+strconv.Itoa(n), win)
	}
	return len(windows)
}
