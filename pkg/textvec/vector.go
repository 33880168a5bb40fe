package textvec

import (
	"math"
	"sort"
)

// Document is a term frequency map.
type Document map[string]int

// Options control how raw text becomes a document.
type Options struct {
	NGram     int  // n-gram size, 0/1 = unigrams
	KeepStops bool // keep stop words
}

// NewDocument tokenizes text into a term frequency map.
func NewDocument(text string, opts Options) Document {
	tokens := Tokenize(text)
	if !opts.KeepStops {
		tokens = DropStopWords(tokens)
	}
	tokens = NGrams(tokens, opts.NGram)
	d := make(Document, len(tokens))
	for _, tok := range tokens {
		d[tok]++
	}
	return d
}

// Add merges more text into the document.
func (d Document) Add(text string, opts Options) {
	tokens := Tokenize(text)
	if !opts.KeepStops {
		tokens = DropStopWords(tokens)
	}
	for _, tok := range NGrams(tokens, opts.NGram) {
		d[tok]++
	}
}

// total returns the word count of the document.
func (d Document) total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// Corpus holds a fixed vocabulary and inverse document frequencies derived
// from a set of documents. Vectors projected through the same corpus are
// comparable component by component.
type Corpus struct {
	vocab []string
	index map[string]int
	idf   []float64
	docs  int
}

// NewCorpus builds a corpus over the given documents. The vocabulary is
// the sorted union of all terms.
func NewCorpus(docs []Document) *Corpus {
	seen := map[string]int{}
	for _, d := range docs {
		for term := range d {
			seen[term]++
		}
	}
	vocab := make([]string, 0, len(seen))
	for term := range seen {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	c := &Corpus{
		vocab: vocab,
		index: make(map[string]int, len(vocab)),
		idf:   make([]float64, len(vocab)),
		docs:  len(docs),
	}
	for i, term := range vocab {
		c.index[term] = i
		containing := 0
		for _, d := range docs {
			if d[term] > 0 {
				containing++
			}
		}
		c.idf[i] = math.Log(float64(c.docs) / float64(1+containing))
	}
	return c
}

// VocabSize returns the corpus vocabulary size.
func (c *Corpus) VocabSize() int { return len(c.vocab) }

// BagOfWords projects d onto the corpus vocabulary as raw term
// frequencies. Terms outside the vocabulary are ignored.
func (c *Corpus) BagOfWords(d Document) []float64 {
	v := make([]float64, len(c.vocab))
	for term, count := range d {
		if i, ok := c.index[term]; ok {
			v[i] = float64(count)
		}
	}
	return v
}

// TFIDF projects d onto the corpus vocabulary as TF-IDF weights, where
// TF is the in-document relative frequency and IDF is ln(N/(1+df)).
func (c *Corpus) TFIDF(d Document) []float64 {
	v := make([]float64, len(c.vocab))
	total := d.total()
	if total == 0 {
		return v
	}
	for term, count := range d {
		if i, ok := c.index[term]; ok {
			tf := float64(count) / float64(total)
			v[i] = tf * c.idf[i]
		}
	}
	return v
}

// Cosine returns the cosine similarity of two equal-length vectors.
// A zero-norm vector yields 0 rather than NaN; callers treat empty
// documents as dissimilar to everything.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity is a convenience that vectorizes two raw strings as
// bag-of-words documents over their own two-document corpus and returns
// their cosine similarity. The selector uses it for disambiguation.
func Similarity(a, b string) float64 {
	da := NewDocument(a, Options{})
	db := NewDocument(b, Options{})
	c := NewCorpus([]Document{da, db})
	return Cosine(c.BagOfWords(da), c.BagOfWords(db))
}
