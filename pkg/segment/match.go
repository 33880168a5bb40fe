package segment

import (
	"math"

	"github.com/devicelab-dev/replaykit/pkg/munkres"
	"github.com/devicelab-dev/replaykit/pkg/textvec"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// scoreScale converts cosine similarities into the integer weights the
// bipartite matcher needs.
const scoreScale = 1000

// MatchResult is a resolved correspondence between two segment sequences.
// Side A is the recordee, side B the playee. Both sequences are padded
// with the None sentinel to equal length; every score involving the
// sentinel is zero.
type MatchResult struct {
	a, b    []ID
	ta, tb  *Tree
	scores  [][]int
	matcher *munkres.Matcher
}

// DocumentOptions shape the per-segment text documents.
type DocumentOptions = textvec.Options

// Document builds the textual document of a segment: a depth-first
// concatenation of every root subtree's resource entry, description,
// text, tag, tooltip, and hint.
func Document(t *Tree, id ID, opts DocumentOptions) textvec.Document {
	doc := textvec.Document{}
	for _, r := range t.Get(id).Roots {
		r.Walk(func(v *ui.View) bool {
			for _, field := range []string{
				v.ResourceEntry(), v.Description, v.Text, v.Tag, v.Tooltip, v.Hint,
			} {
				if field != "" {
					doc.Add(field, opts)
				}
			}
			return true
		})
	}
	return doc
}

// Match pads the two segment sequences to equal length, vectorizes their
// documents over a shared TF-IDF corpus, and resolves the similarity
// matrix into an assignment with the bipartite matcher.
func Match(ta *Tree, as []ID, tb *Tree, bs []ID, opts DocumentOptions) (*MatchResult, error) {
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	if n == 0 {
		return nil, nil
	}

	a := pad(as, n)
	b := pad(bs, n)

	// One corpus over both sides so the vectors share a vocabulary.
	var corpusDocs []textvec.Document
	docA := make([]textvec.Document, n)
	docB := make([]textvec.Document, n)
	for i := 0; i < n; i++ {
		if a[i] != None {
			docA[i] = Document(ta, a[i], opts)
			corpusDocs = append(corpusDocs, docA[i])
		}
		if b[i] != None {
			docB[i] = Document(tb, b[i], opts)
			corpusDocs = append(corpusDocs, docB[i])
		}
	}
	corpus := textvec.NewCorpus(corpusDocs)

	vecA := make([][]float64, n)
	vecB := make([][]float64, n)
	for i := 0; i < n; i++ {
		if a[i] != None {
			vecA[i] = corpus.TFIDF(docA[i])
		}
		if b[i] != None {
			vecB[i] = corpus.TFIDF(docB[i])
		}
	}

	scores := make([][]int, n)
	for i := range scores {
		scores[i] = make([]int, n)
		if a[i] == None {
			continue
		}
		for j := 0; j < n; j++ {
			if b[j] == None {
				continue
			}
			sim := textvec.Cosine(vecA[i], vecB[j])
			scores[i][j] = int(math.Round(sim * scoreScale))
		}
	}

	m, err := munkres.New(scores)
	if err != nil {
		return nil, err
	}
	m.Match()

	return &MatchResult{a: a, b: b, ta: ta, tb: tb, scores: scores, matcher: m}, nil
}

func pad(ids []ID, n int) []ID {
	out := make([]ID, n)
	copy(out, ids)
	for i := len(ids); i < n; i++ {
		out[i] = None
	}
	return out
}

// PerfectMatch returns the playee segment assigned to the recordee
// segment, which may be the None sentinel.
func (r *MatchResult) PerfectMatch(aID ID) ID {
	for i, id := range r.a {
		if id == aID {
			return r.b[r.matcher.MatchOf(i, true)]
		}
	}
	return None
}

// BestMatches returns the playee segments tied at the recordee segment's
// row maximum, in stable original order. A zero maximum yields nil: the
// segment resembles nothing on the other side.
func (r *MatchResult) BestMatches(aID ID) []ID {
	row := -1
	for i, id := range r.a {
		if id == aID {
			row = i
			break
		}
	}
	if row < 0 {
		return nil
	}
	maxScore := 0
	for j, id := range r.b {
		if id != None && r.scores[row][j] > maxScore {
			maxScore = r.scores[row][j]
		}
	}
	if maxScore <= 0 {
		return nil
	}
	var out []ID
	for j, id := range r.b {
		if id != None && r.scores[row][j] == maxScore {
			out = append(out, id)
		}
	}
	return out
}

// Score returns the similarity score between two matched segments, or 0.
func (r *MatchResult) Score(aID, bID ID) int {
	for i, id := range r.a {
		if id != aID {
			continue
		}
		for j, jd := range r.b {
			if jd == bID {
				return r.scores[i][j]
			}
		}
	}
	return 0
}
