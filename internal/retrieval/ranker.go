package retrieval

import (
	"strings"

	"bengkel-bot/internal/models"
)

// placeholderTerm is the single synthetic keyword an empty corpus is fitted
// over.
const placeholderTerm = "__nokey__"

// DefaultThreshold is the minimum similarity for a match to be answerable.
const DefaultThreshold = 0.3

// Match is the best-scoring entry for a question.
type Match struct {
	Entry   models.KnowledgeEntry
	Keyword string
	Score   float64
	Index   int
}

// Answerable is the go/no-go gate: below threshold the match must not be
// handed to answer extraction.
func (m Match) Answerable(threshold float64) bool {
	return m.Score >= threshold
}

// Ranker scores questions against the keywords of one domain corpus.
type Ranker struct {
	entries    []models.KnowledgeEntry
	keywords   []string
	vectorizer *Vectorizer
	matrix     []Vector
	empty      bool
}

// NewRanker fits the keyword vector space. The vectorizer only ever sees the
// keyword labels, never the passages.
func NewRanker(entries []models.KnowledgeEntry) *Ranker {
	r := &Ranker{}
	if len(entries) == 0 {
		r.empty = true
		r.entries = []models.KnowledgeEntry{{Keyword: placeholderTerm}}
		r.keywords = []string{placeholderTerm}
	} else {
		r.entries = make([]models.KnowledgeEntry, len(entries))
		copy(r.entries, entries)
		r.keywords = make([]string, len(entries))
		for i, e := range entries {
			kw := strings.TrimSpace(e.Keyword)
			if kw == "" {
				kw = models.NoKeyword
			}
			r.keywords[i] = kw
		}
	}

	r.vectorizer = Fit(r.keywords)
	r.matrix = make([]Vector, len(r.keywords))
	for i, kw := range r.keywords {
		r.matrix[i] = r.vectorizer.Transform(kw)
	}
	return r
}

// Len is the number of real entries in the corpus.
func (r *Ranker) Len() int {
	if r.empty {
		return 0
	}
	return len(r.entries)
}

// Best returns the highest scoring entry. Ties go to the lowest index. An
// empty question or an empty corpus scores 0.
func (r *Ranker) Best(question string) Match {
	best := Match{Entry: r.entries[0], Keyword: r.keywords[0], Index: 0}
	if r.empty {
		return best
	}

	q := r.vectorizer.Transform(question)
	if q.Len() == 0 {
		return best
	}

	for i, row := range r.matrix {
		score := q.Dot(row)
		if score > best.Score {
			best = Match{Entry: r.entries[i], Keyword: r.keywords[i], Score: score, Index: i}
		}
	}
	return best
}
