package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Terms are runs of two or more letters, digits or underscores. Single
// characters never enter the vocabulary.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a sparse, L2-normalised term-weight vector. Indices are kept in
// ascending order so every arithmetic pass runs in the same order and equal
// inputs give bit-identical scores.
type Vector struct {
	indices []int
	weights []float64
}

// Len is the number of non-zero terms.
func (v Vector) Len() int { return len(v.indices) }

// Dot returns the inner product; for normalised vectors this is the cosine
// similarity.
func (v Vector) Dot(o Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(v.indices) && j < len(o.indices) {
		switch {
		case v.indices[i] == o.indices[j]:
			sum += v.weights[i] * o.weights[j]
			i++
			j++
		case v.indices[i] < o.indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Vectorizer is a TF-IDF model: raw term counts weighted by smoothed inverse
// document frequency, ln((1+n)/(1+df)) + 1.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// Fit builds the vocabulary and IDF table from docs. A corpus without any
// usable term yields an empty vocabulary that maps every text to the zero
// vector.
func Fit(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v
}

// Dimension is the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Transform projects text into the fitted space. Out-of-vocabulary terms
// contribute nothing.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	vec := Vector{indices: make([]int, 0, len(counts))}
	for idx := range counts {
		vec.indices = append(vec.indices, idx)
	}
	sort.Ints(vec.indices)

	vec.weights = make([]float64, len(vec.indices))
	norm := 0.0
	for i, idx := range vec.indices {
		w := counts[idx] * v.idf[idx]
		vec.weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range vec.weights {
		vec.weights[i] /= norm
	}
	return vec
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
