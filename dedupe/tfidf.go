package dedupe

import (
	"math"
	"strings"
)

// tokenize splits text into lowercased terms with surrounding punctuation
// trimmed.
func tokenize(text string) []string {
	words := strings.Fields(text)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			terms = append(terms, cleaned)
		}
	}
	return terms
}

// vectorize builds smoothed TF-IDF vectors over the documents and returns
// them L2-normalized, so cosine similarity reduces to a dot product.
// Returns ok=false when the corpus is degenerate (no document yields any
// term), in which case callers must skip filtering rather than fail.
func vectorize(docs []string) (vectors []map[int]float64, ok bool) {
	tokenized := make([][]string, len(docs))
	vocab := make(map[string]int)
	df := make(map[int]int)

	nonEmpty := 0
	for i, doc := range docs {
		terms := tokenize(doc)
		tokenized[i] = terms
		if len(terms) > 0 {
			nonEmpty++
		}

		inDoc := make(map[int]bool, len(terms))
		for _, term := range terms {
			id, exists := vocab[term]
			if !exists {
				id = len(vocab)
				vocab[term] = id
			}
			inDoc[id] = true
		}
		for id := range inDoc {
			df[id]++
		}
	}
	if nonEmpty == 0 || len(vocab) == 0 {
		return nil, false
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for id, count := range df {
		idf[id] = math.Log((1+n)/(1+float64(count))) + 1
	}

	vectors = make([]map[int]float64, len(docs))
	for i, terms := range tokenized {
		vec := make(map[int]float64, len(terms))
		for _, term := range terms {
			vec[vocab[term]]++
		}
		var norm float64
		for id, tf := range vec {
			w := tf * idf[id]
			vec[id] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for id := range vec {
				vec[id] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, true
}

// cosine returns the cosine similarity of two L2-normalized sparse vectors.
func cosine(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for id, w := range a {
		dot += w * b[id]
	}
	return dot
}

// similarityMatrix computes the full pairwise cosine matrix.
func similarityMatrix(vectors []map[int]float64) [][]float64 {
	n := len(vectors)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := cosine(vectors[i], vectors[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}
