package rank

import (
	"math"
	"sort"
)

// Okapi BM25 parameters
const (
	defaultK1      = 1.5
	defaultB       = 0.75
	defaultEpsilon = 0.25
)

// BM25 is an Okapi BM25 index over a fixed corpus of tokenized documents
type BM25 struct {
	k1         float64
	b          float64
	epsilon    float64
	corpusSize int
	avgDocLen  float64
	docFreqs   []map[string]int
	docLens    []int
	idf        map[string]float64
}

// NewBM25 indexes the given corpus. Each document is an ordered sequence of
// tokens.
func NewBM25(corpus [][]string) *BM25 {
	bm := &BM25{
		k1:         defaultK1,
		b:          defaultB,
		epsilon:    defaultEpsilon,
		corpusSize: len(corpus),
		idf:        make(map[string]float64),
	}

	docCounts := make(map[string]int)
	totalLen := 0
	for _, doc := range corpus {
		totalLen += len(doc)
		bm.docLens = append(bm.docLens, len(doc))

		freqs := make(map[string]int)
		for _, token := range doc {
			freqs[token]++
		}
		bm.docFreqs = append(bm.docFreqs, freqs)
		for token := range freqs {
			docCounts[token]++
		}
	}
	if bm.corpusSize > 0 {
		bm.avgDocLen = float64(totalLen) / float64(bm.corpusSize)
	}

	bm.calcIDF(docCounts)
	return bm
}

// calcIDF computes inverse document frequencies. Tokens occurring in more
// than half the corpus get a negative raw idf and are floored at
// epsilon times the average idf instead.
func (bm *BM25) calcIDF(docCounts map[string]int) {
	idfSum := 0.0
	var negative []string
	for token, freq := range docCounts {
		idf := math.Log(float64(bm.corpusSize)-float64(freq)+0.5) - math.Log(float64(freq)+0.5)
		bm.idf[token] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, token)
		}
	}
	if len(bm.idf) == 0 {
		return
	}

	floor := bm.epsilon * (idfSum / float64(len(bm.idf)))
	for _, token := range negative {
		bm.idf[token] = floor
	}
}

// Scores returns the BM25 score of every document against the query tokens
func (bm *BM25) Scores(query []string) []float64 {
	scores := make([]float64, bm.corpusSize)
	if bm.avgDocLen == 0 {
		return scores
	}

	for _, q := range query {
		idf := bm.idf[q]
		if idf == 0 {
			continue
		}
		for i, freqs := range bm.docFreqs {
			freq := float64(freqs[q])
			denom := freq + bm.k1*(1-bm.b+bm.b*float64(bm.docLens[i])/bm.avgDocLen)
			scores[i] += idf * (freq * (bm.k1 + 1) / denom)
		}
	}

	return scores
}

// TopN returns the indices of the n highest scoring documents in descending
// score order. Ties keep their corpus order.
func (bm *BM25) TopN(query []string, n int) []int {
	scores := bm.Scores(query)

	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	if n > len(indices) {
		n = len(indices)
	}
	return indices[:n]
}
