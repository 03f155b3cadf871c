package graph

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/james-bowman/nlp"
	"github.com/james-bowman/nlp/measures/pairwise"
	"gonum.org/v1/gonum/mat"
)

type SimilarityOptions struct {
	TopK        int
	MinSim      float64
	MinDF       int
	MaxFeatures int
}

func DefaultSimilarityOptions() SimilarityOptions {
	return SimilarityOptions{TopK: 5, MinSim: 0.25, MinDF: 2, MaxFeatures: 20000}
}

type SimilarityEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Edge   string  `json:"edge"`
}

func (SimilarityEdge) CSVHeader() []string {
	return []string{"source", "target", "weight", "edge"}
}

func (e SimilarityEdge) ToCSV() []string {
	return []string{e.Source, e.Target, strconv.FormatFloat(e.Weight, 'f', -1, 64), e.Edge}
}

// SimilarityEdges links every video to at most TopK of its most similar
// peers (cosine over TF-IDF of title and description) whose similarity is at
// least MinSim. The result is de-duplicated on (source, target).
func SimilarityEdges(videos []Video, opts SimilarityOptions) []SimilarityEdge {
	if len(videos) < 2 || opts.TopK <= 0 {
		return nil
	}
	if opts.MinDF <= 0 {
		opts.MinDF = 1
	}
	docs := make([]string, len(videos))
	for i, v := range videos {
		docs[i] = v.Title + " " + v.Description
	}
	tok := termTokeniser{n: 2}
	vocab := vocabulary(docs, tok, opts.MinDF, opts.MaxFeatures)
	if len(vocab) == 0 {
		return nil
	}
	vecs, err := tfidfVectors(docs, vocab, tok)
	if err != nil {
		return nil
	}

	type scored struct {
		j int
		s float64
	}
	seen := map[[2]string]struct{}{}
	var out []SimilarityEdge
	for i := range vecs {
		ranked := make([]scored, 0, len(vecs)-1)
		for j := range vecs {
			if j == i {
				continue
			}
			ranked = append(ranked, scored{j: j, s: similarity(vecs[i], vecs[j])})
		}
		sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].s > ranked[b].s })
		kept := 0
		for _, r := range ranked {
			if r.s < opts.MinSim {
				break
			}
			key := [2]string{videos[i].VideoID, videos[r.j].VideoID}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, SimilarityEdge{Source: key[0], Target: key[1], Weight: r.s, Edge: "similar"})
			}
			kept++
			if kept >= opts.TopK {
				break
			}
		}
	}
	return out
}

// termTokeniser yields lower-cased word runs followed by their n-grams of up
// to n words.
type termTokeniser struct{ n int }

var _ nlp.Tokeniser = termTokeniser{}

func (t termTokeniser) ForEachIn(text string, f func(token string)) {
	for _, term := range t.Tokenise(text) {
		f(term)
	}
}

func (t termTokeniser) Tokenise(text string) []string {
	return ngrams(tokenize(text), t.n)
}

// tokenize lower-cases s and returns runs of letters, digits and underscores
// that are at least two runes long.
func tokenize(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return out
}

func ngrams(tokens []string, n int) []string {
	out := append([]string(nil), tokens...)
	for size := 2; size <= n; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+size], " "))
		}
	}
	return out
}

// vocabulary keeps the terms found in at least minDF documents, capped to the
// maxFeatures most frequent ones, indexed in lexical order.
func vocabulary(docs []string, tok nlp.Tokeniser, minDF, maxFeatures int) map[string]int {
	df := map[string]int{}
	tf := map[string]int{}
	for _, d := range docs {
		seen := map[string]struct{}{}
		tok.ForEachIn(d, func(t string) {
			tf[t]++
			if _, ok := seen[t]; ok {
				return
			}
			seen[t] = struct{}{}
			df[t]++
		})
	}
	terms := make([]string, 0, len(df))
	for t, n := range df {
		if n >= minDF {
			terms = append(terms, t)
		}
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(a, b int) bool {
			if tf[terms[a]] != tf[terms[b]] {
				return tf[terms[a]] > tf[terms[b]]
			}
			return terms[a] < terms[b]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

// tfidfVectors weighs raw term counts by the smoothed idf ln((1+n)/(1+df))+1
// and returns one vector per document, nil for documents with no known term.
func tfidfVectors(docs []string, vocab map[string]int, tok nlp.Tokeniser) ([]*mat.VecDense, error) {
	vec := nlp.NewCountVectoriser()
	vec.Vocabulary = vocab
	vec.Tokeniser = tok
	counts, err := vec.Transform(docs...)
	if err != nil {
		return nil, err
	}
	weighted, err := nlp.NewTfidfTransformer().Fit(counts).Transform(counts)
	if err != nil {
		return nil, err
	}
	// The transformer weighs by ln((1+n)/(1+df)); adding the counts back is the +1.
	var m mat.Dense
	m.Add(weighted, counts)

	terms, n := m.Dims()
	out := make([]*mat.VecDense, n)
	for j := 0; j < n; j++ {
		v := mat.NewVecDense(terms, mat.Col(nil, j, &m))
		if mat.Norm(v, 2) > 0 {
			out[j] = v
		}
	}
	return out, nil
}

func similarity(a, b *mat.VecDense) float64 {
	if a == nil || b == nil {
		return 0
	}
	return pairwise.CosineSimilarity(a, b)
}
