package similarity

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/plagiax/plagiax/internal/types"
)

// Fusion weights. Every overall score is this exact linear combination,
// regardless of which call path produced it.
const (
	weightSemantic = 0.5
	weightNGram    = 0.3
	weightFuzzy    = 0.2

	shingleSize = 5
)

// Thresholds are the per-metric plagiarism cutoffs. A single metric crossing
// its threshold is sufficient for a positive verdict.
type Thresholds struct {
	Semantic float64
	NGram    float64
	Fuzzy    float64
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Semantic: 0.85,
		NGram:    0.40,
		Fuzzy:    0.70,
	}
}

// Metrics holds the three raw similarity signals and their fused score.
type Metrics struct {
	Semantic      float64
	NGram         float64
	Fuzzy         float64
	Overall       float64
	IsPlagiarized bool
}

// Engine computes similarity metrics between two texts. Embeddings come from
// the injected provider; the other two metrics are pure text arithmetic.
type Engine struct {
	embedder   types.Embedder
	thresholds Thresholds
}

func NewEngine(embedder types.Embedder, thresholds Thresholds) *Engine {
	def := DefaultThresholds()
	if thresholds.Semantic == 0 {
		thresholds.Semantic = def.Semantic
	}
	if thresholds.NGram == 0 {
		thresholds.NGram = def.NGram
	}
	if thresholds.Fuzzy == 0 {
		thresholds.Fuzzy = def.Fuzzy
	}

	return &Engine{
		embedder:   embedder,
		thresholds: thresholds,
	}
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Compare runs all three metrics over the two texts, embedding both through
// the provider.
func (e *Engine) Compare(ctx context.Context, textA, textB string) (Metrics, error) {
	return e.CompareWithEmbedding(ctx, textA, textB, nil)
}

// CompareWithEmbedding is Compare with an optional precomputed embedding for
// textA, so callers scoring one suspect against many references embed it once.
func (e *Engine) CompareWithEmbedding(ctx context.Context, textA, textB string, embeddingA []float32) (Metrics, error) {
	a := Preprocess(textA)
	b := Preprocess(textB)

	if embeddingA == nil {
		var err error
		embeddingA, err = e.embedder.EmbedText(ctx, a)
		if err != nil {
			return Metrics{}, fmt.Errorf("failed to embed text: %w", err)
		}
	}

	embeddingB, err := e.embedder.EmbedText(ctx, b)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to embed reference: %w", err)
	}

	semantic := clip01(CosineSimilarity(embeddingA, embeddingB))
	return e.fromSignals(semantic, a, b), nil
}

// CompareWithSemantic fuses a semantic score obtained elsewhere (the index's
// cosine similarity) with freshly computed n-gram and fuzzy metrics.
func (e *Engine) CompareWithSemantic(textA, textB string, semantic float64) Metrics {
	return e.fromSignals(clip01(semantic), Preprocess(textA), Preprocess(textB))
}

func (e *Engine) fromSignals(semantic float64, a, b string) Metrics {
	ngram := NGramSimilarity(a, b)
	fuzzy := FuzzySimilarity(a, b)

	return Metrics{
		Semantic: semantic,
		NGram:    ngram,
		Fuzzy:    fuzzy,
		Overall:  Fuse(semantic, ngram, fuzzy),
		IsPlagiarized: semantic >= e.thresholds.Semantic ||
			ngram >= e.thresholds.NGram ||
			fuzzy >= e.thresholds.Fuzzy,
	}
}

// Fuse combines the three signals into one overall score.
func Fuse(semantic, ngram, fuzzy float64) float64 {
	return weightSemantic*semantic + weightNGram*ngram + weightFuzzy*fuzzy
}

// Preprocess lowercases, collapses whitespace runs to single spaces and trims.
func Preprocess(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(strings.ToLower(text)), " "))
}

// NGramSimilarity is the Jaccard index over hashed 5-word shingle sets.
// Catches near-verbatim copying; hash collisions only affect set membership.
func NGramSimilarity(textA, textB string) float64 {
	setA := hashShingles(textA)
	setB := hashShingles(textB)

	intersection := 0
	for h := range setA {
		if _, ok := setB[h]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

func hashShingles(text string) map[string]struct{} {
	tokens := strings.Fields(text)
	hashes := make(map[string]struct{})

	for i := 0; i+shingleSize <= len(tokens); i++ {
		shingle := strings.Join(tokens[i:i+shingleSize], " ")
		sum := md5.Sum([]byte(shingle))
		hashes[hex.EncodeToString(sum[:])] = struct{}{}
	}

	return hashes
}

// FuzzySimilarity is the token-sort ratio: tokens of each text are sorted
// alphabetically and the sorted sequences compared by normalized edit
// similarity. Robust to reordered sentences.
func FuzzySimilarity(textA, textB string) float64 {
	a := sortedTokens(textA)
	b := sortedTokens(textB)

	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}

	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

func sortedTokens(text string) []rune {
	tokens := strings.Fields(text)
	sort.Strings(tokens)
	return []rune(strings.Join(tokens, " "))
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// CosineSimilarity between two vectors, 0 when dimensions mismatch or either
// vector has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
