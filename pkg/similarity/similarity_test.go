package similarity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plagiax/plagiax/pkg/similarity"
)

// stubEmbedder maps known texts to fixed vectors so tests stay deterministic
// without a running model server.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func TestNGramSelfSimilarity(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	assert.Equal(t, 1.0, similarity.NGramSimilarity(text, text))
}

func TestNGramSymmetry(t *testing.T) {
	a := "plagiarism detection compares documents against reference texts"
	b := "reference texts are compared against suspect documents for detection"
	assert.Equal(t, similarity.NGramSimilarity(a, b), similarity.NGramSimilarity(b, a))
}

func TestNGramEmptyUnion(t *testing.T) {
	// Fewer than five tokens yields no shingles, so the union is empty.
	assert.Equal(t, 0.0, similarity.NGramSimilarity("too short", "also short"))
}

func TestNGramDisjointTexts(t *testing.T) {
	a := "alpha beta gamma delta epsilon zeta"
	b := "one two three four five six seven"
	assert.Equal(t, 0.0, similarity.NGramSimilarity(a, b))
}

func TestFuzzySelfSimilarity(t *testing.T) {
	text := "completely reordered words still count"
	assert.Equal(t, 1.0, similarity.FuzzySimilarity(text, text))
}

func TestFuzzyReorderedTokens(t *testing.T) {
	// Token-sort makes pure reordering a perfect match.
	sim := similarity.FuzzySimilarity(
		"the cat sat on the mat",
		"on the mat the cat sat",
	)
	assert.Equal(t, 1.0, sim)
}

func TestFuzzyDissimilarTexts(t *testing.T) {
	sim := similarity.FuzzySimilarity("aaaa bbbb cccc", "xxxx yyyy zzzz")
	assert.Less(t, sim, 0.5)
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello   World  ", "hello world"},
		{"MIXED\tCase\nText", "mixed case text"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, similarity.Preprocess(tt.in))
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity.CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, similarity.CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, similarity.CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, similarity.CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestCompareFusionWeights(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"identical text repeated enough times for shingles here": {0.5, 0.5, 0},
	}}
	engine := similarity.NewEngine(emb, similarity.Thresholds{})

	text := "identical text repeated enough times for shingles here"
	m, err := engine.Compare(context.Background(), text, text)
	require.NoError(t, err)

	assert.InDelta(t, 0.5*m.Semantic+0.3*m.NGram+0.2*m.Fuzzy, m.Overall, 1e-9)
	assert.InDelta(t, 1.0, m.Semantic, 1e-9)
	assert.Equal(t, 1.0, m.NGram)
	assert.Equal(t, 1.0, m.Fuzzy)
	assert.True(t, m.IsPlagiarized)
}

func TestCompareWithSemanticUsesSameFusion(t *testing.T) {
	engine := similarity.NewEngine(&stubEmbedder{}, similarity.Thresholds{})

	m := engine.CompareWithSemantic(
		"the quick brown fox jumps over the lazy dog",
		"an entirely different set of words goes right here",
		0.9,
	)

	assert.InDelta(t, 0.5*0.9+0.3*m.NGram+0.2*m.Fuzzy, m.Overall, 1e-9)
	assert.True(t, m.IsPlagiarized) // semantic 0.9 >= 0.85
}

func TestSemanticClippedToUnitRange(t *testing.T) {
	engine := similarity.NewEngine(&stubEmbedder{}, similarity.Thresholds{})

	m := engine.CompareWithSemantic("a b c d e f", "a b c d e f", -0.4)
	assert.Equal(t, 0.0, m.Semantic)

	m = engine.CompareWithSemantic("a b c d e f", "a b c d e f", 1.7)
	assert.Equal(t, 1.0, m.Semantic)
}

func TestVerdictORSemantics(t *testing.T) {
	engine := similarity.NewEngine(&stubEmbedder{}, similarity.Thresholds{
		Semantic: 0.85,
		NGram:    0.40,
		Fuzzy:    0.70,
	})

	// Identical token sets trip the fuzzy threshold alone even with a low
	// semantic score.
	m := engine.CompareWithSemantic("one two three four", "four three two one", 0.1)
	assert.True(t, m.IsPlagiarized)

	m = engine.CompareWithSemantic("alpha beta gamma", "delta epsilon zeta", 0.1)
	assert.False(t, m.IsPlagiarized)
}

func TestNewEngineDefaultThresholds(t *testing.T) {
	engine := similarity.NewEngine(&stubEmbedder{}, similarity.Thresholds{})
	assert.Equal(t, similarity.DefaultThresholds(), engine.Thresholds())

	custom := similarity.NewEngine(&stubEmbedder{}, similarity.Thresholds{Semantic: 0.6})
	assert.Equal(t, 0.6, custom.Thresholds().Semantic)
	assert.Equal(t, 0.40, custom.Thresholds().NGram)
}
