package scorer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/internal/types"
	"github.com/plagiax/plagiax/pkg/index"
	"github.com/plagiax/plagiax/pkg/similarity"
)

const indexDocPrefix = "doc_"

// Config controls scoring behaviour. Zero values fall back to defaults.
type Config struct {
	Thresholds  similarity.Thresholds
	Concurrency int // max parallel reference comparisons
	TopN        int // candidates pulled from the index in index mode
}

// Scorer runs the similarity engine over a candidate list and derives ranked,
// thresholded plagiarism verdicts plus one document-level score.
type Scorer struct {
	embedder    types.Embedder
	engine      *similarity.Engine
	concurrency int
	topN        int
}

func NewWithConfig(embedder types.Embedder, config Config) *Scorer {
	if config.Concurrency == 0 {
		config.Concurrency = 4
	}
	if config.TopN == 0 {
		config.TopN = 5
	}

	return &Scorer{
		embedder:    embedder,
		engine:      similarity.NewEngine(embedder, config.Thresholds),
		concurrency: config.Concurrency,
		topN:        config.TopN,
	}
}

// SkippedReference records a reference whose comparison failed and was
// excluded from the result set.
type SkippedReference struct {
	ReferenceID string `json:"reference_id"`
	Reason      string `json:"reason"`
}

// Report is the full scoring outcome for one suspect document.
type Report struct {
	Results      []models.SimilarityResult
	Skipped      []SkippedReference
	OverallScore float64
	BestMatch    *models.SimilarityResult
}

// Score compares the suspect text against every reference and returns results
// sorted by overall score descending, ties keeping original reference order.
// Sources, when given, attach provenance to results by position. With useIndex
// the references are loaded into an in-memory embedding index first and only
// the top candidates get the full comparison.
//
// A failed provider call skips that one reference; it never aborts the batch.
func (s *Scorer) Score(ctx context.Context, suspect string, references []string, sources []models.PaperInfo, useIndex bool) (*Report, error) {
	if len(references) == 0 {
		return &Report{}, nil
	}

	if useIndex {
		return s.scoreViaIndex(ctx, suspect, references, sources)
	}
	return s.scoreDirect(ctx, suspect, references, sources)
}

func (s *Scorer) scoreDirect(ctx context.Context, suspect string, references []string, sources []models.PaperInfo) (*Report, error) {
	// Embed the suspect once up front. If that fails, each comparison embeds
	// it independently so a transient failure only costs single references.
	suspectEmbedding, err := s.embedder.EmbedText(ctx, similarity.Preprocess(suspect))
	if err != nil {
		suspectEmbedding = nil
	}

	results := make([]*models.SimilarityResult, len(references))
	failures := make([]error, len(references))

	g := &errgroup.Group{}
	g.SetLimit(s.concurrency)

	for i, ref := range references {
		i, ref := i, ref
		g.Go(func() error {
			metrics, err := s.engine.CompareWithEmbedding(ctx, suspect, ref, suspectEmbedding)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = s.assemble(strconv.Itoa(i), ref, metrics, positionSource(sources, i))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i := range references {
		if failures[i] != nil {
			report.Skipped = append(report.Skipped, SkippedReference{
				ReferenceID: strconv.Itoa(i),
				Reason:      failures[i].Error(),
			})
			continue
		}
		report.Results = append(report.Results, *results[i])
	}

	finalize(report)
	return report, nil
}

func (s *Scorer) scoreViaIndex(ctx context.Context, suspect string, references []string, sources []models.PaperInfo) (*Report, error) {
	ix := index.New(s.embedder)
	report := &Report{}

	for i, ref := range references {
		if err := ix.Insert(ctx, fmt.Sprintf("%s%d", indexDocPrefix, i), ref); err != nil {
			report.Skipped = append(report.Skipped, SkippedReference{
				ReferenceID: strconv.Itoa(i),
				Reason:      err.Error(),
			})
		}
	}

	if ix.Len() == 0 {
		finalize(report)
		return report, nil
	}

	matches, err := ix.Query(ctx, suspect, s.topN)
	if err != nil {
		return nil, fmt.Errorf("failed to query similarity index: %w", err)
	}

	for _, match := range matches {
		refID := match.DocID
		var source *models.PaperInfo
		if pos, ok := indexPosition(match.DocID); ok {
			refID = strconv.Itoa(pos)
			source = positionSource(sources, pos)
		} else if sources != nil {
			source = unknownSource()
		}

		// The index already paid for the cosine similarity; only the two
		// lexical metrics are recomputed.
		metrics := s.engine.CompareWithSemantic(suspect, match.Text, match.Similarity)
		report.Results = append(report.Results, *s.assemble(refID, match.Text, metrics, source))
	}

	finalize(report)
	return report, nil
}

func (s *Scorer) assemble(refID, refText string, m similarity.Metrics, source *models.PaperInfo) *models.SimilarityResult {
	return &models.SimilarityResult{
		ReferenceID:        refID,
		IsPlagiarized:      m.IsPlagiarized,
		OverallScore:       m.Overall,
		SemanticSimilarity: m.Semantic,
		NGramSimilarity:    m.NGram,
		FuzzySimilarity:    m.Fuzzy,
		ReferenceText:      refText,
		Paper:              source,
	}
}

// finalize sorts results and derives the document-level score and best match.
// Sorting happens here, after all comparisons are collected, so completion
// order of the parallel fan-out never leaks into the output.
func finalize(report *Report) {
	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].OverallScore > report.Results[j].OverallScore
	})

	report.OverallScore = overallScore(report.Results)
	if len(report.Results) > 0 {
		report.BestMatch = &report.Results[0]
	}
}

// overallScore is the arithmetic mean of the top 3 overall scores (or all of
// them when fewer exist), zero without results. Intentionally top-3 rather
// than max-of-all: matches the established product behaviour.
func overallScore(results []models.SimilarityResult) float64 {
	if len(results) == 0 {
		return 0
	}

	n := len(results)
	if n > 3 {
		n = 3
	}

	var sum float64
	for _, r := range results[:n] {
		sum += r.OverallScore
	}

	return sum / float64(n)
}

func positionSource(sources []models.PaperInfo, i int) *models.PaperInfo {
	if sources == nil {
		return nil
	}
	if i < 0 || i >= len(sources) {
		return unknownSource()
	}
	return &sources[i]
}

func unknownSource() *models.PaperInfo {
	return &models.PaperInfo{Title: "Unknown", Source: "Unknown"}
}

func indexPosition(docID string) (int, bool) {
	raw, found := strings.CutPrefix(docID, indexDocPrefix)
	if !found {
		return 0, false
	}
	pos, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pos, true
}
