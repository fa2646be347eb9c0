// Package checker wires document retrieval, segmentation, plagiarism scoring
// and AI detection into one pipeline behind a single Check call.
package checker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/internal/types"
	"github.com/plagiax/plagiax/pkg/aidetect"
	"github.com/plagiax/plagiax/pkg/scorer"
	"github.com/plagiax/plagiax/pkg/segment"
	"github.com/plagiax/plagiax/pkg/similarity"
)

// Config controls pipeline behaviour. Zero values fall back to defaults.
type Config struct {
	Thresholds  similarity.Thresholds
	AIThreshold float64
	NumPapers   int
	Concurrency int
	TopN        int
	UseIndex    bool
}

// Deps are the external capabilities the pipeline runs on. Searcher and Store
// are optional; without them only caller-provided reference texts are scored.
type Deps struct {
	Fetcher    types.Fetcher
	Extractor  types.Extractor
	Embedder   types.Embedder
	Classifier types.Classifier
	Searcher   types.Searcher
	Store      types.ReferenceStore
}

type Checker struct {
	deps   Deps
	config Config
}

func NewWithConfig(deps Deps, config Config) *Checker {
	if config.AIThreshold == 0 {
		config.AIThreshold = aidetect.DefaultThreshold
	}
	if config.NumPapers == 0 {
		config.NumPapers = 5
	}
	if config.Thresholds == (similarity.Thresholds{}) {
		config.Thresholds = similarity.DefaultThresholds()
	}

	return &Checker{
		deps:   deps,
		config: config,
	}
}

// Check runs the full pipeline for one request: download, extract, segment,
// gather references, score plagiarism and classify sections for AI content.
func (c *Checker) Check(ctx context.Context, req models.CheckRequest) (*models.CheckResponse, error) {
	raw, err := c.deps.Fetcher.FetchRawBytes(ctx, req.PDFURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	text, err := c.deps.Extractor.ExtractCleanText(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	return c.CheckText(ctx, text, req)
}

// CheckText is Check without the fetch and extract steps, for callers that
// already hold the document text.
func (c *Checker) CheckText(ctx context.Context, text string, req models.CheckRequest) (*models.CheckResponse, error) {
	spans := segment.Segment(text)
	sections := segment.SpanMap(spans)

	references, sources, err := c.gatherReferences(ctx, text, req)
	if err != nil {
		return nil, err
	}

	report, err := c.score(ctx, text, references, sources, req.Thresholds)
	if err != nil {
		return nil, err
	}
	for _, skipped := range report.Skipped {
		log.Printf("reference %s skipped: %s", skipped.ReferenceID, skipped.Reason)
	}

	aiResult := aidetect.AnalyzeSections(ctx, c.deps.Classifier, sections, c.config.AIThreshold)

	return &models.CheckResponse{
		Success:                true,
		Message:                "Analysis completed successfully",
		Sections:               sections,
		PlagiarismResults:      report.Results,
		AIDetection:            aiResult,
		TotalWordCount:         len(strings.Fields(text)),
		PlagiarismOverallScore: report.OverallScore,
		HighestMatch:           report.BestMatch,
		Timestamp:              time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// gatherReferences resolves the comparison corpus for one request. Explicit
// texts win; otherwise online search when asked for, then the stored corpus.
// No references at all is a valid outcome, not an error.
func (c *Checker) gatherReferences(ctx context.Context, text string, req models.CheckRequest) ([]string, []models.PaperInfo, error) {
	if len(req.ReferenceTexts) > 0 {
		return req.ReferenceTexts, nil, nil
	}

	numPapers := req.NumPapers
	if numPapers <= 0 {
		numPapers = c.config.NumPapers
	}

	if req.CheckOnlineSources && c.deps.Searcher != nil {
		contents, sources, err := c.deps.Searcher.SearchAndFetch(ctx, text, numPapers)
		if err != nil {
			return nil, nil, fmt.Errorf("online source search failed: %w", err)
		}
		return contents, sources, nil
	}

	if c.deps.Store != nil {
		embedding, err := c.deps.Embedder.EmbedText(ctx, similarity.Preprocess(text))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to embed document for corpus lookup: %w", err)
		}

		papers, err := c.deps.Store.Query(ctx, embedding, numPapers)
		if err != nil {
			return nil, nil, fmt.Errorf("corpus lookup failed: %w", err)
		}

		contents := make([]string, 0, len(papers))
		sources := make([]models.PaperInfo, 0, len(papers))
		for _, p := range papers {
			contents = append(contents, p.Content)
			sources = append(sources, models.PaperInfo{
				Title:  p.Title,
				Link:   p.Link,
				Source: p.Source,
				Author: p.Author,
			})
		}
		return contents, sources, nil
	}

	return nil, nil, nil
}

func (c *Checker) score(ctx context.Context, text string, references []string, sources []models.PaperInfo, overrides map[string]float64) (*scorer.Report, error) {
	thresholds := c.config.Thresholds
	if v, ok := overrides["semantic"]; ok {
		thresholds.Semantic = v
	}
	if v, ok := overrides["ngram"]; ok {
		thresholds.NGram = v
	}
	if v, ok := overrides["fuzzy"]; ok {
		thresholds.Fuzzy = v
	}

	s := scorer.NewWithConfig(c.deps.Embedder, scorer.Config{
		Thresholds:  thresholds,
		Concurrency: c.config.Concurrency,
		TopN:        c.config.TopN,
	})

	return s.Score(ctx, text, references, sources, c.config.UseIndex)
}
