// Package aidetect rolls per-section AI-content classifications up into one
// document-level verdict, weighted by section word count.
package aidetect

import (
	"context"
	"sort"
	"strings"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/internal/types"
)

// Sections shorter than this many words carry too little signal and are
// excluded entirely, not scored as zero.
const minSectionWords = 10

// DefaultThreshold is the document-level AI probability cutoff.
const DefaultThreshold = 0.7

// AnalyzeSections classifies each qualifying section and computes the
// word-count-weighted document probability. A failed classifier call skips
// that section and records it; it never fails the document. No qualifying
// sections yields a zero-probability result with an empty section map.
func AnalyzeSections(ctx context.Context, classifier types.Classifier, sections map[string]string, threshold float64) models.DocumentAIResult {
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	result := models.DocumentAIResult{
		SectionResults: make(map[string]models.AISectionResult),
	}

	var weightedSum float64
	totalWords := 0

	for _, name := range sortedKeys(sections) {
		text := sections[name]
		wordCount := len(strings.Fields(text))
		if wordCount < minSectionWords {
			continue
		}

		human, ai, err := classifier.Classify(ctx, text)
		if err != nil {
			result.SkippedSections = append(result.SkippedSections, name)
			continue
		}

		result.SectionResults[name] = models.AISectionResult{
			AIProbability:    ai,
			HumanProbability: human,
			IsAIGenerated:    ai > threshold,
			Confidence:       maxProb(human, ai),
			WordCount:        wordCount,
		}

		weightedSum += ai * float64(wordCount)
		totalWords += wordCount
	}

	if totalWords > 0 {
		result.OverallAIProbability = weightedSum / float64(totalWords)
	}
	result.OverallHumanProbability = 1.0 - result.OverallAIProbability
	result.OverallIsAIGenerated = result.OverallAIProbability > threshold

	return result
}

func sortedKeys(sections map[string]string) []string {
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func maxProb(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
