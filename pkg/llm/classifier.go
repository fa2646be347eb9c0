package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Floor case: anything shorter than this is reported as human without
// invoking the model.
const minClassifiableChars = 10

// ClassifierConfig represents the configuration for the AI-text classifier.
type ClassifierConfig struct {
	URL     string // detector inference endpoint
	Timeout time.Duration
}

// Classifier calls a text-classification inference endpoint (the
// roberta-openai-detector response shape) and returns a (human, ai)
// probability pair summing to 1.
type Classifier struct {
	config ClassifierConfig
	client *http.Client
}

func NewClassifierWithConfig(config ClassifierConfig) *Classifier {
	if config.URL == "" {
		config.URL = "http://localhost:8000/classify"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Classifier{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns (human, ai) probabilities for the text.
func (c *Classifier) Classify(ctx context.Context, text string) (float64, float64, error) {
	if len(text) < minClassifiableChars {
		return 1.0, 0.0, nil
	}

	body, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var rows [][]labelScore
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, 0, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, 0, fmt.Errorf("classifier returned no scores")
	}

	human, ai := splitScores(rows[0])

	// Normalize so the pair always sums to 1.
	if sum := human + ai; sum > 0 {
		human /= sum
		ai /= sum
	}

	return human, ai, nil
}

func splitScores(scores []labelScore) (human, ai float64) {
	for _, s := range scores {
		switch strings.ToLower(s.Label) {
		case "real", "human", "label_0":
			human = s.Score
		case "fake", "ai", "label_1":
			ai = s.Score
		}
	}

	// Unrecognized label set: fall back to positional order (human first).
	if human == 0 && ai == 0 {
		human = scores[0].Score
		if len(scores) > 1 {
			ai = scores[1].Score
		}
	}

	return human, ai
}
