package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL is required",
		})
	} else if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	if c.Classifier.URL != "" {
		if _, err := url.Parse(c.Classifier.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "classifier.url",
				Message: "invalid classifier URL",
			})
		}
	}

	if c.Classifier.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "classifier.timeout_seconds",
			Message: "timeout_seconds must be non-negative",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Search.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "search.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Search.NumPapers < 1 {
		errors = append(errors, ValidationError{
			Field:   "search.num_papers",
			Message: "num_papers must be positive",
		})
	}

	for _, t := range []struct {
		field string
		value float64
	}{
		{"scorer.semantic_threshold", c.Scorer.SemanticThreshold},
		{"scorer.ngram_threshold", c.Scorer.NGramThreshold},
		{"scorer.fuzzy_threshold", c.Scorer.FuzzyThreshold},
		{"scorer.ai_threshold", c.Scorer.AIThreshold},
	} {
		if t.value < 0 || t.value > 1 {
			errors = append(errors, ValidationError{
				Field:   t.field,
				Message: "threshold must be between 0 and 1",
			})
		}
	}

	if c.Scorer.Concurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "scorer.concurrency",
			Message: "concurrency must be positive",
		})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	return errors
}
