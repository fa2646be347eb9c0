package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
}

type ClassifierConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	TableName   string `yaml:"table_name"`
	VectorDim   int    `yaml:"vector_dim"`
	SearchLimit int    `yaml:"search_limit"`
}

type SearchConfig struct {
	SerpAPIKey string  `yaml:"serpapi_key"`
	ScopusKey  string  `yaml:"scopus_key"`
	COREKey    string  `yaml:"core_key"`
	RateLimit  float64 `yaml:"rate_limit"`
	NumPapers  int     `yaml:"num_papers"`
}

type ScorerConfig struct {
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	NGramThreshold    float64 `yaml:"ngram_threshold"`
	FuzzyThreshold    float64 `yaml:"fuzzy_threshold"`
	AIThreshold       float64 `yaml:"ai_threshold"`
	Concurrency       int     `yaml:"concurrency"`
	TopN              int     `yaml:"top_n"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Database   DatabaseConfig   `yaml:"database"`
	Search     SearchConfig     `yaml:"search"`
	Scorer     ScorerConfig     `yaml:"scorer"`
	Server     ServerConfig     `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/plagiax/config.yaml"),
			"/etc/plagiax/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "nomic-embed-text:latest"
	}

	if config.Classifier.URL == "" {
		config.Classifier.URL = "http://localhost:8000/classify"
	}
	if config.Classifier.TimeoutSeconds == 0 {
		config.Classifier.TimeoutSeconds = 30
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "reference_papers"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.SearchLimit == 0 {
		config.Database.SearchLimit = 5
	}

	if config.Search.RateLimit == 0 {
		config.Search.RateLimit = 2.0
	}
	if config.Search.NumPapers == 0 {
		config.Search.NumPapers = 5
	}

	if config.Scorer.SemanticThreshold == 0 {
		config.Scorer.SemanticThreshold = 0.85
	}
	if config.Scorer.NGramThreshold == 0 {
		config.Scorer.NGramThreshold = 0.40
	}
	if config.Scorer.FuzzyThreshold == 0 {
		config.Scorer.FuzzyThreshold = 0.70
	}
	if config.Scorer.AIThreshold == 0 {
		config.Scorer.AIThreshold = 0.7
	}
	if config.Scorer.Concurrency == 0 {
		config.Scorer.Concurrency = 4
	}
	if config.Scorer.TopN == 0 {
		config.Scorer.TopN = 5
	}

	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if detectorURL := os.Getenv("DETECTOR_URL"); detectorURL != "" {
		config.Classifier.URL = detectorURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if key := os.Getenv("SERPAPI_KEY"); key != "" {
		config.Search.SerpAPIKey = key
	}
	if key := os.Getenv("SCOPUS_API_KEY"); key != "" {
		config.Search.ScopusKey = key
	}
	if key := os.Getenv("CORE_API_KEY"); key != "" {
		config.Search.COREKey = key
	}
}
