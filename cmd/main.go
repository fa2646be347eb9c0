package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/pkg/checker"
	cfgPkg "github.com/plagiax/plagiax/pkg/config"
	"github.com/plagiax/plagiax/pkg/extract"
	"github.com/plagiax/plagiax/pkg/llm"
	"github.com/plagiax/plagiax/pkg/search"
	"github.com/plagiax/plagiax/pkg/similarity"
	"github.com/plagiax/plagiax/pkg/store"
	"github.com/plagiax/plagiax/server"
)

type Flags struct {
	ConfigPath string
	Serve      bool
	PDFURL     string
	Online     bool
	NumPapers  int
	LoadDir    string
	References string
}

func main() {
	flags := parseFlags()

	cfg, err := cfgPkg.LoadConfig(flags.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config error: %v", e)
		}
		os.Exit(1)
	}

	if err := run(flags, cfg); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Flags {
	var flags Flags

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file")
	flag.BoolVar(&flags.Serve, "serve", false, "Run the HTTP API server")
	flag.StringVar(&flags.PDFURL, "pdf", "", "URL of a PDF to check")
	flag.BoolVar(&flags.Online, "online", false, "Search online sources for reference papers")
	flag.IntVar(&flags.NumPapers, "num-papers", 0, "Number of reference papers to compare against")
	flag.StringVar(&flags.LoadDir, "load", "", "Directory of PDF/text files to load into the reference corpus")
	flag.StringVar(&flags.References, "refs", "", "Comma-separated text files to compare against instead of corpus or search")
	flag.Parse()

	return flags
}

func run(flags Flags, cfg *cfgPkg.Config) error {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   cfg.LLM.EmbeddingModel,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	var corpus *store.CorpusStore
	if cfg.Database.URL != "" {
		corpus, err = store.NewWithConfig(store.CorpusStoreConfig{
			ConnString:  cfg.Database.URL,
			TableName:   cfg.Database.TableName,
			VectorDim:   cfg.Database.VectorDim,
			SearchLimit: cfg.Database.SearchLimit,
		}, embedder)
		if err != nil {
			return fmt.Errorf("failed to initialize corpus store: %v", err)
		}
		defer corpus.Close()
	}

	if flags.LoadDir != "" {
		if corpus == nil {
			return fmt.Errorf("corpus loading requires a database URL")
		}
		return loadCorpus(flags.LoadDir, corpus)
	}

	classifier := llm.NewClassifierWithConfig(llm.ClassifierConfig{
		URL:     cfg.Classifier.URL,
		Timeout: time.Duration(cfg.Classifier.TimeoutSeconds) * time.Second,
	})

	deps := checker.Deps{
		Fetcher:    extract.NewFetcherWithConfig(extract.FetcherConfig{}),
		Extractor:  extract.NewPDFExtractor(),
		Embedder:   embedder,
		Classifier: classifier,
	}
	if corpus != nil {
		deps.Store = corpus
	}
	if cfg.Search.SerpAPIKey != "" || cfg.Search.ScopusKey != "" || cfg.Search.COREKey != "" {
		deps.Searcher = search.NewWithConfig(search.Config{
			SerpAPIKey: cfg.Search.SerpAPIKey,
			ScopusKey:  cfg.Search.ScopusKey,
			COREKey:    cfg.Search.COREKey,
			RateLimit:  cfg.Search.RateLimit,
		})
	}

	c := checker.NewWithConfig(deps, checker.Config{
		Thresholds: similarity.Thresholds{
			Semantic: cfg.Scorer.SemanticThreshold,
			NGram:    cfg.Scorer.NGramThreshold,
			Fuzzy:    cfg.Scorer.FuzzyThreshold,
		},
		AIThreshold: cfg.Scorer.AIThreshold,
		NumPapers:   cfg.Search.NumPapers,
		Concurrency: cfg.Scorer.Concurrency,
		TopN:        cfg.Scorer.TopN,
	})

	if flags.Serve {
		s := server.NewWithConfig(server.Config{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		}, c)
		return s.Run()
	}

	if flags.PDFURL != "" {
		return checkDocument(c, flags)
	}

	flag.Usage()
	return fmt.Errorf("nothing to do: pass -serve, -pdf or -load")
}

func checkDocument(c *checker.Checker, flags Flags) error {
	var refTexts []string
	if flags.References != "" {
		for _, path := range strings.Split(flags.References, ",") {
			raw, err := os.ReadFile(strings.TrimSpace(path))
			if err != nil {
				return fmt.Errorf("failed to read reference file %s: %v", path, err)
			}
			refTexts = append(refTexts, string(raw))
		}
	}

	spinner := getSpinner("Analyzing document...")

	resp, err := c.Check(context.Background(), models.CheckRequest{
		PDFURL:             flags.PDFURL,
		CheckOnlineSources: flags.Online,
		NumPapers:          flags.NumPapers,
		ReferenceTexts:     refTexts,
	})
	spinner.Finish()
	fmt.Print("\r")

	if err != nil {
		return err
	}

	printReport(resp)
	return nil
}

func printReport(resp *models.CheckResponse) {
	color.Cyan("\nPlagiarism Report")
	fmt.Printf("Words analyzed: %d, sections found: %d\n", resp.TotalWordCount, len(resp.Sections))

	if len(resp.PlagiarismResults) == 0 {
		color.Green("No reference papers to compare against.")
	} else {
		fmt.Printf("Overall plagiarism score: %.2f\n", resp.PlagiarismOverallScore)
		for _, r := range resp.PlagiarismResults {
			line := fmt.Sprintf("  [%s] overall %.2f (semantic %.2f, ngram %.2f, fuzzy %.2f)",
				r.ReferenceID, r.OverallScore, r.SemanticSimilarity, r.NGramSimilarity, r.FuzzySimilarity)
			if r.Paper != nil {
				line += fmt.Sprintf(" %s (%s)", r.Paper.Title, r.Paper.Source)
			}
			if r.IsPlagiarized {
				color.Red("%s", line)
			} else {
				fmt.Println(line)
			}
		}
	}

	color.Cyan("\nAI Detection")
	fmt.Printf("Overall AI probability: %.2f\n", resp.AIDetection.OverallAIProbability)
	if resp.AIDetection.OverallIsAIGenerated {
		color.Red("Document is likely AI generated")
	} else {
		color.Green("Document appears human written")
	}
	for name, section := range resp.AIDetection.SectionResults {
		fmt.Printf("  %s: ai %.2f (%d words)\n", name, section.AIProbability, section.WordCount)
	}
}

// loadCorpus walks a directory of .pdf and .txt files and stores each as a
// reference paper. Stored one at a time so a single bad file does not lose
// the batch.
func loadCorpus(dir string, corpus *store.CorpusStore) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".pdf" || ext == ".txt" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %v", dir, err)
	}

	if len(paths) == 0 {
		return fmt.Errorf("no PDF or text files found in %s", dir)
	}

	color.Blue("Loading %d files into the reference corpus", len(paths))
	bar := getProgressBar(len(paths), "Loading corpus...")

	extractor := extract.NewPDFExtractor()
	loaded := 0
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			color.Red("skipping %s: %v", path, err)
			bar.Add(1)
			continue
		}

		var content string
		if strings.ToLower(filepath.Ext(path)) == ".pdf" {
			content, err = extractor.ExtractCleanText(raw)
			if err != nil {
				color.Red("skipping %s: %v", path, err)
				bar.Add(1)
				continue
			}
		} else {
			content = extract.CleanText(string(raw))
		}

		paper := models.ReferencePaper{
			Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Source:  "local",
			Link:    path,
			Content: content,
		}

		if err := corpus.Store(context.Background(), []models.ReferencePaper{paper}); err != nil {
			color.Red("failed to store %s: %v", path, err)
			bar.Add(1)
			continue
		}

		loaded++
		bar.Add(1)
	}
	bar.Finish()

	color.Green("\n✓ Loaded %d of %d files\n", loaded, len(paths))
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
