// Package search discovers candidate reference papers for a suspect text
// through scholarly search services and fetches their textual content.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/pkg/extract"
)

// Papers whose retrieved content is shorter than this are dropped: a bare
// title or truncated snippet produces meaningless similarity scores.
const minContentLength = 100

const searchKeywords = 7

// Config represents the configuration for the search client. Keys left empty
// disable the corresponding provider.
type Config struct {
	SerpAPIKey string
	ScopusKey  string
	COREKey    string

	SerpAPIBaseURL string
	ScopusBaseURL  string
	COREBaseURL    string

	RateLimit float64 // content fetches per second
	Timeout   time.Duration
	UserAgent string
}

// Client queries scholarly search services and fetches paper content. Content
// fetches are rate limited so a batch of candidates does not hammer
// publisher sites.
type Client struct {
	config    Config
	client    *http.Client
	limiter   *rate.Limiter
	extractor *extract.PDFExtractor
}

func NewWithConfig(config Config) *Client {
	if config.SerpAPIBaseURL == "" {
		config.SerpAPIBaseURL = "https://serpapi.com/search"
	}
	if config.ScopusBaseURL == "" {
		config.ScopusBaseURL = "https://api.elsevier.com/content/search/scopus"
	}
	if config.COREBaseURL == "" {
		config.COREBaseURL = "https://api.core.ac.uk/v3/search/works"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		extractor: extract.NewPDFExtractor(),
	}
}

// Paper is one search hit before its content is fetched.
type Paper struct {
	models.PaperInfo
	Abstract string
	Snippet  string
}

// SearchAndFetch extracts keywords from the suspect text, queries every
// configured provider and fetches content for each hit. The returned content
// and provenance slices correspond positionally. Zero candidates is not an
// error.
func (c *Client) SearchAndFetch(ctx context.Context, text string, numPapers int) ([]string, []models.PaperInfo, error) {
	if numPapers <= 0 {
		numPapers = 5
	}

	query := strings.Join(ExtractKeywords(text, searchKeywords), " ")
	if query == "" {
		return nil, nil, nil
	}

	papers := c.Search(ctx, query, numPapers)

	var contents []string
	var sources []models.PaperInfo
	for _, paper := range papers {
		content := c.FetchPaperContent(ctx, paper.Link)
		if content == "" {
			content = paper.Abstract
		}
		if content == "" {
			content = paper.Snippet
		}
		if len(content) < minContentLength {
			continue
		}

		contents = append(contents, content)
		sources = append(sources, paper.PaperInfo)
	}

	return contents, sources, nil
}

// Search queries all configured providers. A failing provider only logs; the
// remaining hits still count.
func (c *Client) Search(ctx context.Context, query string, numPapers int) []Paper {
	var papers []Paper

	if c.config.SerpAPIKey != "" {
		hits, err := c.SearchScholar(ctx, query, numPapers)
		if err != nil {
			log.Printf("Google Scholar search failed: %v", err)
		}
		papers = append(papers, hits...)
	}

	if c.config.ScopusKey != "" {
		hits, err := c.SearchScopus(ctx, query, numPapers)
		if err != nil {
			log.Printf("Scopus search failed: %v", err)
		}
		papers = append(papers, hits...)
	}

	if c.config.COREKey != "" {
		hits, err := c.SearchCORE(ctx, query, numPapers)
		if err != nil {
			log.Printf("CORE search failed: %v", err)
		}
		papers = append(papers, hits...)
	}

	return papers
}

type scholarResponse struct {
	OrganicResults []struct {
		Title           string `json:"title"`
		Link            string `json:"link"`
		Snippet         string `json:"snippet"`
		PublicationInfo struct {
			Summary string `json:"summary"`
		} `json:"publication_info"`
	} `json:"organic_results"`
}

// SearchScholar queries Google Scholar through SerpAPI.
func (c *Client) SearchScholar(ctx context.Context, query string, numPapers int) ([]Paper, error) {
	params := url.Values{}
	params.Set("engine", "google_scholar")
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", numPapers))
	params.Set("api_key", c.config.SerpAPIKey)

	var decoded scholarResponse
	if err := c.getJSON(ctx, c.config.SerpAPIBaseURL+"?"+params.Encode(), nil, &decoded); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(decoded.OrganicResults))
	for i, hit := range decoded.OrganicResults {
		if i >= numPapers {
			break
		}
		papers = append(papers, Paper{
			PaperInfo: models.PaperInfo{
				Title:  orUnknown(hit.Title),
				Link:   hit.Link,
				Source: "Google Scholar",
				Author: hit.PublicationInfo.Summary,
			},
			Snippet: hit.Snippet,
		})
	}

	return papers, nil
}

type scopusResponse struct {
	SearchResults struct {
		Entry []struct {
			Title       string `json:"dc:title"`
			Description string `json:"dc:description"`
			Creator     string `json:"dc:creator"`
			URL         string `json:"prism:url"`
		} `json:"entry"`
	} `json:"search-results"`
}

// SearchScopus queries the Scopus search API.
func (c *Client) SearchScopus(ctx context.Context, query string, numPapers int) ([]Paper, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("count", fmt.Sprintf("%d", numPapers))
	params.Set("view", "COMPLETE")

	headers := map[string]string{
		"X-ELS-APIKey": c.config.ScopusKey,
		"Accept":       "application/json",
	}

	var decoded scopusResponse
	if err := c.getJSON(ctx, c.config.ScopusBaseURL+"?"+params.Encode(), headers, &decoded); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(decoded.SearchResults.Entry))
	for _, hit := range decoded.SearchResults.Entry {
		papers = append(papers, Paper{
			PaperInfo: models.PaperInfo{
				Title:  orUnknown(hit.Title),
				Link:   hit.URL,
				Source: "Scopus",
				Author: orUnknown(hit.Creator),
			},
			Abstract: hit.Description,
		})
	}

	return papers, nil
}

type coreResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Abstract    string `json:"abstract"`
		DownloadURL string `json:"downloadUrl"`
		DOI         string `json:"doi"`
		Authors     []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"results"`
}

// SearchCORE queries the CORE works API.
func (c *Client) SearchCORE(ctx context.Context, query string, numPapers int) ([]Paper, error) {
	body, err := json.Marshal(map[string]interface{}{
		"q":     query,
		"limit": numPapers,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.COREBaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.COREKey)
	req.Header.Set("Content-Type", "application/json")

	var decoded coreResponse
	if err := c.doJSON(req, &decoded); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(decoded.Results))
	for _, hit := range decoded.Results {
		var authors []string
		for _, a := range hit.Authors {
			if a.Name != "" {
				authors = append(authors, a.Name)
			}
		}

		link := hit.DownloadURL
		if link == "" {
			link = hit.DOI
		}

		papers = append(papers, Paper{
			PaperInfo: models.PaperInfo{
				Title:  orUnknown(hit.Title),
				Link:   link,
				Source: "CORE",
				Author: orUnknown(strings.Join(authors, ", ")),
			},
			Abstract: hit.Abstract,
		})
	}

	return papers, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received status code %d from %s", resp.StatusCode, req.URL.Host)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
