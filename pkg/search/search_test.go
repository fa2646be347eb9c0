package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plagiax/plagiax/pkg/search"
)

func TestExtractKeywords(t *testing.T) {
	text := "neural networks detect plagiarism. Neural networks are trained on plagiarism data, and the networks learn."

	keywords := search.ExtractKeywords(text, 3)

	require.Len(t, keywords, 3)
	assert.Equal(t, "networks", keywords[0])
	// "neural" and "plagiarism" both occur twice; first-seen order breaks the tie.
	assert.Equal(t, []string{"neural", "plagiarism"}, keywords[1:])
}

func TestExtractKeywordsFiltersStopwords(t *testing.T) {
	keywords := search.ExtractKeywords("the the the and and important", 5)
	assert.Equal(t, []string{"important"}, keywords)
}

func TestExtractKeywordsEmptyText(t *testing.T) {
	assert.Empty(t, search.ExtractKeywords("", 5))
	assert.Empty(t, search.ExtractKeywords("the and of", 5))
}

func TestSearchScholar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_scholar", r.URL.Query().Get("engine"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{
			"organic_results": [
				{"title": "Paper One", "link": "https://example.com/1", "snippet": "snippet one",
				 "publication_info": {"summary": "A Author - 2020"}},
				{"title": "Paper Two", "link": "https://example.com/2", "snippet": "snippet two",
				 "publication_info": {"summary": "B Author - 2021"}}
			]
		}`))
	}))
	defer server.Close()

	c := search.NewWithConfig(search.Config{
		SerpAPIKey:     "test-key",
		SerpAPIBaseURL: server.URL,
	})

	papers, err := c.SearchScholar(context.Background(), "some query", 5)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "Paper One", papers[0].Title)
	assert.Equal(t, "Google Scholar", papers[0].Source)
	assert.Equal(t, "A Author - 2020", papers[0].Author)
	assert.Equal(t, "snippet one", papers[0].Snippet)
}

func TestSearchCORE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer core-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"results": [
				{"title": "Core Paper", "abstract": "an abstract", "downloadUrl": "https://core.example/p.pdf",
				 "authors": [{"name": "C Author"}, {"name": "D Author"}]}
			]
		}`))
	}))
	defer server.Close()

	c := search.NewWithConfig(search.Config{
		COREKey:     "core-key",
		COREBaseURL: server.URL,
	})

	papers, err := c.SearchCORE(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Core Paper", papers[0].Title)
	assert.Equal(t, "C Author, D Author", papers[0].Author)
	assert.Equal(t, "https://core.example/p.pdf", papers[0].Link)
	assert.Equal(t, "an abstract", papers[0].Abstract)
}

func TestSearchScopus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scopus-key", r.Header.Get("X-ELS-APIKey"))
		w.Write([]byte(`{
			"search-results": {
				"entry": [
					{"dc:title": "Scopus Paper", "dc:description": "desc", "dc:creator": "E Author",
					 "prism:url": "https://scopus.example/1"}
				]
			}
		}`))
	}))
	defer server.Close()

	c := search.NewWithConfig(search.Config{
		ScopusKey:     "scopus-key",
		ScopusBaseURL: server.URL,
	})

	papers, err := c.SearchScopus(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Scopus Paper", papers[0].Title)
	assert.Equal(t, "Scopus", papers[0].Source)
}

func TestSearchProviderFailureIsNotFatal(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": [{"title": "Still Here", "link": "", "snippet": ""}]}`))
	}))
	defer working.Close()

	c := search.NewWithConfig(search.Config{
		SerpAPIKey:     "k",
		SerpAPIBaseURL: working.URL,
		COREKey:        "k",
		COREBaseURL:    broken.URL,
	})

	papers := c.Search(context.Background(), "query", 5)
	require.Len(t, papers, 1)
	assert.Equal(t, "Still Here", papers[0].Title)
}

func TestFetchPaperContentHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html>
				<head><title>A Paper</title><script>var x = 1;</script></head>
				<body>
					<nav>site nav</nav>
					<div class="abstract-section">This is the paper abstract text.</div>
					<footer>footer junk</footer>
				</body>
			</html>
		`))
	}))
	defer server.Close()

	c := search.NewWithConfig(search.Config{RateLimit: 100})

	content := c.FetchPaperContent(context.Background(), server.URL)
	assert.Contains(t, content, "This is the paper abstract text")
	assert.NotContains(t, content, "site nav")
	assert.NotContains(t, content, "var x")
}

func TestFetchPaperContentMainFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html><body>
				<main>
					<p>First paragraph of the paper.</p>
					<p>Second paragraph of the paper.</p>
				</main>
			</body></html>
		`))
	}))
	defer server.Close()

	c := search.NewWithConfig(search.Config{RateLimit: 100})

	content := c.FetchPaperContent(context.Background(), server.URL)
	assert.Contains(t, content, "First paragraph")
	assert.Contains(t, content, "Second paragraph")
}

func TestFetchPaperContentFailuresReturnEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := search.NewWithConfig(search.Config{RateLimit: 100})

	assert.Empty(t, c.FetchPaperContent(context.Background(), server.URL))
	assert.Empty(t, c.FetchPaperContent(context.Background(), ""))
}

func TestSearchAndFetchSkipsThinContent(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><main><p>too short</p></main></body></html>`))
	}))
	defer page.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": [{"title": "Thin", "link": "` + page.URL + `", "snippet": "x"}]}`))
	}))
	defer api.Close()

	c := search.NewWithConfig(search.Config{
		SerpAPIKey:     "k",
		SerpAPIBaseURL: api.URL,
		RateLimit:      100,
	})

	contents, sources, err := c.SearchAndFetch(context.Background(), "plagiarism detection research topic words", 3)
	require.NoError(t, err)
	assert.Empty(t, contents)
	assert.Empty(t, sources)
}
