package search

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxFetchBytes = 50 << 20

// FetchPaperContent downloads a paper page and extracts its text. PDFs go
// through the PDF extractor; HTML pages are mined for abstract-like containers
// first, then main-content paragraphs. Returns "" on any failure so callers
// can fall back to the search hit's abstract or snippet.
func (c *Client) FetchPaperContent(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return ""
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	ua := c.config.UserAgent
	if ua == "" {
		ua = fetchUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := c.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasSuffix(strings.ToLower(rawURL), ".pdf") || strings.Contains(contentType, "application/pdf") {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
		if err != nil {
			return ""
		}

		text, err := c.extractor.ExtractCleanText(raw)
		if err != nil {
			return ""
		}
		return text
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	return extractHTMLContent(doc)
}

// extractHTMLContent pulls paper text out of an HTML page, preferring
// abstract/summary containers over the generic main content.
func extractHTMLContent(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header").Remove()

	var builder strings.Builder

	abstracts := doc.Find("div, section, p").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		class = strings.ToLower(class)
		return strings.Contains(class, "abstract") ||
			strings.Contains(class, "summary") ||
			strings.Contains(class, "paper-content")
	})

	if abstracts.Length() > 0 {
		abstracts.Each(func(_ int, s *goquery.Selection) {
			builder.WriteString(strings.TrimSpace(s.Text()))
			builder.WriteString("\n\n")
		})
		return strings.TrimSpace(builder.String())
	}

	main := doc.Find("main")
	if main.Length() == 0 {
		main = doc.Find("article")
	}
	if main.Length() == 0 {
		main = doc.Find("body")
	}

	main.Find("p").Each(func(_ int, s *goquery.Selection) {
		builder.WriteString(strings.TrimSpace(s.Text()))
		builder.WriteString("\n\n")
	})

	return strings.TrimSpace(builder.String())
}
