package document

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	// Elements that never carry document text
	unwantedSelectors = []string{
		"script", "style", "meta", "link", "noscript", "iframe", "svg",
		".sidebar", "header", "footer", ".nav", ".menu", "#sidebar",
		".navigation", ".toc", "#toc", ".footer", "#footer",
	}

	blankRunRe = regexp.MustCompile(`\n{3,}`)

	// charset declarations, checked in order on the raw bytes
	charsetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([^"'\s>]+)`),
		regexp.MustCompile(`(?i)<meta[^>]+http-equiv=["']?Content-Type["']?[^>]+content=["']?[^"']*charset=([^"'\s;>]+)`),
		regexp.MustCompile(`(?i)<meta[^>]+content=["']?[^"']*charset=([^"'\s;>]+)[^>]+http-equiv=["']?Content-Type["']?`),
	}
)

// RenderHTML extracts the main content of an HTML page and converts it to
// Markdown. Navigation, scripts and other page chrome are dropped.
func RenderHTML(page string) (string, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	mainContent := findMainContent(doc)
	if mainContent == nil {
		return "", nil
	}

	cleanHTML(mainContent)

	mainHTML, err := mainContent.Html()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	markdown, err := md.NewConverter("", true, nil).ConvertString(mainHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}

	return postProcessMarkdown(markdown), nil
}

func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"main", "article", "div.content", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func cleanHTML(sel *goquery.Selection) {
	for _, selector := range unwantedSelectors {
		sel.Find(selector).Remove()
	}
}

func postProcessMarkdown(markdown string) string {
	// Remove multiple consecutive blank lines
	markdown = blankRunRe.ReplaceAllString(markdown, "\n\n")

	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.Join(lines, "\n")
}

// getEncodingFromMeta extracts charset from HTML meta tag using regex on raw bytes.
// This avoids parsing the HTML with incorrect encoding which would corrupt the content.
func getEncodingFromMeta(body []byte) encoding.Encoding {
	// UTF-8 BOM
	if len(body) >= 3 && body[0] == 0xEF && body[1] == 0xBB && body[2] == 0xBF {
		return nil
	}

	for _, re := range charsetPatterns {
		submatches := re.FindSubmatch(body)
		if len(submatches) < 2 {
			continue
		}
		if enc, err := htmlindex.Get(string(submatches[1])); err == nil {
			return skipUTF8(enc)
		}
	}

	return nil
}
