package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wazivo/internal/extract"
)

// boilerplateSelectors are removed from every page before text extraction
const boilerplateSelectors = "nav, footer, header, script, style, noscript, iframe, svg, " +
	".ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup, " +
	`[role="banner"], [role="navigation"], [aria-hidden="true"]`

// profileSelectors locate the main content of CV and profile pages
var profileSelectors = []string{
	"main",
	"article",
	"#resume",
	".resume",
	"#cv",
	".profile",
	"#content",
	".content",
}

// ReadableText parses an HTML document and returns its main text with
// boilerplate removed. extraNoise selectors are removed as well.
func ReadableText(html string, extraNoise ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(boilerplateSelectors).Remove()
	if noise := strings.Join(nonEmpty(extraNoise), ", "); noise != "" {
		doc.Find(noise).Remove()
	}

	var content *goquery.Selection
	for _, selector := range profileSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	// Block elements are separated so words from adjacent sections do not merge.
	content.Find("p, div, li, h1, h2, h3, h4, h5, h6, section, br, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return extract.CleanText(content.Text()), nil
}

// looksLikeHTML is a cheap check for reader responses that ignored the
// plain-text return format.
func looksLikeHTML(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
