package services

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"alfredoptarigan/resume-screener/internal/models"
)

var (
	htmlTagPattern  = regexp.MustCompile(`(?i)<\s*/?\s*(p|div|br|li|ul|ol|h[1-6]|span|strong|em|b|i|table|tr|td|body|html)\b[^>]*>`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// NewJobDescription wraps pasted JD text. Markup copied from a job board is
// converted to plain text first.
func NewJobDescription(raw string) models.JobDescription {
	text := strings.TrimSpace(raw)
	if looksLikeHTML(text) {
		text = htmlToText(text)
	}

	return models.JobDescription{
		Text:       text,
		Normalized: models.NormalizeJobText(text),
	}
}

func looksLikeHTML(text string) bool {
	return htmlTagPattern.MatchString(text)
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li").Each(func(_ int, s *goquery.Selection) {
		// Skip paragraphs nested in list items; the item already carries them.
		if goquery.NodeName(s) == "p" && s.ParentsFiltered("li").Length() > 0 {
			return
		}
		block := strings.Join(strings.Fields(s.Text()), " ")
		if block == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			block = "- " + block
		}
		blocks = append(blocks, block)
	})
	if len(blocks) > 0 {
		return strings.Join(blocks, "\n")
	}

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(blankRunPattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
