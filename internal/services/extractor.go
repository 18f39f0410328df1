package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/resume-screener/internal/models"
)

type DocumentExtractor interface {
	Extract(data []byte, format models.DocumentFormat) (models.ExtractedText, error)
}

type documentExtractor struct {
	maxBytes int64
}

// NewDocumentExtractor builds an extractor; maxBytes <= 0 disables the size check.
func NewDocumentExtractor(maxBytes int64) DocumentExtractor {
	return &documentExtractor{maxBytes: maxBytes}
}

// Extract implements DocumentExtractor.
func (d *documentExtractor) Extract(data []byte, format models.DocumentFormat) (text models.ExtractedText, err error) {
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return models.ExtractedText{}, &models.ExtractionError{
			Reason: models.ReasonTooLarge,
			Err:    fmt.Errorf("%d bytes exceeds limit of %d", len(data), d.maxBytes),
		}
	}

	if format == models.FormatUnknown || format == "" {
		format = sniffFormat(data)
	}

	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = models.ExtractedText{}
			err = &models.ExtractionError{Reason: models.ReasonCorruptFile, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	var raw string
	switch format {
	case models.FormatPDF:
		raw, err = extractPDFText(data)
	case models.FormatDOCX:
		raw, err = extractDocxText(data)
	case models.FormatTXT:
		raw = string(data)
	default:
		return models.ExtractedText{}, &models.ExtractionError{Reason: models.ReasonUnsupportedFormat}
	}
	if err != nil {
		return models.ExtractedText{}, err
	}

	cleaned := normalizeText(raw)
	if cleaned == "" {
		return models.ExtractedText{}, &models.ExtractionError{Reason: models.ReasonEmptyResult}
	}

	return models.ExtractedText{Text: cleaned, SourceFormat: format}, nil
}

func sniffFormat(data []byte) models.DocumentFormat {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return models.FormatPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return models.FormatDOCX
	default:
		return models.FormatUnknown
	}
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", &models.ExtractionError{Reason: models.ReasonEmptyResult, Err: err}
		}
		return "", &models.ExtractionError{Reason: models.ReasonCorruptFile, Err: err}
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}

		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n")
		}
		textBuilder.WriteString(text)
	}

	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &models.ExtractionError{Reason: models.ReasonCorruptFile, Err: err}
	}
	defer doc.Close()

	text, err := flattenWordXML(doc.Editable().GetContent())
	if err != nil {
		return "", &models.ExtractionError{Reason: models.ReasonCorruptFile, Err: err}
	}
	return text, nil
}

// flattenWordXML walks word/document.xml. Body paragraphs come first in
// document order, then every top-level table as tab-separated rows.
func flattenWordXML(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		paragraphs []string
		tableRows  []string
		para       strings.Builder
		cell       strings.Builder
		row        []string
		tableDepth int
		propsDepth int
		inText     bool
	)

	write := func(s string) {
		if tableDepth > 0 {
			cell.WriteString(s)
			return
		}
		para.WriteString(s)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					row = row[:0]
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					para.Reset()
				}
			case "t":
				inText = true
			case "pPr", "rPr", "sectPr":
				propsDepth++
			case "tab":
				// w:tabs inside paragraph properties declares tab stops.
				if propsDepth > 0 {
					continue
				}
				if tableDepth > 0 {
					write(" ")
				} else {
					write("\t")
				}
			case "br", "cr":
				if tableDepth > 0 {
					write(" ")
				} else {
					write("\n")
				}
			}
		case xml.CharData:
			if inText {
				write(string(el))
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "pPr", "rPr", "sectPr":
				propsDepth--
			case "p":
				if tableDepth == 0 {
					paragraphs = append(paragraphs, para.String())
				} else {
					write(" ")
				}
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.Join(strings.Fields(cell.String()), " "))
				}
			case "tr":
				if tableDepth == 1 && strings.TrimSpace(strings.Join(row, "")) != "" {
					tableRows = append(tableRows, strings.Join(row, "\t"))
				}
			case "tbl":
				tableDepth--
			}
		}
	}

	text := strings.Join(paragraphs, "\n")
	if len(tableRows) > 0 {
		text += "\n" + strings.Join(tableRows, "\n")
	}
	return text, nil
}

// normalizeText fixes encoding and line endings, trims each line and
// collapses runs of blank lines.
func normalizeText(text string) string {
	text = strings.ToValidUTF8(text, "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			blank = true
			continue
		}
		blank = false
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
