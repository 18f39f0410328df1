package models

import (
	"path/filepath"
	"strings"
)

type DocumentFormat string

const (
	FormatPDF     DocumentFormat = "pdf"
	FormatDOCX    DocumentFormat = "docx"
	FormatTXT     DocumentFormat = "txt"
	FormatUnknown DocumentFormat = "unknown"
)

// DetectFormat declares a document format from the filename extension.
func DetectFormat(filename string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt":
		return FormatTXT
	default:
		return FormatUnknown
	}
}

// ResumeDocument is one uploaded resume. It is never modified after intake.
type ResumeDocument struct {
	Filename string
	Content  []byte
	Format   DocumentFormat
}

func NewResumeDocument(filename string, content []byte) ResumeDocument {
	return ResumeDocument{
		Filename: filename,
		Content:  content,
		Format:   DetectFormat(filename),
	}
}

type ExtractedText struct {
	Text         string
	SourceFormat DocumentFormat
}
