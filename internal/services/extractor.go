package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Extraction failure classes. Callers branch on these instead of sniffing
// marker strings in the extracted text.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEncrypted         = errors.New("document is encrypted")
	ErrNoText            = errors.New("no extractable text found")
)

type ExtractorService interface {
	ExtractText(data []byte, filename string) (string, error)
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

// ExtractText converts an uploaded PDF or DOCX into plain text. Dispatch is
// by filename extension only, case-insensitive. It never panics: reader
// faults are recovered and returned as errors.
func (s *extractorService) ExtractText(data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".pdf":
		return s.extractPDF(data)
	case ".docx":
		return s.extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func (s *extractorService) extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	// NewReader attempts an empty passphrase on encrypted documents before
	// giving up with ErrInvalidPassword.
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", ErrEncrypted
		}
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that yield no text contribute nothing.
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	out := strings.TrimSpace(textBuilder.String())
	if out == "" {
		return "", ErrNoText
	}

	return out, nil
}

func (s *extractorService) extractDOCX(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to read DOCX: %v", r)
		}
	}()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer doc.Close()

	lines := docxParagraphs(doc.Editable().GetContent())
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if out == "" {
		return "", ErrNoText
	}

	return out, nil
}

var (
	docxParagraphSplit = regexp.MustCompile(`</w:p>`)
	docxRunText        = regexp.MustCompile(`(?s)<w:t[^>]*>(.*?)</w:t>`)
	xmlEntities        = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// docxParagraphs pulls the visible run texts out of the document XML,
// one entry per non-blank paragraph.
func docxParagraphs(content string) []string {
	var lines []string
	for _, para := range docxParagraphSplit.Split(content, -1) {
		var runs []string
		for _, m := range docxRunText.FindAllStringSubmatch(para, -1) {
			runs = append(runs, xmlEntities.Replace(m[1]))
		}
		line := strings.TrimSpace(strings.Join(runs, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs into single spaces.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
