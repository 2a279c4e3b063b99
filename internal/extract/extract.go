// Package extract turns uploaded resume files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEPlain = "text/plain"
	MIMEPDF   = "application/pdf"
	MIMEDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrUnsupportedType is returned for content that is not plain text, PDF or DOCX.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoText is returned when a supported document carries no text.
	ErrNoText = errors.New("document contains no text")
)

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// Detect sniffs the content type of data. Text files named *.txt or *.md
// are accepted as plain text whatever text subtype is detected.
func Detect(data []byte, filename string) string {
	detected := mimetype.Detect(data)
	switch {
	case detected.Is(MIMEPlain):
		return MIMEPlain
	case detected.Is(MIMEPDF):
		return MIMEPDF
	case detected.Is(MIMEDocx):
		return MIMEDocx
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if (ext == ".txt" || ext == ".md") && strings.HasPrefix(detected.String(), "text/") {
		return MIMEPlain
	}
	return detected.String()
}

// Text extracts plain text from data.
func Text(data []byte, filename string) (string, error) {
	mime := Detect(data, filename)

	var (
		text string
		err  error
	)
	switch mime {
	case MIMEPlain:
		text = strings.ToValidUTF8(string(data), "")
	case MIMEPDF:
		text, err = pdfText(data)
	case MIMEDocx:
		text, err = docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return xmlToText(doc.Editable().GetContent()), nil
}

// xmlToText flattens WordprocessingML into lines of text.
func xmlToText(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = strings.ReplaceAll(content, "\r", "")
	return blankLines.ReplaceAllString(content, "\n\n")
}
