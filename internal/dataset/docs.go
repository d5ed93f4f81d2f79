package dataset

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// textExtractor turns raw file bytes into plain text.
type textExtractor interface {
	CanParse(filename string) bool
	Extract(content []byte) (string, error)
}

var extractors = []textExtractor{txtExtractor{}, markdownExtractor{}, docxExtractor{}}

// ErrUnsupported indicates a file format has no text extractor.
var ErrUnsupported = errors.New("unsupported document format")

// ExtractText reads a single file and returns its plain text.
func ExtractText(path string) (string, error) {
	for _, x := range extractors {
		if !x.CanParse(path) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return x.Extract(data)
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

// LoadDocumentsDir builds a corpus from every supported file directly inside dir,
// one Document per file, identified by file name and ordered by name.
func LoadDocumentsDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	docs := make([]Document, 0, len(names))
	for _, n := range names {
		text, err := ExtractText(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: n, Text: text})
	}
	return docs, nil
}

func supported(name string) bool {
	for _, x := range extractors {
		if x.CanParse(name) {
			return true
		}
	}
	return false
}

type txtExtractor struct{}

func (txtExtractor) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".txt")
}

func (txtExtractor) Extract(content []byte) (string, error) { return string(content), nil }

type markdownExtractor struct{}

func (markdownExtractor) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

func (markdownExtractor) Extract(content []byte) (string, error) {
	return collapseBlankLines(string(bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")))), nil
}

type docxExtractor struct{}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

func (docxExtractor) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}

// Extract pulls word/document.xml out of the archive and strips markup. Paragraph
// ends become newlines so words from adjacent paragraphs stay separated.
func (docxExtractor) Extract(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	f, err := zr.Open("word/document.xml")
	if err != nil {
		return "", fmt.Errorf("document.xml not found in DOCX")
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}
	text := strings.ReplaceAll(string(body), "</w:p>", "\n")
	text = xmlTag.ReplaceAllString(text, "")
	return strings.TrimSpace(collapseBlankLines(text)), nil
}

func collapseBlankLines(text string) string {
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}
