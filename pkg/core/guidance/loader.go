package guidance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carboncredit/pkg/core/utils"
)

// LoadedDocument is the extracted plain text of one source file
type LoadedDocument struct {
	Path string
	Text string
}

// LoadDirectory reads every supported document under dir and extracts plain
// text. Supported extensions: .txt, .md, .html, .htm. Unsupported files are
// skipped; per-file extraction failures are reported but do not abort the
// walk.
func LoadDirectory(dir string) ([]LoadedDocument, error) {
	var docs []LoadedDocument

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		text, err := LoadFile(path)
		if err != nil {
			fmt.Printf("[GUIDANCE] Skipping %s: %v\n", path, err)
			return nil
		}
		if text == "" {
			return nil
		}

		docs = append(docs, LoadedDocument{Path: path, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("DOCUMENT_LOAD_ERROR: %v", err)
	}
	return docs, nil
}

// LoadFile extracts plain text from a single document file
func LoadFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".html", ".htm":
	default:
		return "", nil // unsupported, caller skips
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %v", err)
	}

	return ExtractText(data, ext)
}

// ExtractText converts raw document bytes into plain text by extension
func ExtractText(data []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".txt":
		return strings.TrimSpace(string(data)), nil
	case ".md":
		return strings.TrimSpace(utils.MarkdownToText(data)), nil
	case ".html", ".htm":
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
		if err != nil {
			return "", fmt.Errorf("parse HTML: %v", err)
		}
		doc.Find("script, style").Remove()
		return strings.TrimSpace(doc.Text()), nil
	default:
		return "", fmt.Errorf("unsupported extension: %s", ext)
	}
}
