// Package source resolves the three inbound document kinds (file, url, raw
// text) into plain extracted text plus a release hook for any temporary
// artifact created along the way.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"

	"github.com/courseforge/course-engine/internal/domain"
)

// Document is one readable source. Release must be invoked exactly once per
// request on every exit path; it is idempotent so a double call is harmless.
type Document struct {
	text     string
	filename string

	// tempDir is removed on Release. Empty for caller-owned files and raw
	// text, where Release is a no-op.
	tempDir  string
	mu       sync.Mutex
	released bool
}

// Text returns the extracted linear text.
func (d *Document) Text() string { return d.text }

// Filename returns the original document name for display and persistence.
func (d *Document) Filename() string { return d.filename }

// Release removes the temporary source artifact and its containing
// directory, if any.
func (d *Document) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil
	}
	d.released = true

	if d.tempDir != "" {
		return os.RemoveAll(d.tempDir)
	}
	return nil
}

// FromText wraps raw pasted text as a document.
func FromText(text string) *Document {
	return &Document{text: text, filename: "pasted-text"}
}

// FromFile extracts text from a caller-owned file. PDF files go through the
// layout-preserving page extractor; anything else is read as plain text.
// Release does not touch caller-owned files.
func FromFile(path string) (*Document, error) {
	text, err := extractFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{text: text, filename: filepath.Base(path)}, nil
}

// FromUpload persists an uploaded payload into a fresh temporary directory
// and extracts it. Release removes the directory.
func FromUpload(filename string, payload []byte) (*Document, error) {
	dir, err := os.MkdirTemp("", "course-engine-*")
	if err != nil {
		return nil, domain.ExtractionError("failed to create temp directory", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, domain.ExtractionError("failed to write uploaded file", err)
	}

	text, err := extractFile(path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return &Document{text: text, filename: filepath.Base(filename), tempDir: dir}, nil
}

func extractFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", domain.ExtractionError("failed to read source file", err)
		}
		return string(data), nil
	}
}

// extractPDF linearizes a PDF page by page. Line structure survives well
// enough for the heading and code heuristics downstream.
func extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", domain.ExtractionError("failed to open PDF", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", domain.ExtractionError("PDF has no pages", nil)
	}

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("failed to extract page %d", page+1), err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", domain.ExtractionError("PDF contains no extractable text", nil)
	}

	return sb.String(), nil
}
