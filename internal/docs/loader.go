package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"archgen/internal/domain"
)

// allowedExts is the recognized discovery-document extension set. Matching
// is case-insensitive; everything else is silently skipped.
var allowedExts = map[string]bool{
	".md":  true,
	".txt": true,
	".pdf": true,
}

// Loader reads discovery documents from a local directory tree. It
// implements port.DocumentSource.
type Loader struct {
	dir string
	pdf PDFExtractor
}

// NewLoader creates a Loader rooted at dir. pdf may be nil, in which case
// PDF files degrade to a placeholder instead of extracted text.
func NewLoader(dir string, pdf PDFExtractor) *Loader {
	return &Loader{dir: dir, pdf: pdf}
}

// Load walks the directory recursively and returns one Document per
// recognized file, ordered lexicographically by relative path. A missing
// directory yields an empty result, not an error.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	if _, err := os.Stat(l.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var rels []string
	err := filepath.WalkDir(l.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !allowedExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(l.dir, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", l.dir, err)
	}

	// WalkDir order is per-directory lexical, which is not byte order of
	// the full relative path; sort explicitly for determinism.
	sort.Strings(rels)

	result := make([]domain.Document, 0, len(rels))
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(l.dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		result = append(result, domain.Document{
			RelPath: rel,
			Text:    extractContent(rel, data, l.pdf),
		})
	}
	return result, nil
}

// extractContent turns raw file bytes into document text according to the
// file's extension. PDF failures degrade to placeholders naming the file.
func extractContent(relPath string, data []byte, pdfx PDFExtractor) string {
	name := path.Base(relPath)
	if strings.ToLower(path.Ext(relPath)) != ".pdf" {
		return strings.TrimSpace(DecodeText(data))
	}

	if pdfx == nil {
		return fmt.Sprintf("[PDF extraction unavailable for %s.]", name)
	}
	text, err := pdfx.Extract(name, data)
	if err != nil {
		return fmt.Sprintf("[Failed to read PDF %s: %v]", name, err)
	}
	return strings.TrimSpace(text)
}
