package docs

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"archgen/internal/domain"
	"archgen/internal/port"
)

// S3Source reads discovery documents from an S3 prefix. It implements
// port.DocumentSource with the same extension filtering, ordering and
// extraction behavior as the local Loader.
type S3Source struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
	pdf     PDFExtractor
}

// NewS3Source creates an S3Source over bucket/prefix.
func NewS3Source(storage port.ObjectStorage, bucket, prefix string, pdf PDFExtractor) *S3Source {
	return &S3Source{storage: storage, bucket: bucket, prefix: prefix, pdf: pdf}
}

func (s *S3Source) Load(ctx context.Context) ([]domain.Document, error) {
	keys, err := s.storage.List(ctx, s.bucket, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, s.prefix, err)
	}

	var matched []string
	for _, key := range keys {
		if allowedExts[strings.ToLower(path.Ext(key))] {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)

	result := make([]domain.Document, 0, len(matched))
	for _, key := range matched {
		data, err := s.storage.Download(ctx, s.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("downloading s3://%s/%s: %w", s.bucket, key, err)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
		result = append(result, domain.Document{
			RelPath: rel,
			Text:    extractContent(rel, data, s.pdf),
		})
	}
	return result, nil
}
