package enrichment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/storage"
)

// Fetcher retrieves solicitation text for a key from an external source.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, key Key) (*Document, error)
}

// Document is the raw material returned by a fetch: the text extract,
// any source-supplied keywords, and, when the source document is a PDF,
// its page count.
type Document struct {
	Text      string
	Keywords  []string
	PageCount *int
}

// BlobFetcher retrieves solicitation documents from the blob archive.
// The ingestion pipeline stores a plain-text extract at
// <source>/<document id>.txt and the original document at
// <source>/<document id>.pdf when one exists.
type BlobFetcher struct {
	store  storage.System
	logger *slog.Logger
}

// NewBlobFetcher creates a BlobFetcher over the given storage system.
func NewBlobFetcher(store storage.System, logger *slog.Logger) *BlobFetcher {
	return &BlobFetcher{
		store:  store,
		logger: logger.With("system", "enrichment-fetcher"),
	}
}

func (f *BlobFetcher) Fetch(ctx context.Context, key Key) (*Document, error) {
	text, err := f.download(ctx, key.String()+".txt")
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}

	doc := &Document{Text: string(text)}
	doc.PageCount = f.probePageCount(ctx, key)

	return doc, nil
}

func (f *BlobFetcher) download(ctx context.Context, blobKey string) ([]byte, error) {
	reader, err := f.store.Download(ctx, blobKey)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// probePageCount reads the original PDF, when present, to record how much
// source material backs the text extract. Absence is not an error.
func (f *BlobFetcher) probePageCount(ctx context.Context, key Key) *int {
	data, err := f.download(ctx, key.String()+".pdf")
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			f.logger.Warn("solicitation pdf read failed", "key", key.String(), "error", err)
		}
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		f.logger.Warn("solicitation pdf page count failed", "key", key.String(), "error", err)
		return nil
	}

	return &count
}
