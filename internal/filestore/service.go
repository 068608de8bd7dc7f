// Package filestore manages the documents of the hosted file search store.
package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/domain"
)

// listPageSize matches the page size the upstream API serves comfortably.
const listPageSize = 20

// API is the part of the gemini client the service needs.
type API interface {
	ListDocuments(ctx context.Context, store string, pageSize int, pageToken string) (*gemini.ListDocumentsResponse, error)
	UploadToFileSearchStore(ctx context.Context, store, displayName, mimeType string, size int64, data io.Reader, metadata []gemini.CustomMetadata) (*gemini.Operation, error)
	DeleteDocument(ctx context.Context, name string, force bool) error
}

// Service exposes list/upload/delete over a single file search store.
type Service struct {
	client API
	store  string
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a filestore service bound to the given store resource
// name.
func NewService(client API, store string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ListDocuments walks all pages of the store's document listing.
func (s *Service) ListDocuments(ctx context.Context) ([]gemini.Document, error) {
	var documents []gemini.Document
	pageToken := ""

	for {
		page, err := s.client.ListDocuments(ctx, s.store, listPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}

		documents = append(documents, page.Documents...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return documents, nil
}

// Upload imports a document into the store, tagging it so uploads through
// the web app stay distinguishable from the pre-built corpus.
func (s *Service) Upload(ctx context.Context, displayName, mimeType string, size int64, data io.Reader) (*gemini.Operation, error) {
	if displayName == "" {
		return nil, domain.ErrInvalidRequest("display name must not be empty")
	}

	metadata := []gemini.CustomMetadata{
		{Key: "uploaded_via", StringValue: "webapp"},
		{Key: "upload_timestamp", StringValue: s.now().Format(time.RFC3339)},
	}

	op, err := s.client.UploadToFileSearchStore(ctx, s.store, displayName, mimeType, size, data, metadata)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", displayName, err)
	}

	s.logger.Info("document uploaded",
		slog.String("display_name", displayName),
		slog.String("operation", op.Name),
		slog.Bool("done", op.Done),
	)

	return op, nil
}

// Delete removes a document and all of its chunks. name must belong to this
// service's store.
func (s *Service) Delete(ctx context.Context, name string) error {
	if !strings.HasPrefix(name, s.store+"/documents/") {
		return domain.ErrInvalidRequest(fmt.Sprintf("document %q does not belong to this filestore", name))
	}

	if err := s.client.DeleteDocument(ctx, name, true); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}

	s.logger.Info("document deleted", slog.String("name", name))
	return nil
}
