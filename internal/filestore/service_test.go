package filestore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/domain"
)

type fakeAPI struct {
	pages      []*gemini.ListDocumentsResponse
	listCalls  int
	uploaded   []gemini.CustomMetadata
	uploadName string
	deleted    []string
	deleteErr  error
}

func (f *fakeAPI) ListDocuments(_ context.Context, store string, pageSize int, pageToken string) (*gemini.ListDocumentsResponse, error) {
	if f.listCalls >= len(f.pages) {
		return nil, errors.New("unexpected page request")
	}
	page := f.pages[f.listCalls]
	f.listCalls++
	return page, nil
}

func (f *fakeAPI) UploadToFileSearchStore(_ context.Context, store, displayName, mimeType string, size int64, data io.Reader, metadata []gemini.CustomMetadata) (*gemini.Operation, error) {
	f.uploadName = displayName
	f.uploaded = metadata
	return &gemini.Operation{Name: "operations/op-1", Done: true}, nil
}

func (f *fakeAPI) DeleteDocument(_ context.Context, name string, force bool) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if !force {
		return errors.New("expected force delete")
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func TestService_ListDocuments(t *testing.T) {
	api := &fakeAPI{pages: []*gemini.ListDocumentsResponse{
		{
			Documents: []gemini.Document{
				{Name: "fileSearchStores/abc/documents/d1"},
				{Name: "fileSearchStores/abc/documents/d2"},
			},
			NextPageToken: "page-2",
		},
		{
			Documents: []gemini.Document{
				{Name: "fileSearchStores/abc/documents/d3"},
			},
		},
	}}

	svc := NewService(api, "fileSearchStores/abc", nil)

	docs, err := svc.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}

	if len(docs) != 3 {
		t.Errorf("documents count = %d, want 3", len(docs))
	}
	if api.listCalls != 2 {
		t.Errorf("list calls = %d, want 2 (pagination)", api.listCalls)
	}
}

func TestService_Upload(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, "fileSearchStores/abc", nil)
	svc.now = func() time.Time { return time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC) }

	op, err := svc.Upload(context.Background(), "BSG 432.210.pdf", "application/pdf", 4, strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !op.Done {
		t.Error("expected completed operation")
	}

	if api.uploadName != "BSG 432.210.pdf" {
		t.Errorf("display name = %q", api.uploadName)
	}
	if len(api.uploaded) != 2 {
		t.Fatalf("metadata count = %d, want 2", len(api.uploaded))
	}
	if api.uploaded[0].Key != "uploaded_via" || api.uploaded[0].StringValue != "webapp" {
		t.Errorf("metadata[0] = %+v", api.uploaded[0])
	}
	if api.uploaded[1].Key != "upload_timestamp" || api.uploaded[1].StringValue != "2025-11-05T12:00:00Z" {
		t.Errorf("metadata[1] = %+v", api.uploaded[1])
	}
}

func TestService_Upload_EmptyName(t *testing.T) {
	svc := NewService(&fakeAPI{}, "fileSearchStores/abc", nil)

	_, err := svc.Upload(context.Background(), "", "application/pdf", 0, strings.NewReader(""))
	if err == nil {
		t.Fatal("Upload() error = nil, want error")
	}
}

func TestService_Delete(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, "fileSearchStores/abc", nil)

	if err := svc.Delete(context.Background(), "fileSearchStores/abc/documents/d1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "fileSearchStores/abc/documents/d1" {
		t.Errorf("deleted = %v", api.deleted)
	}
}

func TestService_Delete_WrongStore(t *testing.T) {
	svc := NewService(&fakeAPI{}, "fileSearchStores/abc", nil)

	err := svc.Delete(context.Background(), "fileSearchStores/other/documents/d1")
	if err == nil {
		t.Fatal("Delete() error = nil, want error")
	}

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrorTypeInvalidRequest {
		t.Errorf("error = %v, want invalid_request", err)
	}
}
