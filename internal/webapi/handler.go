// Package webapi exposes search, filestore management and the query log over
// HTTP.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kueblaw/belex/internal/api/belex"
	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/domain"
	"github.com/kueblaw/belex/internal/server"
	"github.com/kueblaw/belex/internal/storage"
)

// maxUploadBytes caps document uploads at 50 MiB.
const maxUploadBytes = 50 << 20

// persistTimeout bounds query-log writes once detached from the request.
const persistTimeout = 5 * time.Second

// SearchEngine answers legal questions.
type SearchEngine interface {
	Search(ctx context.Context, query string) (*domain.SearchResult, error)
}

// Filestore manages the document store.
type Filestore interface {
	ListDocuments(ctx context.Context) ([]gemini.Document, error)
	Upload(ctx context.Context, displayName, mimeType string, size int64, data io.Reader) (*gemini.Operation, error)
	Delete(ctx context.Context, name string) error
}

// LawLookup resolves BSG numbers to law metadata.
type LawLookup interface {
	GetTextOfLaw(ctx context.Context, bsgNumber string) (*belex.TextOfLaw, error)
}

type Handler struct {
	engine SearchEngine
	files  Filestore
	laws   LawLookup
	store  storage.QueryStore
	logger *slog.Logger
}

func NewHandler(engine SearchEngine, files Filestore, laws LawLookup, store storage.QueryStore, logger *slog.Logger) *Handler {
	if store == nil {
		store = storage.NopStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine: engine,
		files:  files,
		laws:   laws,
		store:  store,
		logger: logger,
	}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Post("/v1/search", h.handleSearch)
	r.Get("/v1/documents", h.handleListDocuments)
	r.Post("/v1/documents", h.handleUploadDocument)
	r.Delete("/v1/documents/*", h.handleDeleteDocument)
	r.Get("/v1/laws/{bsg}", h.handleGetLaw)
	r.Get("/v1/queries", h.handleRecentQueries)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.ErrInvalidRequest("invalid JSON body"))
		return
	}

	queryID := uuid.New().String()
	server.AddLogField(r.Context(), "query_id", queryID)

	start := time.Now()
	result, err := h.engine.Search(r.Context(), req.Query)
	duration := time.Since(start)

	h.recordQuery(r, queryID, req.Query, result, err, duration)

	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// recordQuery persists the search in the query log. Failures are logged,
// never surfaced to the caller.
func (h *Handler) recordQuery(r *http.Request, id, query string, result *domain.SearchResult, searchErr error, duration time.Duration) {
	rec := &storage.QueryRecord{
		ID:       id,
		Query:    query,
		Status:   storage.StatusOK,
		Duration: duration,
	}
	if searchErr != nil {
		rec.Status = storage.StatusError
		rec.ErrorMessage = searchErr.Error()
	} else if result != nil {
		rec.Answer = result.Answer
		rec.SourceCount = len(result.Sources)
		rec.PromptTokens = result.Usage.PromptTokens
		rec.ResponseTokens = result.Usage.ResponseTokens
		rec.TotalTokens = result.Usage.TotalTokens
	}

	// The request context may already be canceled or past its deadline, and
	// those are exactly the searches the log must still capture. Persist with
	// a context detached from the request lifecycle.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), persistTimeout)
	defer cancel()

	if err := h.store.RecordQuery(ctx, rec); err != nil {
		h.logger.Warn("failed to record query",
			slog.String("query_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// documentEntry is a stored document enriched with the law it belongs to.
type documentEntry struct {
	gemini.Document
	BSGNumber string `json:"bsg_number,omitempty"`
	LawName   string `json:"law_name,omitempty"`
	LawURL    string `json:"law_url,omitempty"`
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.files.ListDocuments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Many documents cite the same law; resolve each BSG number once.
	resolved := make(map[string]string)

	entries := make([]documentEntry, 0, len(docs))
	for _, doc := range docs {
		entry := documentEntry{Document: doc}

		title := doc.DisplayName
		if title == "" {
			title = doc.Name
		}
		if bsg := domain.ExtractBSGNumber(title); bsg != "" {
			entry.BSGNumber = bsg
			entry.LawURL = domain.LawURL(bsg)

			name, ok := resolved[bsg]
			if !ok {
				if law, err := h.laws.GetTextOfLaw(r.Context(), bsg); err == nil {
					name = law.DisplayName()
				}
				resolved[bsg] = name
			}
			entry.LawName = name
		}

		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": entries,
		"count":     len(entries),
	})
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, domain.ErrInvalidRequest("multipart upload requires a \"file\" field"))
		return
	}
	defer file.Close()

	displayName := r.FormValue("display_name")
	if displayName == "" {
		displayName = header.Filename
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	op, err := h.files.Upload(r.Context(), displayName, mimeType, header.Size, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, op)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" {
		writeError(w, r, domain.ErrInvalidRequest("missing document name"))
		return
	}

	if err := h.files.Delete(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetLaw(w http.ResponseWriter, r *http.Request) {
	bsg := chi.URLParam(r, "bsg")

	law, err := h.laws.GetTextOfLaw(r.Context(), bsg)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bsg_number":   bsg,
		"title":        law.Title,
		"abbreviation": law.Abbreviation,
		"display_name": law.DisplayName(),
		"url":          domain.LawURL(bsg),
	})
}

func (h *Handler) handleRecentQueries(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, r, domain.ErrInvalidRequest("limit must be between 1 and 200"))
			return
		}
		limit = n
	}

	records, err := h.store.RecentQueries(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	type queryEntry struct {
		ID          string    `json:"id"`
		Query       string    `json:"query"`
		Answer      string    `json:"answer,omitempty"`
		SourceCount int       `json:"source_count"`
		Status      string    `json:"status"`
		Error       string    `json:"error,omitempty"`
		TotalTokens int       `json:"total_tokens"`
		DurationMS  int64     `json:"duration_ms"`
		CreatedAt   time.Time `json:"created_at"`
	}

	entries := make([]queryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, queryEntry{
			ID:          rec.ID,
			Query:       rec.Query,
			Answer:      rec.Answer,
			SourceCount: rec.SourceCount,
			Status:      rec.Status,
			Error:       rec.ErrorMessage,
			TotalTokens: rec.TotalTokens,
			DurationMS:  rec.Duration.Milliseconds(),
			CreatedAt:   rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"queries": entries})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		apiErr = domain.ErrServer(err.Error())
	}

	writeJSON(w, apiErr.HTTPStatusCode(), map[string]any{"error": apiErr})
}
