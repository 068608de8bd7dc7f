// Package search answers natural-language legal questions against the BELEX
// filestore and enriches the cited documents with law metadata.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/domain"
)

// DefaultSystemPrompt steers the model towards precise legal answers with
// exact article citations and BSG numbers.
const DefaultSystemPrompt = `Du bist ein Rechtsassistent für die Berner Gesetzessammlung (BELEX).

Deine Aufgabe ist es, Rechtsfragen präzise und vollständig zu beantworten. Beachte dabei:

1. Rechtsvorschriften genau bezeichnen: Nenne immer die einschlägigen Rechtsvorschriften mit ihrer genauen Bezeichnung (z.B. "Art. 5 Abs. 2 des Personalgesetzes (PG, BSG 153.01)").

2. BSG-Nummern verwenden: Gib die BSG-Nummer (Berner Systematische Gesetzessammlung) an, wenn du eine Rechtsquelle zitierst.

3. Struktur der Antwort: Beginne mit einer klaren, direkten Antwort auf die Frage. Nenne die relevanten Rechtsvorschriften mit genauer Artikelbezeichnung. Erkläre die rechtlichen Folgen oder Pflichten. Verweise auf einschlägige Ausnahmen oder Sonderregelungen.

4. Präzision: Verwende juristische Fachsprache korrekt, aber bleibe verständlich.

5. Quellenangabe: Beziehe dich ausschliesslich auf die Dokumente in der Datenbank.`

// GenerateClient is the part of the gemini client the engine needs.
type GenerateClient interface {
	GenerateContent(ctx context.Context, model string, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

// Engine runs grounded searches against a single file search store.
type Engine struct {
	client       GenerateClient
	filestore    string
	model        string
	systemPrompt string
	laws         *LawResolver
	logger       *slog.Logger
}

// NewEngine creates a search engine. laws may be nil to skip law-name
// resolution.
func NewEngine(client GenerateClient, filestore, model, systemPrompt string, laws *LawResolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:       client,
		filestore:    filestore,
		model:        model,
		systemPrompt: systemPrompt,
		laws:         laws,
		logger:       logger,
	}
}

// Search asks the model the given question with the file search tool attached
// and returns the answer together with its grouped, enriched sources.
func (e *Engine) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest("query must not be empty")
	}

	req := &gemini.GenerateContentRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: query}}},
		},
		Tools: []gemini.Tool{
			{FileSearch: &gemini.FileSearch{FileSearchStoreNames: []string{e.filestore}}},
		},
	}
	if e.systemPrompt != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: e.systemPrompt}}}
	}

	resp, err := e.client.GenerateContent(ctx, e.model, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := &domain.SearchResult{
		Query:   query,
		Answer:  resp.Text(),
		Sources: e.collectSources(ctx, resp.GroundingChunks()),
	}
	if resp.UsageMetadata != nil {
		result.Usage = domain.Usage{
			PromptTokens:   resp.UsageMetadata.PromptTokenCount,
			ResponseTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:    resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result, nil
}

// collectSources groups grounding chunks by document title, keeping snippets
// in retrieval order, and enriches each source with its BSG number, law URL
// and resolved law name. Titles are sorted for stable output.
func (e *Engine) collectSources(ctx context.Context, chunks []gemini.GroundingChunk) []domain.Source {
	snippets := make(map[string][]string)
	for _, chunk := range chunks {
		rc := chunk.RetrievedContext
		if rc == nil || rc.Title == "" {
			continue
		}
		text := strings.TrimSpace(rc.Text)
		if text != "" {
			snippets[rc.Title] = append(snippets[rc.Title], text)
		} else if _, seen := snippets[rc.Title]; !seen {
			snippets[rc.Title] = nil
		}
	}

	titles := make([]string, 0, len(snippets))
	for title := range snippets {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	sources := make([]domain.Source, 0, len(titles))
	for _, title := range titles {
		src := domain.Source{
			Title:    title,
			Snippets: snippets[title],
		}

		if bsg := domain.ExtractBSGNumber(title); bsg != "" {
			src.BSGNumber = bsg
			src.URL = domain.LawURL(bsg)
			if e.laws != nil {
				src.LawName = e.laws.LawName(ctx, bsg)
			}
		}

		sources = append(sources, src)
	}

	return sources
}
