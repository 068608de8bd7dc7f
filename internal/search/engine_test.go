package search

import (
	"context"
	"testing"
	"time"

	"github.com/kueblaw/belex/internal/api/belex"
	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/domain"
)

type fakeGenerateClient struct {
	lastModel string
	lastReq   *gemini.GenerateContentRequest
	resp      *gemini.GenerateContentResponse
	err       error
}

func (f *fakeGenerateClient) GenerateContent(_ context.Context, model string, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastReq = req
	return f.resp, f.err
}

type fakeLawLookup struct {
	laws  map[string]*belex.TextOfLaw
	calls int
}

func (f *fakeLawLookup) GetTextOfLaw(_ context.Context, bsgNumber string) (*belex.TextOfLaw, error) {
	f.calls++
	if law, ok := f.laws[bsgNumber]; ok {
		return law, nil
	}
	return nil, domain.ErrNotFound("no law recorded for BSG " + bsgNumber)
}

func chunk(title, text string) gemini.GroundingChunk {
	return gemini.GroundingChunk{
		RetrievedContext: &gemini.RetrievedContext{Title: title, Text: text},
	}
}

func TestEngine_Search(t *testing.T) {
	client := &fakeGenerateClient{
		resp: &gemini.GenerateContentResponse{
			Candidates: []gemini.Candidate{
				{
					Content: &gemini.Content{
						Role:  "model",
						Parts: []gemini.Part{{Text: "Die Schulpflicht dauert elf Jahre."}},
					},
					GroundingMetadata: &gemini.GroundingMetadata{
						GroundingChunks: []gemini.GroundingChunk{
							chunk("BSG 432.210", "Art. 7 Die Schulpflicht dauert elf Jahre. "),
							chunk("BSG 101.1", "Art. 29 Grundsatz."),
							chunk("BSG 432.210", "Art. 8 Der Besuch ist unentgeltlich."),
						},
					},
				},
			},
			UsageMetadata: &gemini.UsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 20, TotalTokenCount: 30},
		},
	}

	laws := &fakeLawLookup{laws: map[string]*belex.TextOfLaw{
		"432.210": {Title: "Volksschulgesetz", Abbreviation: "VSG"},
	}}
	resolver := NewLawResolver(laws, time.Hour, nil)

	engine := NewEngine(client, "fileSearchStores/belex-test", "gemini-2.5-flash", DefaultSystemPrompt, resolver, nil)

	result, err := engine.Search(context.Background(), "Wie lange dauert die Schulpflicht?")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if client.lastModel != "gemini-2.5-flash" {
		t.Errorf("model = %q, want gemini-2.5-flash", client.lastModel)
	}
	if client.lastReq.SystemInstruction == nil {
		t.Error("expected a system instruction on the request")
	}
	if len(client.lastReq.Tools) != 1 || client.lastReq.Tools[0].FileSearch == nil {
		t.Fatal("expected a file search tool on the request")
	}
	if got := client.lastReq.Tools[0].FileSearch.FileSearchStoreNames[0]; got != "fileSearchStores/belex-test" {
		t.Errorf("filestore = %q, want fileSearchStores/belex-test", got)
	}

	if result.Answer != "Die Schulpflicht dauert elf Jahre." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.Usage.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", result.Usage.TotalTokens)
	}

	// Sources are grouped by title and sorted.
	if len(result.Sources) != 2 {
		t.Fatalf("Sources count = %d, want 2", len(result.Sources))
	}
	if result.Sources[0].Title != "BSG 101.1" || result.Sources[1].Title != "BSG 432.210" {
		t.Errorf("source titles = %q, %q; want sorted order", result.Sources[0].Title, result.Sources[1].Title)
	}

	vsg := result.Sources[1]
	if len(vsg.Snippets) != 2 {
		t.Fatalf("Snippets count = %d, want 2", len(vsg.Snippets))
	}
	if vsg.Snippets[0] != "Art. 7 Die Schulpflicht dauert elf Jahre." {
		t.Errorf("first snippet = %q, want trimmed retrieval order", vsg.Snippets[0])
	}
	if vsg.BSGNumber != "432.210" {
		t.Errorf("BSGNumber = %q, want 432.210", vsg.BSGNumber)
	}
	if vsg.URL != "https://www.belex.sites.be.ch/api/de/texts_of_law/432.210" {
		t.Errorf("URL = %q", vsg.URL)
	}
	if vsg.LawName != "Volksschulgesetz (VSG)" {
		t.Errorf("LawName = %q, want Volksschulgesetz (VSG)", vsg.LawName)
	}

	// The lookup for BSG 101.1 failed; the source keeps its raw title.
	if result.Sources[0].LawName != "" {
		t.Errorf("LawName for unresolved law = %q, want empty", result.Sources[0].LawName)
	}
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	engine := NewEngine(&fakeGenerateClient{}, "fileSearchStores/x", "gemini-2.5-flash", "", nil, nil)

	_, err := engine.Search(context.Background(), "   ")
	if err == nil {
		t.Fatal("Search() error = nil, want error")
	}

	apiErr, ok := err.(*domain.APIError)
	if !ok || apiErr.Type != domain.ErrorTypeInvalidRequest {
		t.Errorf("error = %v, want invalid_request", err)
	}
}

func TestEngine_Search_NoAnswer(t *testing.T) {
	client := &fakeGenerateClient{resp: &gemini.GenerateContentResponse{}}
	engine := NewEngine(client, "fileSearchStores/x", "gemini-2.5-flash", "", nil, nil)

	result, err := engine.Search(context.Background(), "Frage ohne Antwort")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Answer != "" {
		t.Errorf("Answer = %q, want empty", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("Sources count = %d, want 0", len(result.Sources))
	}
}

func TestLawResolver_Cache(t *testing.T) {
	laws := &fakeLawLookup{laws: map[string]*belex.TextOfLaw{
		"153.01": {Title: "Personalgesetz", Abbreviation: "PG"},
	}}
	resolver := NewLawResolver(laws, time.Hour, nil)

	for i := 0; i < 3; i++ {
		if got := resolver.LawName(context.Background(), "153.01"); got != "Personalgesetz (PG)" {
			t.Fatalf("LawName() = %q, want Personalgesetz (PG)", got)
		}
	}

	if laws.calls != 1 {
		t.Errorf("lookup calls = %d, want 1 (cached)", laws.calls)
	}

	// Failed lookups are not cached.
	resolver.LawName(context.Background(), "999.999")
	resolver.LawName(context.Background(), "999.999")
	if laws.calls != 3 {
		t.Errorf("lookup calls = %d, want 3", laws.calls)
	}
}
