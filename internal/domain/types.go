// Package domain holds the canonical types shared by the search engine, the
// web API and the CLI.
package domain

// Source is a cited document from the filestore, grouped by document title.
type Source struct {
	// Title is the document title as stored in the filestore, e.g.
	// "BSG 432.311" or "BSG_432_311.pdf".
	Title string `json:"title"`

	// BSGNumber is the number in the Bernese systematic collection of laws,
	// extracted from the title. Empty when the title carries none.
	BSGNumber string `json:"bsg_number,omitempty"`

	// URL links to the full text of the law on the public BELEX API.
	URL string `json:"url,omitempty"`

	// LawName is the resolved human-readable name of the law, e.g.
	// "Personalgesetz (PG)". Empty when resolution failed or was skipped.
	LawName string `json:"law_name,omitempty"`

	// Snippets are the retrieved text passages, in retrieval order.
	Snippets []string `json:"snippets,omitempty"`
}

// Usage reports token consumption for a single search.
type Usage struct {
	PromptTokens   int `json:"prompt_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
}

// SearchResult is the answer to a natural-language legal question together
// with its grounded sources. Answer may be empty when the model produced no
// text.
type SearchResult struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Usage   Usage    `json:"usage"`
}
