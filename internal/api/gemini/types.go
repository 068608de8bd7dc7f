package gemini

import (
	"encoding/json"
	"strings"
)

// Content is a single turn of model input or output.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one piece of a content turn. Only text parts are used here.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Tool declares a tool the model may use while answering.
type Tool struct {
	FileSearch *FileSearch `json:"fileSearch,omitempty"`
}

// FileSearch grounds the answer in one or more file search stores.
type FileSearch struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

// GenerateContentRequest is the request body for models.generateContent.
type GenerateContentRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Tools             []Tool    `json:"tools,omitempty"`
}

// GenerateContentResponse is the response body for models.generateContent.
type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content           *Content           `json:"content,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// GroundingMetadata carries the retrieval citations for a candidate.
type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
}

// GroundingChunk is a single retrieved passage backing the answer.
type GroundingChunk struct {
	RetrievedContext *RetrievedContext `json:"retrievedContext,omitempty"`
}

// RetrievedContext identifies the document and passage a chunk came from.
type RetrievedContext struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// UsageMetadata reports token counts for a generateContent call.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

// Text concatenates the text parts of the first candidate. Returns an empty
// string when the model produced no text.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

// GroundingChunks returns the grounding chunks of the first candidate.
func (r *GenerateContentResponse) GroundingChunks() []GroundingChunk {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return r.Candidates[0].GroundingMetadata.GroundingChunks
}

// Document is a document stored in a file search store.
type Document struct {
	// Name is the full resource name, e.g.
	// "fileSearchStores/abc/documents/xyz".
	Name           string           `json:"name"`
	DisplayName    string           `json:"displayName,omitempty"`
	MimeType       string           `json:"mimeType,omitempty"`
	SizeBytes      string           `json:"sizeBytes,omitempty"`
	CreateTime     string           `json:"createTime,omitempty"`
	UpdateTime     string           `json:"updateTime,omitempty"`
	State          string           `json:"state,omitempty"`
	CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
}

// CustomMetadata is a key/value pair attached to a document at upload time.
type CustomMetadata struct {
	Key         string `json:"key"`
	StringValue string `json:"stringValue,omitempty"`
}

// ListDocumentsResponse is one page of a document listing.
type ListDocumentsResponse struct {
	Documents     []Document `json:"documents,omitempty"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// Operation is the long-running operation returned by an upload. The
// imported document appears in Response once Done is true.
type Operation struct {
	Name     string          `json:"name,omitempty"`
	Done     bool            `json:"done,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// errorResponse is the standard Google API error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
