package commands

import "encoding/json"

// Response shapes mirror the backend's /api JSON contract.

// HealthStatus is the one response the UI must always be able to
// render: an unreachable backend is reported as OK=false, not as a
// command failure.
type HealthStatus struct {
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

type KnowledgeBase struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	DocumentCount       int    `json:"document_count"`
	ChunkCount          int    `json:"chunk_count"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

type Conversation struct {
	ID        string  `json:"id"`
	KBID      *string `json:"kb_id"`
	Title     string  `json:"title,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type Message struct {
	ID             string   `json:"id"`
	ConversationID string   `json:"conversation_id"`
	Role           string   `json:"role"`
	Content        string   `json:"content"`
	Sources        []Source `json:"sources,omitempty"`
	LatencyMS      *int     `json:"latency_ms"`
	CreatedAt      string   `json:"created_at"`
}

type Source struct {
	Filename string  `json:"filename"`
	Chunk    string  `json:"chunk"`
	Score    float64 `json:"score"`
}

type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	LatencyMS int      `json:"latency_ms"`
}

type AddFolderFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type AddFolderResponse struct {
	Added          []string           `json:"added"`
	Failed         []AddFolderFailure `json:"failed"`
	TotalProcessed int                `json:"total_processed"`
}

type Settings struct {
	EmbeddingProvider       string  `json:"embedding_provider"`
	EmbeddingModel          string  `json:"embedding_model"`
	EmbeddingChunkStrategy  string  `json:"embedding_chunk_strategy"`
	EmbeddingChunkSize      int     `json:"embedding_chunk_size"`
	EmbeddingChunkOverlap   int     `json:"embedding_chunk_overlap"`
	RetrievalArchitecture   string  `json:"retrieval_architecture"`
	RetrievalTopK           int     `json:"retrieval_top_k"`
	RetrievalSemanticWeight float64 `json:"retrieval_semantic_weight"`
	RetrievalLexicalWeight  float64 `json:"retrieval_lexical_weight"`
	RetrievalRerankWeight   float64 `json:"retrieval_rerank_weight"`
	RetrievalRerankEnabled  bool    `json:"retrieval_rerank_enabled"`
	RetrievalRerankProvider string  `json:"retrieval_rerank_provider"`
	RetrievalMaxChunks      int     `json:"retrieval_max_chunks"`
	LLMProvider             string  `json:"llm_provider"`
	LLMModel                string  `json:"llm_model"`
	Theme                   string  `json:"theme"`
}

type WizardProfile struct {
	ProfileName   string          `json:"profile_name"`
	Description   string          `json:"description"`
	ConfigSummary json.RawMessage `json:"config_summary"`
	FullConfig    json.RawMessage `json:"full_config"`
}

type OllamaStatus struct {
	Installed bool   `json:"installed"`
	Running   bool   `json:"running"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

type OllamaModel struct {
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	SizeFormatted string `json:"size_formatted"`
	Digest        string `json:"digest"`
	ModifiedAt    string `json:"modified_at"`
}

type InstallInstructions struct {
	Platform     string            `json:"platform"`
	Instructions string            `json:"instructions"`
	AllPlatforms map[string]string `json:"all_platforms"`
}

// Request shapes.

type CreateKnowledgeBaseParams struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

type QueryParams struct {
	KBID           string `json:"kb_id"`
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question"`
}

type AddFolderParams struct {
	KBID       string   `json:"kb_id"`
	FolderPath string   `json:"folder_path"`
	Recursive  bool     `json:"recursive"`
	FileTypes  []string `json:"file_types"`
}

type WizardAnswers struct {
	KBType            string `json:"kb_type"`
	HasTablesDiagrams bool   `json:"has_tables_diagrams"`
	NeedsMultiDoc     bool   `json:"needs_multi_document"`
	LargeDocuments    bool   `json:"large_documents"`
	NeedsPrecision    bool   `json:"needs_precision"`
	FrequentUpdates   bool   `json:"frequent_updates"`
	CitePageNumbers   bool   `json:"cite_page_numbers"`
}
