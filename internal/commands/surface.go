package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/henribesnard/ragkit/internal/proxy"
)

// Surface is the complete set of operations the desktop UI can invoke.
// Each method is a thin adapter: build the path, delegate to the proxy,
// hand back the typed result. No method keeps state; the backend owns
// all of it.
type Surface struct {
	proxy  *proxy.Client
	logger *slog.Logger
}

// New creates a command surface over the given proxy client.
func New(p *proxy.Client, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{proxy: p, logger: logger}
}

// HealthCheck reports the backend's health. Unlike every other command
// it never returns an error: an unreachable or unhealthy backend is
// still a valid answer, delivered as OK=false with the failure text in
// the Error field so the UI can show it.
func (s *Surface) HealthCheck(ctx context.Context) HealthStatus {
	st, err := proxy.Do[HealthStatus](ctx, s.proxy, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{OK: false, Error: err.Error()}
	}
	st.OK = true
	return st
}

// Knowledge bases.

func (s *Surface) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	return proxy.Do[[]KnowledgeBase](ctx, s.proxy, http.MethodGet, "/api/knowledge-bases", nil)
}

func (s *Surface) CreateKnowledgeBase(ctx context.Context, p CreateKnowledgeBaseParams) (KnowledgeBase, error) {
	return proxy.Do[KnowledgeBase](ctx, s.proxy, http.MethodPost, "/api/knowledge-bases", p)
}

func (s *Surface) DeleteKnowledgeBase(ctx context.Context, kbID string) error {
	_, err := proxy.Do[deletedResponse](ctx, s.proxy, http.MethodDelete, "/api/knowledge-bases/"+url.PathEscape(kbID), nil)
	return err
}

// Documents.

func (s *Surface) AddDocuments(ctx context.Context, kbID string, paths []string) error {
	body := map[string]any{"paths": paths}
	path := fmt.Sprintf("/api/knowledge-bases/%s/documents", url.PathEscape(kbID))
	_, err := proxy.Do[addedResponse](ctx, s.proxy, http.MethodPost, path, body)
	return err
}

func (s *Surface) AddFolder(ctx context.Context, p AddFolderParams) (AddFolderResponse, error) {
	body := map[string]any{
		"folder_path": p.FolderPath,
		"recursive":   p.Recursive,
		"file_types":  p.FileTypes,
	}
	path := fmt.Sprintf("/api/knowledge-bases/%s/folders", url.PathEscape(p.KBID))
	return proxy.Do[AddFolderResponse](ctx, s.proxy, http.MethodPost, path, body)
}

// Conversations.

// ListConversations lists conversations, optionally scoped to one
// knowledge base when kbID is non-empty.
func (s *Surface) ListConversations(ctx context.Context, kbID string) ([]Conversation, error) {
	path := "/api/conversations"
	if kbID != "" {
		path += "?kb_id=" + url.QueryEscape(kbID)
	}
	return proxy.Do[[]Conversation](ctx, s.proxy, http.MethodGet, path, nil)
}

// CreateConversation opens a new conversation. An empty kbID creates an
// unscoped conversation.
func (s *Surface) CreateConversation(ctx context.Context, kbID string) (Conversation, error) {
	body := map[string]any{"kb_id": nil}
	if kbID != "" {
		body["kb_id"] = kbID
	}
	return proxy.Do[Conversation](ctx, s.proxy, http.MethodPost, "/api/conversations", body)
}

func (s *Surface) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := proxy.Do[deletedResponse](ctx, s.proxy, http.MethodDelete, "/api/conversations/"+url.PathEscape(conversationID), nil)
	return err
}

func (s *Surface) GetMessages(ctx context.Context, conversationID string) ([]Message, error) {
	path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(conversationID))
	return proxy.Do[[]Message](ctx, s.proxy, http.MethodGet, path, nil)
}

// Query runs a question against a knowledge base inside a conversation.
// This is the long call of the surface; the proxy's per-call timeout is
// the only bound on it.
func (s *Surface) Query(ctx context.Context, p QueryParams) (QueryResponse, error) {
	return proxy.Do[QueryResponse](ctx, s.proxy, http.MethodPost, "/api/query", p)
}

// Settings.

func (s *Surface) GetSettings(ctx context.Context) (Settings, error) {
	return proxy.Do[Settings](ctx, s.proxy, http.MethodGet, "/api/settings", nil)
}

func (s *Surface) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	return proxy.Do[Settings](ctx, s.proxy, http.MethodPut, "/api/settings", settings)
}

// API keys. Secrets transit straight through to the backend's keyring;
// the surface never stores or logs key material.

func (s *Surface) SetAPIKey(ctx context.Context, provider, apiKey string) error {
	body := map[string]any{"provider": provider, "api_key": apiKey}
	_, err := proxy.Do[statusResponse](ctx, s.proxy, http.MethodPost, "/api/keys", body)
	return err
}

func (s *Surface) HasAPIKey(ctx context.Context, provider string) (bool, error) {
	out, err := proxy.Do[existsResponse](ctx, s.proxy, http.MethodGet, "/api/keys/"+url.PathEscape(provider), nil)
	if err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (s *Surface) DeleteAPIKey(ctx context.Context, provider string) error {
	_, err := proxy.Do[statusResponse](ctx, s.proxy, http.MethodDelete, "/api/keys/"+url.PathEscape(provider), nil)
	return err
}

// Setup wizard.

func (s *Surface) AnalyzeWizardProfile(ctx context.Context, answers WizardAnswers) (WizardProfile, error) {
	return proxy.Do[WizardProfile](ctx, s.proxy, http.MethodPost, "/api/wizard/analyze-profile", answers)
}

// DetectEnvironment reports what the backend found on the host machine
// (hardware, installed runtimes). The shape is backend-defined and
// passed through opaquely.
func (s *Surface) DetectEnvironment(ctx context.Context) (map[string]any, error) {
	return proxy.Do[map[string]any](ctx, s.proxy, http.MethodGet, "/api/wizard/environment-detection", nil)
}

// Ollama.

func (s *Surface) OllamaStatus(ctx context.Context) (OllamaStatus, error) {
	return proxy.Do[OllamaStatus](ctx, s.proxy, http.MethodGet, "/api/ollama/status", nil)
}

func (s *Surface) ListOllamaModels(ctx context.Context) ([]OllamaModel, error) {
	return proxy.Do[[]OllamaModel](ctx, s.proxy, http.MethodGet, "/api/ollama/models", nil)
}

func (s *Surface) RecommendedModels(ctx context.Context) (map[string]any, error) {
	return proxy.Do[map[string]any](ctx, s.proxy, http.MethodGet, "/api/ollama/recommended-models", nil)
}

func (s *Surface) OllamaEmbeddingModels(ctx context.Context) ([]OllamaModel, error) {
	return proxy.Do[[]OllamaModel](ctx, s.proxy, http.MethodGet, "/api/ollama/embedding-models", nil)
}

func (s *Surface) PullOllamaModel(ctx context.Context, name string) error {
	body := map[string]any{"model_name": name}
	_, err := proxy.Do[statusResponse](ctx, s.proxy, http.MethodPost, "/api/ollama/pull", body)
	return err
}

func (s *Surface) DeleteOllamaModel(ctx context.Context, name string) error {
	body := map[string]any{"model_name": name}
	_, err := proxy.Do[statusResponse](ctx, s.proxy, http.MethodDelete, "/api/ollama/models", body)
	return err
}

func (s *Surface) StartOllamaService(ctx context.Context) error {
	_, err := proxy.Do[statusResponse](ctx, s.proxy, http.MethodPost, "/api/ollama/start", nil)
	return err
}

func (s *Surface) InstallInstructions(ctx context.Context) (InstallInstructions, error) {
	return proxy.Do[InstallInstructions](ctx, s.proxy, http.MethodGet, "/api/ollama/install-instructions", nil)
}

// Small envelope shapes the backend uses for acknowledgements.

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

type addedResponse struct {
	Added int `json:"added"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}
