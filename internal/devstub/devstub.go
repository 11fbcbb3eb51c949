// Package devstub provides an in-memory stand-in for the Python
// backend. It speaks the same HTTP contract (health, shutdown, the
// /api routes) so the desktop shell, the proxy and the command surface
// can be exercised without a Python runtime.
package devstub

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/henribesnard/ragkit/internal/commands"
)

// Options tunes stub behavior for tests.
type Options struct {
	// Version reported by /health. Defaults to "stub".
	Version string
	// FailHealthProbes makes the first N health probes answer 503,
	// simulating a backend that is still importing its ML stack.
	FailHealthProbes int
}

// Server is the stub backend. All state is in memory and guarded by a
// single mutex; the stub trades concurrency for simplicity.
type Server struct {
	mu            sync.Mutex
	version       string
	failHealth    int
	nextID        int
	kbs           map[string]commands.KnowledgeBase
	conversations map[string]commands.Conversation
	messages      map[string][]commands.Message
	settings      commands.Settings
	keys          map[string]string
	models        map[string]commands.OllamaModel

	shutdown chan struct{}
	once     sync.Once
	engine   *gin.Engine
}

// New builds a stub server with one seeded Ollama model and default
// settings.
func New(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "stub"
	}
	s := &Server{
		version:       opts.Version,
		failHealth:    opts.FailHealthProbes,
		kbs:           make(map[string]commands.KnowledgeBase),
		conversations: make(map[string]commands.Conversation),
		messages:      make(map[string][]commands.Message),
		keys:          make(map[string]string),
		models: map[string]commands.OllamaModel{
			"nomic-embed-text": {
				Name:          "nomic-embed-text",
				Size:          274302450,
				SizeFormatted: "274 MB",
				Digest:        "0a109f422b47",
				ModifiedAt:    time.Now().UTC().Format(time.RFC3339),
			},
		},
		settings: commands.Settings{
			EmbeddingProvider:       "ollama",
			EmbeddingModel:          "nomic-embed-text",
			EmbeddingChunkStrategy:  "recursive",
			EmbeddingChunkSize:      512,
			EmbeddingChunkOverlap:   64,
			RetrievalArchitecture:   "hybrid",
			RetrievalTopK:           5,
			RetrievalSemanticWeight: 0.7,
			RetrievalLexicalWeight:  0.3,
			RetrievalMaxChunks:      10,
			LLMProvider:             "ollama",
			LLMModel:                "llama3.2",
			Theme:                   "system",
		},
		shutdown: make(chan struct{}),
	}
	s.engine = s.buildRouter()
	return s
}

// Handler exposes the stub as an http.Handler for httptest servers.
func (s *Server) Handler() http.Handler { return s.engine }

// ShutdownRequested is closed when a client POSTs /shutdown.
func (s *Server) ShutdownRequested() <-chan struct{} { return s.shutdown }

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.POST("/shutdown", s.handleShutdown)

	api := r.Group("/api")
	{
		api.GET("/knowledge-bases", s.listKBs)
		api.POST("/knowledge-bases", s.createKB)
		api.DELETE("/knowledge-bases/:id", s.deleteKB)
		api.POST("/knowledge-bases/:id/documents", s.addDocuments)
		api.POST("/knowledge-bases/:id/folders", s.addFolder)

		api.GET("/conversations", s.listConversations)
		api.POST("/conversations", s.createConversation)
		api.DELETE("/conversations/:id", s.deleteConversation)
		api.GET("/conversations/:id/messages", s.getMessages)

		api.POST("/query", s.query)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)

		api.POST("/keys", s.setKey)
		api.GET("/keys/:provider", s.hasKey)
		api.DELETE("/keys/:provider", s.deleteKey)

		api.POST("/wizard/analyze-profile", s.analyzeProfile)
		api.GET("/wizard/environment-detection", s.detectEnvironment)

		api.GET("/ollama/status", s.ollamaStatus)
		api.GET("/ollama/models", s.listModels)
		api.DELETE("/ollama/models", s.deleteModel)
		api.GET("/ollama/recommended-models", s.recommendedModels)
		api.GET("/ollama/embedding-models", s.embeddingModels)
		api.POST("/ollama/pull", s.pullModel)
		api.POST("/ollama/start", s.startOllama)
		api.GET("/ollama/install-instructions", s.installInstructions)
	}
	return r
}

func (s *Server) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *Server) health(c *gin.Context) {
	s.mu.Lock()
	failing := s.failHealth > 0
	if failing {
		s.failHealth--
	}
	version := s.version
	s.mu.Unlock()

	if failing {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "starting up"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "version": version})
}

func (s *Server) handleShutdown(c *gin.Context) {
	s.once.Do(func() { close(s.shutdown) })
	c.JSON(http.StatusOK, gin.H{"status": "shutting down"})
}

func (s *Server) listKBs(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]commands.KnowledgeBase, 0, len(s.kbs))
	for _, kb := range s.kbs {
		out = append(out, kb)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createKB(c *gin.Context) {
	var p commands.CreateKnowledgeBaseParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if p.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "name is required"})
		return
	}
	model := p.EmbeddingModel
	if model == "" {
		model = "nomic-embed-text"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kb := commands.KnowledgeBase{
		ID:                  s.id("kb"),
		Name:                p.Name,
		Description:         p.Description,
		EmbeddingModel:      model,
		EmbeddingDimensions: 768,
		CreatedAt:           now(),
		UpdatedAt:           now(),
	}
	s.kbs[kb.ID] = kb
	c.JSON(http.StatusOK, kb)
}

func (s *Server) deleteKB(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kbs[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "knowledge base not found: " + id})
		return
	}
	delete(s.kbs, id)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) addDocuments(c *gin.Context) {
	id := c.Param("id")
	var body struct {
		Paths []string `json:"paths"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "knowledge base not found: " + id})
		return
	}
	kb.DocumentCount += len(body.Paths)
	kb.ChunkCount += len(body.Paths) * 4
	kb.UpdatedAt = now()
	s.kbs[id] = kb
	c.JSON(http.StatusOK, gin.H{"added": len(body.Paths)})
}

func (s *Server) addFolder(c *gin.Context) {
	id := c.Param("id")
	var body struct {
		FolderPath string   `json:"folder_path"`
		Recursive  bool     `json:"recursive"`
		FileTypes  []string `json:"file_types"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "knowledge base not found: " + id})
		return
	}
	added := []string{body.FolderPath + "/readme.md"}
	kb.DocumentCount += len(added)
	kb.UpdatedAt = now()
	s.kbs[id] = kb
	c.JSON(http.StatusOK, commands.AddFolderResponse{
		Added:          added,
		Failed:         []commands.AddFolderFailure{},
		TotalProcessed: len(added),
	})
}

func (s *Server) listConversations(c *gin.Context) {
	kbFilter := c.Query("kb_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]commands.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		if kbFilter != "" && (conv.KBID == nil || *conv.KBID != kbFilter) {
			continue
		}
		out = append(out, conv)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createConversation(c *gin.Context) {
	var body struct {
		KBID *string `json:"kb_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv := commands.Conversation{
		ID:        s.id("conv"),
		KBID:      body.KBID,
		Title:     "New conversation",
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = []commands.Message{}
	c.JSON(http.StatusOK, conv)
}

func (s *Server) deleteConversation(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "conversation not found: " + id})
		return
	}
	delete(s.conversations, id)
	delete(s.messages, id)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) getMessages(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.messages[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "conversation not found: " + id})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) query(c *gin.Context) {
	var p commands.QueryParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kbs[p.KBID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "knowledge base not found: " + p.KBID})
		return
	}
	if _, ok := s.conversations[p.ConversationID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "conversation not found: " + p.ConversationID})
		return
	}

	resp := commands.QueryResponse{
		Answer: "stub answer for: " + p.Question,
		Sources: []commands.Source{
			{Filename: "readme.md", Chunk: "stub chunk", Score: 0.92},
		},
		LatencyMS: 7,
	}
	latency := resp.LatencyMS
	s.messages[p.ConversationID] = append(s.messages[p.ConversationID],
		commands.Message{
			ID:             s.id("msg"),
			ConversationID: p.ConversationID,
			Role:           "user",
			Content:        p.Question,
			CreatedAt:      now(),
		},
		commands.Message{
			ID:             s.id("msg"),
			ConversationID: p.ConversationID,
			Role:           "assistant",
			Content:        resp.Answer,
			Sources:        resp.Sources,
			LatencyMS:      &latency,
			CreatedAt:      now(),
		},
	)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var in commands.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = in
	c.JSON(http.StatusOK, s.settings)
}

func (s *Server) setKey(c *gin.Context) {
	var body struct {
		Provider string `json:"provider"`
		APIKey   string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[body.Provider] = body.APIKey
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) hasKey(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[c.Param("provider")]
	c.JSON(http.StatusOK, gin.H{"exists": ok})
}

func (s *Server) deleteKey(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, c.Param("provider"))
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) analyzeProfile(c *gin.Context) {
	var answers commands.WizardAnswers
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	profile := "balanced"
	if answers.NeedsPrecision {
		profile = "precision"
	}
	c.JSON(http.StatusOK, gin.H{
		"profile_name":   profile,
		"description":    "stub profile for kb_type " + answers.KBType,
		"config_summary": gin.H{"retrieval": "hybrid"},
		"full_config":    gin.H{"retrieval_top_k": 5},
	})
}

func (s *Server) detectEnvironment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
		"ollama_detected": true,
	})
}

func (s *Server) ollamaStatus(c *gin.Context) {
	c.JSON(http.StatusOK, commands.OllamaStatus{Installed: true, Running: true, Version: "0.5.0"})
}

func (s *Server) listModels(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]commands.OllamaModel, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteModel(c *gin.Context) {
	var body struct {
		ModelName string `json:"model_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[body.ModelName]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "model not found: " + body.ModelName})
		return
	}
	delete(s.models, body.ModelName)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) recommendedModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"llm":       []string{"llama3.2", "qwen2.5"},
		"embedding": []string{"nomic-embed-text"},
	})
}

func (s *Server) embeddingModels(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]commands.OllamaModel, 0, 1)
	for name, m := range s.models {
		if name == "nomic-embed-text" {
			out = append(out, m)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) pullModel(c *gin.Context) {
	var body struct {
		ModelName string `json:"model_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[body.ModelName] = commands.OllamaModel{
		Name:          body.ModelName,
		Size:          1024 * 1024,
		SizeFormatted: "1.0 MB",
		Digest:        "stubdigest",
		ModifiedAt:    now(),
	}
	c.JSON(http.StatusOK, gin.H{"status": "pulled"})
}

func (s *Server) startOllama(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "running"})
}

func (s *Server) installInstructions(c *gin.Context) {
	all := map[string]string{
		"darwin":  "brew install ollama",
		"linux":   "curl -fsSL https://ollama.com/install.sh | sh",
		"windows": "winget install Ollama.Ollama",
	}
	c.JSON(http.StatusOK, commands.InstallInstructions{
		Platform:     runtime.GOOS,
		Instructions: all[runtime.GOOS],
		AllPlatforms: all,
	})
}
