package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"ca-assistant-be/internal/bootstrap"
	"ca-assistant-be/internal/config"
	"ca-assistant-be/internal/controller"
	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/handler"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/internal/pkg/serverutils"
	"ca-assistant-be/internal/repository/memory"
	"ca-assistant-be/internal/server"
	"ca-assistant-be/internal/service"
	internalWS "ca-assistant-be/internal/websocket"
	"ca-assistant-be/pkg/extract"
	"ca-assistant-be/pkg/fusion"
	"ca-assistant-be/pkg/fusion/document"
	"ca-assistant-be/pkg/fusion/knowledge"
	"ca-assistant-be/pkg/fusion/scorer"
	"ca-assistant-be/pkg/fusion/webgate"
	"ca-assistant-be/pkg/vectorsearch"
	"ca-assistant-be/pkg/websearch"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fixedVectorProvider struct{}

func (fixedVectorProvider) Search(ctx context.Context, query string, collections []string, limit int) ([]vectorsearch.Hit, error) {
	return []vectorsearch.Hit{
		{
			ID:         "1",
			Score:      0.9,
			Collection: "tax_documents",
			Content:    "Section 44AB mandates a tax audit when business turnover crosses the prescribed limit.",
			Title:      "Tax audit applicability",
			Source:     "icai.org",
		},
	}, nil
}

func (fixedVectorProvider) Collections(ctx context.Context) []vectorsearch.CollectionInfo {
	return []vectorsearch.CollectionInfo{
		{Name: "tax_documents", Available: true},
		{Name: "ca_knowledge_base", Available: false, Error: "collection not found"},
	}
}

func (fixedVectorProvider) Ping(ctx context.Context) error { return nil }

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

var _ logger.ILogger = noopLogger{}

// newTestApp assembles the full HTTP surface against in-memory sessions
// and canned knowledge hits. No external backend is touched.
func newTestApp() *fiber.App {
	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "8000",
			CorsAllowedOrigins: "http://localhost:5173",
		},
	}

	quiet := log.New(io.Discard, "", 0)
	testLogger := noopLogger{}

	sc := scorer.NewScorer(nil, quiet)
	matcher := document.NewMatcher(sc, quiet)
	retriever := knowledge.NewRetriever(fixedVectorProvider{}, quiet)
	gate := webgate.NewGate(websearch.NewClient(websearch.Config{}), quiet)
	engine := fusion.NewEngine(matcher, retriever, gate, nil, quiet, fusion.DefaultConfig())

	sessionRepo := memory.NewSessionRepository()
	hub := internalWS.NewHub(nil, testLogger)
	go hub.Run()

	chatService := service.NewChatService(engine, sessionRepo, nil, hub, testLogger)
	documentService := service.NewDocumentService(extract.NewProcessor(0), sessionRepo, nil, nil, testLogger)
	sessionService := service.NewSessionService(sessionRepo, testLogger)
	healthService := service.NewHealthService(nil, fixedVectorProvider{}, websearch.NewClient(websearch.Config{}), nil, nil, testLogger)

	container := &bootstrap.Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		SessionController:  controller.NewSessionController(sessionService),
		HealthController:   controller.NewHealthController(healthService),
		ProgressHandler:    handler.NewProgressHandler(hub, testLogger),
		WebSocketHub:       hub,
	}

	return server.New(cfg, container).GetApp()
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result dto.HealthResponse
	json.NewDecoder(resp.Body).Decode(&result)

	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, dto.StatusHealthy, result.Services["vector_search"])
	assert.Equal(t, dto.StatusNotConfigured, result.Services["completion"])
	assert.Equal(t, dto.StatusNotConfigured, result.Services["web_search"])
	assert.Equal(t, dto.StatusNotConfigured, result.Services["database"])
	assert.Equal(t, dto.StatusNotConfigured, result.Services["redis"])
	assert.NotEmpty(t, result.Timestamp)
}

func TestCollectionsEndpoint(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/collections", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result serverutils.BaseResponse[dto.CollectionsResponse]
	json.NewDecoder(resp.Body).Decode(&result)

	assert.True(t, result.Success)
	assert.Len(t, result.Data.Collections, 2)
	assert.Equal(t, "tax_documents", result.Data.Collections[0].Name)
	assert.False(t, result.Data.Collections[1].Available)
}

func TestChatFlow(t *testing.T) {
	app := newTestApp()

	t.Run("Chat creates session and answers", func(t *testing.T) {
		body, _ := json.Marshal(dto.ChatRequest{
			Message: "When is a tax audit under section 44AB required?",
		})

		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req, -1)
		assert.Equal(t, 200, resp.StatusCode)

		var result serverutils.BaseResponse[dto.ChatResponse]
		json.NewDecoder(resp.Body).Decode(&result)

		assert.True(t, result.Success)
		assert.NotEmpty(t, result.Data.SessionId)
		assert.NotEmpty(t, result.Data.Response)
		assert.Greater(t, result.Data.Confidence, 0.0)
		assert.False(t, result.Data.WebSearchUsed)
	})

	t.Run("Chat without message rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req, -1)
		assert.Equal(t, 400, resp.StatusCode)

		var result serverutils.BaseResponse[map[string]string]
		json.NewDecoder(resp.Body).Decode(&result)

		assert.False(t, result.Success)
		assert.Equal(t, "Validation failed", result.Message)
	})

	t.Run("Chat keeps session across turns", func(t *testing.T) {
		body, _ := json.Marshal(dto.ChatRequest{Message: "What is the audit turnover threshold?"})
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, -1)

		var first serverutils.BaseResponse[dto.ChatResponse]
		json.NewDecoder(resp.Body).Decode(&first)

		body, _ = json.Marshal(dto.ChatRequest{
			Message:   "And for professionals?",
			SessionId: first.Data.SessionId,
		})
		req = httptest.NewRequest("POST", "/api/chat", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ = app.Test(req, -1)

		var second serverutils.BaseResponse[dto.ChatResponse]
		json.NewDecoder(resp.Body).Decode(&second)

		assert.Equal(t, first.Data.SessionId, second.Data.SessionId)
	})
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/sessions", nil)
	resp, _ := app.Test(req, -1)
	assert.Equal(t, 201, resp.StatusCode)

	var created serverutils.BaseResponse[dto.CreateSessionResponse]
	json.NewDecoder(resp.Body).Decode(&created)
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Data.SessionId)

	req = httptest.NewRequest("DELETE", "/api/sessions/"+created.Data.SessionId, nil)
	resp, _ = app.Test(req, -1)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/sessions/"+created.Data.SessionId, nil)
	resp, _ = app.Test(req, -1)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDocumentFlow(t *testing.T) {
	app := newTestApp()

	upload := func(fileName, content, sessionID string) (*serverutils.BaseResponse[dto.DocumentResponse], int) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", fileName)
		assert.NoError(t, err)
		part.Write([]byte(content))
		if sessionID != "" {
			writer.WriteField("session_id", sessionID)
		}
		writer.Close()

		req := httptest.NewRequest("POST", "/api/documents", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, _ := app.Test(req, -1)

		var result serverutils.BaseResponse[dto.DocumentResponse]
		json.NewDecoder(resp.Body).Decode(&result)
		return &result, resp.StatusCode
	}

	result, status := upload("balance_sheet.txt", "Assets and liabilities as of 31 March 2025.", "")
	assert.Equal(t, 201, status)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Data.Id)
	assert.NotEmpty(t, result.Data.SessionId)

	sessionID := result.Data.SessionId

	t.Run("List returns the uploaded document", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents?session_id="+sessionID, nil)
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 200, resp.StatusCode)

		var listed serverutils.BaseResponse[dto.ListDocumentsResponse]
		json.NewDecoder(resp.Body).Decode(&listed)
		assert.Len(t, listed.Data.Documents, 1)
		assert.Equal(t, "balance_sheet.txt", listed.Data.Documents[0].Name)
	})

	t.Run("List without session_id rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents", nil)
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("Unsupported extension rejected", func(t *testing.T) {
		_, status := upload("scan.png", "binary", sessionID)
		assert.Equal(t, 400, status)
	})

	t.Run("Delete removes the document", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/documents/"+result.Data.Id+"?session_id="+sessionID, nil)
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 200, resp.StatusCode)

		req = httptest.NewRequest("GET", "/api/documents?session_id="+sessionID, nil)
		resp, _ = app.Test(req, -1)

		var listed serverutils.BaseResponse[dto.ListDocumentsResponse]
		json.NewDecoder(resp.Body).Decode(&listed)
		assert.Len(t, listed.Data.Documents, 0)
	})

	t.Run("Delete unknown document is 404", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/documents/no-such-doc?session_id="+sessionID, nil)
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestChatUsesUploadedDocument(t *testing.T) {
	app := newTestApp()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "audit_findings.txt")
	part.Write([]byte("The audit examined depreciation schedules and found the fixed asset register complete."))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, _ := app.Test(req, -1)

	var uploaded serverutils.BaseResponse[dto.DocumentResponse]
	json.NewDecoder(resp.Body).Decode(&uploaded)

	body, _ := json.Marshal(dto.ChatRequest{
		Message:   "What did the audit examine in the uploaded document about depreciation schedules and the fixed asset register?",
		SessionId: uploaded.Data.SessionId,
	})
	req = httptest.NewRequest("POST", "/api/chat", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	assert.Equal(t, 200, resp.StatusCode)

	var answered serverutils.BaseResponse[dto.ChatResponse]
	json.NewDecoder(resp.Body).Decode(&answered)

	assert.True(t, answered.Data.UsedDocumentContext)
	assert.Equal(t, uploaded.Data.SessionId, answered.Data.SessionId)
}
