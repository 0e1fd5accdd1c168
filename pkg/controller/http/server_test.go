package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/atelier-lab/brandloom/pkg/controller/http"
	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/repository/memory"
	"github.com/atelier-lab/brandloom/pkg/service/embedding"
	"github.com/atelier-lab/brandloom/pkg/service/rag"
	"github.com/atelier-lab/brandloom/pkg/usecase"
)

// stubProvider is a struct-with-func-fields LLM stub
type stubProvider struct {
	generateFn func(ctx context.Context, req interfaces.GenerateRequest) (string, error)
}

func (s *stubProvider) ID() string { return "stub/test" }

func (s *stubProvider) Generate(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, req)
	}
	return `{"intent": "general_chat", "params": {}, "response": "Hello!"}`, nil
}

func (s *stubProvider) HealthCheck(_ context.Context) bool { return true }

func setupServer(t *testing.T, repo *memory.Memory, handlers map[types.Intent]interfaces.ActionHandler) http.Handler {
	t.Helper()
	engine := rag.New(repo, embedding.NewLocalEmbedder())
	uc := usecase.New(repo, &stubProvider{}, engine, usecase.WithHandlers(handlers))
	srv, err := httpctrl.New(uc)
	gt.NoError(t, err).Required()
	return srv
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	handler := setupServer(t, memory.New(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["status"]).Equal("ok")
}

func TestChatEndpoint(t *testing.T) {
	repo := memory.New()
	handler := setupServer(t, repo, nil)

	t.Run("valid chat turn", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/chat", map[string]any{
			"user_id": "user-1",
			"message": "hello there",
		})

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp usecase.ChatResponse
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.Intent).Equal(types.IntentGeneralChat)
		gt.Value(t, resp.Response).Equal("Hello!")
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/chat", map[string]any{
			"user_id": "user-1",
		})

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestApproveEndpoint(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	handlers := map[types.Intent]interfaces.ActionHandler{
		types.IntentSchedulePost: func(_ context.Context, params map[string]any) (*interfaces.HandlerResult, error) {
			if approved, _ := params["approved"].(bool); !approved {
				return &interfaces.HandlerResult{
					Success:       true,
					Message:       "waiting for sign-off",
					NeedsApproval: true,
				}, nil
			}
			return &interfaces.HandlerResult{Success: true, Message: "post published"}, nil
		},
	}
	engine := rag.New(repo, embedding.NewLocalEmbedder())
	uc := usecase.New(repo, &stubProvider{}, engine, usecase.WithHandlers(handlers))
	srv, err := httpctrl.New(uc)
	gt.NoError(t, err).Required()

	task, err := repo.Task().Create(ctx, &model.TaskExecution{
		UserID: "user-1",
		Intent: types.IntentSchedulePost,
		Status: types.TaskStatusPlanned,
		Plan:   []string{"validate_schedule", "queue_publication"},
	})
	gt.NoError(t, err).Required()

	parked, _, err := uc.Executor().Execute(ctx, task)
	gt.NoError(t, err).Required()
	gt.Value(t, parked.Status).Equal(types.TaskStatusWaitingApproval)

	t.Run("approve parked task", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/tasks/"+string(parked.ID)+"/approve", nil)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			TaskID  string `json:"task_id"`
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Status).Equal(string(types.TaskStatusPublished))
		gt.Value(t, body.Message).Equal("post published")
	})

	t.Run("approving again conflicts", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/tasks/"+string(parked.ID)+"/approve", nil)

		gt.Value(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("unknown task is not found", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/tasks/"+string(types.NewTaskID())+"/approve", nil)

		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestBrandKnowledgeEndpoints(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	handler := setupServer(t, repo, nil)

	b, err := repo.Brand().Create(ctx, &model.Brand{
		UserID:     "user-1",
		Name:       "Acme",
		Guidelines: "Acme sells enterprise routers and network equipment",
	})
	gt.NoError(t, err).Required()

	_, err = repo.Source().Create(ctx, b.ID, &model.KnowledgeSource{
		Name:       "catalog",
		SourceType: types.SourceTypeDocument,
		Summary:    "Acme sells enterprise routers and managed switches for data centers.",
		Active:     true,
	})
	gt.NoError(t, err).Required()

	t.Run("health reports source counts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brands/"+string(b.ID)+"/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var health model.KnowledgeHealth
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health)).Required()
		gt.Value(t, health.ActiveSources).Equal(1)
	})

	t.Run("retrieve requires a query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brands/"+string(b.ID)+"/retrieve", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("retrieve returns ranked chunks", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brands/"+string(b.ID)+"/retrieve?q=enterprise+routers", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var result model.RetrievalResult
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result)).Required()
		gt.Number(t, len(result.Chunks)).GreaterOrEqual(1)
	})

	t.Run("embed generates vectors", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/brands/"+string(b.ID)+"/embed", nil)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var report model.EmbedReport
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report)).Required()
		gt.Number(t, report.Embedded).GreaterOrEqual(1)
	})

	t.Run("detached embed is accepted", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/brands/"+string(b.ID)+"/embed?wait=false", nil)

		gt.Value(t, rec.Code).Equal(http.StatusAccepted)

		var body map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body["status"]).Equal("accepted")
	})
}
