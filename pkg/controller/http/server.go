package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/repository/firestore"
	"github.com/atelier-lab/brandloom/pkg/repository/memory"
	"github.com/atelier-lab/brandloom/pkg/usecase"
	"github.com/atelier-lab/brandloom/pkg/utils/async"
	"github.com/atelier-lab/brandloom/pkg/utils/errutil"
	"github.com/atelier-lab/brandloom/pkg/utils/logging"
	"github.com/atelier-lab/brandloom/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("use cases are required")
	}

	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler(uc))
		r.Post("/tasks/{taskID}/approve", approveHandler(uc))
		r.Route("/brands/{brandID}", func(r chi.Router) {
			r.Get("/health", brandHealthHandler(uc))
			r.Get("/retrieve", retrieveHandler(uc))
			r.Post("/embed", embedHandler(uc))
		})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}

type chatRequestBody struct {
	UserID          string         `json:"user_id"`
	Message         string         `json:"message"`
	History         []chatTurnBody `json:"history,omitempty"`
	IsAuthenticated bool           `json:"is_authenticated"`
	BrandMemory     bool           `json:"brand_memory"`
	ForceRAG        bool           `json:"force_rag"`
	Deterministic   bool           `json:"deterministic"`
	IdempotencyKey  string         `json:"idempotency_key,omitempty"`
}

type chatTurnBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func chatHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body chatRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if body.UserID == "" || body.Message == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("user_id and message are required"), http.StatusBadRequest)
			return
		}

		history := make([]model.ChatTurn, 0, len(body.History))
		for _, turn := range body.History {
			history = append(history, model.ChatTurn{Role: turn.Role, Content: turn.Content})
		}

		resp, err := uc.Orchestrator.Chat(ctx, &usecase.ChatRequest{
			UserID:          types.UserID(body.UserID),
			Message:         body.Message,
			History:         history,
			IsAuthenticated: body.IsAuthenticated,
			BrandMemory:     body.BrandMemory,
			ForceRAG:        body.ForceRAG,
			Deterministic:   body.Deterministic,
			IdempotencyKey:  body.IdempotencyKey,
		})
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(ctx, w, resp)
	}
}

func approveHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		taskID := types.TaskID(chi.URLParam(r, "taskID"))

		task, result, err := uc.ApproveTask(ctx, taskID)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, usecase.ErrNotWaitingApproval):
				status = http.StatusConflict
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		writeJSON(ctx, w, map[string]any{
			"task_id": task.ID,
			"status":  task.Status,
			"message": result.Message,
		})
	}
}

func brandHealthHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		brandID := types.BrandID(chi.URLParam(r, "brandID"))

		health, err := uc.Engine().CheckHealth(ctx, brandID)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		writeJSON(ctx, w, health)
	}
}

func retrieveHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		brandID := types.BrandID(chi.URLParam(r, "brandID"))
		query := r.URL.Query().Get("q")
		if query == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("query parameter q is required"), http.StatusBadRequest)
			return
		}

		result, err := uc.Engine().TestRetrieval(ctx, brandID, query)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		writeJSON(ctx, w, result)
	}
}

func embedHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		brandID := types.BrandID(chi.URLParam(r, "brandID"))

		// Embedding a large knowledge base can outlive the request; callers
		// that don't need the report can detach with wait=false.
		if r.URL.Query().Get("wait") == "false" {
			async.Dispatch(ctx, func(ctx context.Context) error {
				report, err := uc.Engine().EmbedBrandKnowledge(ctx, brandID)
				if err != nil {
					return goerr.Wrap(err, "background embed failed", goerr.V("brand_id", brandID))
				}
				logging.From(ctx).Info("background embed finished",
					"brand_id", string(brandID),
					"embedded", report.Embedded,
					"skipped", report.Skipped,
				)
				return nil
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			safe.Write(ctx, w, []byte(`{"status":"accepted"}`))
			return
		}

		report, err := uc.Engine().EmbedBrandKnowledge(ctx, brandID)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		writeJSON(ctx, w, report)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Error("failed to encode response", "error", err.Error())
	}
}
