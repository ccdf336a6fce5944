package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/PauloHFS/embedsim/internal/config"
	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/logging"
	"github.com/PauloHFS/embedsim/internal/services"
	"github.com/PauloHFS/embedsim/internal/validator"
)

const maxBodyBytes = 1 << 20

type HandlerDeps struct {
	Pool    *db.DualPool
	Users   *services.UserService
	Records *services.RecordService
	Config  *config.Config
}

// AppHandler é um tipo customizado que permite retornar erros dos handlers
type AppHandler func(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error

// Handle envolve nosso AppHandler para conformidade com http.HandlerFunc
func Handle(deps HandlerDeps, h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(deps, w, r)
		if err == nil {
			return
		}

		if httpErr := toHTTPError(err); httpErr != nil {
			logging.AddToEvent(r.Context(),
				slog.String("outcome", "error"),
				slog.String("error_reason", err.Error()),
			)
			writeJSON(w, httpErr.Status, errorResponse{Detail: httpErr.Detail})
			return
		}

		logging.Get().Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal Server Error"})
	}
}

func RegisterRoutes(mux *http.ServeMux, deps HandlerDeps) {
	mux.HandleFunc("POST "+Users+"{$}", Handle(deps, handleCreateUser))
	mux.HandleFunc("GET "+User, Handle(deps, handleGetUser))
	mux.HandleFunc("POST "+Records+"{$}", Handle(deps, handleCreateRecord))
	mux.HandleFunc("GET "+UserRecords+"{$}", Handle(deps, handleListRecords))
	mux.HandleFunc("GET "+RecordSearch, Handle(deps, handleSearchRecords))
	mux.HandleFunc("GET "+SimilarRecords+"{$}", Handle(deps, handleSimilarRecords))
	mux.HandleFunc("GET "+Health, Handle(deps, handleHealth))
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type CreateRecordRequest struct {
	UserID    int64     `json:"user_id" validate:"required,gt=0"`
	Title     string    `json:"title" validate:"max=200"`
	Content   string    `json:"content" validate:"max=20000"`
	Embedding []float64 `json:"embedding" validate:"required,min=1,max=8192,dive,finite"`
}

// --- Handler Implementations ---

func handleCreateUser(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	logging.AddToEvent(r.Context(), slog.String("operation", "create_user"))

	user, err := deps.Users.CreateUser(r.Context(), services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	logging.AddToEvent(r.Context(),
		slog.String("outcome", "success"),
		slog.Int64("created_user_id", user.ID),
	)
	writeJSON(w, http.StatusCreated, user)
	return nil
}

func handleGetUser(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	userID, err := pathUserID(r)
	if err != nil {
		return err
	}

	user, err := deps.Users.GetUser(r.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}

func handleCreateRecord(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	var req CreateRecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	logging.AddToEvent(r.Context(),
		slog.String("operation", "create_record"),
		slog.Int64("user_id", req.UserID),
	)

	record, err := deps.Records.CreateRecord(r.Context(), services.CreateRecordInput{
		UserID:    req.UserID,
		Title:     req.Title,
		Content:   req.Content,
		Embedding: req.Embedding,
	})
	if err != nil {
		return err
	}

	logging.AddToEvent(r.Context(), slog.String("outcome", "success"))
	writeJSON(w, http.StatusCreated, record)
	return nil
}

func handleListRecords(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	userID, err := pathUserID(r)
	if err != nil {
		return err
	}

	paging := db.PagingParams{
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", db.DefaultPerPage),
	}

	page, err := deps.Records.ListRecords(r.Context(), userID, paging)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, page)
	return nil
}

func handleSimilarRecords(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	userID, err := pathUserID(r)
	if err != nil {
		return err
	}

	logging.AddToEvent(r.Context(),
		slog.String("operation", "similar_records"),
		slog.Int64("user_id", userID),
	)

	pairs, err := deps.Records.SimilarRecords(r.Context(), userID)
	if err != nil {
		return err
	}

	if verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose")); verbose {
		writeJSON(w, http.StatusOK, pairs)
		return nil
	}

	// formato original: lista de triplas [i, j, score]
	triples := make([][3]any, len(pairs))
	for k, p := range pairs {
		triples[k] = [3]any{p.I, p.J, p.Score}
	}
	writeJSON(w, http.StatusOK, triples)
	return nil
}

func handleSearchRecords(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	userID, err := pathUserID(r)
	if err != nil {
		return err
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		return NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	logging.AddToEvent(r.Context(),
		slog.String("operation", "search_records"),
		slog.Int64("user_id", userID),
	)

	hits, err := deps.Records.SearchRecords(r.Context(), userID, query, queryInt(r, "k", 10))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, hits)
	return nil
}

func handleHealth(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	if err := deps.Pool.Ping(r.Context()); err != nil {
		logging.Get().Error("health check failed: db unreachable", "error", err)
		return NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
	return nil
}

// --- helpers ---

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
	}

	if result := validator.Check(dst); !result.Valid {
		return NewHTTPError(http.StatusUnprocessableEntity, result.Errors)
	}
	return nil
}

func pathUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewHTTPError(http.StatusUnprocessableEntity, "user_id must be a positive integer")
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Get().Error("failed to encode response", "error", err)
	}
}
