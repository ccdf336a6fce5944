package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PauloHFS/embedsim/internal/config"
	"github.com/PauloHFS/embedsim/internal/db"
	"github.com/PauloHFS/embedsim/internal/services"
	"github.com/PauloHFS/embedsim/internal/similarity"
	"github.com/PauloHFS/embedsim/internal/textsearch"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	sqliteCfg := config.SQLiteConfig{CacheSizeKB: -2000, TempStore: "MEMORY", WALMode: true, SyncLevel: "NORMAL", BusyTimeoutMS: 5000}
	pool, err := db.NewDualPool("sqlite3", sqliteCfg.DSN(filepath.Join(t.TempDir(), "web_test.db")), sqliteCfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := db.RunMigrations(context.Background(), pool.Write); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	cfg := &config.Config{Env: "test", SimilarityMaxRecords: 1000, CorpusCacheSize: 8}
	corpora, err := services.NewCorpusCache(pool.Queries(), textsearch.WordTokenizer{}, cfg.CorpusCacheSize)
	if err != nil {
		t.Fatal(err)
	}
	users := services.NewUserService(pool)

	mux := http.NewServeMux()
	RegisterRoutes(mux, HandlerDeps{
		Pool:    pool,
		Users:   users,
		Records: services.NewRecordService(pool, users, corpora, cfg),
		Config:  cfg,
	})
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func createUser(t *testing.T, mux http.Handler, email string) int64 {
	t.Helper()
	rr := do(t, mux, "POST", "/users/", fmt.Sprintf(`{"email":%q,"password":"password123"}`, email))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
		t.Fatal(err)
	}
	return user.ID
}

func TestHandleCreateUser(t *testing.T) {
	mux := setupTestMux(t)

	t.Run("Created", func(t *testing.T) {
		rr := do(t, mux, "POST", "/users/", `{"email":"a@example.com","password":"password123"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
		}
		if strings.Contains(rr.Body.String(), "password") {
			t.Errorf("response leaks password data: %s", rr.Body.String())
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		rr := do(t, mux, "POST", "/users/", `{"email":"a@example.com","password":"password123"}`)
		if rr.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rr.Code)
		}
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		rr := do(t, mux, "POST", "/users/", `{"email":"not-an-email","password":"x"}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		rr := do(t, mux, "POST", "/users/", `{"email":`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})
}

func TestHandleGetUser(t *testing.T) {
	mux := setupTestMux(t)
	id := createUser(t, mux, "get@example.com")

	if rr := do(t, mux, "GET", fmt.Sprintf("/users/%d", id), ""); rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr := do(t, mux, "GET", "/users/9999", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if rr := do(t, mux, "GET", "/users/abc", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
}

func TestHandleCreateRecord(t *testing.T) {
	mux := setupTestMux(t)
	id := createUser(t, mux, "rec@example.com")

	t.Run("Created", func(t *testing.T) {
		rr := do(t, mux, "POST", "/records/", fmt.Sprintf(`{"user_id":%d,"title":"t","embedding":[1,2]}`, id))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
		}
	})

	t.Run("UserNotFound", func(t *testing.T) {
		rr := do(t, mux, "POST", "/records/", `{"user_id":424242,"embedding":[1,2]}`)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Detail != "User not found" {
			t.Errorf("expected detail 'User not found', got %v", body.Detail)
		}
	})

	t.Run("MissingEmbedding", func(t *testing.T) {
		rr := do(t, mux, "POST", "/records/", fmt.Sprintf(`{"user_id":%d}`, id))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
		}
	})
}

func TestHandleSimilarRecords(t *testing.T) {
	mux := setupTestMux(t)
	id := createUser(t, mux, "sim@example.com")

	for _, e := range []string{"[1,0]", "[0,1]", "[1,1]"} {
		rr := do(t, mux, "POST", "/records/", fmt.Sprintf(`{"user_id":%d,"embedding":%s}`, id, e))
		if rr.Code != http.StatusCreated {
			t.Fatalf("create record: %d %s", rr.Code, rr.Body.String())
		}
	}

	t.Run("Triples", func(t *testing.T) {
		rr := do(t, mux, "GET", SimilarRecordsRoute(id), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}

		var triples [][3]float64
		if err := json.Unmarshal(rr.Body.Bytes(), &triples); err != nil {
			t.Fatal(err)
		}
		want := [][3]float64{{0, 1, 0}, {0, 2, math.Sqrt2 / 2}, {1, 2, math.Sqrt2 / 2}}
		if len(triples) != len(want) {
			t.Fatalf("got %d triples, want %d", len(triples), len(want))
		}
		for k := range want {
			if triples[k][0] != want[k][0] || triples[k][1] != want[k][1] || math.Abs(triples[k][2]-want[k][2]) > 1e-9 {
				t.Errorf("triple %d = %v, want %v", k, triples[k], want[k])
			}
		}
	})

	t.Run("Verbose", func(t *testing.T) {
		rr := do(t, mux, "GET", SimilarRecordsRoute(id)+"?verbose=true", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		var pairs []services.SimilarPair
		if err := json.Unmarshal(rr.Body.Bytes(), &pairs); err != nil {
			t.Fatal(err)
		}
		if len(pairs) != 3 || pairs[0].RecordI == 0 || pairs[0].RecordJ == 0 {
			t.Errorf("unexpected pairs: %+v", pairs)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		rr := do(t, mux, "GET", SimilarRecordsRoute(9999), "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		other := createUser(t, mux, "ragged@example.com")
		if rr := do(t, mux, "POST", "/records/", fmt.Sprintf(`{"user_id":%d,"embedding":[1,2]}`, other)); rr.Code != http.StatusCreated {
			t.Fatalf("create record: %d %s", rr.Code, rr.Body.String())
		}
		rr := do(t, mux, "POST", "/records/", fmt.Sprintf(`{"user_id":%d,"embedding":[1,2,3]}`, other))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d for mismatched dimension, got %d", http.StatusUnprocessableEntity, rr.Code)
		}

		rr = do(t, mux, "GET", SimilarRecordsRoute(other), "")
		if rr.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}
	})

	t.Run("ZeroEmbeddingRejected", func(t *testing.T) {
		rr := do(t, mux, "POST", "/records/", fmt.Sprintf(`{"user_id":%d,"embedding":[0,0]}`, id))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
		}

		rr = do(t, mux, "GET", SimilarRecordsRoute(id), "")
		if rr.Code != http.StatusOK {
			t.Errorf("similar records should stay available, got %d: %s", rr.Code, rr.Body.String())
		}
	})
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"user not found", fmt.Errorf("lookup: %w", services.ErrUserNotFound), http.StatusNotFound},
		{"email taken", services.ErrEmailTaken, http.StatusConflict},
		{"invalid input", fmt.Errorf("%w: password too short", services.ErrInvalidInput), http.StatusUnprocessableEntity},
		{"invalid embedding", services.ErrInvalidEmbedding, http.StatusUnprocessableEntity},
		{"too many vectors", &similarity.TooManyVectorsError{Count: 5, Limit: 2}, http.StatusUnprocessableEntity},
		{"explicit", NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := toHTTPError(tt.err)
			if httpErr == nil {
				t.Fatal("expected mapped error")
			}
			if httpErr.Status != tt.status {
				t.Errorf("status = %d, want %d", httpErr.Status, tt.status)
			}
		})
	}

	if toHTTPError(errors.New("disk on fire")) != nil {
		t.Error("unexpected errors must not be mapped")
	}
}

func TestHandleListAndSearchRecords(t *testing.T) {
	mux := setupTestMux(t)
	id := createUser(t, mux, "list@example.com")

	bodies := []string{
		`{"user_id":%d,"title":"goroutines","content":"channels","embedding":[1]}`,
		`{"user_id":%d,"title":"compost","content":"worms","embedding":[2]}`,
	}
	for _, b := range bodies {
		if rr := do(t, mux, "POST", "/records/", fmt.Sprintf(b, id)); rr.Code != http.StatusCreated {
			t.Fatalf("create record: %d", rr.Code)
		}
	}

	rr := do(t, mux, "GET", UserRecordsRoute(id)+"?per_page=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var page db.PagedResult[db.Record]
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 2 || len(page.Items) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}

	rr = do(t, mux, "GET", fmt.Sprintf("/users/%d/records/search?q=worms", id), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var hits []textsearch.Hit
	if err := json.Unmarshal(rr.Body.Bytes(), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %v", hits)
	}

	if rr := do(t, mux, "GET", fmt.Sprintf("/users/%d/records/search", id), ""); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d without q, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := setupTestMux(t)

	rr := do(t, mux, "GET", Health, "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "OK" {
		t.Errorf("expected body 'OK', got %s", rr.Body.String())
	}
}
