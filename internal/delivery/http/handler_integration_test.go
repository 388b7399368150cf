package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkscribe/backend/config"
	"github.com/linkscribe/backend/internal/domain"
	"github.com/linkscribe/backend/internal/infrastructure/keywords"
	"github.com/linkscribe/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Catalog: config.CatalogConfig{
			PartnerTag:  "linkscribe-20",
			Marketplace: "www.amazon.com",
		},
		Generator: config.GeneratorConfig{Model: "gpt-4o-mini"},
		Scheduler: config.SchedulerConfig{Enabled: true, Interval: 5 * time.Minute},
		Article:   config.ArticleConfig{ProductCount: 5, PostStatus: "publish"},
	}
}

// setupTestRouter creates a test router backed by an in-memory keyword store
func setupTestRouter() (*gin.Engine, *usecase.KeywordService) {
	service := usecase.NewKeywordService(keywords.NewMemoryRepository())
	handler := NewHandler(service, testConfig())
	return SetupRouter(testConfig(), handler), service
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "linkscribe-backend" {
			t.Errorf("service = %v, want linkscribe-backend", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router, _ := setupTestRouter()

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestKeywordEndpoints(t *testing.T) {
	t.Run("add and list keywords", func(t *testing.T) {
		router, _ := setupTestRouter()

		payload := `{"keyword":"robot vacuum","scheduledAt":"2026-09-01T08:00:00Z"}`
		req, _ := http.NewRequest("POST", "/api/v1/keywords", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
		}

		var created domain.KeywordJob
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if created.ID == "" {
			t.Error("expected a generated job id")
		}
		if created.Status != domain.JobStatusPending {
			t.Errorf("status = %q, want pending", created.Status)
		}

		req, _ = http.NewRequest("GET", "/api/v1/keywords", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var listed struct {
			Keywords []domain.KeywordJob `json:"keywords"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(listed.Keywords) != 1 || listed.Keywords[0].Keyword != "robot vacuum" {
			t.Errorf("unexpected list %+v", listed.Keywords)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("POST", "/api/v1/keywords", strings.NewReader(`{"keyword":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("POST", "/api/v1/keywords", strings.NewReader(`{invalid json}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("delete removes an existing keyword", func(t *testing.T) {
		router, service := setupTestRouter()

		job, err := service.Add(t.Context(), "standing desk", time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req, _ := http.NewRequest("DELETE", "/api/v1/keywords/"+job.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNoContent)
		}
	})

	t.Run("delete unknown keyword returns 404", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("DELETE", "/api/v1/keywords/no-such-id", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func csvUploadRequest(t *testing.T, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "keywords.csv")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/keywords/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportEndpoint(t *testing.T) {
	t.Run("imports a CSV upload", func(t *testing.T) {
		router, service := setupTestRouter()

		content := "keyword,scheduled_at\n" +
			"wireless earbuds,2026-09-01\n" +
			"mechanical keyboard,2026-09-02\n" +
			",bad row\n"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, csvUploadRequest(t, content))

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var result usecase.ImportResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if result.Imported != 2 {
			t.Errorf("imported = %d, want 2", result.Imported)
		}
		if result.Skipped != 1 {
			t.Errorf("skipped = %d, want 1", result.Skipped)
		}

		jobs, err := service.List(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != 2 {
			t.Errorf("expected 2 stored jobs, got %d", len(jobs))
		}
	})

	t.Run("rejects request without file field", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("POST", "/api/v1/keywords/import", strings.NewReader("not multipart"))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestSettingsEndpoint(t *testing.T) {
	router, _ := setupTestRouter()

	req, _ := http.NewRequest("GET", "/api/v1/settings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response["partnerTag"] != "linkscribe-20" {
		t.Errorf("partnerTag = %v, want linkscribe-20", response["partnerTag"])
	}
	if response["generatorModel"] != "gpt-4o-mini" {
		t.Errorf("generatorModel = %v, want gpt-4o-mini", response["generatorModel"])
	}
	if response["schedulerInterval"] != "5m0s" {
		t.Errorf("schedulerInterval = %v, want 5m0s", response["schedulerInterval"])
	}
}

func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for the dashboard origin", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "http://localhost:3000")
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Access-Control-Allow-Credentials not set to true")
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router, _ := setupTestRouter()

		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/api/v1/keywords"},
		{"GET", "/api/v1/settings"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			router, _ := setupTestRouter()

			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			gotContentType := w.Header().Get("Content-Type")
			wantContentType := "application/json; charset=utf-8"
			if gotContentType != wantContentType {
				t.Errorf("Content-Type = %q, want %q", gotContentType, wantContentType)
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Errorf("Response should be valid JSON, got error: %v", err)
			}
		})
	}
}
