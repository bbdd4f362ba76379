package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/middleware"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{"missing question", http.StatusBadRequest, "missing_question", "question cannot be empty"},
		{"unknown file", http.StatusNotFound, "not_found", "file or project not found"},
		{"aggregation failure", http.StatusInternalServerError, "internal_error", "Failed to answer question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := ErrorResponse(w, tt.statusCode, tt.errorCode, tt.message); err != nil {
				t.Fatalf("ErrorResponse returned error: %v", err)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.statusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != tt.errorCode || body["message"] != tt.message {
				t.Errorf("body = %v, want error=%q message=%q", body, tt.errorCode, tt.message)
			}
		})
	}
}

func TestWriteJSON_AnswerPayload(t *testing.T) {
	w := httptest.NewRecorder()
	cmp := 4.0
	answer := &models.AnswerResult{
		Answer:        "Revenue vs Cost by Country in roaming.csv: DE (10 vs 4).",
		Intent:        models.IntentCompare,
		Column:        "Revenue",
		CompareColumn: "Cost",
		GroupBy:       "Country",
		Items:         []models.AnswerItem{{Value: "DE", Count: 10, Compare: &cmp, Weight: 3}},
	}

	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["intent"] != "compare" {
		t.Errorf("intent = %v, want compare", body["intent"])
	}
	for _, absent := range []string{"value", "columns", "filter", "profile"} {
		if _, ok := body[absent]; ok {
			t.Errorf("unexpected field %q in compare payload", absent)
		}
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v, want one item", body["items"])
	}
	item := items[0].(map[string]any)
	if _, ok := item["Weight"]; ok {
		t.Error("merge weight must not be serialized")
	}
	if item["compare"] != 4.0 {
		t.Errorf("compare = %v, want 4", item["compare"])
	}
}

func TestWriteJSON_NonOKStatus(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true}); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
	if w.Code != http.StatusCreated {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestWriteJSON_UnencodableData(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteJSON(w, http.StatusOK, make(chan int)); err == nil {
		t.Error("expected error for unencodable data, got nil")
	}
}

func TestResponder_FailCallerError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	out := responder{logger: zap.New(core)}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/files/f1/profile", nil)
	out.fail(w, req, fmt.Errorf("failed to get file: %w", apperrors.ErrNotFound), "profile file", zap.String("file_id", "f1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "file or project not found", body["message"])

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), "caller errors are not logged as failures")
	assert.Equal(t, 1, logs.FilterMessage("Rejected request").Len())
}

func TestResponder_FailServerError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	out := responder{logger: zap.New(core)}

	var req *http.Request
	middleware.RequestLogger(zap.NewNop())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		req = r
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/p1/files", nil))

	w := httptest.NewRecorder()
	out.fail(w, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"), "list files")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "internal_error", body["error"])
	assert.Equal(t, "Failed to list files", body["message"])

	entries := logs.FilterMessage("Failed to list files").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, middleware.RequestIDFromContext(req.Context()), entries[0].ContextMap()["request_id"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}
