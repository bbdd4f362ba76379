package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Ask(ctx context.Context, q models.Question) (*models.AnswerResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerResult), args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetOrBuildFileProfile(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileProfile), args.Error(1)
}

func (m *mockProfiles) InvalidateFileProfile(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func newAskMux(engine *mockEngine, profiles *mockProfiles) *http.ServeMux {
	mux := http.NewServeMux()
	var h *AskHandler
	if profiles != nil {
		h = NewAskHandler(engine, profiles, zap.NewNop())
	} else {
		h = NewAskHandler(engine, nil, zap.NewNop())
	}
	h.RegisterRoutes(mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAskHandler_Ask_Success(t *testing.T) {
	engine := &mockEngine{}
	fileID := uuid.New()
	value := 15.0
	expected := &models.AnswerResult{Answer: "The average of Revenue in sales.csv is 15.", Intent: models.IntentAvg, Column: "Revenue", Value: &value}

	engine.On("Ask", mock.Anything, models.Question{
		Text:  "Average of Revenue",
		Scope: models.Scope{FileID: fileID},
	}).Return(expected, nil)

	rec := do(newAskMux(engine, nil), http.MethodPost, "/api/ask",
		`{"question":"  Average of Revenue ","fileId":"`+fileID.String()+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.AnswerResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, models.IntentAvg, got.Intent)
	require.NotNil(t, got.Value)
	assert.Equal(t, 15.0, *got.Value)
	engine.AssertExpectations(t)
}

func TestAskHandler_PathScopes(t *testing.T) {
	engine := &mockEngine{}
	fileID, projectID := uuid.New(), uuid.New()

	engine.On("Ask", mock.Anything, mock.MatchedBy(func(q models.Question) bool {
		return q.Scope.FileID == fileID && q.ForcedIntent == models.IntentCompare
	})).Return(&models.AnswerResult{Intent: models.IntentCompare}, nil)
	engine.On("Ask", mock.Anything, mock.MatchedBy(func(q models.Question) bool {
		return q.Scope.ProjectID == projectID && q.Scope.FileID == uuid.Nil
	})).Return(&models.AnswerResult{Intent: models.IntentSum}, nil)

	mux := newAskMux(engine, nil)

	rec := do(mux, http.MethodPost, "/api/files/"+fileID.String()+"/ask", `{"question":"Revenue vs Cost","intent":"compare"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodPost, "/api/projects/"+projectID.String()+"/ask", `{"question":"total revenue"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	engine.AssertExpectations(t)
}

func TestAskHandler_BadRequests(t *testing.T) {
	engine := &mockEngine{}
	mux := newAskMux(engine, nil)

	tests := []struct {
		name string
		path string
		body string
		code string
	}{
		{"malformed body", "/api/ask", `{`, "invalid_request"},
		{"bad file id", "/api/ask", `{"question":"x","fileId":"nope"}`, "invalid_file_id"},
		{"bad project id", "/api/ask", `{"question":"x","projectId":"nope"}`, "invalid_project_id"},
		{"bad intent", "/api/ask", `{"question":"x","fileId":"` + uuid.NewString() + `","intent":"median"}`, "invalid_intent"},
		{"bad path id", "/api/files/nope/ask", `{"question":"x"}`, "invalid_file_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"])
		})
	}
	engine.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty question", apperrors.ErrInvalidQuestion, http.StatusBadRequest, "missing_question"},
		{"no scope", apperrors.ErrMissingScope, http.StatusBadRequest, "missing_scope"},
		{"unknown file", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"row store down", errors.New("failed to list rows: connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{}
			engine.On("Ask", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(newAskMux(engine, nil), http.MethodPost, "/api/ask", `{"question":"how many rows"}`)
			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"])
			assert.NotContains(t, body["message"], "connection refused", "internal errors are not leaked")
		})
	}
}

func TestAskHandler_Profile(t *testing.T) {
	engine, profiles := &mockEngine{}, &mockProfiles{}
	fileID := uuid.New()
	profiles.On("GetOrBuildFileProfile", mock.Anything, fileID).
		Return(&models.FileProfile{FileID: fileID, RowCount: 3, NumericColumns: []string{"Revenue"}}, nil)
	profiles.On("InvalidateFileProfile", mock.Anything, fileID).Return(nil)
	profiles.On("GetOrBuildFileProfile", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	mux := newAskMux(engine, profiles)

	rec := do(mux, http.MethodGet, "/api/files/"+fileID.String()+"/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ApiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)

	rec = do(mux, http.MethodDelete, "/api/files/"+fileID.String()+"/profile", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodGet, "/api/files/"+uuid.NewString()+"/profile", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAskHandler_ProfileRoutesDisabled(t *testing.T) {
	rec := do(newAskMux(&mockEngine{}, nil), http.MethodGet, "/api/files/"+uuid.NewString()+"/profile", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
