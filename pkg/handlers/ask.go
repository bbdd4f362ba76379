package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/services"
)

// maxAskBodyBytes bounds the request body of ask endpoints.
const maxAskBodyBytes = 64 << 10

// AskRequest is the body of the ask endpoints. On the path-scoped routes the ids
// come from the path and body ids are ignored.
type AskRequest struct {
	Question  string `json:"question"`
	FileID    string `json:"fileId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Intent    string `json:"intent,omitempty"`
}

// AskHandler answers questions over uploaded files.
type AskHandler struct {
	engine   insights.Engine
	profiles services.FileProfileService
	logger   *zap.Logger
	out      responder
}

// NewAskHandler creates an AskHandler. profiles may be nil, which disables the profile routes.
func NewAskHandler(engine insights.Engine, profiles services.FileProfileService, logger *zap.Logger) *AskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ask-handler")
	return &AskHandler{engine: engine, profiles: profiles, logger: logger, out: responder{logger}}
}

// RegisterRoutes registers the ask handler's routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.Ask)
	mux.HandleFunc("POST /api/files/{fid}/ask", h.AskFile)
	mux.HandleFunc("POST /api/projects/{pid}/ask", h.AskProject)

	if h.profiles != nil {
		mux.HandleFunc("GET /api/files/{fid}/profile", h.GetProfile)
		mux.HandleFunc("DELETE /api/files/{fid}/profile", h.InvalidateProfile)
	}
}

// Ask handles POST /api/ask, where the scope comes from the body.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	fileID, ok := parseOptionalID(w, req.FileID, fileIDParam, h.logger)
	if !ok {
		return
	}
	projectID, ok := parseOptionalID(w, req.ProjectID, projectIDParam, h.logger)
	if !ok {
		return
	}
	scope := models.Scope{FileID: fileID, ProjectID: projectID}

	h.answer(w, r, req, scope)
}

// AskFile handles POST /api/files/{fid}/ask.
func (h *AskHandler) AskFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := ParseFileID(w, r, h.logger)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.answer(w, r, req, models.Scope{FileID: fileID})
}

// AskProject handles POST /api/projects/{pid}/ask.
func (h *AskHandler) AskProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.answer(w, r, req, models.Scope{ProjectID: projectID})
}

// GetProfile handles GET /api/files/{fid}/profile.
func (h *AskHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := ParseFileID(w, r, h.logger)
	if !ok {
		return
	}
	profile, err := h.profiles.GetOrBuildFileProfile(r.Context(), fileID)
	if err != nil {
		h.out.fail(w, r, err, "profile file", zap.String("file_id", fileID.String()))
		return
	}
	h.out.json(w, http.StatusOK, ApiResponse{Success: true, Data: profile})
}

// InvalidateProfile handles DELETE /api/files/{fid}/profile.
func (h *AskHandler) InvalidateProfile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := ParseFileID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.profiles.InvalidateFileProfile(r.Context(), fileID); err != nil {
		h.out.fail(w, r, err, "invalidate profile", zap.String("file_id", fileID.String()))
		return
	}
	h.out.json(w, http.StatusOK, ApiResponse{Success: true, Message: "Profile invalidated"})
}

func (h *AskHandler) decode(w http.ResponseWriter, r *http.Request) (*AskRequest, bool) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes)).Decode(&req); err != nil {
		h.out.reject(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return nil, false
	}
	return &req, true
}

func (h *AskHandler) answer(w http.ResponseWriter, r *http.Request, req *AskRequest, scope models.Scope) {
	q := models.Question{Text: strings.TrimSpace(req.Question), Scope: scope}
	if req.Intent != "" {
		intent, ok := models.ParseIntent(req.Intent)
		if !ok {
			h.out.reject(w, http.StatusBadRequest, "invalid_intent", "Unknown intent: "+req.Intent)
			return
		}
		q.ForcedIntent = intent
	}

	result, err := h.engine.Ask(r.Context(), q)
	if err != nil {
		h.out.fail(w, r, err, "answer question", zap.String("question", logging.SanitizeQuestion(q.Text)))
		return
	}

	h.out.json(w, http.StatusOK, result)
}
