package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/csvstore"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/services"
)

// maxUploadBytes bounds a multipart CSV upload.
const maxUploadBytes = 32 << 20

// FileStore is the subset of the file repository the files handler needs.
type FileStore interface {
	ListFilesInProject(ctx context.Context, projectID uuid.UUID) ([]models.FileInfo, error)
	CreateProject(ctx context.Context, id uuid.UUID, name string) error
	Create(ctx context.Context, file *models.FileInfo, columns []string, rows []models.Row) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UploadResponse describes a stored file.
type UploadResponse struct {
	File    models.FileInfo `json:"file"`
	Columns []string        `json:"columns"`
	Rows    int             `json:"rows"`
}

// FilesHandler lists, uploads and deletes the files of a project.
type FilesHandler struct {
	store    FileStore
	profiles services.FileProfileService
	logger   *zap.Logger
	out      responder
}

// NewFilesHandler creates a FilesHandler. profiles may be nil; deleted files then keep
// any cached profile until it expires.
func NewFilesHandler(store FileStore, profiles services.FileProfileService, logger *zap.Logger) *FilesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("files-handler")
	return &FilesHandler{store: store, profiles: profiles, logger: logger, out: responder{logger}}
}

// RegisterRoutes registers the files handler's routes on the given mux.
func (h *FilesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects/{pid}/files", h.List)
	mux.HandleFunc("POST /api/projects/{pid}/files", h.Upload)
	mux.HandleFunc("DELETE /api/files/{fid}", h.Delete)
}

// List handles GET /api/projects/{pid}/files
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	files, err := h.store.ListFilesInProject(r.Context(), projectID)
	if err != nil {
		h.out.fail(w, r, err, "list files", zap.String("project_id", projectID.String()))
		return
	}
	if files == nil {
		files = []models.FileInfo{}
	}

	h.out.json(w, http.StatusOK, ApiResponse{Success: true, Data: files})
}

// Upload handles POST /api/projects/{pid}/files
// Expects a multipart form with the CSV in field "file" and an optional "project_name".
// The project is created on first upload.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.out.reject(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form under 32 MiB")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		h.out.reject(w, http.StatusBadRequest, "missing_file", "A CSV file is required in field \"file\"")
		return
	}
	defer part.Close()

	columns, rows, err := csvstore.Parse(part)
	if err != nil {
		h.out.reject(w, http.StatusBadRequest, "invalid_file", "Failed to parse CSV: "+err.Error())
		return
	}

	name := filepath.Base(header.Filename)
	projectName := strings.TrimSpace(r.FormValue("project_name"))
	if projectName == "" {
		projectName = name
	}
	if err := h.store.CreateProject(r.Context(), projectID, projectName); err != nil {
		h.out.fail(w, r, err, "create project", zap.String("project_id", projectID.String()))
		return
	}

	file := &models.FileInfo{ProjectID: projectID, Name: name}
	if err := h.store.Create(r.Context(), file, columns, rows); err != nil {
		h.out.fail(w, r, err, "store file",
			zap.String("project_id", projectID.String()),
			zap.String("name", name))
		return
	}

	resp := ApiResponse{Success: true, Data: UploadResponse{File: *file, Columns: columns, Rows: len(rows)}}
	h.out.json(w, http.StatusCreated, resp)
}

// Delete handles DELETE /api/files/{fid}
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID, ok := ParseFileID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), fileID); err != nil {
		h.out.fail(w, r, err, "delete file", zap.String("file_id", fileID.String()))
		return
	}

	if h.profiles != nil {
		if err := h.profiles.InvalidateFileProfile(r.Context(), fileID); err != nil {
			h.logger.Warn("Failed to invalidate profile of deleted file",
				zap.String("file_id", fileID.String()),
				zap.String("error", logging.SanitizeError(err)))
		}
	}

	h.out.json(w, http.StatusOK, ApiResponse{Success: true, Message: "File deleted"})
}
