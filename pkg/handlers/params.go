package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// idParam names a UUID request parameter and how a malformed value is reported.
type idParam struct {
	path    string
	code    string
	message string
}

var (
	projectIDParam = idParam{path: "pid", code: "invalid_project_id", message: "Invalid project ID format"}
	fileIDParam    = idParam{path: "fid", code: "invalid_file_id", message: "Invalid file ID format"}
)

// ParseProjectID reads the {pid} path parameter. On failure it writes a 400 and
// returns false.
func ParseProjectID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r.PathValue(projectIDParam.path), projectIDParam, logger)
}

// ParseFileID reads the {fid} path parameter.
func ParseFileID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r.PathValue(fileIDParam.path), fileIDParam, logger)
}

// parseOptionalID parses an id taken from a request body. An empty value is unset.
func parseOptionalID(w http.ResponseWriter, raw string, p idParam, logger *zap.Logger) (uuid.UUID, bool) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, true
	}
	return parseUUID(w, raw, p, logger)
}

// parseUUID rejects malformed ids and the nil UUID, which would otherwise read as
// "no scope" further down.
func parseUUID(w http.ResponseWriter, raw string, p idParam, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err == nil && id != uuid.Nil {
		return id, true
	}
	logger.Debug("Rejected malformed id", zap.String("param", p.path))
	if err := ErrorResponse(w, http.StatusBadRequest, p.code, p.message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
	return uuid.Nil, false
}
