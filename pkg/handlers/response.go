package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/middleware"
)

// ApiResponse is the envelope for non-answer JSON responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes {"error": code, "message": message} and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, map[string]string{"error": errorCode, "message": message})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// responder writes responses for one handler and logs write failures.
type responder struct {
	logger *zap.Logger
}

func (r responder) json(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		r.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (r responder) reject(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		r.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// fail reports err to the client. Caller errors keep their code; anything else is
// logged under action and answered with a generic 500.
func (r responder) fail(w http.ResponseWriter, req *http.Request, err error, action string, fields ...zap.Field) {
	if id := middleware.RequestIDFromContext(req.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	kind, ok := apperrors.Classify(err)
	if !ok {
		r.logger.Error("Failed to "+action, append(fields, zap.String("error", logging.SanitizeError(err)))...)
		r.reject(w, kind.Status, kind.Code, "Failed to "+action)
		return
	}
	r.logger.Debug("Rejected request", append(fields, zap.String("code", kind.Code))...)
	r.reject(w, kind.Status, kind.Code, kind.Message)
}
