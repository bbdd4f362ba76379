package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
)

const (
	// maxArgumentLogLength bounds string tool arguments in logs.
	maxArgumentLogLength = 200
	// maxCapturedResponse is how much of a response is kept to find the JSON-RPC outcome.
	maxCapturedResponse = 1 << 20
)

// questionArguments hold free text that may name subscribers.
var questionArguments = map[string]bool{"question": true}

var sensitiveKeywords = []string{"password", "secret", "token", "key", "credential"}

// MCPRequestLogger returns middleware that logs one line per MCP JSON-RPC call with the
// tool, its sanitized arguments and the outcome. Successful calls log at DEBUG, tool
// errors at INFO and protocol errors at WARN. Pass nil logger to disable logging.
func MCPRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var call jsonRPCRequest
			if err := json.Unmarshal(body, &call); err != nil {
				// Batches still reach the server; they are just not described.
				logger.Debug("Failed to parse MCP request JSON", zap.Error(err))
			}

			recorder := &mcpResponseRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("method", call.Method),
				zap.Duration("duration", time.Since(start)),
			}
			if id := RequestIDFromContext(r.Context()); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if call.Params.Name != "" {
				fields = append(fields,
					zap.String("tool", call.Params.Name),
					zap.Any("arguments", sanitizeArguments(call.Params.Arguments)))
			}

			level, outcome := zapcore.DebugLevel, "ok"
			if resp, ok := parseRPCResponse(recorder.body.Bytes()); ok {
				switch {
				case resp.Error != nil:
					level, outcome = zapcore.WarnLevel, "rpc_error"
					fields = append(fields,
						zap.Int("error_code", resp.Error.Code),
						zap.String("error_message", logging.SanitizeError(errors.New(resp.Error.Message))))
				case resp.Result.IsError:
					level, outcome = zapcore.InfoLevel, "tool_error"
				}
			}
			logger.Log(level, "MCP call", append(fields, zap.String("outcome", outcome))...)
		})
	}
}

type jsonRPCRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

type jsonRPCResponse struct {
	Result struct {
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *jsonRPCError `json:"error"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// parseRPCResponse reads a plain JSON reply or the last data event of an SSE stream.
func parseRPCResponse(body []byte) (jsonRPCResponse, bool) {
	var resp jsonRPCResponse
	payload := bytes.TrimSpace(body)
	if !bytes.HasPrefix(payload, []byte("{")) {
		payload = nil
		for _, line := range strings.Split(string(body), "\n") {
			if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data:"); ok {
				payload = []byte(strings.TrimSpace(data))
			}
		}
	}
	if len(payload) == 0 || json.Unmarshal(payload, &resp) != nil {
		return resp, false
	}
	return resp, true
}

// mcpResponseRecorder tees up to maxCapturedResponse bytes of the response.
type mcpResponseRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *mcpResponseRecorder) Write(b []byte) (int, error) {
	if room := maxCapturedResponse - r.body.Len(); room > 0 {
		r.body.Write(b[:min(len(b), room)])
	}
	return r.ResponseWriter.Write(b)
}

func (r *mcpResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// sanitizeArguments redacts secrets, masks subscriber identifiers in questions
// and truncates long strings.
func sanitizeArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	result := make(map[string]any, len(args))
	for k, v := range args {
		lowerKey := strings.ToLower(k)
		if isSensitive(lowerKey) {
			result[k] = logging.RedactedText
			continue
		}

		str, ok := v.(string)
		switch {
		case ok && questionArguments[lowerKey]:
			result[k] = logging.SanitizeQuestion(str)
		case ok:
			result[k] = logging.TruncateString(str, maxArgumentLogLength)
		default:
			result[k] = v
		}
	}
	return result
}

func isSensitive(lowerKey string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}
