// Package audit provides security audit logging for SIEM consumption.
// Events are logged as structured JSON so they can be filtered and alerted on.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventUnsafeLiteral is logged when libinjection flags a literal taken from a question.
	EventUnsafeLiteral SecurityEventType = "unsafe_literal"
)

// SecurityEvent is an auditable security event with the context needed for SIEM analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	FileID    uuid.UUID         `json:"file_id"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// UnsafeLiteralDetails describes a refused literal. Value is truncated and has
// subscriber identifiers masked.
type UnsafeLiteralDetails struct {
	Column      string `json:"column"`
	Value       string `json:"value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
	Intent      string `json:"intent"`
}

type clientIPKey struct{}

// WithClientIP stores the caller's address for events logged further down the request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFromContext returns the address stored by WithClientIP, or "".
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// SecurityAuditor logs security events.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates an auditor logging under the "security_audit" namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogUnsafeLiteral records a question literal that was kept out of generated SQL.
// Logged at WARN: the question is still answered by the in-memory strategy.
func (a *SecurityAuditor) LogUnsafeLiteral(ctx context.Context, fileID uuid.UUID, details UnsafeLiteralDetails) {
	details.Value = logging.SanitizeQuestion(details.Value)
	clientIP := ClientIPFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventUnsafeLiteral,
		FileID:    fileID,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "warning",
	}

	// Marshaling known types cannot fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Unsafe literal refused for push-down",
		zap.String("event_json", string(eventJSON)),
		zap.String("file_id", fileID.String()),
		zap.String("column", details.Column),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}
