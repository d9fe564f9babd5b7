package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of access-control event
type EventType string

const (
	EventSessionProbeFailed     EventType = "session_probe_failed"
	EventEntitlementDenied      EventType = "entitlement_denied"
	EventEntitlementCheckFailed EventType = "entitlement_check_failed"
	EventProfileCheckFailed     EventType = "profile_check_failed"
	EventGuardRedirect          EventType = "guard_redirect"
	EventNavigationFailed       EventType = "navigation_failed"
	EventStaleProbeDropped      EventType = "stale_probe_dropped"
	EventGateDenied             EventType = "gate_denied"
	EventUnauthorizedAccess     EventType = "unauthorized_access"
	EventRateLimitTriggered     EventType = "rate_limit_triggered"
)

// SecurityEvent represents an access-control event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "user_id"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	Path         string                 `json:"path,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// Recorder is what the guard components depend on.
type Recorder interface {
	Log(ctx context.Context, event SecurityEvent)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Log(context.Context, SecurityEvent) {}

// SecurityLogger writes access-control events through Zap
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewSecurityLogger builds a production Zap logger writing JSON to stdout
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewSecurityLoggerWithZap(logger, serviceName, environment)
}

// NewSecurityLoggerWithZap wraps an existing Zap logger (tests use zaptest/observer)
func NewSecurityLoggerWithZap(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// levelFor derives the log level from the event type; callers cannot raise or lower it.
func levelFor(event EventType) zapcore.Level {
	switch event {
	case EventGuardRedirect, EventStaleProbeDropped:
		return zapcore.InfoLevel
	case EventEntitlementDenied, EventGateDenied, EventSessionProbeFailed, EventRateLimitTriggered:
		return zapcore.WarnLevel
	case EventEntitlementCheckFailed, EventProfileCheckFailed, EventNavigationFailed, EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

// Log logs an access-control event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := levelFor(event.Event)
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return string(email[0]) + "***" + email[at:]
}

// HashValue creates a truncated SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "user_id":
		return HashValue(value)
	default:
		return value
	}
}

// Environment determines the current environment from GIN_MODE
func Environment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
