package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be masked.
// These keys commonly contain credentials that must not reach the logs.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":       true,
	"passwd":         true,
	"secret":         true,
	"token":          true,
	"api_key":        true,
	"apikey":         true,
	"api-key":        true,
	"openai_api_key": true,
	"access_token":   true,
	"refresh_token":  true,
	"private_key":    true,
	"secret_key":     true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,

	// Credentials
	"credential":  true,
	"credentials": true,
	"auth":        true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// OpenAI-style API keys
	regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`),

	// API keys (long alphanumeric strings)
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// urlMaskValue is the mask used inside URLs, where MaskValue's asterisks
// would be percent-encoded into noise.
const urlMaskValue = "REDACTED"

// ScrubHandler wraps an slog.Handler to scrub credentials from records.
// It intercepts log records and masks attribute values that match
// sensitive key names or value patterns, and strips userinfo and
// credential-bearing query parameters out of URL values, before passing
// them to the underlying handler. Debug-level logging of request URLs
// therefore cannot leak the API key.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components keep accepting a plain *slog.Logger
type ScrubHandler struct {
	// handler is the underlying slog handler that receives scrubbed records.
	handler slog.Handler
}

// NewScrubHandler creates a new ScrubHandler wrapping the given handler.
// All log attributes are scrubbed before being passed to the underlying
// handler. If handler is nil, slog.Default().Handler() is used.
func NewScrubHandler(handler slog.Handler) *ScrubHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ScrubHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *ScrubHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle scrubs the record's attributes and passes it to the underlying handler.
func (h *ScrubHandler) Handle(ctx context.Context, r slog.Record) error {
	scrubbed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(h.scrubAttr(a))
		return true
	})

	return h.handler.Handle(ctx, scrubbed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are scrubbed before being added.
func (h *ScrubHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbedAttrs[i] = h.scrubAttr(a)
	}
	return &ScrubHandler{handler: h.handler.WithAttrs(scrubbedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *ScrubHandler) WithGroup(name string) slog.Handler {
	return &ScrubHandler{handler: h.handler.WithGroup(name)}
}

// scrubAttr scrubs a single attribute, recursively handling groups.
func (h *ScrubHandler) scrubAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		scrubbedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			scrubbedAttrs[i] = h.scrubAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbedAttrs...)}
	}

	// Check if the key indicates sensitive data
	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if scrubbed, changed := scrubURL(strVal); changed {
			return slog.String(a.Key, scrubbed)
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// Note: We intentionally exclude the bare "key" keyword as it causes false
// positives (e.g., "keyword", "keyboard"), and "seed" because the crawler
// logs its seed URLs under that name. Specific key-related patterns like
// "api_key", "private_key", "secret_key" are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth",
		"credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// scrubURL masks userinfo and credential-bearing query parameters inside
// a URL value, keeping the rest of the URL readable. Reports whether the
// value was a URL that needed scrubbing.
func scrubURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	changed := false
	if u.User != nil {
		u.User = url.User(urlMaskValue)
		changed = true
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key, values := range q {
			keyLower := strings.ToLower(key)
			if !sensitiveKeys[keyLower] && !containsSensitiveKeyword(keyLower) {
				continue
			}
			for i := range values {
				values[i] = urlMaskValue
			}
			q[key] = values
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if !changed {
		return "", false
	}
	return u.String(), true
}

// NewLogger creates a new slog.Logger with credential scrubbing.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewScrubHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with credential scrubbing that
// outputs JSON format. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger configured for JSON output with scrubbing.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewScrubHandler(jsonHandler))
}
