package logging

import (
	"strings"
	"sync"
)

const redactedValue = "[REDACTED]"

// Redactor replaces the values of sensitive field keys. Keys match
// case-insensitively and exactly; "key" does not match "keys".
type Redactor struct {
	mu            sync.RWMutex
	sensitiveKeys map[string]bool
}

// NewRedactor creates a Redactor that knows the SRP secret and
// session-binding values.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: map[string]bool{
			// Credentials
			"password":    true,
			"private_key": true,
			"x":           true,

			// Ephemeral secrets
			"a":      true,
			"b":      true,
			"secret": true,

			// Session material
			"key":          true,
			"session_key":  true,
			"proof":        true,
			"client_proof": true,
			"server_proof": true,
			"m1":           true,
			"m2":           true,

			// Stored registration
			"verifier": true,
			"salt":     true,
		},
	}
}

// AddSensitiveKey adds a custom key to the redaction list.
func (r *Redactor) AddSensitiveKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sensitiveKeys[strings.ToLower(key)] = true
}

// RemoveSensitiveKey removes a key from the redaction list.
func (r *Redactor) RemoveSensitiveKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sensitiveKeys, strings.ToLower(key))
}

// RedactFields returns a copy of fields with sensitive values replaced.
// Nested maps are redacted recursively.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.redact(fields)
}

func (r *Redactor) redact(fields map[string]any) map[string]any {
	redacted := make(map[string]any, len(fields))
	for k, v := range fields {
		switch {
		case r.sensitiveKeys[strings.ToLower(k)]:
			redacted[k] = redactedValue
		case isMap(v):
			redacted[k] = r.redact(v.(map[string]any))
		default:
			redacted[k] = v
		}
	}
	return redacted
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}
