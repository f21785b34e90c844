package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind places a failed call into the client's stable error taxonomy. Exactly
// one Kind is assigned per failed call and the resulting Error is never
// re-wrapped into another classification.
type Kind int

const (
	// KindUnknown covers responses outside the recognized status buckets.
	KindUnknown Kind = iota
	// KindNetworkUnavailable covers transport failures and timeouts where
	// no HTTP response was received at all.
	KindNetworkUnavailable
	// KindUnauthorized covers 401 responses. Receiving one forces a logout.
	KindUnauthorized
	// KindForbidden covers 403 responses. Whether it also forces a logout
	// is a client policy decision, see WithLogoutOnForbidden.
	KindForbidden
	// KindClientError covers remaining 4xx responses.
	KindClientError
	// KindServerError covers 5xx responses.
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Error is the normalized representation of any failed call. Status is zero
// when no HTTP response was received.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

// Classify extracts the gateway classification from err when present.
func Classify(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	ge, ok := Classify(err)
	return ok && ge.Kind == kind
}

const (
	networkMessage = "cannot reach the server; check that the backend is running"
	genericMessage = "an unknown error occurred"
)

// extractMessage pulls a human-readable message out of an error response
// body. Priority order: plain string body, then a "message" field, then an
// "error" field, then a generic fallback.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return genericMessage
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		// Not JSON at all: the raw text body is the message.
		return trimmed
	}
	switch v := decoded.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := v["error"].(string); ok && msg != "" {
			return msg
		}
	}
	return genericMessage
}

// bucket maps an HTTP status to its taxonomy kind. 401/403 are handled
// before this point.
func bucket(status int) Kind {
	switch {
	case status >= 400 && status < 500:
		return KindClientError
	case status >= 500 && status < 600:
		return KindServerError
	default:
		return KindUnknown
	}
}
