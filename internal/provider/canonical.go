package provider

// CanonicalKind discriminates the closed set of shapes a provider response
// reduces to at the domain-service boundary.
type CanonicalKind int

const (
	// KindOk means the response matched a known shape and carries a payload.
	KindOk CanonicalKind = iota
	// KindUnrecognized means a response arrived but matched no known shape.
	// Callers decide whether that still counts as success; the variant exists
	// so that policy is explicit and testable, never a silent default.
	KindUnrecognized
	// KindProviderError means the provider explicitly reported an error.
	KindProviderError
)

// Canonical is the tagged union produced by the per-operation shape matchers.
type Canonical struct {
	Kind    CanonicalKind
	Payload any
	Message string
}

// Ok wraps a recognized payload.
func Ok(payload any) Canonical {
	return Canonical{Kind: KindOk, Payload: payload}
}

// Unrecognized preserves a raw response that matched no known shape.
func Unrecognized(raw any) Canonical {
	return Canonical{Kind: KindUnrecognized, Payload: raw}
}

// ProviderError wraps an error the provider itself reported.
func ProviderError(msg string) Canonical {
	return Canonical{Kind: KindProviderError, Message: msg}
}

// providerErrorOf extracts an explicit error field from an object response.
func providerErrorOf(raw any) (string, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	val, ok := m["error"]
	if !ok || val == nil {
		return "", false
	}
	switch v := val.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		// Some providers send {"error": true, "message": "..."}.
		if !v {
			return "", false
		}
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg, true
		}
		return "provider reported an error", true
	default:
		return "provider reported an error", true
	}
}
