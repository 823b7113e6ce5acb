package openam

import "fmt"

// ConfigError reports a required configuration field that is missing or
// invalid. It is returned eagerly by New and NewClient, before any request
// is processed.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("openam: missing required config field %s", e.Field)
}

// TransportError wraps a network or server failure while talking to the
// OpenAM server. It is distinct from a negative answer: a reachable server
// reporting an invalid token is not a TransportError.
type TransportError struct {
	Op  string // "isTokenValid" or "attributes"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("openam: %s request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AttributeError reports an attribute payload the server returned in a
// shape the parser cannot map onto a profile.
type AttributeError struct {
	Reason string
	Line   string
}

func (e *AttributeError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("openam: malformed attribute response: %s", e.Reason)
	}
	return fmt.Sprintf("openam: malformed attribute response: %s: %q", e.Reason, e.Line)
}
