package openam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alesium/go-openam/pkg/observability"
)

// Line prefixes of the legacy identity services attribute response.
const (
	attrTokenPrefix = "userdetails.token.id="
	attrNamePrefix  = "userdetails.attribute.name="
	attrValuePrefix = "userdetails.attribute.value="
)

// Client talks to OpenAM's legacy identity services REST API. It is the
// pure I/O boundary of the handshake: token validation, attribute
// retrieval, and login UI URL construction. Safe for concurrent use.
type Client struct {
	baseURL string
	realm   string
	http    *http.Client
	metrics *observability.Metrics
}

// NewClient creates an OpenAM client from cfg. The metrics argument may
// be nil, in which case provider calls are not recorded.
func NewClient(cfg Config, metrics *observability.Metrics) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &ConfigError{Field: "BaseURL"}
	}

	realm := cfg.Realm
	if realm == "" {
		realm = DefaultRealm
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		realm:   realm,
		http:    httpClient,
		metrics: metrics,
	}, nil
}

// ValidToken asks OpenAM whether the session token is currently valid.
// A reachable server always yields a boolean answer; only transport
// failures are returned as errors, wrapped in *TransportError.
func (c *Client) ValidToken(ctx context.Context, token string) (bool, error) {
	endpoint := c.baseURL + "/identity/isTokenValid"
	form := url.Values{"tokenid": {token}}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, &TransportError{Op: "isTokenValid", URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("isTokenValid", "error", start)
		return false, &TransportError{Op: "isTokenValid", URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe("isTokenValid", "error", start)
		return false, &TransportError{Op: "isTokenValid", URL: endpoint, Err: err}
	}

	// OpenAM reports stale tokens either as 200 boolean=false or as a
	// 401 carrying the same body.
	if strings.Contains(string(body), "boolean=true") {
		c.observe("isTokenValid", "valid", start)
		return true, nil
	}
	if strings.Contains(string(body), "boolean=false") {
		c.observe("isTokenValid", "invalid", start)
		return false, nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.observe("isTokenValid", "invalid", start)
		return false, nil
	}

	c.observe("isTokenValid", "error", start)
	return false, &TransportError{
		Op:  "isTokenValid",
		URL: endpoint,
		Err: fmt.Errorf("unexpected response (status %d)", resp.StatusCode),
	}
}

// Attributes fetches the raw attribute set for a validated token.
// Transport failures are *TransportError; payloads the parser cannot map
// are *AttributeError.
func (c *Client) Attributes(ctx context.Context, token string) (map[string]string, error) {
	q := url.Values{
		"subjectid": {token},
		"realm":     {c.realm},
	}
	endpoint := c.baseURL + "/identity/attributes?" + q.Encode()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "attributes", URL: endpoint, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("attributes", "error", start)
		return nil, &TransportError{Op: "attributes", URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe("attributes", "error", start)
		return nil, &TransportError{Op: "attributes", URL: endpoint, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		c.observe("attributes", "error", start)
		return nil, &TransportError{
			Op:  "attributes",
			URL: endpoint,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	attrs, err := parseAttributes(string(body))
	if err != nil {
		c.observe("attributes", "malformed", start)
		return nil, err
	}

	c.observe("attributes", "ok", start)
	return attrs, nil
}

// parseAttributes reads the line-oriented userdetails format:
//
//	userdetails.token.id=AQIC5w...
//	userdetails.attribute.name=uid
//	userdetails.attribute.value=bob
//
// For multi-valued attributes the first value wins.
func parseAttributes(body string) (map[string]string, error) {
	attrs := make(map[string]string)
	var name string

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":

		case strings.HasPrefix(line, attrTokenPrefix):
			attrs["tokenid"] = strings.TrimPrefix(line, attrTokenPrefix)

		case strings.HasPrefix(line, attrNamePrefix):
			name = strings.TrimPrefix(line, attrNamePrefix)
			if name == "" {
				return nil, &AttributeError{Reason: "empty attribute name", Line: line}
			}

		case strings.HasPrefix(line, attrValuePrefix):
			if name == "" {
				return nil, &AttributeError{Reason: "attribute value before any name", Line: line}
			}
			if _, ok := attrs[name]; !ok {
				attrs[name] = strings.TrimPrefix(line, attrValuePrefix)
			}

		default:
			// Other userdetails.* lines (roles, token metadata) carry no
			// attribute data.
		}
	}

	return attrs, nil
}

// LoginURL builds the interactive login endpoint URL with the supplied
// query parameters. The configured realm is added unless the caller
// already set one.
func (c *Client) LoginURL(params url.Values) string {
	merged := url.Values{}
	for k, vs := range params {
		merged[k] = vs
	}
	if merged.Get("realm") == "" {
		merged.Set("realm", c.realm)
	}
	return c.baseURL + "/UI/Login?" + merged.Encode()
}

func (c *Client) observe(op, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ProviderRequestsTotal.WithLabelValues(op, status).Inc()
	c.metrics.ProviderRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
