// Package arcgis talks to the hosted feature, analysis and geometry services
// the game runs against.
package arcgis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/domino14/wanderer/backend"
)

const (
	DefaultPortalURL = "https://www.arcgis.com/sharing/rest"
	DefaultLayerURL  = "https://services7.arcgis.com/iYTqAIgyDcVSpgzf/arcgis/rest/services/World_Cities/FeatureServer/0"
)

// Client handles HTTP communication with the portal and its services.
type Client struct {
	httpClient *http.Client
	portalURL  string
	layerURL   string

	analysisURL string
	geometryURL string

	token    string
	referrer string

	attempts   uint
	retryDelay time.Duration
}

// NewClient creates a client for a portal and a cities feature layer.
func NewClient(portalURL, layerURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		portalURL:  strings.TrimRight(portalURL, "/"),
		layerURL:   strings.TrimRight(layerURL, "/"),
		referrer:   "Referrer " + uuid.NewString(),
		attempts:   3,
		retryDelay: 500 * time.Millisecond,
	}
}

// LayerURL is the cities feature layer this client queries.
func (c *Client) LayerURL() string { return c.layerURL }

// SetToken sets the token sent with every request.
func (c *Client) SetToken(token string) { c.token = token }

// SetReferrer overrides the generated referrer. Tokens are bound to the
// referrer they were issued for.
func (c *Client) SetReferrer(referrer string) { c.referrer = referrer }

// SetRetries sets how many times an idempotent read is attempted when the
// backend is unavailable, and the base delay between attempts.
func (c *Client) SetRetries(attempts uint, delay time.Duration) {
	if attempts == 0 {
		attempts = 1
	}
	c.attempts = attempts
	c.retryDelay = delay
}

// SetHelperServices points the client at the analysis and geometry services.
func (c *Client) SetHelperServices(h HelperServices) {
	c.analysisURL = strings.TrimRight(h.AnalysisURL, "/")
	c.geometryURL = strings.TrimRight(h.GeometryURL, "/")
}

func (c *Client) params(extra url.Values) url.Values {
	v := url.Values{}
	for k, vals := range extra {
		v[k] = vals
	}
	if c.token != "" {
		v.Set("token", c.token)
	}
	v.Set("referer", c.referrer)
	v.Set("f", "json")
	return v
}

// do sends a request and returns the body. Transport failures and server
// errors match backend.ErrUnavailable.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backend.Unavailable(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backend.Unavailable(op, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, backend.Unavailable(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backend.QueryErrorf("%s: unexpected status %d: %s", op, resp.StatusCode, string(body))
	}
	return body, nil
}

// get performs an idempotent read, retrying while the backend is
// unavailable.
func (c *Client) get(ctx context.Context, op, endpoint string, query url.Values, header http.Header) (gjson.Result, error) {
	u := endpoint + "?" + c.params(query).Encode()
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			for k, vals := range header {
				req.Header[k] = vals
			}
			return c.do(req, op)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, backend.ErrUnavailable)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Str("op", op).Uint("attempt", n+1).Msg("backend unavailable, retrying")
		}),
	)
	if err != nil {
		return gjson.Result{}, err
	}
	return parseBody(op, body)
}

// post submits a form once. Posts are not retried.
func (c *Client) post(ctx context.Context, op, endpoint string, form url.Values) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(c.params(form).Encode()))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := c.do(req, op)
	if err != nil {
		return gjson.Result{}, err
	}
	return parseBody(op, body)
}
