package splitwise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/common/model"
)

// DefaultBaseURL is the root of the Splitwise v3 API.
const DefaultBaseURL = "https://secure.splitwise.com/api/v3.0/"

// SplitwiseClient defines lower-level HTTP operations for Splitwise:
// GET with retry, form-style POST, auth headers and error classification.
type SplitwiseClient interface {
	GetJSON(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error
	GetBytes(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error)
	PostJSON(ctx context.Context, endpoint string, data map[string]any) (json.RawMessage, error)
	DoRequest(ctx context.Context, method, urlStr string, body io.Reader) ([]byte, error)
	Stats() RequestStats
}

// RequestStats counts HTTP round trips by outcome. Transport failures and a
// 401 answered before a token refresh count as failed.
type RequestStats struct {
	Total    int64
	Success  int64
	NotFound int64
	Failed   int64
}

type splitwiseClient struct {
	baseURL     string
	httpClient  common.HttpClient
	tokenSource oauth2.TokenSource
	authClient  common.AuthClient
	logger      logrus.FieldLogger

	// identical in-flight GETs share one round trip
	flight singleflight.Group

	// latest token from a refresh; replaces tokenSource once set
	tokenMu   sync.Mutex
	refreshed *oauth2.Token

	totalCalls    atomic.Int64
	notFoundCount atomic.Int64
	successCount  atomic.Int64
	failCount     atomic.Int64
}

// NewSplitwiseClient creates a new SplitwiseClient. authClient may be nil, in
// which case a 401 is returned to the caller without a refresh attempt.
func NewSplitwiseClient(baseURL string, httpClient common.HttpClient, tokenSource oauth2.TokenSource, authClient common.AuthClient, logger logrus.FieldLogger) SplitwiseClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &splitwiseClient{
		baseURL:     baseURL,
		httpClient:  httpClient,
		tokenSource: tokenSource,
		authClient:  authClient,
		logger:      logger,
	}
}

// GetJSON retrieves JSON from a Splitwise endpoint and unmarshals into entity.
func (c *splitwiseClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
	data, err := c.GetBytes(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := model.JSONUnmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// GetBytes retrieves the raw body of a GET, retrying transient failures.
func (c *splitwiseClient) GetBytes(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	urlStr, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	// The shared call outlives any one caller's cancellation; the HTTP client
	// timeout and the retry limit bound it. Each caller stops waiting when its
	// own ctx is done.
	ch := c.flight.DoChan(urlStr, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		return c.httpClient.RetryWithExponentialBackoff(shared, func() (interface{}, error) {
			return c.DoRequest(shared, http.MethodGet, urlStr, nil)
		})
	})
	select {
	case <-ctx.Done():
		return nil, transportError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return json.RawMessage(res.Val.([]byte)), nil
	}
}

// PostJSON flattens data into Splitwise's "a__0__b" key style and POSTs it.
// Writes are never retried.
func (c *splitwiseClient) PostJSON(ctx context.Context, endpoint string, data map[string]any) (json.RawMessage, error) {
	urlStr, err := c.buildURL(endpoint, nil)
	if err != nil {
		return nil, err
	}

	flat, err := FlattenData(data)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.DoRequest(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
}

// DoRequest is the core method that actually performs the HTTP request.
func (c *splitwiseClient) DoRequest(ctx context.Context, method, urlStr string, body io.Reader) ([]byte, error) {
	// read the entire body so we can resend it after a token refresh
	var bodyBytes []byte
	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		bodyBytes = b
	}

	token, err := c.token()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, status, err := c.executeRequest(ctx, method, urlStr, token, bodyBytes)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && canRefresh(token, c.authClient) {
		newToken, refreshErr := c.refresh(token)
		if refreshErr != nil {
			return nil, &common.APIError{
				Message: fmt.Sprintf("Authentication failed: token refresh failed: %v", refreshErr),
				Kind:    common.KindAuthentication,
				Err:     refreshErr,
			}
		}
		data, status, err = c.executeRequest(ctx, method, urlStr, newToken, bodyBytes)
		if err != nil {
			return nil, err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"url":      urlStr,
		"status":   status,
		"duration": time.Since(start).String(),
	}).Debug("splitwise request")

	if status < 200 || status >= 300 {
		return nil, common.ErrorForStatus(status, data)
	}
	return data, nil
}

// Stats returns a snapshot of the request counters.
func (c *splitwiseClient) Stats() RequestStats {
	return RequestStats{
		Total:    c.totalCalls.Load(),
		Success:  c.successCount.Load(),
		NotFound: c.notFoundCount.Load(),
		Failed:   c.failCount.Load(),
	}
}

// record counts one round trip; status 0 is a transport failure.
func (c *splitwiseClient) record(status int) {
	c.totalCalls.Add(1)
	switch {
	case status == http.StatusNotFound:
		c.notFoundCount.Add(1)
	case status >= 200 && status < 300:
		c.successCount.Add(1)
	default:
		c.failCount.Add(1)
	}
}

func (c *splitwiseClient) token() (*oauth2.Token, error) {
	c.tokenMu.Lock()
	fresh := c.refreshed
	c.tokenMu.Unlock()
	if fresh != nil {
		return fresh, nil
	}
	if c.tokenSource == nil {
		return nil, nil
	}
	tok, err := c.tokenSource.Token()
	if err != nil {
		return nil, &common.APIError{
			Message: fmt.Sprintf("Authentication failed: %v", err),
			Kind:    common.KindAuthentication,
			Err:     err,
		}
	}
	return tok, nil
}

// refresh exchanges the refresh token of stale for a new token and keeps it
// for later requests. Concurrent callers holding the same stale token share
// one exchange.
func (c *splitwiseClient) refresh(stale *oauth2.Token) (*oauth2.Token, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.refreshed != nil && c.refreshed.AccessToken != stale.AccessToken {
		return c.refreshed, nil
	}
	tok, err := c.authClient.RefreshToken(stale.RefreshToken)
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, errors.New("no access token returned")
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = stale.RefreshToken
	}
	c.refreshed = tok
	return tok, nil
}

// executeRequest actually does the low-level HTTP and records the outcome
func (c *splitwiseClient) executeRequest(ctx context.Context, method, urlStr string, token *oauth2.Token, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil && token.AccessToken != "" {
		token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(0)
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		c.record(0)
		return nil, resp.StatusCode, transportError(readErr)
	}
	c.record(resp.StatusCode)
	return data, resp.StatusCode, nil
}

func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return &common.APIError{Message: "Request canceled", Kind: common.KindCanceled, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &common.APIError{Message: "Request timed out", Kind: common.KindTimeout, Err: err}
	}
	return &common.APIError{Message: "Connection failed: " + err.Error(), Kind: common.KindConnection, Err: err}
}

// buildURL merges baseURL + endpoint + params
func (c *splitwiseClient) buildURL(endpoint string, params map[string]string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	path, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	fullURL := base.ResolveReference(path)
	if len(params) > 0 {
		q := fullURL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		fullURL.RawQuery = q.Encode()
	}
	return fullURL.String(), nil
}

func canRefresh(token *oauth2.Token, auth common.AuthClient) bool {
	return token != nil && token.RefreshToken != "" && auth != nil
}

// CheckSuccess inspects a write response. Splitwise answers some failed
// writes with 200 and an "errors" object or "success": false.
func CheckSuccess(data json.RawMessage) (json.RawMessage, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		return data, nil
	}

	msg := common.ExtractErrors(payload["errors"])
	failed := msg != ""
	if success, ok := payload["success"].(bool); ok && !success {
		failed = true
	}
	if !failed {
		return data, nil
	}
	if msg == "" {
		msg = "Operation failed"
	}
	return nil, &common.APIError{Message: msg, StatusCode: http.StatusOK, Kind: common.KindAPIError}
}

// FlattenData turns nested maps and lists into the flat "parent__child" and
// "list__0__field" keys Splitwise expects for write calls.
func FlattenData(data map[string]any) (map[string]any, error) {
	// normalise structs and typed slices through their JSON form
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request data: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic map[string]any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode request data: %w", err)
	}

	out := make(map[string]any)
	for k, v := range generic {
		flattenInto(out, k, v)
	}
	return out, nil
}

func flattenInto(out map[string]any, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flattenInto(out, prefix+"__"+k, child)
		}
	case []any:
		for i, child := range t {
			flattenInto(out, prefix+"__"+strconv.Itoa(i), child)
		}
	default:
		out[prefix] = t
	}
}
