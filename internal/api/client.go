package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
	ihttp "github.com/bitcasaclient/bitcasa-cli/internal/http"
	"github.com/bitcasaclient/bitcasa-cli/internal/version"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Fields(keysAndValues).Msg("[RETRY] " + msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("[RETRY] " + msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(keysAndValues).Msg("[RETRY] " + msg)
}

// keepLastResponse hands the final response back once retries are exhausted
// so the status and body end up in the returned error. net/http discards a
// response that comes with a non-nil error, hence the nil.
func keepLastResponse(resp *nethttp.Response, err error, numTries int) (*nethttp.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, fmt.Errorf("giving up after %d attempt(s): %w", numTries, err)
}

// Client talks to the Bitcasa v1 REST API.
//
// Metadata calls (listing, file info, token exchange) go through a
// retryablehttp client. Content streams use a separate client tuned for long
// transfers; retries there happen per attempt in the download engine.
type Client struct {
	retry        *retryablehttp.Client
	httpClient   *nethttp.Client // retry.StandardClient()
	baseClient   *nethttp.Client // proxy-aware, no retries; used for the login form
	streamClient *nethttp.Client
	streamRetry  ihttp.Config
	config       *config.Config
	baseURL      string
	accessToken  string
}

var _ cloud.RemoteStore = (*Client)(nil)

// NewClient creates a new API client
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("API base URL is empty")
	}

	baseClient, err := ihttp.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = baseClient
	retryClient.RetryMax = constants.APIRetryMax
	retryClient.RetryWaitMin = constants.APIRetryWaitMin
	retryClient.RetryWaitMax = constants.APIRetryWaitMax
	retryClient.Logger = &retryLogger{}
	retryClient.ErrorHandler = keepLastResponse

	streamClient, err := ihttp.CreateStreamingClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure streaming client: %w", err)
	}

	return &Client{
		retry:        retryClient,
		httpClient:   retryClient.StandardClient(),
		baseClient:   baseClient,
		streamClient: streamClient,
		streamRetry:  ihttp.DefaultConfig(),
		config:       cfg,
		baseURL:      strings.TrimSuffix(cfg.APIBaseURL, "/"),
		accessToken:  cfg.AccessToken,
	}, nil
}

// SetAccessToken sets the token sent with every authenticated call.
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// AccessToken returns the current access token, empty if not logged in.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// endpoint builds an absolute URL for path with query parameters.
// The access token is appended when withToken is set.
func (c *Client) endpoint(path string, params url.Values, withToken bool) string {
	if params == nil {
		params = url.Values{}
	}
	if withToken {
		params.Set("access_token", c.accessToken)
	}
	u := c.baseURL + path
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// envelope is the wrapper every v1 JSON response uses.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// getJSON performs an authenticated-or-not GET and decodes envelope.result into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, withToken bool, out interface{}) error {
	if withToken && c.accessToken == "" {
		return ErrNoAccessToken
	}

	ctx, cancel := context.WithTimeout(ctx, constants.APIRequestTimeout)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.endpoint(path, params, withToken), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	if resp.StatusCode != nethttp.StatusOK {
		return statusError(resp, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	if apiErr := decodeError(path, env.Error); apiErr != nil {
		return apiErr
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return fmt.Errorf("empty result for %s", path)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode result for %s: %w", path, err)
	}
	return nil
}

// decodeError turns the envelope's error member into an error, or nil if absent.
// The API has used both an object and a bare string here.
func decodeError(path string, raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Message == "" && eb.Code == 0 {
			return nil
		}
		return &ResponseError{Path: path, Code: eb.Code, Message: eb.Message}
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return &ResponseError{Path: path, Message: msg}
	}
	return &ResponseError{Path: path, Message: string(raw)}
}

func userAgent() string {
	return "bitcasa-cli/" + version.Version
}
