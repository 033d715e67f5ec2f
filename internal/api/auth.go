package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var csrfPattern = regexp.MustCompile(`<input type="hidden" name="csrf_token" value="(.+?)"/>`)

// maxLoginRedirects bounds the redirect chain after the login form POST.
const maxLoginRedirects = 10

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// LoginURL returns the OAuth authenticate page for this client id.
func (c *Client) LoginURL(redirectURL string) string {
	params := url.Values{
		"client_id": {c.config.ClientID},
		"redirect":  {redirectURL},
	}
	return c.endpoint("/oauth2/authenticate", params, false)
}

// Login runs the browserless OAuth flow: fetch the login form, post the
// credentials with its CSRF token, pick the authorization code off the
// redirect, and exchange it for an access token. The token is also set on
// the client.
func (c *Client) Login(ctx context.Context, username, password, redirectURL string) (string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie jar: %w", err)
	}
	// Stop following redirects once the authorization code shows up; the
	// redirect URL itself may not be reachable.
	loginClient := &nethttp.Client{
		Transport: c.baseClient.Transport,
		Jar:       jar,
		CheckRedirect: func(req *nethttp.Request, via []*nethttp.Request) error {
			if req.URL.Query().Get("authorization_code") != "" {
				return nethttp.ErrUseLastResponse
			}
			if len(via) >= maxLoginRedirects {
				return errors.New("stopped after too many redirects")
			}
			return nil
		},
	}

	loginURL := c.LoginURL(redirectURL)

	page, err := c.fetchLoginPage(ctx, loginClient, loginURL)
	if err != nil {
		return "", err
	}
	csrf, err := extractCSRF(page)
	if err != nil {
		return "", err
	}
	log.Debug().Msg("got login form token")

	code, err := c.postLoginForm(ctx, loginClient, loginURL, url.Values{
		"user":       {username},
		"password":   {password},
		"redirect":   {redirectURL},
		"csrf_token": {csrf},
	})
	if err != nil {
		return "", err
	}
	log.Debug().Msg("got authorization code")

	token, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}
	c.SetAccessToken(token)
	return token, nil
}

func (c *Client) fetchLoginPage(ctx context.Context, client *nethttp.Client, loginURL string) (string, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, loginURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent())

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET on login page failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read login page: %w", err)
	}
	if resp.StatusCode != nethttp.StatusOK {
		return "", fmt.Errorf("%w: GET on login page returned '%d'", ErrAuthentication, resp.StatusCode)
	}
	return string(body), nil
}

func (c *Client) postLoginForm(ctx context.Context, client *nethttp.Client, loginURL string, form url.Values) (string, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent())

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login POST failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if code := authorizationCode(resp); code != "" {
		return code, nil
	}
	return "", fmt.Errorf("%w: no authorization code in login response (status %d), check username and password",
		ErrAuthentication, resp.StatusCode)
}

// authorizationCode looks for the code on the pending redirect first, then on
// the URL of the final request.
func authorizationCode(resp *nethttp.Response) string {
	if loc, err := resp.Location(); err == nil {
		if code := loc.Query().Get("authorization_code"); code != "" {
			return code
		}
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.Query().Get("authorization_code")
	}
	return ""
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"secret": {c.config.Secret},
		"code":   {code},
	}
	var tok tokenResponse
	if err := c.getJSON(ctx, "/oauth2/access_token", params, false, &tok); err != nil {
		return "", fmt.Errorf("%w: token exchange: %w", ErrAuthentication, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token exchange returned no access_token", ErrAuthentication)
	}
	return tok.AccessToken, nil
}

func extractCSRF(page string) (string, error) {
	m := csrfPattern.FindStringSubmatch(page)
	if len(m) < 2 {
		return "", fmt.Errorf("%w: no csrf_token on login page", ErrAuthentication)
	}
	return m[1], nil
}
