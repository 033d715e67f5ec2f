// Package constants holds tunables shared across the bitcasa client.
package constants

import (
	"time"
)

// Transfer settings
const (
	// ProgressWindowChunks - number of chunks between progress/throughput samples (30)
	// The progress line is redrawn once per window, and the KB/s figure covers
	// only the bytes received during that window.
	ProgressWindowChunks = 30

	// ContentChunkSize - size of each read from the content stream (64 KB)
	// The API does not dictate a chunk size; this matches what the server
	// tends to flush per frame and keeps the window cadence meaningful.
	ContentChunkSize = 64 * 1024

	// DefaultDownloadAttempts - whole-file attempts before a download is reported failed (3)
	DefaultDownloadAttempts = 3

	// ProgressBarWidth - number of cells in the fixed-width progress bar
	ProgressBarWidth = 10

	// DiskSpaceSafetyMargin - multiplier applied to the expected size before
	// checking free space (10% buffer)
	DiskSpaceSafetyMargin = 1.1
)

// Retry configuration for opening content streams
const (
	// RetryMaxAttempts - attempts made to open a content stream before the
	// download attempt is counted as failed
	RetryMaxAttempts = 4

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries (15s)
	RetryMaxDelay = 15 * time.Second

	// APIRetryMax - retries performed by the metadata client (listing, file info, login)
	APIRetryMax = 5

	// APIRetryWaitMin / APIRetryWaitMax bound the metadata client backoff
	APIRetryWaitMin = 1 * time.Second
	APIRetryWaitMax = 30 * time.Second
)

// API endpoints
const (
	// DefaultAPIBaseURL - Bitcasa v1 REST endpoint
	DefaultAPIBaseURL = "https://developer.api.bitcasa.com/v1"

	// CredentialsSection - INI section holding client credentials and login info
	CredentialsSection = "bitcasa"

	// ProxySection - optional INI section holding proxy settings
	ProxySection = "proxy"

	// AccessTokenKey - key used for the access token in the token file
	AccessTokenKey = "access-token"
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (60 seconds)
	HTTPTLSHandshakeTimeout = 60 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPResponseHeaderTimeout - time to wait for response headers on a content stream
	HTTPResponseHeaderTimeout = 2 * time.Minute

	// APIRequestTimeout - overall timeout for metadata requests (listing, info, login)
	APIRequestTimeout = 5 * time.Minute
)
