package api

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
	ihttp "github.com/bitcasaclient/bitcasa-cli/internal/http"
	"github.com/bitcasaclient/bitcasa-cli/internal/models"
)

// ContentStream reads a response body in fixed-size chunks.
// The slice returned by Next is reused and only valid until the next call.
type ContentStream struct {
	body io.ReadCloser
	buf  []byte
	err  error // sticky; returned once buffered data is drained
}

var _ cloud.ChunkStream = (*ContentStream)(nil)

func newContentStream(body io.ReadCloser, chunkSize int) *ContentStream {
	if chunkSize <= 0 {
		chunkSize = constants.ContentChunkSize
	}
	return &ContentStream{body: body, buf: make([]byte, chunkSize)}
}

// Next returns the next chunk, io.EOF at the end of the body, or the
// transport error that ended the body early.
func (s *ContentStream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	n := 0
	for n < len(s.buf) {
		m, err := s.body.Read(s.buf[n:])
		n += m
		if err != nil {
			s.err = err
			break
		}
	}
	if n > 0 {
		return s.buf[:n], nil
	}
	return nil, s.err
}

// Close releases the underlying connection.
func (s *ContentStream) Close() error {
	return s.body.Close()
}

// OpenContentStream starts a GET of the file content for target.
// Opening is retried on transient failures; once the body is flowing, a
// failure ends the stream and the caller decides whether to start over.
func (c *Client) OpenContentStream(ctx context.Context, target models.DownloadTarget) (cloud.ChunkStream, error) {
	if c.accessToken == "" {
		return nil, ErrNoAccessToken
	}

	params := url.Values{"path": {target.RemotePath}}
	endpoint := c.endpoint("/files/"+url.PathEscape(target.Name), params, true)

	var resp *nethttp.Response
	retryCfg := c.streamRetry
	retryCfg.OnRetry = func(attempt int, err error, errType ihttp.ErrorType) {
		log.Warn().Err(err).Int("attempt", attempt).Str("type", ihttp.ErrorTypeName(errType)).
			Str("file", target.Name).Msg("retrying content request")
	}

	timer := cloud.StartTimer(nil, "open stream "+target.Name)
	err := ihttp.ExecuteWithRetry(ctx, retryCfg, func() error {
		req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent())

		r, err := c.streamClient.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode != nethttp.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(r.Body, 512))
			r.Body.Close()
			return statusError(r, body)
		}
		resp = r
		return nil
	})
	timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("open content stream for %s: %w", target.Name, err)
	}

	return newContentStream(resp.Body, constants.ContentChunkSize), nil
}
