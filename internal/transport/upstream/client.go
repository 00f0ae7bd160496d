// Package upstream fetches usage statistics from the remote usage API while
// presenting itself as a desktop Chrome browser.
package upstream

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usagerelay/internal/domain"
)

// DefaultUserAgent matches the Chrome 133 profile used by NewBrowserClient.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

const maxBodyBytes = 1 << 20

// Client calls the organization usage endpoint.
type Client struct {
	endpoint   string
	origin     string
	sessionKey string
	userAgent  string
	hc         Doer
	logger     *zap.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	OrgID      string
	SessionKey string
	UserAgent  string
	Timeout    time.Duration
	RootCAs    *x509.CertPool // nil uses the system roots
	HTTPClient Doer           // overrides the browser client, Timeout and RootCAs when set
	Logger     *zap.Logger
}

// New creates a usage API client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute, got %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc, err = NewBrowserClient(BrowserOptions{
			Timeout: opts.Timeout,
			RootCAs: opts.RootCAs,
			Logger:  opts.Logger,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		endpoint:   base.String() + "/api/organizations/" + url.PathEscape(opts.OrgID) + "/usage",
		origin:     base.Scheme + "://" + base.Host,
		sessionKey: opts.SessionKey,
		userAgent:  opts.UserAgent,
		hc:         hc,
		logger:     opts.Logger,
	}, nil
}

// Endpoint returns the usage URL this client polls.
func (c *Client) Endpoint() string { return c.endpoint }

// FetchUsage performs one GET of the usage endpoint and returns the raw JSON object.
//
// Errors: domain.ErrSessionExpired on 401, domain.ErrAccessDenied on 403,
// *domain.StatusError on any other non-200, *domain.TransportError for network,
// timeout and body decoding failures.
func (c *Client) FetchUsage(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, http.NoBody)
	if err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("creating request: %w", err))
	}
	c.setBrowserHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		drain(resp.Body)
		return nil, domain.ErrSessionExpired
	case http.StatusForbidden:
		drain(resp.Body)
		return nil, domain.ErrAccessDenied
	default:
		drain(resp.Body)
		return nil, domain.NewStatusError(resp.StatusCode)
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	return body, nil
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	dr, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	body, err := io.ReadAll(io.LimitReader(dr, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, errors.New("decoding response: invalid JSON")
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("decoding response: expected JSON object")
	}

	c.logger.Debug("usage response received",
		zap.String("proto", resp.Proto),
		zap.String("content_encoding", resp.Header.Get("Content-Encoding")),
		zap.Int("bytes", len(trimmed)),
	)
	return trimmed, nil
}

// setBrowserHeaders reproduces the headers Chrome sends for a same-origin fetch
// from the settings page.
func (c *Client) setBrowserHeaders(req *http.Request) {
	h := req.Header
	h[http.HeaderOrderKey] = append([]string(nil), chromeHeaderOrder...)
	h.Set("Cookie", "sessionKey="+c.sessionKey)
	h.Set("User-Agent", c.userAgent)
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", acceptEncoding)
	h.Set("Referer", c.origin+"/settings/usage")
	h.Set("Sec-Ch-Ua", `"Not(A:Brand";v="99", "Google Chrome";v="133", "Chromium";v="133"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Priority", "u=1, i")
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxBodyBytes))
}
