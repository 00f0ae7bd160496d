package upstream

import (
	"crypto/x509"
	"fmt"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.uber.org/zap"
)

// Doer sends a single HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// chromeHeaderOrder is the order Chrome 133 writes headers for a same-origin fetch().
// Pseudo-headers and HTTP/2 SETTINGS come from the client profile.
var chromeHeaderOrder = []string{
	"sec-ch-ua-platform",
	"user-agent",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"accept",
	"sec-fetch-site",
	"sec-fetch-mode",
	"sec-fetch-dest",
	"referer",
	"accept-encoding",
	"accept-language",
	"cookie",
	"priority",
}

// BrowserOptions configures NewBrowserClient.
type BrowserOptions struct {
	Timeout time.Duration
	RootCAs *x509.CertPool          // nil uses the system roots
	Profile *profiles.ClientProfile // nil selects Chrome 133
	Logger  *zap.Logger
}

// NewBrowserClient creates an HTTP client that looks like desktop Chrome on the wire:
// the TLS ClientHello, ALPN, HTTP/2 SETTINGS, connection window and pseudo-header
// order all follow the selected profile. Redirects are returned, not followed.
func NewBrowserClient(opts BrowserOptions) (tls_client.HttpClient, error) {
	profile := profiles.Chrome_133
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithDisableHttp3(),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithTransportOptions(&tls_client.TransportOptions{
			RootCAs: opts.RootCAs,
			// bodies are decoded by decodeBody so every Accept-Encoding value is handled
			DisableCompression: true,
		}),
	}
	if opts.Timeout > 0 {
		options = append(options, tls_client.WithTimeoutMilliseconds(int(opts.Timeout.Milliseconds())))
	}

	hc, err := tls_client.NewHttpClient(tlsLogger{opts.Logger.Sugar()}, options...)
	if err != nil {
		return nil, fmt.Errorf("create browser client: %w", err)
	}
	return hc, nil
}

// tlsLogger routes tls-client logs into zap. Debug output is dropped because
// its request dumps carry the session cookie.
type tlsLogger struct {
	s *zap.SugaredLogger
}

func (tlsLogger) Debug(string, ...any)               {}
func (l tlsLogger) Info(format string, args ...any)  { l.s.Infof(format, args...) }
func (l tlsLogger) Warn(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l tlsLogger) Error(format string, args ...any) { l.s.Errorf(format, args...) }
