// Package backend is the typed client of the POS REST backend.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Message)
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return "decode " + e.Op + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client talks to the backend REST API.
type Client struct {
	base string
	http *http.Client
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	tp         trace.TracerProvider
	mp         metric.MeterProvider
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTelemetry instruments the default client transport.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(o *options) { o.tp, o.mp = tp, mp }
}

// New creates a Client for the API rooted at baseURL, e.g.
// "https://pos.example.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	hc := o.httpClient
	if hc == nil {
		var otelOpts []otelhttp.Option
		if o.tp != nil {
			otelOpts = append(otelOpts, otelhttp.WithTracerProvider(o.tp))
		}
		if o.mp != nil {
			otelOpts = append(otelOpts, otelhttp.WithMeterProvider(o.mp))
		}
		hc = &http.Client{
			Timeout:   o.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelOpts...),
		}
	}

	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: hc,
	}, nil
}

// do sends a request and passes the decoded 2xx body to decode, which may
// be nil.
func (c *Client) do(ctx context.Context, method, path string, body []byte, decode func(d *jx.Decoder) error) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	if decode == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decode(jx.DecodeBytes(data)); err != nil {
		return &DecodeError{Op: method + " " + path, Err: err}
	}
	return nil
}

// errorMessage extracts {"message": ...} from an error body.
func errorMessage(status int, data []byte) string {
	var msg string
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Object {
		_ = d.Obj(func(d *jx.Decoder, key string) error {
			if key == "message" && d.Next() == jx.String {
				s, err := d.Str()
				msg = s
				return err
			}
			return d.Skip()
		})
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return msg
}

func itemPath(format, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}
