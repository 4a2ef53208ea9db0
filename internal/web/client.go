package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/konstantinfoerster/anki-importer-go/internal/aio"
	"github.com/rs/zerolog/log"
)

// Config controls timeouts and retries of remote downloads.
type Config struct {
	Delay       time.Duration `yaml:"delay"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
	Retrieables []int         `yaml:"retrieables"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
}

// TimeoutOrDefault returns the configured timeout or 30 seconds.
func (c Config) TimeoutOrDefault() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}

	return c.Timeout
}

type Response struct {
	Body     io.ReadCloser
	MimeType MimeType
}

func NewGetOpts() GetOptions {
	return GetOptions{
		Header:      make(map[string]string),
		StatusCodes: []int{http.StatusOK},
	}
}

type GetOptions struct {
	Header      map[string]string
	StatusCodes []int
}

func (o GetOptions) WithHeader(k, v string) GetOptions {
	o.Header[k] = v

	return o
}

func (o GetOptions) WithExpectedCodes(statusCode ...int) GetOptions {
	o.StatusCodes = statusCode

	return o
}

type Client interface {
	Get(ctx context.Context, url string, opts GetOptions) (*Response, error)
}

func NewClient(cfg Config, client *http.Client) Client {
	if client == nil {
		panic("missing net/http client")
	}

	return &httpClient{
		cfg:    cfg,
		client: client,
	}
}

type httpClient struct {
	cfg    Config
	client *http.Client
}

func (c *httpClient) Get(ctx context.Context, url string, opts GetOptions) (*Response, error) {
	resp, err := WithRetry(ctx, c.cfg, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("request creation failed for url %s, %w", url, err)
		}

		req.Header.Set(HeaderUserAgent, DefaultUserAgent)
		for k, v := range opts.Header {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request execution failed for url %s, %w", url, err)
		}

		if !slices.Contains(opts.StatusCodes, resp.StatusCode) {
			defer aio.Close(resp.Body)

			return nil, NewHTTPErr(url, resp)
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Body:     resp.Body,
		MimeType: NewMimeType(resp.Header.Get("content-type")),
	}, nil
}

// WithRetry runs exec after the configured delay. Errors carrying one of the retrieable status codes
// are retried up to cfg.Retries times, every other error is returned immediately.
func WithRetry(ctx context.Context, cfg Config, exec func() (*http.Response, error)) (*http.Response, error) {
	t := time.NewTimer(cfg.Delay)
	defer t.Stop()

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("stop execution due to cancelled context %w", ctx.Err())
		case <-t.C:
		}

		resp, err := exec()
		if err == nil {
			return resp, nil
		}

		if !IsStatusCode(err, cfg.Retrieables...) || attempt >= cfg.Retries {
			return nil, err
		}

		log.Info().Err(err).Int("attempt", attempt+1).Msgf("retry request in %s", cfg.RetryDelay)
		t.Reset(cfg.RetryDelay)
	}
}
