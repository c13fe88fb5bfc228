package fetch

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/media-comb/app/errs"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

type Page struct {
	URL string
	// Body is the document decoded to UTF-8.
	Body string
	// Content is Body with HTML entities unescaped.
	Content string
}

type Options struct {
	Headers   http.Header
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables
}

// Fetcher issues GET requests sharing one cookie session.
type Fetcher struct {
	httpClient *http.Client
	headers    http.Header
	limiter    *rate.Limiter
}

func NewFetcher(opts Options) *Fetcher {
	jar, _ := cookiejar.New(nil)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		headers: opts.Headers.Clone(),
	}

	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return f
}

// Fetch retrieves url once. When persistTo is set, the unescaped content is
// written there verbatim.
func (f *Fetcher) Fetch(ctx context.Context, url, persistTo string) (*Page, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, &errs.FetchError{URL: url, Cause: err}
	}

	page := &Page{
		URL:     url,
		Body:    body,
		Content: html.UnescapeString(body),
	}

	if persistTo != "" {
		if err := persist(persistTo, page.Content); err != nil {
			return nil, err
		}
	}

	return page, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range f.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	body, err := decode(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	slog.Debug("Page fetched", "url", url, "status", resp.StatusCode, "bytes", len(data))
	return body, nil
}

// decode converts data to UTF-8 using the charset announced in contentType.
// Without a charset the data must already be valid UTF-8.
func decode(data []byte, contentType string) (string, error) {
	charset := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			charset = strings.ToLower(strings.TrimSpace(params["charset"]))
		}
	}

	if charset == "" || charset == "utf-8" || charset == "utf8" {
		if !utf8.Valid(data) {
			return "", errors.New("failed to decode body: invalid UTF-8")
		}
		return string(data), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: unsupported charset %q", charset)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode body as %s: %w", charset, err)
	}

	return string(decoded), nil
}

func persist(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &errs.FilesystemError{Op: "create directory", Path: filepath.Dir(path), Cause: err}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &errs.FilesystemError{Op: "write page", Path: path, Cause: err}
	}
	return nil
}
