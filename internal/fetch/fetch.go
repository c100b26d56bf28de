// Package fetch retrieves raw wiki text from a MediaWiki API endpoint.
// It is the network collaborator of the picker and the definition pipeline;
// timeouts and size limits are enforced here.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the English Wiktionary API.
const DefaultEndpoint = "https://en.wiktionary.org/w/api.php"

// DefaultUserAgent identifies the client to the API.
const DefaultUserAgent = "wikiword/0.1 (https://github.com/chriscorrea/wikiword)"

// MaxResponseBytes limits API responses to prevent memory overload
const MaxResponseBytes = 10 * 1024 * 1024

// DefaultTimeout is the overall request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Error kinds returned by the client; check with errors.Is.
var (
	// ErrConnectivity indicates the API could not be reached or the response could not be read.
	ErrConnectivity = errors.New("connectivity failure")
	// ErrServer indicates the API answered with an error status or error payload.
	ErrServer = errors.New("server error")
	// ErrParse indicates the response did not have the expected shape.
	ErrParse = errors.New("response parse failure")
)

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, fmt.Errorf("content from %q exceeds size limit", l.source)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches page content from a MediaWiki API. It is safe for
// concurrent use across multiple goroutines.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a Client with timeouts derived from opts.Timeout.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{
		endpoint:   opts.Endpoint,
		userAgent:  opts.UserAgent,
		httpClient: newHTTPClient(opts.Timeout),
	}
}

// newHTTPClient splits the overall timeout across connection phases
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: timeout / 6, // ~17%, max time to wait for network connection
			}).DialContext,
			TLSHandshakeTimeout:   timeout / 6,
			ResponseHeaderTimeout: timeout / 2, // usually the longest phase
		},
	}
}

// PageContent returns the raw wiki text of the latest revision of title.
func (c *Client) PageContent(ctx context.Context, title string) (string, error) {
	return c.pageContent(ctx, title, false)
}

// ExpandedPageContent is like PageContent but asks the API to expand
// templates first, which gives more readable definitions.
func (c *Client) ExpandedPageContent(ctx context.Context, title string) (string, error) {
	return c.pageContent(ctx, title, true)
}

// apiResponse is the subset of the revisions query response we read
type apiResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Revisions []struct {
				Content string `json:"*"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (c *Client) pageContent(ctx context.Context, title string, expandTemplates bool) (string, error) {
	reqURL, err := c.pageURL(title, expandTemplates)
	if err != nil {
		return "", fmt.Errorf("failed to build request URL for %q: %w", title, err)
	}

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return "", err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response for %q: %w", ErrParse, title, err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("%w: API error for %q: %s (%s)", ErrServer, title, resp.Error.Info, resp.Error.Code)
	}

	// a single title yields a single page
	for _, page := range resp.Query.Pages {
		if len(page.Revisions) == 0 {
			return "", fmt.Errorf("%w: no revisions for page %q", ErrParse, title)
		}
		slog.Debug("Fetched page", "title", title, "expandTemplates", expandTemplates, "contentLength", len(page.Revisions[0].Content))
		return page.Revisions[0].Content, nil
	}

	return "", fmt.Errorf("%w: no pages in response for %q", ErrParse, title)
}

// pageURL builds the revisions query for title
func (c *Client) pageURL(title string, expandTemplates bool) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("action", "query")
	q.Set("prop", "revisions")
	q.Set("titles", title)
	q.Set("rvprop", "content")
	q.Set("format", "json")
	if expandTemplates {
		q.Set("rvexpandtemplates", "true")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// get performs the request and reads the body within MaxResponseBytes
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", reqURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch URL %q: %w", ErrConnectivity, reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP request failed for URL %q: status %d", ErrServer, reqURL, resp.StatusCode)
	}

	// check content-length header if present to prevent memory overload
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxResponseBytes {
			return nil, fmt.Errorf("%w: response too large (%d bytes > %d bytes limit)", ErrServer, size, MaxResponseBytes)
		}
	}

	body, err := io.ReadAll(&limitedReadCloser{
		ReadCloser: resp.Body,
		N:          MaxResponseBytes,
		source:     reqURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response from %q: %w", ErrConnectivity, reqURL, err)
	}

	return body, nil
}
