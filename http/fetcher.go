// Package http provides an HTTP implementation of attrdump.PageFetcher for
// the post index endpoint of the dapi XML API.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/attrdump"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for a single page request.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies requests as a desktop browser. The API rejects
// clients without a conventional User-Agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_7_5) AppleWebKit/537.31 (KHTML, like Gecko) Chrome/26.0.1410.65 Safari/537.31"

// DefaultBaseURL is the API endpoint crawled when none is configured.
const DefaultBaseURL = "https://safebooru.org/index.php"

// countAttr is the root attribute carrying the dataset's total item count.
const countAttr = "count"

// Ensure PageFetcher implements attrdump.PageFetcher at compile time.
var _ attrdump.PageFetcher = (*PageFetcher)(nil)

// PageFetcher retrieves post index pages and extracts one attribute from
// every post element.
type PageFetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
}

// Option configures a PageFetcher.
type Option func(*PageFetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *PageFetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *PageFetcher) {
		f.userAgent = ua
	}
}

// WithClient uses client instead of a client built from the timeout.
func WithClient(client *http.Client) Option {
	return func(f *PageFetcher) {
		f.client = client
	}
}

// NewPageFetcher creates a PageFetcher for the API at baseURL.
func NewPageFetcher(baseURL string, opts ...Option) *PageFetcher {
	f := &PageFetcher{
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// RequestURL builds the post index URL for one page.
func RequestURL(baseURL string, index, size int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", attrdump.WrapError(attrdump.EINVALID, err, "invalid base URL %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", attrdump.Errorf(attrdump.EINVALID, "base URL %q must be absolute", baseURL)
	}
	u.RawQuery = fmt.Sprintf("page=dapi&s=post&q=index&limit=%d&pid=%d", size, index)
	return u.String(), nil
}

// FetchPage requests a single page and parses it.
// Transport failures and non-200 responses are returned unwrapped enough for
// attrdump.Classify; malformed documents are returned as EPARSE.
func (f *PageFetcher) FetchPage(ctx context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
	target, err := RequestURL(f.baseURL, req.Index, req.Size)
	if err != nil {
		return attrdump.FetchOutcome{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return attrdump.FetchOutcome{}, attrdump.WrapError(attrdump.EINVALID, err, "creating request")
	}
	httpReq.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return attrdump.FetchOutcome{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return attrdump.FetchOutcome{}, &attrdump.StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	// Read the whole body first so a dropped connection is reported as an
	// I/O failure rather than a malformed document.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return attrdump.FetchOutcome{}, fmt.Errorf("reading page %d: %w", req.Index, err)
	}

	return ParsePage(body, req)
}

// ParsePage parses a post index document.
// A root element without a count attribute yields an end-of-data outcome.
func ParsePage(body []byte, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(body); err != nil {
		return attrdump.FetchOutcome{}, attrdump.WrapError(attrdump.EPARSE, err, "parsing page %d", req.Index)
	}

	root := doc.Root()
	if root == nil {
		return attrdump.FetchOutcome{}, attrdump.Errorf(attrdump.EPARSE, "page %d has no root element", req.Index)
	}

	countValue := root.SelectAttr(countAttr)
	if countValue == nil {
		return attrdump.EndOfDataOutcome(req.Index), nil
	}
	count, err := strconv.Atoi(countValue.Value)
	if err != nil {
		return attrdump.FetchOutcome{}, attrdump.WrapError(attrdump.EPARSE, err, "page %d count %q", req.Index, countValue.Value)
	}

	result := attrdump.PageResult{
		Index: req.Index,
		Count: count,
	}
	for _, post := range root.ChildElements() {
		// Attribute values may carry encoded line breaks (&#10;).
		if v := attrdump.SingleLine(post.SelectAttrValue(string(req.Attribute), "")); v != "" {
			result.Values = append(result.Values, v)
		}
	}

	return attrdump.PageOutcome(result), nil
}
