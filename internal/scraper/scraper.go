package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
)

// Extraction modes.
const (
	ModeFull    = "full"    // every visible text node of the page
	ModeArticle = "article" // main article body only, via readability
)

// ExtractionError reports a failed page retrieval. StatusCode is zero when
// no response was received.
type ExtractionError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("extract %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	UserAgent      string
	RequestTimeout time.Duration
	Mode           string
}

// Extractor fetches a page and reduces it to flat text.
type Extractor struct {
	userAgent      string
	requestTimeout time.Duration
	mode           string
}

// New creates a new Extractor.
func New(opts Options) *Extractor {
	e := &Extractor{
		userAgent:      opts.UserAgent,
		requestTimeout: opts.RequestTimeout,
		mode:           opts.Mode,
	}
	if e.userAgent == "" {
		e.userAgent = "fakenews/1.0 (+https://github.com/thinkscotty/fakenews)"
	}
	if e.requestTimeout <= 0 {
		e.requestTimeout = 30 * time.Second
	}
	if e.mode == "" {
		e.mode = ModeFull
	}
	return e
}

// ExtractText issues a single GET for pageURL and returns its visible text,
// whitespace-normalised. The body is parsed as HTML whatever its content type.
// Network failures and non-2xx responses return an *ExtractionError. The body
// is read in full with no size cap.
func (e *Extractor) ExtractText(ctx context.Context, pageURL string) (string, error) {
	// By default colly treats any status from 203 up as an error and silently
	// truncates bodies past 10 MiB.
	c := colly.NewCollector(
		colly.UserAgent(e.userAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(0),
	)
	c.SetRequestTimeout(e.requestTimeout)

	var body []byte
	var status int
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	start := time.Now()
	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil {
		slog.Error("Page fetch failed", "url", pageURL, "status", status, "elapsed", time.Since(start), "error", fetchErr)
		return "", &ExtractionError{URL: pageURL, StatusCode: status, Err: fetchErr}
	}
	if status < 200 || status > 299 {
		return "", &ExtractionError{URL: pageURL, StatusCode: status, Err: errors.New(http.StatusText(status))}
	}

	var text string
	var err error
	switch e.mode {
	case ModeArticle:
		text, err = articleText(pageURL, body)
	default:
		text, err = TextFromHTML(bytes.NewReader(body))
	}
	if err != nil {
		return "", &ExtractionError{URL: pageURL, StatusCode: status, Err: err}
	}

	slog.Info("Page extracted", "url", pageURL, "mode", e.mode, "bytes", len(body), "chars", len(text), "elapsed", time.Since(start))
	return text, nil
}

// TextFromHTML parses r as HTML, drops script and style elements and returns
// the remaining text passed through CleanText.
func TextFromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()
	return CleanText(doc.Text()), nil
}

func articleText(pageURL string, body []byte) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return CleanText(article.TextContent), nil
}

// CleanText flattens text into a single line: each line is trimmed and split
// on double spaces, fragments are trimmed, empty ones dropped, and the rest
// joined with single spaces.
func CleanText(s string) string {
	var chunks []string
	for _, line := range strings.FieldsFunc(s, isLineBreak) {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, " ")
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// ValidateURL checks if a URL is valid and uses http/https.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
