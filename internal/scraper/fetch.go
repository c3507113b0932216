package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

var (
	errUnsupportedURL = errors.New("unsupported url")
	errNotHTML        = errors.New("response is not html")
	errEmptyBody      = errors.New("empty response body")
)

// page is a fetched and parsed recipe page.
type page struct {
	doc    *goquery.Document
	source *url.URL

	lines []string
}

// textLines returns the page's visible text lines, computed once.
func (p *page) textLines() []string {
	if p.lines == nil {
		p.lines = blockLines(p.doc.Nodes)
		if p.lines == nil {
			p.lines = []string{}
		}
	}
	return p.lines
}

func parseSourceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", errUnsupportedURL, raw)
	}
	return u, nil
}

// fetch downloads the page with a fresh collector so that concurrent
// ingestions share no visited-URL or cookie state.
func (s *Scraper) fetch(ctx context.Context, source *url.URL) (*page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	c := colly.NewCollector(
		colly.UserAgent(s.opts.UserAgent),
		colly.StdlibContext(ctx),
		colly.MaxBodySize(s.opts.MaxBodyBytes),
		colly.DetectCharset(),
	)
	c.SetRequestTimeout(s.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	var (
		body        []byte
		contentType string
		finalURL    *url.URL
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
		finalURL = r.Request.URL
	})

	start := time.Now()
	err := c.Visit(source.String())
	s.metrics.fetched(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}
	if !isHTML(contentType, body) {
		return nil, fmt.Errorf("%w: %q", errNotHTML, contentType)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if finalURL == nil {
		finalURL = source
	}
	return &page{doc: doc, source: finalURL}, nil
}

func isHTML(contentType string, body []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
