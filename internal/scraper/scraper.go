// Package scraper turns recipe web pages into partial recipes. Embedded
// JSON-LD is preferred; pages without it go through DOM heuristics and, as a
// last resort, mining of the visible page text.
package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recipebox/internal/recipe"
)

// Defaults applied to zero Options fields.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultMaxBodyBytes = 10 * 1024 * 1024
)

// Options configures page fetching.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return o
}

// Scraper ingests recipe pages. It holds no per-request state and is safe for
// concurrent use.
type Scraper struct {
	opts    Options
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a Scraper. A nil logger discards logs and nil metrics record nothing.
func New(opts Options, logger *zap.Logger, metrics *Metrics) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		opts:    opts.withDefaults(),
		logger:  logger.Named("scraper"),
		metrics: metrics,
	}
}

// Ingest fetches rawURL and extracts a partial recipe from it. Every error it
// returns matches ErrScrapeFailed; missing fields are not errors.
func (s *Scraper) Ingest(ctx context.Context, rawURL string) (*recipe.Partial, error) {
	logger := s.logger.With(zap.String("url", rawURL))

	source, err := parseSourceURL(rawURL)
	if err != nil {
		return nil, s.fail(logger, rawURL, err)
	}
	p, err := s.fetch(ctx, source)
	if err != nil {
		return nil, s.fail(logger, rawURL, err)
	}

	out, outcome := s.extract(p)
	out.SourceURL = p.source.String()

	s.metrics.ingest(outcome)
	logger.Info("recipe ingested",
		zap.String("outcome", outcome),
		zap.String("title", out.Title),
		zap.Int("ingredients", out.Ingredients.ItemCount()),
		zap.Int("steps", len(out.Instructions.Steps())),
	)
	return out, nil
}

// extract prefers JSON-LD and falls back to the heuristic extractor.
func (s *Scraper) extract(p *page) (*recipe.Partial, string) {
	if out := s.extractStructured(p); out != nil {
		s.record("recipe", "json-ld", 1)
		if out.Title == "" {
			out.Title, _ = firstString(p, titleStrategies)
			if out.Title == "" {
				out.Title = FallbackTitle
			}
		}
		if out.ImageURL == "" {
			out.ImageURL = s.findImage(p)
		} else {
			out.ImageURL = resolveURL(p.source, out.ImageURL)
		}
		if out.VideoURL == "" {
			out.VideoURL = s.findVideo(p)
		} else {
			out.VideoURL = resolveURL(p.source, out.VideoURL)
		}
		return out, "structured"
	}

	s.record("recipe", "heuristic", 1)
	return s.extractHeuristic(p), "heuristic"
}

func (s *Scraper) fail(logger *zap.Logger, rawURL string, cause error) error {
	s.metrics.ingest("failed")
	logger.Warn("recipe ingestion failed", zap.Error(cause))
	return &ScrapeError{URL: rawURL, Cause: cause}
}
