package scraper

import (
	"errors"
	"fmt"
)

// UserMessage is the only failure text shown to users. The underlying cause
// stays in the logs.
const UserMessage = "Failed to extract recipe from URL. Please check the URL and try again."

// ErrScrapeFailed is matched by every error returned from Ingest.
var ErrScrapeFailed = errors.New("scrape failed")

// ScrapeError records why a page could not be fetched or parsed.
type ScrapeError struct {
	URL   string
	Cause error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %v", e.URL, e.Cause)
}

func (e *ScrapeError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrScrapeFailed.
func (e *ScrapeError) Is(target error) bool { return target == ErrScrapeFailed }

// UserMessage returns the text safe to show to the user.
func (e *ScrapeError) UserMessage() string { return UserMessage }
