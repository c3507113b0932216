package scraper

import (
	"go.uber.org/zap"
)

// strategy is one way of locating candidate values for a field.
type strategy[T any] struct {
	name string
	find func(p *page) []T
}

// cascade evaluates strategies lazily in order. The first result with at least
// minViable entries wins. When none reaches it, the richest result is kept and
// ties go to the earlier strategy. The winning strategy name is "" when every
// strategy came back empty.
func cascade[T any](p *page, minViable int, strategies []strategy[T]) ([]T, string) {
	var (
		best     []T
		bestName string
	)
	for _, st := range strategies {
		got := st.find(p)
		if len(got) >= minViable && len(got) > 0 {
			return got, st.name
		}
		if len(got) > len(best) {
			best, bestName = got, st.name
		}
	}
	return best, bestName
}

// firstString runs string strategies and returns the first non-empty value.
func firstString(p *page, strategies []strategy[string]) (string, string) {
	got, name := cascade(p, 1, strategies)
	if len(got) == 0 {
		return "", ""
	}
	return got[0], name
}

// record logs and counts which strategy produced a field.
func (s *Scraper) record(field, name string, count int) {
	if name == "" {
		s.logger.Debug("no strategy matched", zap.String("field", field))
		return
	}
	s.logger.Debug("extraction strategy matched",
		zap.String("field", field),
		zap.String("strategy", name),
		zap.Int("count", count),
	)
	s.metrics.strategy(field, name)
}
