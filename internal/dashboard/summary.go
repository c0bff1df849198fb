package dashboard

import (
	"context"
	"sync"

	"github.com/joewaine/best-self-ai/internal/oura"
)

// YesterdaySummary fetches yesterday's sleep and readiness for the coach
// prompt. Unlike the dashboard views this is not cached and errors
// propagate; the voice pipeline decides whether to degrade.
func (s *Service) YesterdaySummary(ctx context.Context, token string) (*Summary, error) {
	day := s.dateString(1)

	var (
		wg        sync.WaitGroup
		sleep     category[oura.DailySleep]
		readiness category[oura.DailyReadiness]
	)
	fetch(&wg, &sleep, func() (oura.ListResponse[oura.DailySleep], error) {
		return s.vendor.FetchDailySleep(ctx, day, token)
	})
	fetch(&wg, &readiness, func() (oura.ListResponse[oura.DailyReadiness], error) {
		return s.vendor.FetchDailyReadiness(ctx, day, token)
	})
	wg.Wait()

	if sleep.err != nil {
		return nil, sleep.err
	}
	if readiness.err != nil {
		return nil, readiness.err
	}

	summary := &Summary{Day: day}
	if d, ok := sleep.first(); ok {
		summary.Sleep = ScoreSection{Score: d.Score, Contributors: d.Contributors}
	}
	if d, ok := readiness.first(); ok {
		summary.Readiness = ScoreSection{Score: d.Score, Contributors: d.Contributors}
	}
	return summary, nil
}
