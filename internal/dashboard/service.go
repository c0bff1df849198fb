// Package dashboard aggregates the per-category Oura feeds into the today
// and week views served to the frontend, with a TTL cache in front.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/cache"
	"github.com/joewaine/best-self-ai/internal/oura"
	"github.com/joewaine/best-self-ai/internal/storage"
)

const (
	// Today data (heart rate, steps) moves intraday; weekly scores barely
	// do. TTLs are sized to the vendor's update cadence.
	TodayTTL = 5 * time.Minute
	WeekTTL  = 30 * time.Minute

	maxHeartRateSamples = 48
)

// ErrNoOuraToken is the configuration error for users who have not saved a
// vendor token yet. Surfaced as a 400, never retried.
var ErrNoOuraToken = errors.New("no oura token configured")

type VendorClient interface {
	FetchDailySleep(ctx context.Context, day, token string) (oura.ListResponse[oura.DailySleep], error)
	FetchDailyReadiness(ctx context.Context, day, token string) (oura.ListResponse[oura.DailyReadiness], error)
	FetchDailyActivity(ctx context.Context, day, token string) (oura.ListResponse[oura.DailyActivity], error)
	FetchDailyStress(ctx context.Context, day, token string) (oura.ListResponse[oura.DailyStress], error)
	FetchDailySpo2(ctx context.Context, day, token string) (oura.ListResponse[oura.DailySpo2], error)
	FetchHeartRate(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.HeartRate], error)
	FetchSleepPeriods(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.SleepPeriod], error)
	FetchDailySleepRange(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.DailySleep], error)
	FetchDailyReadinessRange(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.DailyReadiness], error)
	FetchDailyActivityRange(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.DailyActivity], error)
}

type Metrics interface {
	IncCacheHits()
	IncCacheMisses()
}

type noopMetrics struct{}

func (noopMetrics) IncCacheHits()   {}
func (noopMetrics) IncCacheMisses() {}

type Service struct {
	vendor   VendorClient
	settings storage.SettingsRepository
	cache    *cache.Cache
	metrics  Metrics
	logger   internal.Logger
	now      func() time.Time
}

func NewService(vendor VendorClient, settings storage.SettingsRepository, c *cache.Cache, metrics Metrics, logger internal.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		vendor:   vendor,
		settings: settings,
		cache:    c,
		metrics:  metrics,
		logger:   logger,
		now:      now,
	}
}

func (s *Service) dateString(daysAgo int) string {
	return s.now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

// category is one fan-out leg: either the vendor's rows or the error it
// degraded with. A failed category never aborts the aggregation.
type category[T any] struct {
	data []T
	err  error
}

func (c category[T]) first() (T, bool) {
	var zero T
	if len(c.data) == 0 {
		return zero, false
	}
	return c.data[0], true
}

func fetch[T any](wg *sync.WaitGroup, dst *category[T], fn func() (oura.ListResponse[T], error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := fn()
		dst.data, dst.err = resp.Data, err
	}()
}

// Today builds the single-day snapshot, serving from cache while fresh.
func (s *Service) Today(ctx context.Context, userID string) (*TodaySnapshot, error) {
	token, err := s.ouraToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.dateString(0)
	cacheKey := fmt.Sprintf("%s:dashboard:today:%s", userID, today)
	if v, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncCacheHits()
		return v.(*TodaySnapshot), nil
	}
	s.metrics.IncCacheMisses()

	yesterday := s.dateString(1)

	var (
		wg           sync.WaitGroup
		sleep        category[oura.DailySleep]
		readiness    category[oura.DailyReadiness]
		activity     category[oura.DailyActivity]
		stress       category[oura.DailyStress]
		spo2         category[oura.DailySpo2]
		heartRate    category[oura.HeartRate]
		sleepPeriods category[oura.SleepPeriod]
	)
	fetch(&wg, &sleep, func() (oura.ListResponse[oura.DailySleep], error) {
		return s.vendor.FetchDailySleep(ctx, today, token)
	})
	fetch(&wg, &readiness, func() (oura.ListResponse[oura.DailyReadiness], error) {
		return s.vendor.FetchDailyReadiness(ctx, today, token)
	})
	fetch(&wg, &activity, func() (oura.ListResponse[oura.DailyActivity], error) {
		return s.vendor.FetchDailyActivity(ctx, today, token)
	})
	fetch(&wg, &stress, func() (oura.ListResponse[oura.DailyStress], error) {
		return s.vendor.FetchDailyStress(ctx, today, token)
	})
	fetch(&wg, &spo2, func() (oura.ListResponse[oura.DailySpo2], error) {
		return s.vendor.FetchDailySpo2(ctx, today, token)
	})
	fetch(&wg, &heartRate, func() (oura.ListResponse[oura.HeartRate], error) {
		return s.vendor.FetchHeartRate(ctx, today, today, token)
	})
	fetch(&wg, &sleepPeriods, func() (oura.ListResponse[oura.SleepPeriod], error) {
		return s.vendor.FetchSleepPeriods(ctx, yesterday, today, token)
	})
	wg.Wait()

	snap := &TodaySnapshot{
		Date:         today,
		TokenInvalid: allUnauthorized(sleep.err, readiness.err, activity.err, stress.err, spo2.err, heartRate.err, sleepPeriods.err),
	}

	if d, ok := sleep.first(); ok {
		snap.Sleep = ScoreSection{Score: d.Score, Contributors: d.Contributors}
	}
	if d, ok := readiness.first(); ok {
		snap.Readiness = ScoreSection{Score: d.Score, Contributors: d.Contributors}
	}
	if d, ok := activity.first(); ok {
		snap.Activity = ActivitySection{
			Score:          d.Score,
			Steps:          d.Steps,
			ActiveCalories: d.ActiveCalories,
			TotalCalories:  d.TotalCalories,
			Contributors:   d.Contributors,
		}
	}
	if d, ok := stress.first(); ok {
		snap.Stress = StressSection{
			StressHigh:   d.StressHigh,
			RecoveryHigh: d.RecoveryHigh,
			Summary:      d.DaySummary,
		}
	}
	if d, ok := spo2.first(); ok && d.Spo2Percentage != nil {
		avg := d.Spo2Percentage.Average
		snap.Spo2 = Spo2Section{Average: &avg}
	}

	snap.HeartRate = shapeHeartRate(heartRate.data)

	// The sleep collection covers [yesterday, today]; the last record is
	// the most recent night.
	if n := len(sleepPeriods.data); n > 0 {
		p := sleepPeriods.data[n-1]
		snap.SleepDetails = &SleepDetails{
			BedtimeStart: p.BedtimeStart,
			BedtimeEnd:   p.BedtimeEnd,
			TotalSleep:   p.TotalSleepDuration,
			DeepSleep:    p.DeepSleepDuration,
			RemSleep:     p.RemSleepDuration,
			LightSleep:   p.LightSleepDuration,
			AwakeTime:    p.AwakeTime,
			AvgHR:        p.AverageHeartRate,
			LowestHR:     p.LowestHeartRate,
			AvgHRV:       p.AverageHRV,
			Efficiency:   p.Efficiency,
		}
	}

	s.logDegraded("today", userID,
		sleep.err, readiness.err, activity.err, stress.err, spo2.err, heartRate.err, sleepPeriods.err)
	s.cache.Set(cacheKey, snap, TodayTTL)
	return snap, nil
}

// Week builds the trailing 7-day view. The window anchor is recomputed from
// the clock daily, so the cache key rolls over at midnight.
func (s *Service) Week(ctx context.Context, userID string) (*WeekSnapshot, error) {
	token, err := s.ouraToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.dateString(0)
	weekAgo := s.dateString(7)
	cacheKey := fmt.Sprintf("%s:dashboard:week:%s", userID, today)
	if v, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncCacheHits()
		return v.(*WeekSnapshot), nil
	}
	s.metrics.IncCacheMisses()

	var (
		wg           sync.WaitGroup
		sleep        category[oura.DailySleep]
		readiness    category[oura.DailyReadiness]
		activity     category[oura.DailyActivity]
		sleepPeriods category[oura.SleepPeriod]
	)
	fetch(&wg, &sleep, func() (oura.ListResponse[oura.DailySleep], error) {
		return s.vendor.FetchDailySleepRange(ctx, weekAgo, today, token)
	})
	fetch(&wg, &readiness, func() (oura.ListResponse[oura.DailyReadiness], error) {
		return s.vendor.FetchDailyReadinessRange(ctx, weekAgo, today, token)
	})
	fetch(&wg, &activity, func() (oura.ListResponse[oura.DailyActivity], error) {
		return s.vendor.FetchDailyActivityRange(ctx, weekAgo, today, token)
	})
	fetch(&wg, &sleepPeriods, func() (oura.ListResponse[oura.SleepPeriod], error) {
		return s.vendor.FetchSleepPeriods(ctx, weekAgo, today, token)
	})
	wg.Wait()

	snap := &WeekSnapshot{
		StartDate:    weekAgo,
		EndDate:      today,
		Sleep:        make([]WeekDayScore, 0, len(sleep.data)),
		Readiness:    make([]WeekDayScore, 0, len(readiness.data)),
		Activity:     make([]WeekActivityDay, 0, len(activity.data)),
		SleepDetails: make([]WeekSleepDetail, 0, len(sleepPeriods.data)),
		TokenInvalid: allUnauthorized(sleep.err, readiness.err, activity.err, sleepPeriods.err),
	}
	for _, d := range sleep.data {
		snap.Sleep = append(snap.Sleep, WeekDayScore{Day: d.Day, Score: d.Score})
	}
	for _, d := range readiness.data {
		snap.Readiness = append(snap.Readiness, WeekDayScore{Day: d.Day, Score: d.Score})
	}
	for _, d := range activity.data {
		snap.Activity = append(snap.Activity, WeekActivityDay{
			Day:            d.Day,
			Score:          d.Score,
			Steps:          d.Steps,
			ActiveCalories: d.ActiveCalories,
		})
	}
	for _, p := range sleepPeriods.data {
		snap.SleepDetails = append(snap.SleepDetails, WeekSleepDetail{
			Day:        p.Day,
			AvgHRV:     p.AverageHRV,
			AvgHR:      p.AverageHeartRate,
			TotalSleep: p.TotalSleepDuration,
			DeepSleep:  p.DeepSleepDuration,
			RemSleep:   p.RemSleepDuration,
		})
	}

	s.logDegraded("week", userID, sleep.err, readiness.err, activity.err, sleepPeriods.err)
	s.cache.Set(cacheKey, snap, WeekTTL)
	return snap, nil
}

// Sync drops every cached dashboard entry for the user so the next read
// refetches from the vendor.
func (s *Service) Sync(userID string) {
	s.cache.ClearUser(userID)
}

func (s *Service) ouraToken(ctx context.Context, userID string) (string, error) {
	token, err := s.settings.GetOuraToken(ctx, userID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoOuraToken
	}
	return token, nil
}

func shapeHeartRate(samples []oura.HeartRate) HeartRateSection {
	section := HeartRateSection{Samples: []HeartRateSample{}}
	if len(samples) == 0 {
		return section
	}
	start := 0
	if len(samples) > maxHeartRateSamples {
		start = len(samples) - maxHeartRateSamples
	}
	for _, hr := range samples[start:] {
		section.Samples = append(section.Samples, HeartRateSample{BPM: hr.BPM, Time: hr.Timestamp})
	}
	latest := samples[len(samples)-1].BPM
	section.Latest = &latest
	return section
}

// allUnauthorized reports whether every category failed and at least one
// failure was a 401 — the signature of a revoked or mistyped token.
func allUnauthorized(errs ...error) bool {
	saw401 := false
	for _, err := range errs {
		if err == nil {
			return false
		}
		var apiErr *oura.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			saw401 = true
		}
	}
	return saw401
}

func (s *Service) logDegraded(scope, userID string, errs ...error) {
	for _, err := range errs {
		if err != nil {
			s.logger.Debugf("dashboard %s for %s: category degraded: %v", scope, userID, err)
		}
	}
}
