package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/cache"
	"github.com/joewaine/best-self-ai/internal/oura"
)

type fakeSettings struct {
	token string
	err   error
}

func (f *fakeSettings) GetOuraToken(ctx context.Context, userID string) (string, error) {
	return f.token, f.err
}

func (f *fakeSettings) SetOuraToken(ctx context.Context, userID, token string) error {
	f.token = token
	return nil
}

// fakeVendor returns canned responses per category and counts every call so
// tests can prove the cache absorbed repeat reads.
type fakeVendor struct {
	mu    sync.Mutex
	calls int

	sleep           oura.ListResponse[oura.DailySleep]
	sleepErr        error
	readiness       oura.ListResponse[oura.DailyReadiness]
	readinessErr    error
	activity        oura.ListResponse[oura.DailyActivity]
	activityErr     error
	stress          oura.ListResponse[oura.DailyStress]
	stressErr       error
	spo2            oura.ListResponse[oura.DailySpo2]
	spo2Err         error
	heartRate       oura.ListResponse[oura.HeartRate]
	heartRateErr    error
	sleepPeriods    oura.ListResponse[oura.SleepPeriod]
	sleepPeriodsErr error
}

func (f *fakeVendor) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeVendor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeVendor) FetchDailySleep(ctx context.Context, day, token string) (oura.ListResponse[oura.DailySleep], error) {
	f.count()
	return f.sleep, f.sleepErr
}

func (f *fakeVendor) FetchDailyReadiness(ctx context.Context, day, token string) (oura.ListResponse[oura.DailyReadiness], error) {
	f.count()
	return f.readiness, f.readinessErr
}

func (f *fakeVendor) FetchDailyActivity(ctx context.Context, day, token string) (oura.ListResponse[oura.DailyActivity], error) {
	f.count()
	return f.activity, f.activityErr
}

func (f *fakeVendor) FetchDailyStress(ctx context.Context, day, token string) (oura.ListResponse[oura.DailyStress], error) {
	f.count()
	return f.stress, f.stressErr
}

func (f *fakeVendor) FetchDailySpo2(ctx context.Context, day, token string) (oura.ListResponse[oura.DailySpo2], error) {
	f.count()
	return f.spo2, f.spo2Err
}

func (f *fakeVendor) FetchHeartRate(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.HeartRate], error) {
	f.count()
	return f.heartRate, f.heartRateErr
}

func (f *fakeVendor) FetchSleepPeriods(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.SleepPeriod], error) {
	f.count()
	return f.sleepPeriods, f.sleepPeriodsErr
}

func (f *fakeVendor) FetchDailySleepRange(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.DailySleep], error) {
	f.count()
	return f.sleep, f.sleepErr
}

func (f *fakeVendor) FetchDailyReadinessRange(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.DailyReadiness], error) {
	f.count()
	return f.readiness, f.readinessErr
}

func (f *fakeVendor) FetchDailyActivityRange(ctx context.Context, startDate, endDate, token string) (oura.ListResponse[oura.DailyActivity], error) {
	f.count()
	return f.activity, f.activityErr
}

func intPtr(v int) *int { return &v }

func newTestService(vendor *fakeVendor, settings *fakeSettings, now *time.Time) *Service {
	clock := func() time.Time { return *now }
	return NewService(vendor, settings, cache.New(clock), nil, internal.NopLogger{}, clock)
}

func TestTodayWithoutTokenSkipsVendor(t *testing.T) {
	vendor := &fakeVendor{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: ""}, &now)

	_, err := svc.Today(context.Background(), "u1")
	require.ErrorIs(t, err, ErrNoOuraToken)
	assert.Equal(t, 0, vendor.callCount())
}

func TestTodayAllCategoriesDegraded(t *testing.T) {
	failure := fmt.Errorf("oura: connection reset")
	vendor := &fakeVendor{
		sleepErr:        failure,
		readinessErr:    failure,
		activityErr:     failure,
		stressErr:       failure,
		spo2Err:         failure,
		heartRateErr:    failure,
		sleepPeriodsErr: failure,
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	snap, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err, "category failures degrade, they do not abort")

	assert.Equal(t, "2025-06-01", snap.Date)
	assert.Nil(t, snap.Sleep.Score)
	assert.Nil(t, snap.Readiness.Score)
	assert.Nil(t, snap.Activity.Steps)
	assert.Nil(t, snap.Spo2.Average)
	assert.Nil(t, snap.SleepDetails)
	assert.NotNil(t, snap.HeartRate.Samples)
	assert.Empty(t, snap.HeartRate.Samples)
	assert.False(t, snap.TokenInvalid, "a plain network failure is not a token problem")

	// Every documented section must still appear in the JSON body.
	body, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	for _, key := range []string{"date", "sleep", "readiness", "activity", "stress", "spo2", "heartRate", "sleepDetails"} {
		assert.Contains(t, decoded, key)
	}
	assert.Nil(t, decoded["sleepDetails"])
}

func TestTodayPartialDegrade(t *testing.T) {
	vendor := &fakeVendor{
		readiness: oura.ListResponse[oura.DailyReadiness]{
			Data: []oura.DailyReadiness{{Day: "2025-06-01", Score: intPtr(82)}},
		},
		spo2Err: fmt.Errorf("oura: 500"),
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	snap, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, snap.Readiness.Score)
	assert.Equal(t, 82, *snap.Readiness.Score)
	assert.Nil(t, snap.Spo2.Average)
}

func TestTodayHeartRateKeepsLastSamples(t *testing.T) {
	samples := make([]oura.HeartRate, 60)
	for i := range samples {
		samples[i] = oura.HeartRate{BPM: 50 + i, Timestamp: fmt.Sprintf("2025-06-01T%02d:00:00+00:00", i%24)}
	}
	vendor := &fakeVendor{heartRate: oura.ListResponse[oura.HeartRate]{Data: samples}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	snap, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, snap.HeartRate.Samples, 48)
	assert.Equal(t, 50+12, snap.HeartRate.Samples[0].BPM, "oldest 12 samples dropped")
	assert.Equal(t, 50+59, snap.HeartRate.Samples[47].BPM)
	require.NotNil(t, snap.HeartRate.Latest)
	assert.Equal(t, 50+59, *snap.HeartRate.Latest)
}

func TestTodayUsesLatestSleepPeriod(t *testing.T) {
	vendor := &fakeVendor{
		sleepPeriods: oura.ListResponse[oura.SleepPeriod]{Data: []oura.SleepPeriod{
			{Day: "2025-05-31", TotalSleepDuration: intPtr(21000)},
			{Day: "2025-06-01", TotalSleepDuration: intPtr(27360), Efficiency: intPtr(91)},
		}},
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	snap, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, snap.SleepDetails)
	assert.Equal(t, 27360, *snap.SleepDetails.TotalSleep)
	assert.Equal(t, 91, *snap.SleepDetails.Efficiency)
}

func TestTodayServedFromCacheWhileFresh(t *testing.T) {
	vendor := &fakeVendor{
		sleep: oura.ListResponse[oura.DailySleep]{
			Data: []oura.DailySleep{{Day: "2025-06-01", Score: intPtr(75)}},
		},
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	first, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, vendor.callCount())

	second, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, vendor.callCount(), "fresh cache entry must absorb the second read")
	assert.Same(t, first, second)

	now = now.Add(TodayTTL)
	_, err = svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 14, vendor.callCount(), "expired entry refetches")
}

func TestTodayCacheKeyRollsOverAtMidnight(t *testing.T) {
	vendor := &fakeVendor{}
	now := time.Date(2025, 6, 1, 23, 58, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	snap, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", snap.Date)
	assert.Equal(t, 7, vendor.callCount())

	// Still inside the TTL, but the UTC date changed; a new key means a
	// fresh fetch for the new day.
	now = now.Add(4 * time.Minute)
	snap, err = svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", snap.Date)
	assert.Equal(t, 14, vendor.callCount())
}

func TestSyncForcesRefetch(t *testing.T) {
	vendor := &fakeVendor{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	_, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, vendor.callCount())

	svc.Sync("u1")

	_, err = svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 14, vendor.callCount())
}

func TestTodayTokenInvalidOnlyWhenEveryCategorySees401(t *testing.T) {
	unauthorized := &oura.APIError{StatusCode: 401, Body: "invalid token"}
	vendor := &fakeVendor{
		sleepErr:        unauthorized,
		readinessErr:    unauthorized,
		activityErr:     unauthorized,
		stressErr:       unauthorized,
		spo2Err:         unauthorized,
		heartRateErr:    unauthorized,
		sleepPeriodsErr: unauthorized,
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "revoked"}, &now)

	snap, err := svc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, snap.TokenInvalid)

	// One healthy category means the token still works.
	vendor2 := &fakeVendor{
		sleepErr:     unauthorized,
		readinessErr: unauthorized,
		activityErr:  unauthorized,
		stressErr:    unauthorized,
		spo2Err:      unauthorized,
		heartRateErr: unauthorized,
		sleepPeriods: oura.ListResponse[oura.SleepPeriod]{Data: []oura.SleepPeriod{{Day: "2025-06-01"}}},
	}
	svc2 := newTestService(vendor2, &fakeSettings{token: "pat"}, &now)
	snap2, err := svc2.Today(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, snap2.TokenInvalid)
}

func TestWeekWindowAndArrays(t *testing.T) {
	vendor := &fakeVendor{
		sleep: oura.ListResponse[oura.DailySleep]{Data: []oura.DailySleep{
			{Day: "2025-05-26", Score: intPtr(70)},
			{Day: "2025-05-27", Score: intPtr(74)},
			{Day: "2025-05-28", Score: nil},
		}},
		activity: oura.ListResponse[oura.DailyActivity]{Data: []oura.DailyActivity{
			{Day: "2025-05-26", Steps: intPtr(8200)},
		}},
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	snap, err := svc.Week(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-25", snap.StartDate)
	assert.Equal(t, "2025-06-01", snap.EndDate)
	require.Len(t, snap.Sleep, 3)
	assert.Equal(t, "2025-05-27", snap.Sleep[1].Day)
	assert.Equal(t, 74, *snap.Sleep[1].Score)
	assert.Nil(t, snap.Sleep[2].Score)
	require.Len(t, snap.Activity, 1)
	assert.Equal(t, 8200, *snap.Activity[0].Steps)
	assert.NotNil(t, snap.Readiness)
	assert.Empty(t, snap.Readiness)
	assert.Equal(t, 4, vendor.callCount())

	// Week uses its own cache entry.
	_, err = svc.Week(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, vendor.callCount())
}

func TestYesterdaySummary(t *testing.T) {
	vendor := &fakeVendor{
		sleep: oura.ListResponse[oura.DailySleep]{
			Data: []oura.DailySleep{{Day: "2025-05-31", Score: intPtr(68)}},
		},
		readiness: oura.ListResponse[oura.DailyReadiness]{
			Data: []oura.DailyReadiness{{Day: "2025-05-31", Score: intPtr(80)}},
		},
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	summary, err := svc.YesterdaySummary(context.Background(), "pat")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-31", summary.Day)
	assert.Equal(t, 68, *summary.Sleep.Score)
	assert.Equal(t, 80, *summary.Readiness.Score)
}

func TestYesterdaySummaryPropagatesFailure(t *testing.T) {
	vendor := &fakeVendor{sleepErr: fmt.Errorf("oura: 500")}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(vendor, &fakeSettings{token: "pat"}, &now)

	_, err := svc.YesterdaySummary(context.Background(), "pat")
	require.Error(t, err)
}
