// Package oura wraps the Oura v2 usercollection API: one method per data
// category, each taking a date (or range) and the user's personal access
// token.
package oura

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joewaine/best-self-ai/internal"
)

const DefaultBaseURL = "https://api.ouraring.com/v2/usercollection"

// APIError is a non-2xx vendor response. The aggregator inspects the status
// code to tell an invalid token (401) apart from a category with no data.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oura error %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewClient(logger internal.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func get[T any](ctx context.Context, c *Client, path string, params url.Values, token string) (ListResponse[T], error) {
	var out ListResponse[T]
	if err := c.getJSON(ctx, path, params, token, &out); err != nil {
		return ListResponse[T]{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, token string, out interface{}) error {
	u := c.BaseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warnf("oura: %s returned %d", path, resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func dayParams(start, end string) url.Values {
	return url.Values{"start_date": {start}, "end_date": {end}}
}

func (c *Client) FetchDailySleep(ctx context.Context, day, token string) (ListResponse[DailySleep], error) {
	return get[DailySleep](ctx, c, "daily_sleep", dayParams(day, day), token)
}

func (c *Client) FetchDailyReadiness(ctx context.Context, day, token string) (ListResponse[DailyReadiness], error) {
	return get[DailyReadiness](ctx, c, "daily_readiness", dayParams(day, day), token)
}

func (c *Client) FetchDailyActivity(ctx context.Context, day, token string) (ListResponse[DailyActivity], error) {
	return get[DailyActivity](ctx, c, "daily_activity", dayParams(day, day), token)
}

func (c *Client) FetchDailyStress(ctx context.Context, day, token string) (ListResponse[DailyStress], error) {
	return get[DailyStress](ctx, c, "daily_stress", dayParams(day, day), token)
}

func (c *Client) FetchDailySpo2(ctx context.Context, day, token string) (ListResponse[DailySpo2], error) {
	return get[DailySpo2](ctx, c, "daily_spo2", dayParams(day, day), token)
}

// FetchHeartRate takes dates, not datetimes; the full-day window is built
// here to match the vendor's start_datetime/end_datetime parameters.
func (c *Client) FetchHeartRate(ctx context.Context, startDate, endDate, token string) (ListResponse[HeartRate], error) {
	params := url.Values{
		"start_datetime": {startDate + "T00:00:00+00:00"},
		"end_datetime":   {endDate + "T23:59:59+00:00"},
	}
	return get[HeartRate](ctx, c, "heartrate", params, token)
}

func (c *Client) FetchSleepPeriods(ctx context.Context, startDate, endDate, token string) (ListResponse[SleepPeriod], error) {
	return get[SleepPeriod](ctx, c, "sleep", dayParams(startDate, endDate), token)
}

func (c *Client) FetchDailySleepRange(ctx context.Context, startDate, endDate, token string) (ListResponse[DailySleep], error) {
	return get[DailySleep](ctx, c, "daily_sleep", dayParams(startDate, endDate), token)
}

func (c *Client) FetchDailyReadinessRange(ctx context.Context, startDate, endDate, token string) (ListResponse[DailyReadiness], error) {
	return get[DailyReadiness](ctx, c, "daily_readiness", dayParams(startDate, endDate), token)
}

func (c *Client) FetchDailyActivityRange(ctx context.Context, startDate, endDate, token string) (ListResponse[DailyActivity], error) {
	return get[DailyActivity](ctx, c, "daily_activity", dayParams(startDate, endDate), token)
}

func (c *Client) FetchPersonalInfo(ctx context.Context, token string) (*PersonalInfo, error) {
	var info PersonalInfo
	if err := c.getJSON(ctx, "personal_info", nil, token, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
