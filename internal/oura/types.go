package oura

// Response types cover only the fields the dashboard consumes; the vendor
// returns more. Optional fields are pointers so "absent" survives into the
// UI contract as null.

type ListResponse[T any] struct {
	Data      []T     `json:"data"`
	NextToken *string `json:"next_token"`
}

type DailySleep struct {
	Day          string             `json:"day"`
	Score        *int               `json:"score"`
	Contributors map[string]float64 `json:"contributors"`
}

type DailyReadiness struct {
	Day          string             `json:"day"`
	Score        *int               `json:"score"`
	Contributors map[string]float64 `json:"contributors"`
}

type DailyActivity struct {
	Day            string             `json:"day"`
	Score          *int               `json:"score"`
	ActiveCalories *int               `json:"active_calories"`
	TotalCalories  *int               `json:"total_calories"`
	Steps          *int               `json:"steps"`
	Contributors   map[string]float64 `json:"contributors"`
}

type HeartRate struct {
	BPM       int    `json:"bpm"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

type DailyStress struct {
	Day          string  `json:"day"`
	StressHigh   *int    `json:"stress_high"`
	RecoveryHigh *int    `json:"recovery_high"`
	DaySummary   *string `json:"day_summary"`
}

type Spo2Percentage struct {
	Average float64 `json:"average"`
}

type DailySpo2 struct {
	Day            string          `json:"day"`
	Spo2Percentage *Spo2Percentage `json:"spo2_percentage"`
}

// SleepPeriod is one record from the sleep collection: a single sleep
// session with stage durations and overnight heart metrics.
type SleepPeriod struct {
	ID                 string   `json:"id"`
	Day                string   `json:"day"`
	BedtimeStart       *string  `json:"bedtime_start"`
	BedtimeEnd         *string  `json:"bedtime_end"`
	TimeInBed          *int     `json:"time_in_bed"`
	TotalSleepDuration *int     `json:"total_sleep_duration"`
	AwakeTime          *int     `json:"awake_time"`
	LightSleepDuration *int     `json:"light_sleep_duration"`
	DeepSleepDuration  *int     `json:"deep_sleep_duration"`
	RemSleepDuration   *int     `json:"rem_sleep_duration"`
	RestlessPeriods    *int     `json:"restless_periods"`
	AverageHeartRate   *float64 `json:"average_heart_rate"`
	LowestHeartRate    *int     `json:"lowest_heart_rate"`
	AverageHRV         *int     `json:"average_hrv"`
	Efficiency         *int     `json:"efficiency"`
}

type PersonalInfo struct {
	ID            string   `json:"id"`
	Age           *int     `json:"age"`
	Weight        *float64 `json:"weight"`
	Height        *float64 `json:"height"`
	BiologicalSex *string  `json:"biological_sex"`
	Email         *string  `json:"email"`
}
