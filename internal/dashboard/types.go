package dashboard

// Response shapes are a binding contract with the dashboard renderer: every
// documented field is always present, null when the vendor had nothing.

type ScoreSection struct {
	Score        *int               `json:"score"`
	Contributors map[string]float64 `json:"contributors"`
}

type ActivitySection struct {
	Score          *int               `json:"score"`
	Steps          *int               `json:"steps"`
	ActiveCalories *int               `json:"activeCalories"`
	TotalCalories  *int               `json:"totalCalories"`
	Contributors   map[string]float64 `json:"contributors"`
}

type StressSection struct {
	StressHigh   *int    `json:"stressHigh"`
	RecoveryHigh *int    `json:"recoveryHigh"`
	Summary      *string `json:"summary"`
}

type Spo2Section struct {
	Average *float64 `json:"average"`
}

type HeartRateSample struct {
	BPM  int    `json:"bpm"`
	Time string `json:"time"`
}

type HeartRateSection struct {
	Samples []HeartRateSample `json:"samples"`
	Latest  *int              `json:"latest"`
}

type SleepDetails struct {
	BedtimeStart *string  `json:"bedtimeStart"`
	BedtimeEnd   *string  `json:"bedtimeEnd"`
	TotalSleep   *int     `json:"totalSleep"`
	DeepSleep    *int     `json:"deepSleep"`
	RemSleep     *int     `json:"remSleep"`
	LightSleep   *int     `json:"lightSleep"`
	AwakeTime    *int     `json:"awakeTime"`
	AvgHR        *float64 `json:"avgHr"`
	LowestHR     *int     `json:"lowestHr"`
	AvgHRV       *int     `json:"avgHrv"`
	Efficiency   *int     `json:"efficiency"`
}

type TodaySnapshot struct {
	Date         string           `json:"date"`
	Sleep        ScoreSection     `json:"sleep"`
	Readiness    ScoreSection     `json:"readiness"`
	Activity     ActivitySection  `json:"activity"`
	Stress       StressSection    `json:"stress"`
	Spo2         Spo2Section      `json:"spo2"`
	HeartRate    HeartRateSection `json:"heartRate"`
	SleepDetails *SleepDetails    `json:"sleepDetails"`
	// TokenInvalid is set when every category degraded with a 401,
	// distinguishing a bad token from categories that simply have no data.
	TokenInvalid bool `json:"tokenInvalid,omitempty"`
}

type WeekDayScore struct {
	Day   string `json:"day"`
	Score *int   `json:"score"`
}

type WeekActivityDay struct {
	Day            string `json:"day"`
	Score          *int   `json:"score"`
	Steps          *int   `json:"steps"`
	ActiveCalories *int   `json:"activeCalories"`
}

type WeekSleepDetail struct {
	Day        string   `json:"day"`
	AvgHRV     *int     `json:"avgHrv"`
	AvgHR      *float64 `json:"avgHr"`
	TotalSleep *int     `json:"totalSleep"`
	DeepSleep  *int     `json:"deepSleep"`
	RemSleep   *int     `json:"remSleep"`
}

type WeekSnapshot struct {
	StartDate    string            `json:"startDate"`
	EndDate      string            `json:"endDate"`
	Sleep        []WeekDayScore    `json:"sleep"`
	Readiness    []WeekDayScore    `json:"readiness"`
	Activity     []WeekActivityDay `json:"activity"`
	SleepDetails []WeekSleepDetail `json:"sleepDetails"`
	TokenInvalid bool              `json:"tokenInvalid,omitempty"`
}

// Summary is the compact Oura context fed into the coach prompt.
type Summary struct {
	Day       string       `json:"day"`
	Sleep     ScoreSection `json:"sleep"`
	Readiness ScoreSection `json:"readiness"`
}
