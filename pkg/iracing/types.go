package iracing

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// LapTime is a lap time that can be unmarshaled from either a formatted string
// ("MM:SS.mmm") or a number. The upstream API uses the number -1 as a sentinel
// for "no valid lap"; that decodes to the string "-1".
type LapTime string

// UnmarshalJSON implements json.Unmarshaler for LapTime
func (l *LapTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = LapTime(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*l = LapTime(n.String())
		return nil
	}

	return fmt.Errorf("LapTime: cannot unmarshal %s", string(data))
}

// String returns the string value
func (l LapTime) String() string {
	return string(l)
}

// Valid reports whether the lap time represents an actual lap rather than the
// -1 "no valid lap" sentinel or an empty field.
func (l LapTime) Valid() bool {
	return l != "" && l != "-1"
}

// Category is one racing discipline from the upstream constants endpoint
type Category struct {
	CategoryID int    `json:"categoryId"`
	Label      string `json:"label"`
}

// Driver is a single driver identity from the driver lookup endpoint
type Driver struct {
	CustID      int    `json:"custId"`
	DisplayName string `json:"displayName"`
}

// Track identifies the track a race ran on
type Track struct {
	TrackName string `json:"trackName"`
}

// Car identifies the car a race was driven in
type Car struct {
	CarName string `json:"carName"`
}

// RaceRecord is one race inside a season recap
type RaceRecord struct {
	SubsessionID   int       `json:"subsessionId"`
	SeriesName     string    `json:"seriesName"`
	Track          Track     `json:"track"`
	Car            Car       `json:"car"`
	StartTime      time.Time `json:"startTime"`
	FinishPosition int       `json:"finishPosition"`
	BestLapTime    LapTime   `json:"bestLapTime"`
	Category       string    `json:"category"`
}

// RecapStats holds the aggregate counters of a season recap
type RecapStats struct {
	Starts            int     `json:"starts"`
	Wins              int     `json:"wins"`
	Top5              int     `json:"top5"`
	Poles             int     `json:"poles"`
	AvgStartPosition  float64 `json:"avgStartPosition"`
	AvgFinishPosition float64 `json:"avgFinishPosition"`
	Incidents         int     `json:"incidents"`
	Laps              int     `json:"laps"`
	LapsLed           int     `json:"lapsLed"`
	WinPercentage     float64 `json:"winPercentage"`
	PodiumPercentage  float64 `json:"podiumPercentage"`
	IncidentsPerRace  float64 `json:"incidentsPerRace"`
}

// MemberRecap is a driver's season recap. Races is never nil after a
// successful fetch: the client substitutes an empty slice when the upstream
// response omits the field.
type MemberRecap struct {
	Year   int          `json:"year"`
	Season int          `json:"season"`
	Stats  RecapStats   `json:"stats"`
	Races  []RaceRecord `json:"races"`
}

// Helmet is the helmet customization block on a member profile
type Helmet struct {
	Pattern     int    `json:"pattern"`
	Color1      string `json:"color1"`
	Color2      string `json:"color2"`
	Color3      string `json:"color3"`
	HelmetImage string `json:"helmetImage"`
}

// License is one per-category license entry on a member profile
type License struct {
	CategoryID   int     `json:"categoryId"`
	Category     string  `json:"category"`
	LicenseLevel int     `json:"licenseLevel"`
	SafetyRating float64 `json:"safetyRating"`
	IRating      int     `json:"irating"`
}

// MemberProfile is a driver's member record with license info
type MemberProfile struct {
	CustID      int       `json:"custId"`
	DisplayName string    `json:"displayName"`
	MemberSince string    `json:"memberSince,omitempty"`
	Helmet      Helmet    `json:"helmet"`
	Licenses    []License `json:"licenses,omitempty"`
}

// memberEnvelope handles the two member/get response shapes seen upstream:
// a bare array of member records, or an object with a "members" array.
type memberEnvelope struct {
	Members []MemberProfile
}

// UnmarshalJSON implements json.Unmarshaler for memberEnvelope
func (m *memberEnvelope) UnmarshalJSON(data []byte) error {
	// Try bare array first
	var list []MemberProfile
	if err := json.Unmarshal(data, &list); err == nil {
		m.Members = list
		return nil
	}

	// Fall back to the wrapped shape
	var wrapped struct {
		Members []MemberProfile `json:"members"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		m.Members = wrapped.Members
		return nil
	}

	return fmt.Errorf("memberEnvelope: cannot unmarshal %s", string(data))
}

// First returns the first member record, or an empty profile when the
// response contained none.
func (m memberEnvelope) First() MemberProfile {
	if len(m.Members) == 0 {
		return MemberProfile{}
	}
	return m.Members[0]
}

// YearlyStat is one per-year stat summary from the yearly stats endpoint
type YearlyStat struct {
	Year       int `json:"year"`
	CategoryID int `json:"categoryId,omitempty"`
	Starts     int `json:"starts"`
	Wins       int `json:"wins"`
	Top5       int `json:"top5"`
	Poles      int `json:"poles"`
	Laps       int `json:"laps"`
	Incidents  int `json:"incidents"`
}

// yearlyStatsEnvelope handles the two yearly-stats shapes seen upstream:
// {"stats": [{...,"year":2024}, ...]} or {"stats": {"2024": {...}, ...}}.
type yearlyStatsEnvelope struct {
	Stats []YearlyStat
}

// UnmarshalJSON implements json.Unmarshaler for yearlyStatsEnvelope
func (y *yearlyStatsEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Stats json.RawMessage `json:"stats"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("yearlyStatsEnvelope: cannot unmarshal %s", string(data))
	}
	if len(wrapped.Stats) == 0 || string(wrapped.Stats) == "null" {
		y.Stats = []YearlyStat{}
		return nil
	}

	// Array shape
	var list []YearlyStat
	if err := json.Unmarshal(wrapped.Stats, &list); err == nil {
		y.Stats = list
		return nil
	}

	// Object-keyed-by-year shape
	var byYear map[string]YearlyStat
	if err := json.Unmarshal(wrapped.Stats, &byYear); err != nil {
		return fmt.Errorf("yearlyStatsEnvelope: cannot unmarshal stats %s", string(wrapped.Stats))
	}
	y.Stats = make([]YearlyStat, 0, len(byYear))
	for key, stat := range byYear {
		if stat.Year == 0 {
			if year, err := strconv.Atoi(key); err == nil {
				stat.Year = year
			}
		}
		y.Stats = append(y.Stats, stat)
	}
	sort.Slice(y.Stats, func(i, j int) bool { return y.Stats[i].Year < y.Stats[j].Year })
	return nil
}

// ChartPoint is one sample in a rating history series
type ChartPoint struct {
	When  string  `json:"when"`
	Value float64 `json:"value"`
}

// Chart type constants for the member chart_data endpoint
const (
	ChartTypeIRating      = 1
	ChartTypeSafetyRating = 3
)

// ChartData is a rating history series for one member and category.
// Points are already in chronological order as delivered by upstream.
type ChartData struct {
	CategoryID int          `json:"categoryId"`
	ChartType  int          `json:"chartType"`
	Points     []ChartPoint `json:"data"`
}
