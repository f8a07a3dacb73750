package tracker

import (
	"sort"
	"time"
)

// DateLayout formats calendar dates in aggregates.
const DateLayout = "2006-01-02"

// Progress is today's count measured against the daily goal.
type Progress struct {
	Count       int  `json:"today_jobs_count"`
	Goal        int  `json:"daily_goal"`
	GoalReached bool `json:"goal_reached"`
	// Streak counts consecutive days, ending today, on which the goal was
	// met. Today only counts once reached; a missed today does not break a
	// streak that ran through yesterday.
	Streak int `json:"streak"`
}

// CategoryCount is one bar of the status summary chart.
type CategoryCount struct {
	Label Category `json:"label"`
	Count int      `json:"count"`
}

// DayCount is the number of applications created on one calendar date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DailyProgress counts applications created in [StartOfDay(now), now].
func DailyProgress(apps []Application, now time.Time, goal int) Progress {
	start := StartOfDay(now)
	count := 0
	for i := range apps {
		c := apps[i].CreatedAt
		if !c.Before(start) && !c.After(now) {
			count++
		}
	}
	return Progress{
		Count:       count,
		Goal:        goal,
		GoalReached: count >= goal,
		Streak:      Streak(apps, now, goal),
	}
}

// Streak counts consecutive calendar days with at least goal applications,
// walking back from now's day. Today is skipped when its goal is not yet
// met.
func Streak(apps []Application, now time.Time, goal int) int {
	if goal <= 0 {
		return 0
	}
	loc := now.Location()
	perDay := make(map[string]int)
	for i := range apps {
		if apps[i].CreatedAt.After(now) {
			continue
		}
		perDay[apps[i].CreatedAt.In(loc).Format(DateLayout)]++
	}

	day := StartOfDay(now)
	if perDay[day.Format(DateLayout)] < goal {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for perDay[day.Format(DateLayout)] >= goal {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// CategorySummary counts applications per dashboard category. Every
// category is present, in canonical order, zero or not.
func CategorySummary(apps []Application) []CategoryCount {
	counts := make(map[Category]int, len(categoryOrder))
	for i := range apps {
		if c, ok := CategoryOf(apps[i].Status); ok {
			counts[c]++
		}
	}
	out := make([]CategoryCount, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, CategoryCount{Label: c, Count: counts[c]})
	}
	return out
}

// DailyTimeline groups applications by calendar date of creation in loc.
// Only dates with activity appear, oldest first.
func DailyTimeline(apps []Application, loc *time.Location) []DayCount {
	if loc == nil {
		loc = time.Local
	}
	perDay := make(map[string]int)
	for i := range apps {
		perDay[apps[i].CreatedAt.In(loc).Format(DateLayout)]++
	}
	out := make([]DayCount, 0, len(perDay))
	for date, n := range perDay {
		out = append(out, DayCount{Date: date, Count: n})
	}
	// DateLayout sorts lexically in date order.
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
