package analytics

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"echoguard/internal/records"
)

// DailyStats summarises the records created on one day.
type DailyStats struct {
	Date              string                  `json:"date"`
	TotalRecords      int                     `json:"total_records"`
	CrisisRecords     int                     `json:"crisis_records"`
	ByEmotion         map[records.Emotion]int `json:"by_emotion"`
	AverageConfidence float64                 `json:"average_confidence"`
	WellbeingScore    *float64                `json:"wellbeing_score"`
}

// DayScore is one point of the wellbeing trend. Score is nil for days without records.
type DayScore struct {
	Date    string   `json:"date"`
	Records int      `json:"records"`
	Score   *float64 `json:"score"`
}

// EmotionScore maps an emotion onto the dashboard's 0..5 wellbeing scale.
func EmotionScore(e records.Emotion) float64 {
	switch e {
	case records.EmotionHappy:
		return 5
	case records.EmotionSad:
		return 1
	default:
		return 3
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// recordsOn returns records whose timestamp falls on day (in day's location).
// Records with unparsable timestamps are skipped.
func recordsOn(recs []records.Record, day time.Time) []records.Record {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)
	var out []records.Record
	for _, rec := range recs {
		ts, err := rec.Time()
		if err != nil {
			log.Printf("⚠️ record %s has invalid timestamp %q: %v", rec.ID, rec.Timestamp, err)
			continue
		}
		ts = ts.In(day.Location())
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// AnalyzeDaily computes statistics for the records created on targetDate.
func AnalyzeDaily(recs []records.Record, targetDate time.Time) *DailyStats {
	day := recordsOn(recs, targetDate)
	stats := &DailyStats{
		Date:      startOfDay(targetDate).Format("2006-01-02"),
		ByEmotion: make(map[records.Emotion]int),
	}
	if len(day) == 0 {
		return stats
	}

	var confSum, scoreSum float64
	for _, rec := range day {
		stats.TotalRecords++
		stats.ByEmotion[rec.Emotion]++
		if rec.IsCrisis {
			stats.CrisisRecords++
		}
		confSum += rec.Confidence
		scoreSum += EmotionScore(rec.Emotion)
	}
	stats.AverageConfidence = confSum / float64(stats.TotalRecords)
	score := scoreSum / float64(stats.TotalRecords)
	stats.WellbeingScore = &score
	return stats
}

// WellbeingTrend returns one DayScore per day for the `days` days ending on end, oldest first.
func WellbeingTrend(recs []records.Record, end time.Time, days int) []DayScore {
	if days <= 0 {
		return []DayScore{}
	}
	out := make([]DayScore, 0, days)
	last := startOfDay(end)
	for i := days - 1; i >= 0; i-- {
		day := last.AddDate(0, 0, -i)
		stats := AnalyzeDaily(recs, day)
		out = append(out, DayScore{Date: stats.Date, Records: stats.TotalRecords, Score: stats.WellbeingScore})
	}
	return out
}

// GenerateReportSummary renders the stats as a plain-text report.
func (ds *DailyStats) GenerateReportSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "EchoGuard daily report for %s\n\n", ds.Date)
	fmt.Fprintf(&sb, "- Analyses: %d\n", ds.TotalRecords)
	fmt.Fprintf(&sb, "- Crisis-level entries: %d\n", ds.CrisisRecords)
	if ds.TotalRecords == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "- Average confidence: %.2f\n", ds.AverageConfidence)
	if ds.WellbeingScore != nil {
		fmt.Fprintf(&sb, "- Wellbeing score: %.2f / 5\n", *ds.WellbeingScore)
	}

	emotions := make([]string, 0, len(ds.ByEmotion))
	for e := range ds.ByEmotion {
		emotions = append(emotions, string(e))
	}
	sort.Strings(emotions)
	sb.WriteString("\nBy emotion:\n")
	for _, e := range emotions {
		fmt.Fprintf(&sb, "- %s: %d\n", e, ds.ByEmotion[records.Emotion(e)])
	}
	return sb.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
