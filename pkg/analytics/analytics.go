// Package analytics derives dashboard statistics from a History Cache
// snapshot. Every function is pure: same scans in, same numbers out, with
// no caching or incremental state.
package analytics

import (
	"math"
	"net/url"
	"sort"
	"time"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/phishscope/phishscope/pkg/scan"
)

// Totals is the overview card data.
type Totals struct {
	Total     int
	Threats   int
	Safe      int
	RiskRatio int // percentage, rounded
}

// Overview counts the whole snapshot. Error scans count toward the total
// but never toward threats.
func Overview(scans []scan.Scan) Totals {
	t := Totals{Total: len(scans)}
	for _, s := range scans {
		if s.IsThreat() {
			t.Threats++
		}
	}
	t.Safe = t.Total - t.Threats
	if t.Total > 0 {
		t.RiskRatio = int(math.Round(float64(t.Threats) / float64(t.Total) * 100))
	}
	return t
}

// Bucket is one labeled count in a distribution.
type Bucket struct {
	Label string
	Count int
}

// NoDataLabel is the synthetic bucket emitted for an empty distribution, so
// pie-chart consumers never render an empty set.
const NoDataLabel = "No Data"

// RiskDistribution counts scans per verdict bucket in fixed order.
func RiskDistribution(scans []scan.Scan) []Bucket {
	counts := map[scan.Verdict]int{}
	for _, s := range scans {
		if s.Status == scan.StatusOk {
			counts[s.Verdict]++
		}
	}

	buckets := []Bucket{
		{Label: string(scan.VerdictSafe), Count: counts[scan.VerdictSafe]},
		{Label: string(scan.VerdictSuspicious), Count: counts[scan.VerdictSuspicious]},
		{Label: string(scan.VerdictPhishing), Count: counts[scan.VerdictPhishing]},
	}
	for _, b := range buckets {
		if b.Count > 0 {
			return buckets
		}
	}
	return []Bucket{{Label: NoDataLabel, Count: 1}}
}

// SignalFrequency counts, per signal name, how many scans asserted that
// flag true. Numeric signals (lengths, counts) are measurements rather than
// flags and are not folded in.
func SignalFrequency(scans []scan.Scan) map[string]int {
	freq := map[string]int{}
	for _, s := range scans {
		for name, value := range s.Signals {
			if flag, ok := value.(bool); ok && flag {
				freq[name]++
			}
		}
	}
	return freq
}

// WarningFrequency counts distinct warning strings across the snapshot.
// Matching is exact; near-duplicate phrasings stay separate labels.
func WarningFrequency(scans []scan.Scan) map[string]int {
	freq := map[string]int{}
	for _, s := range scans {
		for _, w := range s.Warnings {
			freq[w]++
		}
	}
	return freq
}

// RankCounts flattens a frequency map into buckets ordered by count
// descending, label ascending on ties, truncated to n (n <= 0 means all).
// The fixed tiebreak keeps repeated calls bit-identical.
func RankCounts(freq map[string]int, n int) []Bucket {
	buckets := make([]Bucket, 0, len(freq))
	for label, count := range freq {
		buckets = append(buckets, Bucket{Label: label, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Label < buckets[j].Label
	})
	if n > 0 && len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}

// DayCount is one point of the daily activity series.
type DayCount struct {
	Date    time.Time
	Weekday string
	Count   int
}

// DailyActivity buckets scans over the last 7 calendar days inclusive of
// today, oldest first. Days without scans are present with count 0, so the
// series always has exactly 7 points.
func DailyActivity(scans []scan.Scan, now time.Time) []DayCount {
	days := make([]DayCount, 7)
	for i := 0; i < 7; i++ {
		d := dateOnly(now.AddDate(0, 0, i-6))
		days[i] = DayCount{Date: d, Weekday: d.Weekday().String()}
	}
	for _, s := range scans {
		d := dateOnly(s.ScannedAt.In(now.Location()))
		for i := range days {
			if days[i].Date.Equal(d) {
				days[i].Count++
				break
			}
		}
	}
	return days
}

// StreakWindow is the 28-day activity calendar, oldest day first.
type StreakWindow struct {
	Days []bool
	From time.Time
	To   time.Time
}

// Streak marks which of the last 28 calendar days (inclusive of today) saw
// at least one scan.
func Streak(scans []scan.Scan, now time.Time) StreakWindow {
	w := StreakWindow{
		Days: make([]bool, 28),
		From: dateOnly(now.AddDate(0, 0, -27)),
		To:   dateOnly(now),
	}
	dates := make([]time.Time, 28)
	for i := range dates {
		dates[i] = dateOnly(now.AddDate(0, 0, i-27))
	}
	for _, s := range scans {
		d := dateOnly(s.ScannedAt.In(now.Location()))
		for i := range dates {
			if dates[i].Equal(d) {
				w.Days[i] = true
				break
			}
		}
	}
	return w
}

// RiskyTarget is one entry of a top-risky ranking.
type RiskyTarget struct {
	Target     string
	Verdict    scan.Verdict
	RiskLevel  scan.RiskLevel
	Confidence float64
}

// TopRisky ranks threat scans of one kind by confidence, highest first,
// truncated to n. Ties keep snapshot order, so results are stable.
func TopRisky(scans []scan.Scan, kind scan.Kind, n int) []RiskyTarget {
	var out []RiskyTarget
	for _, s := range scans {
		if s.Kind == kind && s.IsThreat() {
			out = append(out, RiskyTarget{
				Target:     s.Target,
				Verdict:    s.Verdict,
				RiskLevel:  s.RiskLevel,
				Confidence: s.Confidence,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RiskyDomains groups URL threat scans by registrable domain, ranked by
// threat count descending (domain ascending on ties), truncated to n.
// Targets without a parseable registrable domain are skipped.
func RiskyDomains(scans []scan.Scan, n int) []Bucket {
	freq := map[string]int{}
	for _, s := range scans {
		if s.Kind != scan.KindURL || !s.IsThreat() {
			continue
		}
		if domain, ok := registrableDomain(s.Target); ok {
			freq[domain]++
		}
	}
	return RankCounts(freq, n)
}

func registrableDomain(target string) (string, bool) {
	host := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", false
	}
	return domain, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
