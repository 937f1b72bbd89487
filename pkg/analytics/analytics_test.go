package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/phishscope/phishscope/pkg/scan"
)

var testNow = time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

func okScan(verdict scan.Verdict, target string, daysAgo int) scan.Scan {
	return scan.Scan{
		ID:        target,
		Target:    target,
		Kind:      scan.KindURL,
		Verdict:   verdict,
		RiskLevel: scan.RiskLow,
		ScannedAt: testNow.AddDate(0, 0, -daysAgo),
		Status:    scan.StatusOk,
	}
}

func TestOverviewRiskRatio(t *testing.T) {
	var scans []scan.Scan
	for i := 0; i < 3; i++ {
		scans = append(scans, okScan(scan.VerdictPhishing, "https://bad.example", 0))
	}
	for i := 0; i < 7; i++ {
		scans = append(scans, okScan(scan.VerdictSafe, "https://ok.example", 0))
	}

	got := Overview(scans)
	want := Totals{Total: 10, Threats: 3, Safe: 7, RiskRatio: 30}
	if got != want {
		t.Errorf("Overview = %+v, want %+v", got, want)
	}
}

func TestOverviewEmptyNoDivisionByZero(t *testing.T) {
	got := Overview(nil)
	if got.RiskRatio != 0 || got.Total != 0 {
		t.Errorf("Overview(nil) = %+v", got)
	}
}

func TestOverviewCountsSuspiciousAsThreat(t *testing.T) {
	scans := []scan.Scan{
		okScan(scan.VerdictSuspicious, "a", 0),
		okScan(scan.VerdictSafe, "b", 0),
	}
	if got := Overview(scans); got.Threats != 1 {
		t.Errorf("Threats = %d, want 1", got.Threats)
	}
}

func TestRiskDistribution(t *testing.T) {
	scans := []scan.Scan{
		okScan(scan.VerdictSafe, "a", 0),
		okScan(scan.VerdictSafe, "b", 0),
		okScan(scan.VerdictPhishing, "c", 0),
	}

	got := RiskDistribution(scans)
	want := []Bucket{{"Safe", 2}, {"Suspicious", 0}, {"Phishing", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RiskDistribution = %v, want %v", got, want)
	}
}

func TestRiskDistributionEmptyFallback(t *testing.T) {
	got := RiskDistribution(nil)
	want := []Bucket{{NoDataLabel, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("empty distribution = %v, want single No Data bucket", got)
	}

	// Error-only history is empty for distribution purposes too.
	errOnly := []scan.Scan{{Status: scan.StatusError, ErrorMessage: "down"}}
	if got := RiskDistribution(errOnly); !reflect.DeepEqual(got, want) {
		t.Errorf("error-only distribution = %v, want single No Data bucket", got)
	}
}

func TestSignalFrequencyCountsAssertedFlags(t *testing.T) {
	s1 := okScan(scan.VerdictPhishing, "a", 0)
	s1.Signals = map[string]any{"has_ip_address": true, "is_shortened": false, "url_length": float64(78)}
	s2 := okScan(scan.VerdictPhishing, "b", 0)
	s2.Signals = map[string]any{"has_ip_address": true, "is_shortened": true}

	got := SignalFrequency([]scan.Scan{s1, s2})
	want := map[string]int{"has_ip_address": 2, "is_shortened": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SignalFrequency = %v, want %v", got, want)
	}
}

func TestWarningFrequencyExactMatch(t *testing.T) {
	s1 := okScan(scan.VerdictPhishing, "a", 0)
	s1.Warnings = []string{"No valid SSL certificate", "Shortened URL"}
	s2 := okScan(scan.VerdictPhishing, "b", 0)
	s2.Warnings = []string{"No valid SSL certificate", "no valid ssl certificate"}

	got := WarningFrequency([]scan.Scan{s1, s2})
	if got["No valid SSL certificate"] != 2 {
		t.Errorf("count = %d, want 2", got["No valid SSL certificate"])
	}
	// Near-duplicate text stays a separate label.
	if got["no valid ssl certificate"] != 1 {
		t.Errorf("case variant must not be merged: %v", got)
	}
}

func TestRankCountsDeterministicOrder(t *testing.T) {
	freq := map[string]int{"b": 2, "a": 2, "c": 5}
	got := RankCounts(freq, 0)
	want := []Bucket{{"c", 5}, {"a", 2}, {"b", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankCounts = %v, want %v", got, want)
	}
}

func TestDailyActivitySevenZeroFilledPoints(t *testing.T) {
	scans := []scan.Scan{
		okScan(scan.VerdictSafe, "a", 0),
		okScan(scan.VerdictSafe, "b", 0),
		okScan(scan.VerdictSafe, "c", 3),
		okScan(scan.VerdictSafe, "d", 9), // outside the window
	}

	got := DailyActivity(scans, testNow)
	if len(got) != 7 {
		t.Fatalf("series has %d points, want 7", len(got))
	}
	if got[6].Count != 2 {
		t.Errorf("today count = %d, want 2", got[6].Count)
	}
	if got[3].Count != 1 {
		t.Errorf("count 3 days ago = %d, want 1", got[3].Count)
	}
	var total int
	for _, d := range got {
		total += d.Count
		if d.Weekday != d.Date.Weekday().String() {
			t.Errorf("weekday label %q does not match date %v", d.Weekday, d.Date)
		}
	}
	if total != 3 {
		t.Errorf("window total = %d, want 3 (out-of-window scan must be excluded)", total)
	}
	if !got[6].Date.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last point = %v, want today", got[6].Date)
	}
}

func TestStreakWindowBoundary(t *testing.T) {
	// One scan exactly 27 days before today: exactly one active day, the
	// oldest slot of the window.
	scans := []scan.Scan{okScan(scan.VerdictSafe, "a", 27)}

	got := Streak(scans, testNow)
	if len(got.Days) != 28 {
		t.Fatalf("window has %d days", len(got.Days))
	}
	active := 0
	for i, day := range got.Days {
		if day {
			active++
			if i != 0 {
				t.Errorf("active day at index %d, want 0", i)
			}
		}
	}
	if active != 1 {
		t.Errorf("%d active days, want 1", active)
	}
	if !got.From.Equal(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v", got.From)
	}
	if !got.To.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("To = %v", got.To)
	}
}

func TestStreakExcludesOutOfWindowScans(t *testing.T) {
	scans := []scan.Scan{okScan(scan.VerdictSafe, "a", 28)}
	got := Streak(scans, testNow)
	for i, day := range got.Days {
		if day {
			t.Errorf("day %d active for a scan outside the window", i)
		}
	}
}

func TestAggregationDeterminism(t *testing.T) {
	scans := []scan.Scan{
		okScan(scan.VerdictPhishing, "https://login.bad.example/a", 1),
		okScan(scan.VerdictSuspicious, "https://cdn.bad.example/b", 2),
		okScan(scan.VerdictSafe, "https://ok.example", 0),
	}
	scans[0].Signals = map[string]any{"has_ip_address": true}
	scans[0].Warnings = []string{"URL contains an IP address"}

	for i := 0; i < 3; i++ {
		if got := Overview(scans); got != Overview(scans) {
			t.Fatal("Overview not deterministic")
		}
		if !reflect.DeepEqual(RiskDistribution(scans), RiskDistribution(scans)) {
			t.Fatal("RiskDistribution not deterministic")
		}
		if !reflect.DeepEqual(SignalFrequency(scans), SignalFrequency(scans)) {
			t.Fatal("SignalFrequency not deterministic")
		}
		if !reflect.DeepEqual(DailyActivity(scans, testNow), DailyActivity(scans, testNow)) {
			t.Fatal("DailyActivity not deterministic")
		}
		if !reflect.DeepEqual(Streak(scans, testNow), Streak(scans, testNow)) {
			t.Fatal("Streak not deterministic")
		}
		if !reflect.DeepEqual(RiskyDomains(scans, 5), RiskyDomains(scans, 5)) {
			t.Fatal("RiskyDomains not deterministic")
		}
	}
}

func TestTopRiskyRankedByConfidence(t *testing.T) {
	a := okScan(scan.VerdictPhishing, "https://a.example", 0)
	a.Confidence = 0.6
	b := okScan(scan.VerdictPhishing, "https://b.example", 0)
	b.Confidence = 0.95
	c := okScan(scan.VerdictSafe, "https://c.example", 0)
	c.Confidence = 0.99 // safe scans never rank

	got := TopRisky([]scan.Scan{a, b, c}, scan.KindURL, 5)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Target != "https://b.example" || got[1].Target != "https://a.example" {
		t.Errorf("order = %v", got)
	}
}

func TestRiskyDomainsGroupsByRegistrableDomain(t *testing.T) {
	a := okScan(scan.VerdictPhishing, "https://login.phish-mart.co.uk/x", 0)
	b := okScan(scan.VerdictPhishing, "https://cdn.phish-mart.co.uk/y", 0)
	c := okScan(scan.VerdictPhishing, "https://other.example.com", 0)

	got := RiskyDomains([]scan.Scan{a, b, c}, 5)
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Label != "phish-mart.co.uk" || got[0].Count != 2 {
		t.Errorf("top domain = %+v", got[0])
	}
	if got[1].Label != "example.com" || got[1].Count != 1 {
		t.Errorf("second domain = %+v", got[1])
	}
}
