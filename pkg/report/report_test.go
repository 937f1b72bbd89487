package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/phishscope/phishscope/pkg/scan"
)

func parse(t *testing.T, doc []byte) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSingleReportLayout(t *testing.T) {
	s := scan.Scan{
		ID:         "doc-1",
		Target:     "http://1.2.3.4/login",
		Kind:       scan.KindURL,
		Verdict:    scan.VerdictPhishing,
		Confidence: 0.925,
		RiskLevel:  scan.RiskCritical,
		Signals: map[string]any{
			"has_ip_address": true,
			"has_valid_ssl":  false,
			"url_length":     float64(78),
		},
		Warnings:  []string{"URL contains an IP address", "No valid SSL certificate"},
		ScannedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Status:    scan.StatusOk,
	}

	out, err := Single(s)
	if err != nil {
		t.Fatal(err)
	}
	doc := parse(t, out)

	if got := doc.Find(".band h1").Text(); got != "Phishing" {
		t.Errorf("band heading = %q", got)
	}
	if !strings.Contains(string(out), alertColor) {
		t.Error("phishing report must use the alert band color")
	}
	if got := doc.Find(".confidence").Text(); got != "92.5%" {
		t.Errorf("confidence = %q, want one decimal place", got)
	}
	if got := doc.Find(".target").Text(); got != "http://1.2.3.4/login" {
		t.Errorf("target = %q", got)
	}

	// Signal table: one row per key, sorted, booleans as Yes/No.
	rows := doc.Find("table.signals-table tbody tr")
	if rows.Length() != 3 {
		t.Fatalf("signal rows = %d, want 3", rows.Length())
	}
	firstRow := rows.First().Find("td")
	if firstRow.First().Text() != "has_ip_address" || firstRow.Last().Text() != "Yes" {
		t.Errorf("first signal row = %q/%q", firstRow.First().Text(), firstRow.Last().Text())
	}
	sslRow := rows.Eq(1).Find("td")
	if sslRow.Last().Text() != "No" {
		t.Errorf("false signal rendered %q, want No", sslRow.Last().Text())
	}

	warnings := doc.Find(".warnings li")
	if warnings.Length() != 2 {
		t.Errorf("warnings = %d, want 2", warnings.Length())
	}
}

func TestSingleReportSafeUsesPositiveColor(t *testing.T) {
	s := scan.Scan{
		Target:    "https://example.com",
		Verdict:   scan.VerdictSafe,
		RiskLevel: scan.RiskLow,
		Status:    scan.StatusOk,
		ScannedAt: time.Now(),
	}
	out, err := Single(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), safeColor) || strings.Contains(string(out), alertColor) {
		t.Error("safe report must use the positive band color")
	}
}

func TestSingleReportHighRiskIsAlert(t *testing.T) {
	// High risk triggers the alert band even without a Phishing verdict.
	s := scan.Scan{
		Target:    "https://example.com",
		Verdict:   scan.VerdictSuspicious,
		RiskLevel: scan.RiskHigh,
		Status:    scan.StatusOk,
		ScannedAt: time.Now(),
	}
	out, err := Single(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), alertColor) {
		t.Error("high-risk report must use the alert band color")
	}
}

func TestBatchReportColumnStability(t *testing.T) {
	batch := scan.BatchResult{
		Processed: 2,
		Results: []scan.Scan{
			{Target: "https://ok-1.example", Verdict: scan.VerdictSafe, RiskLevel: scan.RiskLow, Confidence: 0.12, Status: scan.StatusOk},
			{Target: "https://broken.example", Status: scan.StatusError, ErrorMessage: "resolver timeout"},
			{Target: "https://bad.example", Verdict: scan.VerdictPhishing, RiskLevel: scan.RiskCritical, Confidence: 0.954, Status: scan.StatusOk},
		},
	}

	out, err := Batch(batch)
	if err != nil {
		t.Fatal(err)
	}
	doc := parse(t, out)

	rows := doc.Find("table.results tbody tr")
	if rows.Length() != 3 {
		t.Fatalf("rows = %d, want 3 (error row must not be omitted)", rows.Length())
	}

	// Row order matches input order.
	first := rows.Eq(0).Find("td")
	if first.Eq(0).Text() != "https://ok-1.example" || first.Eq(1).Text() != "Safe" || first.Eq(3).Text() != "12%" {
		t.Errorf("row 0 = %q %q %q %q", first.Eq(0).Text(), first.Eq(1).Text(), first.Eq(2).Text(), first.Eq(3).Text())
	}

	errRow := rows.Eq(1).Find("td")
	if errRow.Eq(1).Text() != "Error" {
		t.Errorf("error row verdict = %q, want Error", errRow.Eq(1).Text())
	}
	if errRow.Eq(2).Text() != "N/A" || errRow.Eq(3).Text() != "N/A" {
		t.Errorf("error row risk/score = %q/%q, want N/A", errRow.Eq(2).Text(), errRow.Eq(3).Text())
	}

	last := rows.Eq(2).Find("td")
	if last.Eq(1).Text() != "Phishing" || last.Eq(3).Text() != "95%" {
		t.Errorf("row 2 = %q %q", last.Eq(1).Text(), last.Eq(3).Text())
	}
}

func TestFilenamePattern(t *testing.T) {
	name := Filename("batch")
	if !strings.HasPrefix(name, "batch-report-") || !strings.HasSuffix(name, ".html") {
		t.Errorf("filename = %q", name)
	}
}
