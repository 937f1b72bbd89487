// Package report renders canonical scan data into fixed-layout HTML audit
// documents. It only reads canonical fields; it never classifies or
// re-validates anything.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/phishscope/phishscope/pkg/scan"
)

const (
	alertColor = "#dc2626"
	safeColor  = "#16a34a"
)

type signalRow struct {
	Name  string
	Value string
}

type singleView struct {
	BandColor  template.CSS
	Verdict    string
	Target     string
	Date       string
	RiskLevel  string
	Confidence string
	Signals    []signalRow
	Warnings   []string
	Error      string
}

type batchRow struct {
	Target  string
	Verdict string
	Risk    string
	Score   string
}

type batchView struct {
	Generated string
	Total     int
	Processed int
	Rows      []batchRow
}

// Single renders one scan into the single-scan report document.
func Single(s scan.Scan) ([]byte, error) {
	view := singleView{
		BandColor:  bandColor(s),
		Verdict:    string(s.Verdict),
		Target:     s.Target,
		Date:       s.ScannedAt.Format("Jan 2, 2006 15:04 MST"),
		RiskLevel:  string(s.RiskLevel),
		Confidence: fmt.Sprintf("%.1f%%", s.Confidence*100),
		Signals:    signalRows(s.Signals),
		Warnings:   s.Warnings,
	}
	if s.Status == scan.StatusError {
		view.Verdict = "Error"
		view.Error = s.ErrorMessage
		view.Confidence = "N/A"
	}

	var buf bytes.Buffer
	if err := singleTmpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Batch renders a batch result set as a single table, one row per item in
// original input order. Error items keep their row with an Error marker
// instead of aborting the export.
func Batch(b scan.BatchResult) ([]byte, error) {
	view := batchView{
		Generated: time.Now().Format("Jan 2, 2006 15:04 MST"),
		Total:     len(b.Results),
		Processed: b.Processed,
	}
	for _, s := range b.Results {
		view.Rows = append(view.Rows, batchRowFor(s))
	}

	var buf bytes.Buffer
	if err := batchTmpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds the export filename: <report-type>-report-<epoch-millis>.html.
func Filename(reportType string) string {
	return fmt.Sprintf("%s-report-%d.html", reportType, time.Now().UnixMilli())
}

// Write stores a rendered document on disk.
func Write(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func batchRowFor(s scan.Scan) batchRow {
	row := batchRow{Target: s.Target, Verdict: "N/A", Risk: "N/A", Score: "N/A"}
	if s.Status == scan.StatusError {
		row.Verdict = "Error"
		return row
	}
	if s.Verdict != "" {
		row.Verdict = string(s.Verdict)
	}
	if s.RiskLevel != "" {
		row.Risk = string(s.RiskLevel)
	}
	row.Score = fmt.Sprintf("%d%%", int(math.Round(s.Confidence*100)))
	return row
}

// bandColor picks the header band color: alert for Phishing or High/Critical
// risk, the positive color otherwise.
func bandColor(s scan.Scan) template.CSS {
	if s.Verdict == scan.VerdictPhishing || s.RiskLevel == scan.RiskHigh || s.RiskLevel == scan.RiskCritical {
		return alertColor
	}
	return safeColor
}

// signalRows flattens the signal map into sorted rows, booleans rendered as
// Yes/No. Sorting keeps repeated exports byte-identical.
func signalRows(signals map[string]any) []signalRow {
	names := make([]string, 0, len(signals))
	for name := range signals {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]signalRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, signalRow{Name: name, Value: formatSignal(signals[name])})
	}
	return rows
}

func formatSignal(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

var singleTmpl = template.Must(template.New("single").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Scan Report</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 0; color: #111827; }
.band { color: #fff; padding: 24px 32px; background: {{.BandColor}}; }
.band h1 { margin: 0; font-size: 28px; }
.meta, .signals { margin: 24px 32px; }
.meta table td { padding: 4px 16px 4px 0; }
.meta table td:first-child { color: #6b7280; }
table.signals-table { border-collapse: collapse; width: 100%; }
table.signals-table th, table.signals-table td { border: 1px solid #e5e7eb; padding: 8px 12px; text-align: left; }
table.signals-table th { background: #f9fafb; }
.warnings { margin: 24px 32px; }
.warnings li { color: #b45309; }
.error { margin: 24px 32px; color: #dc2626; }
</style>
</head>
<body>
<div class="band"><h1>{{.Verdict}}</h1></div>
<div class="meta">
<table>
<tr><td>Target</td><td class="target">{{.Target}}</td></tr>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Verdict</td><td class="verdict">{{.Verdict}}</td></tr>
<tr><td>Risk Level</td><td class="risk">{{.RiskLevel}}</td></tr>
<tr><td>Confidence</td><td class="confidence">{{.Confidence}}</td></tr>
</table>
</div>
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
{{if .Signals}}
<div class="signals">
<table class="signals-table">
<thead><tr><th>Signal</th><th>Value</th></tr></thead>
<tbody>
{{range .Signals}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{end}}</tbody>
</table>
</div>
{{end}}
{{if .Warnings}}
<div class="warnings">
<h2>Warnings</h2>
<ul>
{{range .Warnings}}<li>{{.}}</li>
{{end}}</ul>
</div>
{{end}}
</body>
</html>
`))

var batchTmpl = template.Must(template.New("batch").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Batch Scan Report</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 0; color: #111827; }
.band { color: #fff; padding: 24px 32px; background: #1f2937; }
.band h1 { margin: 0; font-size: 28px; }
.band p { margin: 8px 0 0; color: #d1d5db; }
table.results { border-collapse: collapse; margin: 24px 32px; width: calc(100% - 64px); }
table.results th, table.results td { border: 1px solid #e5e7eb; padding: 8px 12px; text-align: left; }
table.results th { background: #f9fafb; }
td.verdict-error { color: #dc2626; font-weight: bold; }
</style>
</head>
<body>
<div class="band">
<h1>Batch Scan Report</h1>
<p>Generated {{.Generated}} &middot; {{.Processed}}/{{.Total}} items classified</p>
</div>
<table class="results">
<thead><tr><th>Target</th><th>Verdict</th><th>Risk Level</th><th>Score</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Target}}</td><td{{if eq .Verdict "Error"}} class="verdict-error"{{end}}>{{.Verdict}}</td><td>{{.Risk}}</td><td>{{.Score}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))
