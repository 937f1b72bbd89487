// Package normalize absorbs the schema drift between the classifier's live
// response shape and the legacy vocabulary found in stored history records,
// producing one canonical scan.Scan either way.
//
// Field precedence is always canonical name first, legacy name second:
//
//	verdict    <- verdict | is_phishing (+ risk_level bucketing)
//	score      <- score | confidence
//	signals    <- signals | features
//	target     <- url | content
//	scanned_at <- scanned_at | timestamp | created_at
package normalize

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/phishscope/phishscope/pkg/scan"
)

// FromResponse normalizes a raw classifier response body into a canonical
// scan. It never fails on missing optional fields; it yields an Error scan
// only when the body carries neither a verdict nor a phishing flag, since
// silently defaulting such a record to Safe would be a false negative.
func FromResponse(body []byte, target string, kind scan.Kind) scan.Scan {
	return fromJSON(gjson.ParseBytes(body), target, kind)
}

// FromStored normalizes one record retrieved from the user's stored history.
// Stored records use the legacy vocabulary (is_phishing, content, features,
// created_at) and carry their own analysis_type.
func FromStored(rec gjson.Result) scan.Scan {
	kind := scan.KindURL
	if rec.Get("analysis_type").Str == "email" {
		kind = scan.KindEmail
	}
	return fromJSON(rec, "", kind)
}

// ErrorScan builds the Scan-shaped failure record the dispatcher hands back
// when classification never produced a usable response.
func ErrorScan(target string, kind scan.Kind, msg string) scan.Scan {
	return scan.Scan{
		ID:           uuid.NewString(),
		Target:       target,
		Kind:         kind,
		RiskLevel:    scan.RiskUnknown,
		ScannedAt:    time.Now().UTC(),
		Status:       scan.StatusError,
		ErrorMessage: msg,
	}
}

func fromJSON(r gjson.Result, target string, kind scan.Kind) scan.Scan {
	// Batch items and canonical records carry an explicit status.
	if st := strings.ToLower(r.Get("status").Str); st == "error" {
		msg := r.Get("error").Str
		if msg == "" {
			msg = "classification failed"
		}
		s := ErrorScan(pickTarget(r, target), kind, msg)
		if id := r.Get("id").Str; id != "" {
			s.ID = id
		}
		return s
	}

	verdict, ok := deriveVerdict(r)
	if !ok {
		return ErrorScan(pickTarget(r, target), kind, "response carries no verdict or phishing flag")
	}

	s := scan.Scan{
		Target:    pickTarget(r, target),
		Kind:      kind,
		Verdict:   verdict,
		RiskLevel: riskLevel(r.Get("risk_level")),
		Status:    scan.StatusOk,
	}

	if id := r.Get("id").Str; id != "" {
		s.ID = id
	} else {
		s.ID = uuid.NewString()
	}

	// Missing confidence normalizes to 0, never to an absent value.
	if sc := r.Get("score"); sc.Exists() {
		s.Confidence = sc.Float()
	} else {
		s.Confidence = r.Get("confidence").Float()
	}

	if sig := first(r, "signals", "features"); sig.IsObject() {
		s.Signals = make(map[string]any, len(sig.Map()))
		sig.ForEach(func(key, value gjson.Result) bool {
			s.Signals[key.Str] = value.Value()
			return true
		})
	}

	for _, w := range r.Get("warnings").Array() {
		s.Warnings = append(s.Warnings, w.Str)
	}

	s.ScannedAt = scannedAt(r)
	return s
}

// deriveVerdict resolves the three-way bucket. A verdict string wins; with
// only a boolean phishing flag the historical bucketing applies: phishing
// stays Phishing, non-phishing at High/Critical risk becomes Suspicious,
// everything else is Safe. Stored dashboards depend on this exact mapping.
func deriveVerdict(r gjson.Result) (scan.Verdict, bool) {
	switch scan.Verdict(r.Get("verdict").Str) {
	case scan.VerdictSafe:
		return scan.VerdictSafe, true
	case scan.VerdictSuspicious:
		return scan.VerdictSuspicious, true
	case scan.VerdictPhishing:
		return scan.VerdictPhishing, true
	}

	flag := r.Get("is_phishing")
	if !flag.Exists() {
		return "", false
	}
	if flag.Bool() {
		return scan.VerdictPhishing, true
	}
	switch riskLevel(r.Get("risk_level")) {
	case scan.RiskHigh, scan.RiskCritical:
		return scan.VerdictSuspicious, true
	}
	return scan.VerdictSafe, true
}

func riskLevel(v gjson.Result) scan.RiskLevel {
	raw := strings.TrimSpace(v.Str)
	if raw == "" {
		return scan.RiskUnknown
	}
	switch strings.ToLower(raw) {
	case "low":
		return scan.RiskLow
	case "medium":
		return scan.RiskMedium
	case "high":
		return scan.RiskHigh
	case "critical":
		return scan.RiskCritical
	}
	// Unrecognized levels pass through untouched.
	return scan.RiskLevel(raw)
}

func pickTarget(r gjson.Result, fallback string) string {
	if t := first(r, "target", "url", "content"); t.Str != "" {
		return t.Str
	}
	return fallback
}

func scannedAt(r gjson.Result) time.Time {
	for _, key := range []string{"scanned_at", "timestamp", "created_at"} {
		raw := r.Get(key).Str
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Now().UTC()
}

func first(r gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := r.Get(key); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
