package scan

import "time"

// Verdict is the three-way outcome bucket shown to users.
type Verdict string

const (
	VerdictSafe       Verdict = "Safe"
	VerdictSuspicious Verdict = "Suspicious"
	VerdictPhishing   Verdict = "Phishing"
)

// RiskLevel is the classifier's severity scale. RiskUnknown is produced by
// normalization when the upstream record carries no risk level at all; it is
// propagated as-is and never coerced into one of the four real levels.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
	RiskUnknown  RiskLevel = "Unknown"
)

// Kind distinguishes URL scans from email scans. The two kinds use disjoint
// signal vocabularies.
type Kind string

const (
	KindURL   Kind = "url"
	KindEmail Kind = "email"
)

// Status marks whether a scan carries a real classification or an error.
type Status string

const (
	StatusOk    Status = "ok"
	StatusError Status = "error"
)

// MaxBatchSize is the upper bound on targets per batch request. Oversized
// batches are rejected locally, before any network call.
const MaxBatchSize = 50

// EmailTarget is the composite artifact submitted for an email scan.
type EmailTarget struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from"`
	ReplyTo string `json:"reply_to"`
}

// Summary builds the displayable one-line form of an email target, matching
// the "from — subject" composition the backend stores in its content field.
func (e EmailTarget) Summary() string {
	switch {
	case e.From != "" && e.Subject != "":
		return e.From + " — " + e.Subject
	case e.Subject != "":
		return e.Subject
	case e.From != "":
		return e.From
	default:
		return "(email)"
	}
}

// Scan is the canonical classification record. It is created only by the
// normalizer and is immutable once created: no method mutates it, and
// corrections are new scans.
type Scan struct {
	ID         string         `json:"id"`
	Target     string         `json:"target"`
	Email      *EmailTarget   `json:"email,omitempty"`
	Kind       Kind           `json:"kind"`
	Verdict    Verdict        `json:"verdict"`
	Confidence float64        `json:"score"`
	RiskLevel  RiskLevel      `json:"risk_level"`
	Signals    map[string]any `json:"signals,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	ScannedAt  time.Time      `json:"scanned_at"`

	Status       Status `json:"status"`
	ErrorMessage string `json:"error,omitempty"`
}

// IsThreat reports whether the scan falls in a threat bucket.
func (s Scan) IsThreat() bool {
	return s.Status == StatusOk && (s.Verdict == VerdictPhishing || s.Verdict == VerdictSuspicious)
}

// BatchResult holds the per-item outcome of a batch request. Results is
// positionally aligned with the submitted targets; Processed counts the
// items that classified successfully.
type BatchResult struct {
	Results   []Scan `json:"results"`
	Processed int    `json:"processed"`
}
