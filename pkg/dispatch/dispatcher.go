// Package dispatch turns user-supplied targets into classifier calls. All
// per-item failures are absorbed into Error scans so callers always receive
// a Scan-shaped result; only local batch validation surfaces as a Go error.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/phishscope/phishscope/internal/utils"
	"github.com/phishscope/phishscope/pkg/normalize"
	"github.com/phishscope/phishscope/pkg/scan"
	"github.com/phishscope/phishscope/pkg/whttp"
)

const (
	defaultConcurrency = 5
	defaultTimeout     = 30 * time.Second
)

// ErrBatchSize is returned for empty or oversized batches, before any
// network call is made.
var ErrBatchSize = fmt.Errorf("batch must contain between 1 and %d targets", scan.MaxBatchSize)

// ErrNoCredential is returned when an operation requires an authenticated
// session. Scanning itself never does; only stored-history retrieval.
var ErrNoCredential = errors.New("stored history requires an API token (set api.token)")

// Config carries the dispatcher's wiring, normally fed from viper.
type Config struct {
	Endpoint    string
	Token       string
	Concurrency int
	Timeout     time.Duration
	Client      *retryablehttp.Client
}

// Dispatcher issues single and batch classification requests against the
// remote phishing-detection service.
type Dispatcher struct {
	endpoint    string
	token       string
	concurrency int
	timeout     time.Duration
	client      *retryablehttp.Client
}

func New(cfg Config) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = whttp.GetDefaultClient()
	}
	return &Dispatcher{
		endpoint:    cfg.Endpoint,
		token:       cfg.Token,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
		client:      cfg.Client,
	}
}

// ScanURL classifies a single URL. Transport and HTTP failures come back as
// Error scans, never as Go errors.
func (d *Dispatcher) ScanURL(ctx context.Context, target string) scan.Scan {
	return d.post(ctx, "/api/analyze/url", map[string]string{"url": target}, target, scan.KindURL)
}

// ScanEmail classifies a single email composite.
func (d *Dispatcher) ScanEmail(ctx context.Context, email scan.EmailTarget) scan.Scan {
	s := d.post(ctx, "/api/analyze/email", email, email.Summary(), scan.KindEmail)
	s.Email = &email
	return s
}

// ScanBatch classifies up to MaxBatchSize URLs. Each target is dispatched
// independently through a bounded worker fan-out; results are written by
// input index so output order always matches input order, regardless of
// which request completes first. Failed items are not retried here.
func (d *Dispatcher) ScanBatch(ctx context.Context, targets []string) (scan.BatchResult, error) {
	if len(targets) == 0 || len(targets) > scan.MaxBatchSize {
		return scan.BatchResult{}, ErrBatchSize
	}

	results := make([]scan.Scan, len(targets))
	sem := make(chan struct{}, d.concurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			utils.Log.Debugf("[batch] scanning item %d: %s", idx, t)
			results[idx] = d.ScanURL(ctx, t)
		}(i, target)
	}
	wg.Wait()

	processed := 0
	for _, s := range results {
		if s.Status == scan.StatusOk {
			processed++
		}
	}
	return scan.BatchResult{Results: results, Processed: processed}, nil
}

// FetchHistory retrieves the user's stored scan records and normalizes each
// one. Stored records use the legacy field vocabulary; the normalizer
// absorbs the difference.
func (d *Dispatcher) FetchHistory(ctx context.Context, limit int) ([]scan.Scan, error) {
	if d.token == "" {
		return nil, ErrNoCredential
	}

	url := d.endpoint + "/api/analyses"
	if limit > 0 {
		url += "?limit=" + strconv.Itoa(limit)
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := whttp.SendHTTPRequest(reqCtx, &whttp.WHTTPReq{
		Method:  "GET",
		URL:     url,
		Headers: d.authHeaders(),
	}, d.client)
	if err != nil {
		return nil, fmt.Errorf("could not reach classification service: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errors.New(upstreamError(res))
	}

	records := gjson.Get(res.BodyString, "analyses").Array()
	scans := make([]scan.Scan, 0, len(records))
	for _, rec := range records {
		scans = append(scans, normalize.FromStored(rec))
	}
	utils.Log.Debugf("fetched %d stored scans", len(scans))
	return scans, nil
}

func (d *Dispatcher) post(ctx context.Context, path string, payload any, target string, kind scan.Kind) scan.Scan {
	body, err := json.Marshal(payload)
	if err != nil {
		return normalize.ErrorScan(target, kind, "could not encode request: "+err.Error())
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := whttp.SendHTTPRequest(reqCtx, &whttp.WHTTPReq{
		Method:  "POST",
		URL:     d.endpoint + path,
		Body:    body,
		Headers: d.authHeaders(),
	}, d.client)
	if err != nil {
		utils.Log.Warnf("request for %s failed: %v", target, err)
		return normalize.ErrorScan(target, kind, "could not reach classification service")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return normalize.ErrorScan(target, kind, upstreamError(res))
	}

	return normalize.FromResponse([]byte(res.BodyString), target, kind)
}

// authHeaders attaches the bearer credential when one is configured.
// Anonymous scanning is permitted, so no token means no header.
func (d *Dispatcher) authHeaders() []whttp.WHTTPHeader {
	if d.token == "" {
		return nil
	}
	return []whttp.WHTTPHeader{{Name: "Authorization", Value: "Bearer " + d.token}}
}

// upstreamError extracts the most useful message from a non-2xx response:
// the structured error field when the body is JSON, the page title when a
// proxy served an HTML error page, else a generic status-code message.
func upstreamError(res *whttp.WHTTPRes) string {
	if msg := gjson.Get(res.BodyString, "error").Str; msg != "" {
		return msg
	}
	if res.HTTPTitle != "" {
		return res.HTTPTitle
	}
	return fmt.Sprintf("classification failed with HTTP %d", res.StatusCode)
}
