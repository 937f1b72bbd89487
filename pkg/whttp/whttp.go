package whttp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Body    []byte
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode     int
	ResponseLength int
	HTTPTitle      string
	BodyString     string
}

var (
	defaultClient     *retryablehttp.Client
	defaultClientOnce sync.Once
)

// GetDefaultClient returns the shared retrying HTTP client. Retries cover
// transient transport faults only; HTTP-level errors are returned to the
// caller as regular responses.
func GetDefaultClient() *retryablehttp.Client {
	defaultClientOnce.Do(func() {
		defaultClient = retryablehttp.NewClient()
		defaultClient.RetryMax = 2
		defaultClient.RetryWaitMin = 500 * time.Millisecond
		defaultClient.Logger = nil
		defaultClient.HTTPClient.Timeout = 30 * time.Second
		// Retry transport faults only. HTTP error statuses must reach the
		// caller intact so the upstream error payload can be surfaced.
		defaultClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return err != nil, nil
		}
	})
	return defaultClient
}

// SendHTTPRequest performs one request and drains the body. A JSON content
// type is set whenever a request body is present.
func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	if client == nil {
		client = GetDefaultClient()
	}

	var body io.Reader
	if len(wReq.Body) > 0 {
		body = bytes.NewReader(wReq.Body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, wReq.Method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0")
	req.Header.Set("Accept-Language", "en")
	if len(wReq.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, h := range wReq.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	wRes = &WHTTPRes{
		StatusCode:     resp.StatusCode,
		BodyString:     string(bodyBytes),
		ResponseLength: len(bodyBytes),
	}

	if title, ok := getHTMLTitle(wRes.BodyString); ok {
		wRes.HTTPTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
	}

	return wRes, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(requestBody string) (string, bool) {
	if !strings.Contains(requestBody, "<") {
		return "", false
	}
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}
