package whttp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const userAgent = "sstrack/1.0 (+https://scoresaber.com)"

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
	Body    []byte
}

type WHTTPRes struct {
	StatusCode     int
	ResponseLength int
	HTTPTitle      string
	BodyString     string
}

// OK reports whether the status code is 2xx.
func (r *WHTTPRes) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ClientConfig tunes the shared retryable client.
type ClientConfig struct {
	Timeout  time.Duration
	RetryMax int
	Proxy    string
	Logger   retryablehttp.LeveledLogger
}

// NewClient builds a retryablehttp client. RetryMax defaults to zero so every
// call is a single attempt; non-2xx responses are handed back to the caller
// instead of being turned into "giving up" errors.
func NewClient(cfg ClientConfig) (*retryablehttp.Client, error) {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.RetryMax
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = cfg.Logger
	if cfg.Timeout > 0 {
		c.HTTPClient.Timeout = cfg.Timeout
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		c.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return c, nil
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	if client == nil {
		client, err = NewClient(ClientConfig{})
		if err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if wReq.Body != nil {
		body = bytes.NewReader(wReq.Body)
	}

	method := wReq.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if wReq.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Set custom headers
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
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
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if title, ok := getHTMLTitle(wRes.BodyString); ok {
			wRes.HTTPTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
		}
	}

	wRes.ResponseLength = utf8.RuneCountInString(wRes.BodyString)
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
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}

	return traverse(doc)
}
