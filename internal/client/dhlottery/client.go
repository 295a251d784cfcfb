package dhlottery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost    = "https://www.dhlottery.co.kr"
	DefaultTimeout = 10 * time.Second

	drawPath  = "/lt645/selectPstLt645Info.do"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ErrNotJSON          = errors.New("response is not json")
	ErrDrawNotFound     = errors.New("draw not found")
	ErrMalformedPayload = errors.New("malformed draw payload")
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// NewClient builds a client. A nil httpClient gets DefaultTimeout.
func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The endpoint answers with an HTML error page unless the request looks
	// like the site's own XHR.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.host+"/lt645/result")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

// FetchDraw loads one draw. It never retries.
func (c *Client) FetchDraw(ctx context.Context, drawNo int) (*Draw, error) {
	if drawNo <= 0 {
		return nil, fmt.Errorf("draw_no must be positive: %d", drawNo)
	}
	query := url.Values{}
	query.Set("srchLtEpsd", strconv.Itoa(drawNo))
	body, err := c.doRequest(ctx, drawPath, query)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return nil, fmt.Errorf("draw %d: %w", drawNo, ErrNotJSON)
	}
	draw, err := parseDraw(body)
	if err != nil {
		return nil, fmt.Errorf("draw %d: %w", drawNo, err)
	}
	return draw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
