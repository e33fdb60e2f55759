package catalog

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func respWithStatus(status int, retryAfter string) *http.Response {
	resp := &http.Response{StatusCode: status, Header: make(http.Header)}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return resp
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name      string
		resp      *http.Response
		err       error
		wantRetry bool
		wantDelay time.Duration
	}{
		{name: "transport error", err: errors.New("conn reset"), wantRetry: true},
		{name: "nil response without error", wantRetry: false},
		{name: "200 ok", resp: respWithStatus(200, ""), wantRetry: false},
		{name: "404 not retried", resp: respWithStatus(404, ""), wantRetry: false},
		{name: "429 retried", resp: respWithStatus(429, ""), wantRetry: true},
		{name: "500 retried", resp: respWithStatus(500, ""), wantRetry: true},
		{name: "503 with retry-after seconds", resp: respWithStatus(503, "3"), wantRetry: true, wantDelay: 3 * time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delay, retry := shouldRetry(tc.resp, tc.err)
			if retry != tc.wantRetry {
				t.Errorf("retry = %v, want %v", retry, tc.wantRetry)
			}
			if delay != tc.wantDelay {
				t.Errorf("delay = %v, want %v", delay, tc.wantDelay)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "missing", header: "", want: 0},
		{name: "seconds", header: "10", want: 10 * time.Second},
		{name: "zero seconds", header: "0", want: 0},
		{name: "negative", header: "-5", want: 0},
		{name: "garbage", header: "soon", want: 0},
		{name: "http date in the past", header: "Mon, 02 Jan 2006 15:04:05 GMT", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseRetryAfter(respWithStatus(429, tc.header)); got != tc.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}
