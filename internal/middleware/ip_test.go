package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetProxyClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "direct connection without headers",
			headers:  map[string]string{},
			remote:   "192.168.0.1:999",
			expected: "192.168.0.1",
		},
		{
			name:     "proxy header wins over remote addr",
			headers:  map[string]string{"CF-Connecting-IP": "20.55.20.55"},
			remote:   "192.168.0.1:999",
			expected: "20.55.20.55",
		},
		{
			name: "header precedence with multiple headers",
			headers: map[string]string{
				"CF-Connecting-IP": "20.55.20.55",
				"X-Forwarded-For":  "1.2.3.4, 5.6.7.8",
			},
			remote:   "192.168.0.1:999",
			expected: "20.55.20.55",
		},
		{
			name: "malformed header falls through to the next",
			headers: map[string]string{
				"CF-Connecting-IP": "mistake",
				"X-Forwarded-For":  "1.2.3.4, 5.6.7.8",
			},
			remote:   "192.168.0.1:999",
			expected: "1.2.3.4",
		},
		{
			name:     "forwarded-for list takes the first entry",
			headers:  map[string]string{"X-Forwarded-For": "  1.2.3.4  ,  5.6.7.8 "},
			remote:   "192.168.0.1:999",
			expected: "1.2.3.4",
		},
		{
			name:     "private IP in header is a spoofing attempt",
			headers:  map[string]string{"CF-Connecting-IP": "10.0.0.55"},
			remote:   "192.168.0.1:999",
			expected: "192.168.0.1",
		},
		{
			name:     "invalid direct address",
			headers:  map[string]string{},
			remote:   "500.500.600.500",
			expected: "",
		},
		{
			name:     "garbage direct address",
			headers:  map[string]string{},
			remote:   "mistake",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			got := getProxyClientIP(req)

			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
