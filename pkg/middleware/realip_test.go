package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		xff     string
		realIP  string
		want    string
	}{
		{
			name:   "no trusted proxies ignores headers",
			remote: "192.0.2.10:4000",
			xff:    "203.0.113.5",
			realIP: "203.0.113.6",
			want:   "192.0.2.10:4000",
		},
		{
			name:    "untrusted peer ignores headers",
			trusted: []string{"10.0.0.0/8"},
			remote:  "192.0.2.10:4000",
			xff:     "203.0.113.5",
			want:    "192.0.2.10:4000",
		},
		{
			name:    "trusted peer uses last untrusted hop",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			xff:     "1.1.1.1, 203.0.113.5, 10.0.0.7",
			want:    "203.0.113.5",
		},
		{
			name:    "trusted peer falls back to X-Real-IP",
			trusted: []string{"10.0.0.1"},
			remote:  "10.0.0.1:4000",
			realIP:  "203.0.113.9",
			want:    "203.0.113.9",
		},
		{
			name:    "garbage header keeps peer",
			trusted: []string{"10.0.0.0/8", "not-an-ip"},
			remote:  "10.1.2.3:4000",
			xff:     "evil",
			want:    "10.1.2.3:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := RealIP(tt.trusted, zap.NewNop())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}
