package clientip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func headers(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromHeaders(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "cloudflare wins",
			headers:    map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Real-IP": "198.51.100.1"},
			remoteAddr: "10.0.0.1:4000",
			expected:   "203.0.113.7",
		},
		{
			name:       "invalid header skipped",
			headers:    map[string]string{"CF-Connecting-IP": "garbage", "True-Client-IP": "198.51.100.9"},
			remoteAddr: "10.0.0.1:4000",
			expected:   "198.51.100.9",
		},
		{
			name:       "first valid forwarded-for entry",
			headers:    map[string]string{"X-Forwarded-For": "unknown, 203.0.113.50 , 10.0.0.2"},
			remoteAddr: "10.0.0.1:4000",
			expected:   "203.0.113.50",
		},
		{
			name:       "forwarded header with ipv6",
			headers:    map[string]string{"Forwarded": `proto=https;for="[2001:db8::17]:4711"`},
			remoteAddr: "10.0.0.1:4000",
			expected:   "2001:db8::17",
		},
		{
			name:       "remote addr with port",
			headers:    map[string]string{},
			remoteAddr: "192.0.2.33:51234",
			expected:   "192.0.2.33",
		},
		{
			name:       "ipv4 mapped ipv6",
			headers:    map[string]string{"X-Real-IP": "::ffff:203.0.113.4"},
			remoteAddr: "",
			expected:   "203.0.113.4",
		},
		{
			name:       "nothing usable",
			headers:    map[string]string{"X-Forwarded-For": "nope"},
			remoteAddr: "pipe",
			expected:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromHeaders(headers(tt.headers), tt.remoteAddr))
		})
	}
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic("8.8.8.8"))
	assert.True(t, IsPublic("2606:4700::1111"))
	assert.False(t, IsPublic("10.1.2.3"))
	assert.False(t, IsPublic("192.168.0.1"))
	assert.False(t, IsPublic("127.0.0.1"))
	assert.False(t, IsPublic("::1"))
	assert.False(t, IsPublic("169.254.1.1"))
	assert.False(t, IsPublic("0.0.0.0"))
	assert.False(t, IsPublic("not-an-ip"))
}

func TestNormalize(t *testing.T) {
	ip, ok := Normalize(" [2001:db8::1] ")
	assert.True(t, ok)
	assert.Equal(t, "2001:db8::1", ip)

	_, ok = Normalize("")
	assert.False(t, ok)
}
