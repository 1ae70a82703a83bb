package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreatInfo_Flags(t *testing.T) {
	tests := []struct {
		name     string
		threat   ThreatInfo
		expected []string
	}{
		{
			name:     "no flags",
			threat:   ThreatInfo{},
			expected: []string{},
		},
		{
			name:     "vpn only",
			threat:   ThreatInfo{IsVPN: true},
			expected: []string{"vpn"},
		},
		{
			name:     "tor exit abusing",
			threat:   ThreatInfo{IsTor: true, IsAbuser: true, IsProxy: true},
			expected: []string{"proxy", "tor", "abuser"},
		},
		{
			name:     "all flags",
			threat:   ThreatInfo{IsVPN: true, IsProxy: true, IsTor: true, IsRelay: true, IsAbuser: true, IsBot: true},
			expected: []string{"vpn", "proxy", "tor", "relay", "abuser", "bot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.threat.Flags())
		})
	}
}

func TestLocationInfo_HasCoordinates(t *testing.T) {
	lat, lon := 52.52, 13.405

	assert.True(t, LocationInfo{Latitude: &lat, Longitude: &lon}.HasCoordinates())
	assert.False(t, LocationInfo{Latitude: &lat}.HasCoordinates())
	assert.False(t, LocationInfo{}.HasCoordinates())
}

func TestParseAxisOrder(t *testing.T) {
	tests := []struct {
		in       string
		expected AxisOrder
		ok       bool
	}{
		{"", AxisOrderAuto, true},
		{"auto", AxisOrderAuto, true},
		{"latlon", AxisOrderLatLon, true},
		{"lonlat", AxisOrderLonLat, true},
		{"yx", AxisOrderAuto, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			order, ok := ParseAxisOrder(tt.in)
			assert.Equal(t, tt.expected, order)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
