package services

import (
	"testing"
)

func TestSpotifyService_Detect(t *testing.T) {
	svc := NewSpotifyService()

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{
			name:     "open.spotify.com track URL",
			url:      "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: true,
		},
		{
			name:     "track URL with query parameters",
			url:      "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=abc123",
			expected: true,
		},
		{
			name:     "locale-prefixed track URL",
			url:      "https://open.spotify.com/intl-de/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: true,
		},
		{
			name:     "spotify URI",
			url:      "spotify:track:4cOdK2wGLETKBW3PvgPWqT",
			expected: true,
		},
		{
			name:     "album URL is not a track",
			url:      "https://open.spotify.com/album/6dVIqQ8qmQ5GBnJ9shOYGE",
			expected: false,
		},
		{
			name:     "YouTube Music URL",
			url:      "https://music.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: false,
		},
		{
			name:     "not a URL",
			url:      "not a link",
			expected: false,
		},
		{
			name:     "empty string",
			url:      "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Detect(tt.url); got != tt.expected {
				t.Errorf("Detect(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestSpotifyService_ExtractID(t *testing.T) {
	svc := NewSpotifyService()

	tests := []struct {
		name      string
		url       string
		expected  string
		expectErr bool
	}{
		{
			name:     "plain track URL",
			url:      "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name:     "track URL with si parameter",
			url:      "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=abc",
			expected: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name:     "locale-prefixed track URL",
			url:      "https://open.spotify.com/intl-pt/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name:     "spotify URI",
			url:      "spotify:track:4cOdK2wGLETKBW3PvgPWqT",
			expected: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name:      "album URL has no track ID",
			url:       "https://open.spotify.com/album/6dVIqQ8qmQ5GBnJ9shOYGE",
			expectErr: true,
		},
		{
			name:      "empty string",
			url:       "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ExtractID(tt.url)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ExtractID(%q) expected error, got %q", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractID(%q) unexpected error: %v", tt.url, err)
			}
			if got != tt.expected {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}
