package services

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var spotifyURIRegex = regexp.MustCompile(`^spotify:track:([a-zA-Z0-9]+)$`)

// SpotifyService detects Spotify track links.
type SpotifyService struct{}

// NewSpotifyService creates a new Spotify link detector.
func NewSpotifyService() *SpotifyService {
	return &SpotifyService{}
}

// Name returns the registry identifier of the service.
func (s *SpotifyService) Name() Name {
	return Spotify
}

// DisplayName returns the human-readable service name.
func (s *SpotifyService) DisplayName() string {
	return "Spotify"
}

// Detect checks whether the URL is a Spotify track link.
func (s *SpotifyService) Detect(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)

	if spotifyURIRegex.MatchString(rawURL) {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(u.Hostname())
	switch hostname {
	case "open.spotify.com", "spotify.com", "play.spotify.com":
		return strings.Contains(u.Path, "/track/")
	}
	return false
}

// ExtractID extracts the Spotify track ID from a link or spotify: URI.
func (s *SpotifyService) ExtractID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	if matches := spotifyURIRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	// Walk the path so locale prefixes like /intl-de/track/<id> still work.
	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range pathParts {
		if part == "track" && i+1 < len(pathParts) {
			trackID := pathParts[i+1]
			if idx := strings.Index(trackID, "?"); idx != -1 {
				trackID = trackID[:idx]
			}
			if trackID != "" {
				return trackID, nil
			}
		}
	}

	return "", errors.New("no track ID found in Spotify URL")
}
