package services

import (
	"errors"
	"net/url"
	"strings"
)

// YouTubeMusicService detects YouTube Music and YouTube watch links.
type YouTubeMusicService struct{}

// NewYouTubeMusicService creates a new YouTube Music link detector.
func NewYouTubeMusicService() *YouTubeMusicService {
	return &YouTubeMusicService{}
}

// Name returns the registry identifier of the service.
func (s *YouTubeMusicService) Name() Name {
	return YouTubeMusic
}

// DisplayName returns the human-readable service name.
func (s *YouTubeMusicService) DisplayName() string {
	return "YouTube Music"
}

// Detect checks whether the URL is a YouTube Music or YouTube watch link.
// Plain YouTube hosts are claimed too since watch links carry the same
// video IDs as their music.youtube.com counterparts.
func (s *YouTubeMusicService) Detect(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}

	hostname := strings.ToLower(u.Hostname())
	switch hostname {
	case "music.youtube.com", "youtube.com", "www.youtube.com", "m.youtube.com":
		return u.Query().Get("v") != ""
	case "youtu.be":
		return strings.Trim(u.Path, "/") != ""
	}
	return false
}

// ExtractID extracts the video ID from the various YouTube URL formats.
func (s *YouTubeMusicService) ExtractID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	hostname := strings.ToLower(u.Hostname())

	// youtu.be short links carry the video ID in the path.
	if hostname == "youtu.be" {
		videoID := strings.Trim(u.Path, "/")
		if videoID == "" {
			return "", errors.New("no video ID in youtu.be URL")
		}
		return videoID, nil
	}

	videoID := u.Query().Get("v")
	if videoID == "" {
		return "", errors.New("no video ID in YouTube URL")
	}
	return videoID, nil
}
