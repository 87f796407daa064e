// Package services provides detection and identification of music streaming
// services from track links.
package services

// Name identifies a music service in the registry.
type Name string

const (
	// Spotify is the service name for Spotify track links.
	Spotify Name = "spotify"
	// YouTubeMusic is the service name for YouTube Music track links.
	YouTubeMusic Name = "youtube_music"
)

// Service describes a music catalog with its own link format.
type Service interface {
	// Name returns the registry identifier of the service.
	Name() Name

	// DisplayName returns the human-readable service name.
	DisplayName() string

	// Detect checks whether the given URL belongs to this service.
	Detect(rawURL string) bool

	// ExtractID extracts the track identifier from a link of this service.
	ExtractID(rawURL string) (string, error)
}
