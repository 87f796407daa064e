package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Greeting
	"bot.welcome": "Hi! Send me a Spotify or YouTube Music track link and I'll reply " +
		"with the matching link on the other service.\n\n" +
		"You can also use me inline: type @%s followed by a link in any chat.",

	// Error messages
	"error.unsupported": "I can only convert Spotify and YouTube Music track links. " +
		"Send me a link like https://open.spotify.com/track/... or https://music.youtube.com/watch?v=...",
	"error.no_results": "I couldn't find this track on %s. It may not be available there.",
	"error.transient":  "Something went wrong while looking that up. Please try again in a moment.",

	// Inline query messages
	"inline.error.title":       "Couldn't convert this link",
	"inline.no_results.title":  "No match found",
	"inline.unsupported.title": "Unsupported link",

	// Service display names
	"service.spotify":       "Spotify",
	"service.youtube_music": "YouTube Music",
	"service.other":         "the other service",
}
