// Package text provides message normalization and URL extraction for
// incoming chat messages.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	spotifyURIRegex = regexp.MustCompile(`spotify:track:[a-zA-Z0-9]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	trackingParams = []string{
		"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
		"si", "feature",
	}
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// NormalizeText trims, NFKC-normalizes and collapses whitespace so the
// same message pasted from different clients compares equal.
func (p *Parser) NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)

	lines := strings.Split(text, "\n")
	var normalizedLines []string
	for _, line := range lines {
		line = whitespaceRegex.ReplaceAllString(strings.TrimSpace(line), " ")
		if line != "" {
			normalizedLines = append(normalizedLines, line)
		}
	}

	return strings.Join(normalizedLines, " ")
}

// ExtractLinks returns all candidate music links in a message, cleaned of
// tracking parameters. Spotify URIs (spotify:track:...) count as links too
// since desktop clients copy them that way.
func (p *Parser) ExtractLinks(text string) []string {
	var links []string

	for _, match := range urlRegex.FindAllString(text, -1) {
		if cleaned := p.cleanURL(match); cleaned != "" {
			links = append(links, cleaned)
		}
	}

	links = append(links, spotifyURIRegex.FindAllString(text, -1)...)

	return links
}

// FirstLink returns the first candidate link in a normalized message, or
// "" when the message carries none.
func (p *Parser) FirstLink(text string) string {
	links := p.ExtractLinks(p.NormalizeText(text))
	if len(links) == 0 {
		return ""
	}
	return links[0]
}

func (p *Parser) cleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;)")

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
