package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]?\s*`)
	versionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]\s*(remix|remaster|remastered|deluxe|extended|radio edit|clean|explicit|official|lyric|audio|video|visualizer|mono|stereo)[^\)\]]*[\)\]]\s*`)
	dashSuffixRegex = regexp.MustCompile(`(?i)\s+-\s+(remix|remaster|remastered|radio edit|single version|album version|live|mono|stereo).*$`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Matcher scores how well a candidate track matches a reference track.
// Comparisons run on normalized forms so punctuation, casing, diacritics
// and edition suffixes do not skew the ranking.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// NormalizeTitle strips featured-artist credits and edition suffixes so
// "Song (feat. X) [2011 Remaster]" and "Song" compare equal.
func (m *Matcher) NormalizeTitle(title string) string {
	title = versionRegex.ReplaceAllString(title, " ")
	title = featRegex.ReplaceAllString(title, " ")
	title = dashSuffixRegex.ReplaceAllString(title, "")
	return m.basicNormalize(title)
}

func (m *Matcher) NormalizeArtist(artist string) string {
	artist = m.basicNormalize(artist)

	artist = strings.ReplaceAll(artist, " and ", " ")
	artist = strings.ReplaceAll(artist, " x ", " ")
	artist = strings.ReplaceAll(artist, " vs ", " ")
	artist = strings.ReplaceAll(artist, " feat ", " ")
	artist = strings.ReplaceAll(artist, " ft ", " ")

	return whitespaceRegex.ReplaceAllString(artist, " ")
}

func (m *Matcher) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}

// Score compares a candidate against a reference track. Title carries more
// weight than artist because catalogs disagree on artist credit order far
// more often than on titles. If the reference has no artist the title
// similarity stands alone.
func (m *Matcher) Score(refTitle, refArtist, candTitle, candArtist string) float64 {
	titleSim := m.Similarity(m.NormalizeTitle(refTitle), m.NormalizeTitle(candTitle))

	refA := m.NormalizeArtist(refArtist)
	if refA == "" {
		return titleSim
	}
	artistSim := m.Similarity(refA, m.NormalizeArtist(candArtist))

	return 0.6*titleSim + 0.4*artistSim
}

// Similarity returns a value in [0, 1] based on the longest common
// subsequence of the two strings.
func (m *Matcher) Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	return float64(m.longestCommonSubsequence(s1, s2)) / float64(max(len(s1), len(s2)))
}

func (m *Matcher) longestCommonSubsequence(s1, s2 string) int {
	rows, cols := len(s1), len(s2)
	dp := make([][]int, rows+1)
	for i := range dp {
		dp[i] = make([]int, cols+1)
	}

	for i := 1; i <= rows; i++ {
		for j := 1; j <= cols; j++ {
			if s1[i-1] == s2[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	return dp[rows][cols]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
