package domain

import (
	"regexp"
	"strings"
)

// Document titles in the filestore carry the BSG number in forms like
// "BSG 432.311", "BSG_432_311.pdf" or "BSG 153.01-1".
var bsgPattern = regexp.MustCompile(`BSG[\s_]?([\d.]+(?:-\d+)?)`)

const lawURLBase = "https://www.belex.sites.be.ch/api/de/texts_of_law/"

// ExtractBSGNumber pulls the BSG number out of a document title. Returns an
// empty string when the title carries none.
func ExtractBSGNumber(title string) string {
	m := bsgPattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	// Titles like "BSG_432.311.pdf" would otherwise leave a trailing dot.
	return strings.TrimRight(m[1], ".")
}

// LawURL returns the public BELEX URL for the full text of the law with the
// given BSG number.
func LawURL(bsgNumber string) string {
	return lawURLBase + bsgNumber
}
