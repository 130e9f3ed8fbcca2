package domain

import "time"

// HrefMatch is a link whose text or target contained the search phrase.
type HrefMatch struct {
	// Text is the link text (may carry highlight markup from the service).
	Text string

	// Href is the link target, absolute or relative.
	Href string

	// OriginalURL is the resolved absolute target without highlight markup.
	// Empty when the service does not report it.
	OriginalURL string

	// PageURL is the page the link was found on.
	PageURL string
}

// Target returns the URL a renderer should link to.
func (h HrefMatch) Target() string {
	if h.OriginalURL != "" {
		return h.OriginalURL
	}
	return h.Href
}

// Label returns the text a renderer should display for the link.
func (h HrefMatch) Label() string {
	if h.Text != "" {
		return h.Text
	}
	return h.Target()
}

// MatchRecord holds every match found on one page, grouped by location.
// Each sequence keeps document order and may contain repeats.
type MatchRecord struct {
	// BodyMatches are snippets found in the page body text.
	BodyMatches []string

	// HeadMatches are snippets found inside the head tag.
	HeadMatches []string

	// HrefMatches are links whose text or href matched.
	HrefMatches []HrefMatch
}

// HasMatches reports whether any location matched.
func (m MatchRecord) HasMatches() bool {
	return len(m.BodyMatches) > 0 || len(m.HeadMatches) > 0 || len(m.HrefMatches) > 0
}

// Count returns the total number of matches across all locations.
func (m MatchRecord) Count() int {
	return len(m.BodyMatches) + len(m.HeadMatches) + len(m.HrefMatches)
}

// clone returns a deep copy so stored records cannot be aliased by callers.
func (m MatchRecord) clone() MatchRecord {
	out := MatchRecord{}
	if m.BodyMatches != nil {
		out.BodyMatches = append([]string(nil), m.BodyMatches...)
	}
	if m.HeadMatches != nil {
		out.HeadMatches = append([]string(nil), m.HeadMatches...)
	}
	if m.HrefMatches != nil {
		out.HrefMatches = append([]HrefMatch(nil), m.HrefMatches...)
	}
	return out
}

// PageResult is one crawled page and the matches found on it.
// URL is the identity of a result within a session.
type PageResult struct {
	// URL is the canonical absolute URL of the page.
	URL string

	// Title is the page title. May be empty.
	Title string

	// Depth is the crawl distance from the base URL (0 = base URL).
	Depth int

	// Matches holds the matches found on the page.
	Matches MatchRecord

	// VisitedAt is when the page was fetched.
	VisitedAt time.Time
}

// DisplayTitle returns the title, falling back to the URL when absent.
func (p PageResult) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.URL
}

// HasMatches reports whether the page has at least one match.
func (p PageResult) HasMatches() bool {
	return p.Matches.HasMatches()
}

func (p PageResult) clone() PageResult {
	p.Matches = p.Matches.clone()
	return p
}
