package domain

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"
)

// SessionKey identifies a search session.
// Both fields are compared exactly and case-sensitively.
type SessionKey struct {
	// BaseURL is the URL the crawl starts from.
	BaseURL string

	// SearchText is the phrase being searched for.
	SearchText string
}

// Validate checks that both identity fields are present.
func (k SessionKey) Validate() error {
	if strings.TrimSpace(k.BaseURL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if strings.TrimSpace(k.SearchText) == "" {
		return fmt.Errorf("%w: search text is required", ErrInvalidInput)
	}
	return nil
}

// String returns a human-readable form of the key.
func (k SessionKey) String() string {
	return fmt.Sprintf("%q @ %s", k.SearchText, k.BaseURL)
}

// MergeStats describes what a single merge changed.
type MergeStats struct {
	// NewURLs is the number of URLs that were not visited before the merge.
	NewURLs int

	// Inserted is the number of results stored for the first time.
	Inserted int

	// Replaced is the number of results that overwrote an earlier crawl of the same URL.
	Replaced int
}

type resultEntry struct {
	result PageResult
	seq    int
}

// SearchSession is the accumulated state of every search run for one SessionKey.
//
// Merge is the only way to change a session. Accessors return copies, so callers
// cannot reach into the stored results or visited set. A session is safe for
// concurrent use and merges are applied atomically.
type SearchSession struct {
	mu                   sync.RWMutex
	key                  SessionKey
	visited              map[string]struct{}
	results              map[string]resultEntry
	nextSeq              int
	lastUpdated          time.Time
	totalPagesConsidered int
}

// NewSearchSession creates an empty session for key.
func NewSearchSession(key SessionKey) *SearchSession {
	return &SearchSession{
		key:     key,
		visited: make(map[string]struct{}),
		results: make(map[string]resultEntry),
	}
}

// Key returns the session identity.
func (s *SearchSession) Key() SessionKey {
	return s.key
}

// Merge folds one crawl run into the session.
//
// Every URL in newVisited, and every result URL, joins the visited set. A result
// for a URL already stored replaces the earlier one but keeps its discovery
// position. The page counter grows only by URLs never seen before, so merging
// the same payload twice leaves the counter where the first merge put it.
func (s *SearchSession) Merge(newVisited []string, newResults []PageResult, at time.Time) MergeStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats MergeStats
	before := len(s.visited)

	for _, u := range newVisited {
		if u == "" {
			continue
		}
		s.visited[u] = struct{}{}
	}

	for i := range newResults {
		r := newResults[i]
		if r.URL == "" {
			continue
		}
		s.visited[r.URL] = struct{}{}

		if entry, ok := s.results[r.URL]; ok {
			entry.result = r.clone()
			s.results[r.URL] = entry
			stats.Replaced++
			continue
		}
		s.results[r.URL] = resultEntry{result: r.clone(), seq: s.nextSeq}
		s.nextSeq++
		stats.Inserted++
	}

	stats.NewURLs = len(s.visited) - before
	s.totalPagesConsidered += stats.NewURLs
	s.lastUpdated = at

	return stats
}

// HasVisited reports whether any run has visited at least one URL.
// A session that has visited URLs is resumed, never searched fresh.
func (s *SearchSession) HasVisited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visited) > 0
}

// IsVisited reports whether url was visited in a previous run.
func (s *SearchSession) IsVisited(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.visited[url]
	return ok
}

// VisitedURLs returns the visited set, sorted.
func (s *SearchSession) VisitedURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]string, 0, len(s.visited))
	for u := range s.visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// SkippedURLCount returns how many candidates were already visited.
// Duplicate candidates are counted once.
func (s *SearchSession) SkippedURLCount(candidates []string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(candidates))
	count := 0
	for _, u := range candidates {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if _, ok := s.visited[u]; ok {
			count++
		}
	}
	return count
}

// Results returns every stored result ordered by depth, then discovery order.
func (s *SearchSession) Results() []PageResult {
	s.mu.RLock()
	entries := make([]resultEntry, 0, len(s.results))
	for _, e := range s.results {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].result.Depth != entries[j].result.Depth {
			return entries[i].result.Depth < entries[j].result.Depth
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]PageResult, len(entries))
	for i := range entries {
		out[i] = entries[i].result.clone()
	}
	return out
}

// ResultsGroupedByDepth yields (depth, results) pairs with depths ascending.
// Results within a depth keep discovery order. Each iteration takes a fresh
// snapshot, so the sequence can be ranged over any number of times.
func (s *SearchSession) ResultsGroupedByDepth() iter.Seq2[int, []PageResult] {
	return func(yield func(int, []PageResult) bool) {
		results := s.Results()
		for start := 0; start < len(results); {
			depth := results[start].Depth
			end := start
			for end < len(results) && results[end].Depth == depth {
				end++
			}
			if !yield(depth, results[start:end:end]) {
				return
			}
			start = end
		}
	}
}

// ResultCount returns the number of stored results, including pages without matches.
func (s *SearchSession) ResultCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// MatchCount returns the number of stored results that have at least one match.
func (s *SearchSession) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.results {
		if e.result.HasMatches() {
			n++
		}
	}
	return n
}

// LastUpdated returns the time of the most recent merge.
func (s *SearchSession) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TotalPagesConsidered returns the number of distinct URLs visited across all runs.
func (s *SearchSession) TotalPagesConsidered() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPagesConsidered
}

// Summary returns the history view of the session.
func (s *SearchSession) Summary() SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := 0
	for _, e := range s.results {
		if e.result.HasMatches() {
			matched++
		}
	}

	return SessionSummary{
		Key:                  s.key,
		LastUpdated:          s.lastUpdated,
		TotalResults:         matched,
		TotalPagesConsidered: s.totalPagesConsidered,
	}
}

// SessionSnapshot is the persisted form of a SearchSession.
type SessionSnapshot struct {
	Key                  SessionKey
	VisitedURLs          []string
	Results              []PageResult // discovery order
	LastUpdated          time.Time
	TotalPagesConsidered int
}

// Snapshot returns a copy of the full session state.
func (s *SearchSession) Snapshot() SessionSnapshot {
	s.mu.RLock()
	entries := make([]resultEntry, 0, len(s.results))
	for _, e := range s.results {
		entries = append(entries, e)
	}
	snap := SessionSnapshot{
		Key:                  s.key,
		LastUpdated:          s.lastUpdated,
		TotalPagesConsidered: s.totalPagesConsidered,
	}
	s.mu.RUnlock()

	snap.VisitedURLs = s.VisitedURLs()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	snap.Results = make([]PageResult, len(entries))
	for i := range entries {
		snap.Results[i] = entries[i].result.clone()
	}
	return snap
}

// RestoreSession rebuilds a session from a snapshot.
// Result URLs missing from the visited list are added to it.
func RestoreSession(snap SessionSnapshot) *SearchSession {
	s := NewSearchSession(snap.Key)
	for _, u := range snap.VisitedURLs {
		if u != "" {
			s.visited[u] = struct{}{}
		}
	}
	for i := range snap.Results {
		r := snap.Results[i]
		if r.URL == "" {
			continue
		}
		s.visited[r.URL] = struct{}{}
		if entry, ok := s.results[r.URL]; ok {
			entry.result = r.clone()
			s.results[r.URL] = entry
			continue
		}
		s.results[r.URL] = resultEntry{result: r.clone(), seq: s.nextSeq}
		s.nextSeq++
	}
	s.lastUpdated = snap.LastUpdated
	s.totalPagesConsidered = snap.TotalPagesConsidered
	return s
}
