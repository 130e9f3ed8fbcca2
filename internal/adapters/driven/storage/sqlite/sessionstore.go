package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
//
// Every read rebuilds the session from its rows, so callers never share
// in-memory state through the store. Rows are only ever added or updated:
// a session loses neither visited URLs nor results.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// hrefMatchRow is the stored form of a domain.HrefMatch.
type hrefMatchRow struct {
	Text        string `json:"text"`
	Href        string `json:"href"`
	OriginalURL string `json:"original_url,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
}

// GetOrCreate returns the session for key, inserting an empty row if needed.
func (s *sessionStore) GetOrCreate(ctx context.Context, key domain.SessionKey) (*domain.SearchSession, error) {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, base_url, search_text)
		VALUES (?, ?, ?)
		ON CONFLICT(base_url, search_text) DO NOTHING
	`, uuid.New().String(), key.BaseURL, key.SearchText)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return s.Get(ctx, key)
}

// Get returns the session for key.
func (s *sessionStore) Get(ctx context.Context, key domain.SessionKey) (*domain.SearchSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, last_updated, total_pages_considered
		FROM sessions WHERE base_url = ? AND search_text = ?
	`, key.BaseURL, key.SearchText)

	var id string
	var lastUpdated int64
	var total int
	if err := row.Scan(&id, &lastUpdated, &total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return loadSession(ctx, s.store.db, id, key, lastUpdated, total)
}

// Save writes the session state in a single transaction.
func (s *sessionStore) Save(ctx context.Context, session *domain.SearchSession) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	snap := session.Snapshot()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// The stored counters never move backwards.
	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sessions (id, base_url, search_text, last_updated, total_pages_considered)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(base_url, search_text) DO UPDATE SET
			last_updated = MAX(sessions.last_updated, excluded.last_updated),
			total_pages_considered = MAX(sessions.total_pages_considered, excluded.total_pages_considered)
		RETURNING id
	`, uuid.New().String(), snap.Key.BaseURL, snap.Key.SearchText,
		toUnixNano(snap.LastUpdated), snap.TotalPagesConsidered).Scan(&id)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	visitedStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO visited_urls (session_id, url) VALUES (?, ?)
		ON CONFLICT(session_id, url) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing visited insert: %w", err)
	}
	defer visitedStmt.Close()

	for _, u := range snap.VisitedURLs {
		if _, err := visitedStmt.ExecContext(ctx, id, u); err != nil {
			return fmt.Errorf("saving visited url: %w", err)
		}
	}

	// Another writer may have added URLs this snapshot has not seen.
	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET total_pages_considered = MAX(
			total_pages_considered,
			(SELECT COUNT(*) FROM visited_urls WHERE session_id = ?)
		) WHERE id = ?
	`, id, id); err != nil {
		return fmt.Errorf("updating page count: %w", err)
	}

	resultStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO page_results
			(session_id, url, seq, title, depth, body_matches, head_matches, href_matches, visited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, url) DO UPDATE SET
			seq = excluded.seq,
			title = excluded.title,
			depth = excluded.depth,
			body_matches = excluded.body_matches,
			head_matches = excluded.head_matches,
			href_matches = excluded.href_matches,
			visited_at = excluded.visited_at
	`)
	if err != nil {
		return fmt.Errorf("preparing result upsert: %w", err)
	}
	defer resultStmt.Close()

	for seq, r := range snap.Results {
		body, head, hrefs, err := encodeMatches(r.Matches)
		if err != nil {
			return fmt.Errorf("encoding matches for %s: %w", r.URL, err)
		}
		if _, err := resultStmt.ExecContext(ctx,
			id, r.URL, seq, r.Title, r.Depth, body, head, hrefs, toUnixNano(r.VisitedAt),
		); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// List returns every session, most recently updated first.
func (s *sessionStore) List(ctx context.Context) ([]*domain.SearchSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, base_url, search_text, last_updated, total_pages_considered
		FROM sessions
		ORDER BY last_updated DESC, base_url, search_text
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}

	type header struct {
		id          string
		key         domain.SessionKey
		lastUpdated int64
		total       int
	}
	var headers []header
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.key.BaseURL, &h.key.SearchText, &h.lastUpdated, &h.total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	rows.Close()

	sessions := make([]*domain.SearchSession, 0, len(headers))
	for _, h := range headers {
		session, err := loadSession(ctx, s.store.db, h.id, h.key, h.lastUpdated, h.total)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// loadSession reads the visited URLs and results of one session.
func loadSession(
	ctx context.Context, q querier, id string, key domain.SessionKey, lastUpdated int64, total int,
) (*domain.SearchSession, error) {
	snap := domain.SessionSnapshot{
		Key:                  key,
		LastUpdated:          fromUnixNano(lastUpdated),
		TotalPagesConsidered: total,
	}

	rows, err := q.QueryContext(ctx, "SELECT url FROM visited_urls WHERE session_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying visited urls: %w", err)
	}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning visited url: %w", err)
		}
		snap.VisitedURLs = append(snap.VisitedURLs, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating visited urls: %w", err)
	}
	rows.Close()

	rows, err = q.QueryContext(ctx, `
		SELECT url, title, depth, body_matches, head_matches, href_matches, visited_at
		FROM page_results WHERE session_id = ?
		ORDER BY seq, url
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.PageResult
		var body, head, hrefs string
		var visitedAt int64
		if err := rows.Scan(&r.URL, &r.Title, &r.Depth, &body, &head, &hrefs, &visitedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if r.Matches, err = decodeMatches(body, head, hrefs); err != nil {
			return nil, fmt.Errorf("decoding matches for %s: %w", r.URL, err)
		}
		r.VisitedAt = fromUnixNano(visitedAt)
		snap.Results = append(snap.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return domain.RestoreSession(snap), nil
}

func encodeMatches(m domain.MatchRecord) (body, head, hrefs string, err error) {
	b, err := json.Marshal(m.BodyMatches)
	if err != nil {
		return "", "", "", err
	}
	h, err := json.Marshal(m.HeadMatches)
	if err != nil {
		return "", "", "", err
	}

	var rows []hrefMatchRow
	if m.HrefMatches != nil {
		rows = make([]hrefMatchRow, len(m.HrefMatches))
		for i, hm := range m.HrefMatches {
			rows[i] = hrefMatchRow{Text: hm.Text, Href: hm.Href, OriginalURL: hm.OriginalURL, PageURL: hm.PageURL}
		}
	}
	l, err := json.Marshal(rows)
	if err != nil {
		return "", "", "", err
	}
	return string(b), string(h), string(l), nil
}

func decodeMatches(body, head, hrefs string) (domain.MatchRecord, error) {
	var m domain.MatchRecord
	if err := json.Unmarshal([]byte(body), &m.BodyMatches); err != nil {
		return m, err
	}
	if err := json.Unmarshal([]byte(head), &m.HeadMatches); err != nil {
		return m, err
	}

	var rows []hrefMatchRow
	if err := json.Unmarshal([]byte(hrefs), &rows); err != nil {
		return m, err
	}
	if rows != nil {
		m.HrefMatches = make([]domain.HrefMatch, len(rows))
		for i, r := range rows {
			m.HrefMatches[i] = domain.HrefMatch{Text: r.Text, Href: r.Href, OriginalURL: r.OriginalURL, PageURL: r.PageURL}
		}
	}
	return m, nil
}

// toUnixNano stores the zero time as 0.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
