package proposal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/hvacpro/proposals/internal/pricing"
)

var (
	// ErrNotFound is returned when a proposal does not exist.
	ErrNotFound = errors.New("proposal: not found")
	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("proposal: invalid id")
)

// Fixed width so that timestamps sort lexically.
const timeLayout = "2006-01-02 15:04:05.000000"

// Store persists proposals in SQLite. State and totals are stored as JSON snapshots.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore returns a Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create stores a new proposal under a fresh id.
func (s *Store) Create(ctx context.Context, title string, state State, totals pricing.Totals) (Proposal, error) {
	now := s.now().UTC().Truncate(time.Microsecond)
	p := Proposal{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		State:     state,
		Totals:    totals,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.upsert(ctx, p); err != nil {
		return Proposal{}, err
	}
	return p, nil
}

// ValidateID checks that id is a proposal id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Save writes p, replacing any stored version. The last write wins.
func (s *Store) Save(ctx context.Context, p Proposal) error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.upsert(ctx, p)
}

func (s *Store) upsert(ctx context.Context, p Proposal) error {
	stateJSON, err := json.Marshal(p.State)
	if err != nil {
		return fmt.Errorf("encode proposal state: %w", err)
	}
	totalsJSON, err := json.Marshal(p.Totals)
	if err != nil {
		return fmt.Errorf("encode proposal totals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, title, customer_name, state_json, totals_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			customer_name = excluded.customer_name,
			state_json = excluded.state_json,
			totals_json = excluded.totals_json,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, p.State.Customer.Name, string(stateJSON), string(totalsJSON),
		p.CreatedAt.UTC().Format(timeLayout), p.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert proposal %s: %w", p.ID, err)
	}
	return nil
}

// Get returns the proposal with id.
func (s *Store) Get(ctx context.Context, id string) (Proposal, error) {
	if err := ValidateID(id); err != nil {
		return Proposal{}, err
	}

	var (
		p                     Proposal
		stateJSON, totalsJSON string
		createdAt, updatedAt  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, state_json, totals_json, created_at, updated_at
		FROM proposals
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &stateJSON, &totalsJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Proposal{}, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Proposal{}, fmt.Errorf("query proposal: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &p.State); err != nil {
		return Proposal{}, fmt.Errorf("decode proposal state: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &p.Totals); err != nil {
		return Proposal{}, fmt.Errorf("decode proposal totals: %w", err)
	}
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Proposal{}, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return Proposal{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return p, nil
}

// List returns proposals whose title or customer name contains query, most recently updated first.
// An empty query lists everything.
func (s *Store) List(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, customer_name, state_json, totals_json, updated_at
		FROM proposals
		WHERE (? = '' OR title LIKE ? OR customer_name LIKE ?)
		ORDER BY updated_at DESC, created_at DESC, id
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var (
			item       ListItem
			state      State
			stateJSON  string
			totalsJSON string
			updatedAt  string
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.CustomerName, &stateJSON, &totalsJSON, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return nil, fmt.Errorf("decode proposal state: %w", err)
		}
		item.Selections = state.Selections
		item.GrandTotal = grandTotalFromJSON(totalsJSON)
		if item.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return items, nil
}

func grandTotalFromJSON(totalsJSON string) float64 {
	var totals struct {
		GrandTotal float64 `json:"grand_total"`
	}
	if err := json.Unmarshal([]byte(totalsJSON), &totals); err != nil {
		return 0
	}
	return totals.GrandTotal
}
