package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dealmatch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS buyers (
	id         TEXT PRIMARY KEY,
	profile    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sellers (
	id         TEXT PRIMARY KEY,
	profile    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS matches (
	id           TEXT PRIMARY KEY,
	buyer_id     TEXT NOT NULL REFERENCES buyers(id),
	seller_id    TEXT NOT NULL REFERENCES sellers(id),
	status       TEXT NOT NULL DEFAULT 'pending',
	score        INTEGER NOT NULL DEFAULT 0,
	insights     TEXT,
	current_step INTEGER NOT NULL DEFAULT 1,
	messages     TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
CREATE INDEX IF NOT EXISTS idx_matches_buyer_id ON matches(buyer_id);
CREATE INDEX IF NOT EXISTS idx_matches_seller_id ON matches(seller_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateBuyer(ctx context.Context, buyer *model.BuyerProfile) error {
	payload, err := json.Marshal(buyer)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal buyer")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO buyers (id, profile) VALUES (?, ?)`,
		buyer.ID, string(payload),
	)
	return eris.Wrapf(err, "sqlite: insert buyer %s", buyer.ID)
}

func (s *SQLiteStore) GetBuyer(ctx context.Context, id string) (*model.BuyerProfile, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM buyers WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: buyer %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get buyer %s", id)
	}

	var buyer model.BuyerProfile
	if err := json.Unmarshal([]byte(payload), &buyer); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal buyer %s", id)
	}
	return &buyer, nil
}

func (s *SQLiteStore) ListBuyers(ctx context.Context) ([]model.BuyerProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile FROM buyers ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list buyers")
	}
	defer rows.Close()

	var buyers []model.BuyerProfile
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan buyer")
		}
		var buyer model.BuyerProfile
		if err := json.Unmarshal([]byte(payload), &buyer); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal buyer")
		}
		buyers = append(buyers, buyer)
	}
	return buyers, eris.Wrap(rows.Err(), "sqlite: iterate buyers")
}

func (s *SQLiteStore) UpdateBuyer(ctx context.Context, buyer *model.BuyerProfile) error {
	payload, err := json.Marshal(buyer)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal buyer")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE buyers SET profile = ?, updated_at = ? WHERE id = ?`,
		string(payload), time.Now().UTC(), buyer.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update buyer %s", buyer.ID)
	}
	return checkRowsAffected(res, "buyer", buyer.ID)
}

func (s *SQLiteStore) CreateSeller(ctx context.Context, seller *model.SellerProfile) error {
	payload, err := json.Marshal(seller)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal seller")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sellers (id, profile) VALUES (?, ?)`,
		seller.ID, string(payload),
	)
	return eris.Wrapf(err, "sqlite: insert seller %s", seller.ID)
}

func (s *SQLiteStore) GetSeller(ctx context.Context, id string) (*model.SellerProfile, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM sellers WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: seller %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get seller %s", id)
	}

	var seller model.SellerProfile
	if err := json.Unmarshal([]byte(payload), &seller); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal seller %s", id)
	}
	return &seller, nil
}

func (s *SQLiteStore) ListSellers(ctx context.Context) ([]model.SellerProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile FROM sellers ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sellers")
	}
	defer rows.Close()

	var sellers []model.SellerProfile
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan seller")
		}
		var seller model.SellerProfile
		if err := json.Unmarshal([]byte(payload), &seller); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal seller")
		}
		sellers = append(sellers, seller)
	}
	return sellers, eris.Wrap(rows.Err(), "sqlite: iterate sellers")
}

func (s *SQLiteStore) UpdateSeller(ctx context.Context, seller *model.SellerProfile) error {
	payload, err := json.Marshal(seller)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal seller")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sellers SET profile = ?, updated_at = ? WHERE id = ?`,
		string(payload), time.Now().UTC(), seller.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update seller %s", seller.ID)
	}
	return checkRowsAffected(res, "seller", seller.ID)
}

func (s *SQLiteStore) CreateMatch(ctx context.Context, match *model.Match) error {
	insights, err := json.Marshal(match.Insights)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal insights")
	}
	messages, err := json.Marshal(match.Messages)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal messages")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (id, buyer_id, seller_id, status, score, insights, current_step, messages, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID, match.BuyerID, match.SellerID, string(match.Status), match.Score,
		string(insights), match.CurrentStep, string(messages),
		match.CreatedAt, match.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert match %s", match.ID)
}

func (s *SQLiteStore) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, buyer_id, seller_id, status, score, insights, current_step, messages, created_at, updated_at
		 FROM matches WHERE id = ?`, id,
	)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: match %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get match %s", id)
	}
	return m, nil
}

func (s *SQLiteStore) ListMatches(ctx context.Context, filter MatchFilter) ([]model.Match, error) {
	query := `SELECT id, buyer_id, seller_id, status, score, insights, current_step, messages, created_at, updated_at
		 FROM matches WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.BuyerID != "" {
		query += ` AND buyer_id = ?`
		args = append(args, filter.BuyerID)
	}
	if filter.SellerID != "" {
		query += ` AND seller_id = ?`
		args = append(args, filter.SellerID)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list matches")
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan match")
		}
		matches = append(matches, *m)
	}
	return matches, eris.Wrap(rows.Err(), "sqlite: iterate matches")
}

func (s *SQLiteStore) UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update match status %s", id)
	}
	return checkRowsAffected(res, "match", id)
}

func (s *SQLiteStore) UpdateMatchStep(ctx context.Context, id string, step int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET current_step = ?, updated_at = ? WHERE id = ?`,
		step, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update match step %s", id)
	}
	return checkRowsAffected(res, "match", id)
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, matchID string, msg model.Message) error {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	m.Messages = append(m.Messages, msg)

	messages, err := json.Marshal(m.Messages)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal messages")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET messages = ?, updated_at = ? WHERE id = ?`,
		string(messages), time.Now().UTC(), matchID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: append message %s", matchID)
	}
	return checkRowsAffected(res, "match", matchID)
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (*model.Match, error) {
	var (
		m         model.Match
		status    string
		insights  sql.NullString
		messages  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&m.ID, &m.BuyerID, &m.SellerID, &status, &m.Score,
		&insights, &m.CurrentStep, &messages, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.Status = model.MatchStatus(status)
	m.CreatedAt = createdAt
	m.UpdatedAt = updatedAt

	if insights.Valid && insights.String != "" {
		if err := json.Unmarshal([]byte(insights.String), &m.Insights); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal insights")
		}
	}
	if messages.Valid && messages.String != "" {
		if err := json.Unmarshal([]byte(messages.String), &m.Messages); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal messages")
		}
	}
	return &m, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
