package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealmatch/internal/db"
	"github.com/sells-group/dealmatch/internal/model"
	"github.com/sells-group/dealmatch/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	pingCfg := resilience.DefaultRetryConfig()
	pingCfg.OnRetry = resilience.RetryLogger("postgres", "ping")
	err = resilience.Do(ctx, pingCfg, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for bulk seed operations.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS buyers (
	id         TEXT PRIMARY KEY,
	profile    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sellers (
	id         TEXT PRIMARY KEY,
	profile    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS matches (
	id           TEXT PRIMARY KEY,
	buyer_id     TEXT NOT NULL REFERENCES buyers(id),
	seller_id    TEXT NOT NULL REFERENCES sellers(id),
	status       TEXT NOT NULL DEFAULT 'pending',
	score        INTEGER NOT NULL DEFAULT 0,
	insights     JSONB,
	current_step INTEGER NOT NULL DEFAULT 1,
	messages     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
CREATE INDEX IF NOT EXISTS idx_matches_buyer_id ON matches(buyer_id);
CREATE INDEX IF NOT EXISTS idx_matches_seller_id ON matches(seller_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateBuyer(ctx context.Context, buyer *model.BuyerProfile) error {
	payload, err := json.Marshal(buyer)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal buyer")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO buyers (id, profile) VALUES ($1, $2)`,
		buyer.ID, payload,
	)
	return eris.Wrapf(err, "postgres: insert buyer %s", buyer.ID)
}

func (s *PostgresStore) GetBuyer(ctx context.Context, id string) (*model.BuyerProfile, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM buyers WHERE id = $1`, id,
	).Scan(&payload)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: buyer %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get buyer %s", id)
	}

	var buyer model.BuyerProfile
	if err := json.Unmarshal(payload, &buyer); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal buyer %s", id)
	}
	return &buyer, nil
}

func (s *PostgresStore) ListBuyers(ctx context.Context) ([]model.BuyerProfile, error) {
	rows, err := s.pool.Query(ctx, `SELECT profile FROM buyers ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list buyers")
	}
	defer rows.Close()

	var buyers []model.BuyerProfile
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan buyer")
		}
		var buyer model.BuyerProfile
		if err := json.Unmarshal(payload, &buyer); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal buyer")
		}
		buyers = append(buyers, buyer)
	}
	return buyers, eris.Wrap(rows.Err(), "postgres: iterate buyers")
}

func (s *PostgresStore) UpdateBuyer(ctx context.Context, buyer *model.BuyerProfile) error {
	payload, err := json.Marshal(buyer)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal buyer")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE buyers SET profile = $1, updated_at = now() WHERE id = $2`,
		payload, buyer.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update buyer %s", buyer.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: buyer %s not found", buyer.ID)
	}
	return nil
}

func (s *PostgresStore) CreateSeller(ctx context.Context, seller *model.SellerProfile) error {
	payload, err := json.Marshal(seller)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal seller")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sellers (id, profile) VALUES ($1, $2)`,
		seller.ID, payload,
	)
	return eris.Wrapf(err, "postgres: insert seller %s", seller.ID)
}

func (s *PostgresStore) GetSeller(ctx context.Context, id string) (*model.SellerProfile, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM sellers WHERE id = $1`, id,
	).Scan(&payload)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: seller %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get seller %s", id)
	}

	var seller model.SellerProfile
	if err := json.Unmarshal(payload, &seller); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal seller %s", id)
	}
	return &seller, nil
}

func (s *PostgresStore) ListSellers(ctx context.Context) ([]model.SellerProfile, error) {
	rows, err := s.pool.Query(ctx, `SELECT profile FROM sellers ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sellers")
	}
	defer rows.Close()

	var sellers []model.SellerProfile
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan seller")
		}
		var seller model.SellerProfile
		if err := json.Unmarshal(payload, &seller); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal seller")
		}
		sellers = append(sellers, seller)
	}
	return sellers, eris.Wrap(rows.Err(), "postgres: iterate sellers")
}

func (s *PostgresStore) UpdateSeller(ctx context.Context, seller *model.SellerProfile) error {
	payload, err := json.Marshal(seller)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal seller")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sellers SET profile = $1, updated_at = now() WHERE id = $2`,
		payload, seller.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update seller %s", seller.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: seller %s not found", seller.ID)
	}
	return nil
}

func (s *PostgresStore) CreateMatch(ctx context.Context, match *model.Match) error {
	insights, err := json.Marshal(match.Insights)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal insights")
	}
	messages, err := json.Marshal(match.Messages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal messages")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO matches (id, buyer_id, seller_id, status, score, insights, current_step, messages, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		match.ID, match.BuyerID, match.SellerID, string(match.Status), match.Score,
		insights, match.CurrentStep, messages, match.CreatedAt, match.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert match %s", match.ID)
}

func (s *PostgresStore) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, buyer_id, seller_id, status, score, insights, current_step, messages, created_at, updated_at
		 FROM matches WHERE id = $1`, id,
	)
	m, err := scanPgMatch(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: match %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get match %s", id)
	}
	return m, nil
}

func (s *PostgresStore) ListMatches(ctx context.Context, filter MatchFilter) ([]model.Match, error) {
	query := `SELECT id, buyer_id, seller_id, status, score, insights, current_step, messages, created_at, updated_at
		 FROM matches WHERE 1=1`
	var args []any
	argNum := 1

	if filter.Status != "" {
		query += ` AND status = $` + strconv.Itoa(argNum)
		args = append(args, string(filter.Status))
		argNum++
	}
	if filter.BuyerID != "" {
		query += ` AND buyer_id = $` + strconv.Itoa(argNum)
		args = append(args, filter.BuyerID)
		argNum++
	}
	if filter.SellerID != "" {
		query += ` AND seller_id = $` + strconv.Itoa(argNum)
		args = append(args, filter.SellerID)
		argNum++
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list matches")
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanPgMatch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan match")
		}
		matches = append(matches, *m)
	}
	return matches, eris.Wrap(rows.Err(), "postgres: iterate matches")
}

func (s *PostgresStore) UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update match status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: match %s not found", id)
	}
	return nil
}

func (s *PostgresStore) UpdateMatchStep(ctx context.Context, id string, step int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET current_step = $1, updated_at = now() WHERE id = $2`,
		step, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update match step %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: match %s not found", id)
	}
	return nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, matchID string, msg model.Message) error {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	m.Messages = append(m.Messages, msg)

	messages, err := json.Marshal(m.Messages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal messages")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET messages = $1, updated_at = now() WHERE id = $2`,
		messages, matchID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: append message %s", matchID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: match %s not found", matchID)
	}
	return nil
}

func scanPgMatch(row pgx.Row) (*model.Match, error) {
	var (
		m        model.Match
		status   string
		insights []byte
		messages []byte
	)
	err := row.Scan(&m.ID, &m.BuyerID, &m.SellerID, &status, &m.Score,
		&insights, &m.CurrentStep, &messages, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	m.Status = model.MatchStatus(status)
	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &m.Insights); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal insights")
		}
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &m.Messages); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal messages")
		}
	}
	return &m, nil
}
