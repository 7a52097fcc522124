package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `buyers:
  - id: buyer-1
    name: Test Buyer
    industry: Technology
    interested_industries: [Technology]
    investment_range:
      min: 100000
      max: 500000
    experience: first-time
    preferred_business_size: small
    location: Austin, TX
sellers:
  - id: seller-1
    business_name: Test Seller Co
    industry: Technology
    revenue: 300000
    asking_price: 450000
    location: Austin, TX
    years_in_business: 4
    employees: 5
    profit_margin: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := LoadFixtures(path)
	require.NoError(t, err)
	require.Len(t, f.Buyers, 1)
	require.Len(t, f.Sellers, 1)
	assert.Equal(t, "Test Buyer", f.Buyers[0].Name)
	assert.Equal(t, 100_000.0, f.Buyers[0].InvestmentRange.Min)
	assert.Equal(t, "Test Seller Co", f.Sellers[0].BusinessName)
	assert.Equal(t, 5, f.Sellers[0].Employees)
}

func TestLoadFixturesMissingFile(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSeedSQLite(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s, DefaultFixtures()))

	buyers, err := s.ListBuyers(ctx)
	require.NoError(t, err)
	assert.Len(t, buyers, 2)

	sellers, err := s.ListSellers(ctx)
	require.NoError(t, err)
	assert.Len(t, sellers, 2)

	got, err := s.GetSeller(ctx, "seller-techcorp")
	require.NoError(t, err)
	assert.Equal(t, "TechCorp Solutions", got.BusinessName)
}

// expectBulkUpsert sets up pgxmock expectations for one db.BulkUpsert call:
// Begin -> CREATE TEMP TABLE -> CopyFrom -> INSERT ON CONFLICT -> Commit.
func expectBulkUpsert(m pgxmock.PgxPoolIface, table string, n int64) {
	m.ExpectBegin()
	m.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_" + table}, []string{"id", "profile"}).WillReturnResult(n)
	m.ExpectExec("INSERT INTO").WillReturnResult(pgxmock.NewResult("INSERT", n))
	m.ExpectCommit()
}

func TestSeedPostgresUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	f := DefaultFixtures()
	expectBulkUpsert(mock, "buyers", int64(len(f.Buyers)))
	expectBulkUpsert(mock, "sellers", int64(len(f.Sellers)))

	require.NoError(t, SeedPostgres(context.Background(), mock, f))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Re-seeding takes the same ON CONFLICT path, so it succeeds against
	// rows that already exist.
	expectBulkUpsert(mock, "buyers", int64(len(f.Buyers)))
	expectBulkUpsert(mock, "sellers", int64(len(f.Sellers)))

	require.NoError(t, SeedPostgres(context.Background(), mock, f))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDuplicateFails(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s, DefaultFixtures()))
	err := Seed(ctx, s, DefaultFixtures())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "seed buyer")
}
