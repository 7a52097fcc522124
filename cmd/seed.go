package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dealmatch/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load starter profiles into the store",
	Long: `Load buyer and seller profiles into the configured store.

Without --file the built-in starter profiles are used. Against Postgres
the load goes through a bulk upsert, so re-running seed is idempotent;
against SQLite duplicate IDs fail.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("file", "", "YAML fixture file (default: built-in profiles)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fixtures := store.DefaultFixtures()
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		f, err := store.LoadFixtures(path)
		if err != nil {
			return err
		}
		fixtures = f
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	if pg, ok := s.(*store.PostgresStore); ok {
		if err := store.SeedPostgres(ctx, pg.Pool(), fixtures); err != nil {
			return err
		}
	} else {
		if err := store.Seed(ctx, s, fixtures); err != nil {
			return eris.Wrap(err, "seed: load fixtures")
		}
	}

	fmt.Printf("Seeded %d buyers and %d sellers\n", len(fixtures.Buyers), len(fixtures.Sellers))
	return nil
}
