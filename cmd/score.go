package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealmatch/internal/config"
	"github.com/sells-group/dealmatch/internal/format"
	"github.com/sells-group/dealmatch/internal/match"
	"github.com/sells-group/dealmatch/internal/model"
	"github.com/sells-group/dealmatch/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score compatibility between buyers and sellers",
	Long: `Score one profile against candidates on the other side of the market.

Candidates are pre-filtered by budget, industry interest and size
preference, scored 0-100 across industry, price, size, location and
financial health, then ranked. Insights explain the strongest signals.

Examples:
  # Rank all sellers for a buyer
  score --buyer buyer-john-smith

  # Rank all buyers for a seller, keep scores of 60+
  score --seller seller-techcorp --min-score 60

  # Score a single pairing with insights
  score --buyer buyer-john-smith --against seller-techcorp

  # Export top 20 to CSV and persist match rows
  score --buyer buyer-john-smith --limit 20 --format csv --output ranks.csv --save`,
	RunE: runScoreCmd,
}

func init() {
	f := scoreCmd.Flags()
	f.String("buyer", "", "buyer profile ID to score for")
	f.String("seller", "", "seller profile ID to score for")
	f.String("against", "", "score a single candidate by ID")
	f.Float64("min-score", 0, "minimum score threshold (overrides config)")
	f.Int("limit", 0, "maximum number of results (overrides config)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or csv")
	f.Bool("save", false, "persist results as pending matches")
	rootCmd.AddCommand(scoreCmd)
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buyerID, _ := cmd.Flags().GetString("buyer")
	sellerID, _ := cmd.Flags().GetString("seller")
	if (buyerID == "") == (sellerID == "") {
		return eris.New("score: exactly one of --buyer or --seller is required")
	}
	outFormat, _ := cmd.Flags().GetString("format")
	if outFormat != "table" && outFormat != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", outFormat)
	}

	matchCfg := applyMatchOverrides(cmd, cfg.Match)
	if err := match.ValidateConfig(matchCfg); err != nil {
		return err
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	requester, err := loadRequester(ctx, s, buyerID, sellerID)
	if err != nil {
		return err
	}

	scorer := match.NewScorer(matchCfg)

	// Single-pairing mode.
	if against, _ := cmd.Flags().GetString("against"); against != "" {
		return scorePairing(ctx, cmd, s, scorer, requester, against)
	}

	candidates, err := loadCandidates(ctx, s, requester.Role)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "score"))
	log.Info("ranking candidates",
		zap.String("requester", requester.ID()),
		zap.Int("candidates", len(candidates)),
		zap.Float64("min_score", matchCfg.MinScore),
	)

	ranked := scorer.Rank(requester, candidates)

	outputPath, _ := cmd.Flags().GetString("output")
	if err := outputRanked(requester, ranked, outFormat, outputPath); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save && len(ranked) > 0 {
		n, err := saveMatches(ctx, s, scorer, requester, ranked)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d matches\n", n)
	}
	return nil
}

// loadRequester fetches the profile being scored for and wraps it in the
// tagged union.
func loadRequester(ctx context.Context, s store.Store, buyerID, sellerID string) (model.Profile, error) {
	if buyerID != "" {
		b, err := s.GetBuyer(ctx, buyerID)
		if err != nil {
			return model.Profile{}, err
		}
		return model.BuyerRecord(b), nil
	}
	sl, err := s.GetSeller(ctx, sellerID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.SellerRecord(sl), nil
}

// loadCandidates lists every profile on the opposite side of the market.
func loadCandidates(ctx context.Context, s store.Store, requesterRole model.Role) ([]model.Profile, error) {
	if requesterRole == model.RoleBuyer {
		sellers, err := s.ListSellers(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]model.Profile, len(sellers))
		for i := range sellers {
			out[i] = model.SellerRecord(&sellers[i])
		}
		return out, nil
	}

	buyers, err := s.ListBuyers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Profile, len(buyers))
	for i := range buyers {
		out[i] = model.BuyerRecord(&buyers[i])
	}
	return out, nil
}

func scorePairing(ctx context.Context, cmd *cobra.Command, s store.Store, scorer *match.Scorer, requester model.Profile, againstID string) error {
	var buyer *model.BuyerProfile
	var seller *model.SellerProfile

	if requester.Role == model.RoleBuyer {
		buyer = requester.Buyer
		sl, err := s.GetSeller(ctx, againstID)
		if err != nil {
			return err
		}
		seller = sl
	} else {
		seller = requester.Seller
		b, err := s.GetBuyer(ctx, againstID)
		if err != nil {
			return err
		}
		buyer = b
	}

	score := scorer.Score(buyer, seller)
	fmt.Printf("Buyer:   %s\n", buyer.Name)
	fmt.Printf("Seller:  %s\n", seller.BusinessName)
	fmt.Printf("Score:   %d / 100\n", score)

	components := scorer.Components(buyer, seller)
	fmt.Println("\nComponents:")
	for _, name := range []string{"industry", "price", "size", "location", "financial"} {
		fmt.Printf("  %-12s %.1f\n", name, components[name])
	}

	insights := match.Insights(buyer, seller)
	if len(insights) > 0 {
		fmt.Println("\nInsights:")
		for _, line := range insights {
			fmt.Printf("  - %s\n", line)
		}
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		ranked := []match.Scored{{Profile: candidateOf(requester, buyer, seller), Score: score}}
		if _, err := saveMatches(ctx, s, scorer, requester, ranked); err != nil {
			return err
		}
		fmt.Println("\nMatch saved")
	}
	return nil
}

// candidateOf returns the non-requester side as a tagged profile.
func candidateOf(requester model.Profile, buyer *model.BuyerProfile, seller *model.SellerProfile) model.Profile {
	if requester.Role == model.RoleBuyer {
		return model.SellerRecord(seller)
	}
	return model.BuyerRecord(buyer)
}

// saveMatches persists ranked pairs as pending matches with score and
// insight snapshots.
func saveMatches(ctx context.Context, s store.Store, scorer *match.Scorer, requester model.Profile, ranked []match.Scored) (int, error) {
	now := time.Now().UTC()
	for _, r := range ranked {
		var buyer *model.BuyerProfile
		var seller *model.SellerProfile
		if requester.Role == model.RoleBuyer {
			buyer, seller = requester.Buyer, r.Profile.Seller
		} else {
			buyer, seller = r.Profile.Buyer, requester.Seller
		}

		m := &model.Match{
			ID:          uuid.NewString(),
			BuyerID:     buyer.ID,
			SellerID:    seller.ID,
			Status:      model.MatchStatusPending,
			Score:       r.Score,
			Insights:    match.Insights(buyer, seller),
			CurrentStep: 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.CreateMatch(ctx, m); err != nil {
			return 0, eris.Wrapf(err, "score: save match %s/%s", buyer.ID, seller.ID)
		}
	}
	return len(ranked), nil
}

func applyMatchOverrides(cmd *cobra.Command, base config.MatchConfig) config.MatchConfig {
	c := base
	if v, _ := cmd.Flags().GetFloat64("min-score"); v > 0 {
		c.MinScore = v
	}
	if v, _ := cmd.Flags().GetInt("limit"); v > 0 {
		c.MaxMatches = v
	}
	return c
}

func outputRanked(requester model.Profile, ranked []match.Scored, outFormat, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	if len(ranked) == 0 {
		fmt.Fprintln(w, "No compatible candidates.")
		return nil
	}

	switch outFormat {
	case "csv":
		return writeRankedCSV(w, ranked)
	default:
		return writeRankedTable(w, requester, ranked)
	}
}

func writeRankedCSV(w *os.File, ranked []match.Scored) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"rank", "id", "name", "industry", "location", "score"}); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}
	for i, r := range ranked {
		industry, location := candidateDetails(r.Profile)
		row := []string{
			strconv.Itoa(i + 1),
			r.Profile.ID(),
			r.Profile.DisplayName(),
			industry,
			location,
			strconv.Itoa(r.Score),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeRankedTable(w *os.File, requester model.Profile, ranked []match.Scored) error {
	fmt.Fprintf(w, "Candidates for %s (%s):\n\n", requester.DisplayName(), requester.Role)

	table := tablewriter.NewTable(w)
	if requester.Role == model.RoleBuyer {
		table.Header("Rank", "Business", "Industry", "Asking", "Location", "Score")
		for i, r := range ranked {
			sl := r.Profile.Seller
			table.Append([]string{
				strconv.Itoa(i + 1), sl.BusinessName, sl.Industry,
				format.CompactCurrency(sl.AskingPrice), sl.Location,
				strconv.Itoa(r.Score),
			})
		}
	} else {
		table.Header("Rank", "Buyer", "Industry", "Budget", "Location", "Score")
		for i, r := range ranked {
			b := r.Profile.Buyer
			budget := format.CompactCurrency(b.InvestmentRange.Min) + " - " +
				format.CompactCurrency(b.InvestmentRange.Max)
			table.Append([]string{
				strconv.Itoa(i + 1), b.Name, b.Industry, budget, b.Location,
				strconv.Itoa(r.Score),
			})
		}
	}
	return table.Render()
}

func candidateDetails(p model.Profile) (industry, location string) {
	switch p.Role {
	case model.RoleBuyer:
		return p.Buyer.Industry, p.Buyer.Location
	case model.RoleSeller:
		return p.Seller.Industry, p.Seller.Location
	}
	return "", ""
}
