package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dealmatch/internal/format"
	"github.com/sells-group/dealmatch/internal/model"
	"github.com/sells-group/dealmatch/internal/store"
	"github.com/sells-group/dealmatch/internal/workflow"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Inspect and progress stored matches",
}

var matchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	RunE:  runMatchesList,
}

var matchesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one match with its workflow progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchesShow,
}

var matchesStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set a match status (pending, matched, in-negotiation, completed, rejected)",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatchesStatus,
}

var matchesAdvanceCmd = &cobra.Command{
	Use:   "advance <id>",
	Short: "Move a match to the next workflow step",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchesAdvance,
}

func init() {
	f := matchesListCmd.Flags()
	f.String("status", "", "filter by status")
	f.String("buyer", "", "filter by buyer ID")
	f.String("seller", "", "filter by seller ID")
	f.Int("limit", 0, "maximum number of rows")

	matchesCmd.AddCommand(matchesListCmd, matchesShowCmd, matchesStatusCmd, matchesAdvanceCmd)
	rootCmd.AddCommand(matchesCmd)
}

func runMatchesList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	status, _ := cmd.Flags().GetString("status")
	buyerID, _ := cmd.Flags().GetString("buyer")
	sellerID, _ := cmd.Flags().GetString("seller")
	limit, _ := cmd.Flags().GetInt("limit")

	matches, err := s.ListMatches(ctx, store.MatchFilter{
		Status:   model.MatchStatus(status),
		BuyerID:  buyerID,
		SellerID: sellerID,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	now := time.Now().UTC()
	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "Buyer", "Seller", "Status", "Score", "Step", "Updated")
	for _, m := range matches {
		completed, total := workflow.Progress(&m)
		table.Append([]string{
			m.ID, m.BuyerID, m.SellerID, string(m.Status),
			strconv.Itoa(m.Score),
			fmt.Sprintf("%d/%d", completed, total),
			format.RelativeTime(m.UpdatedAt, now),
		})
	}
	return table.Render()
}

func runMatchesShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	m, err := s.GetMatch(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Match:   %s\n", m.ID)
	fmt.Printf("Buyer:   %s\n", m.BuyerID)
	fmt.Printf("Seller:  %s\n", m.SellerID)
	fmt.Printf("Status:  %s\n", m.Status)
	fmt.Printf("Score:   %d / 100\n", m.Score)

	if len(m.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, line := range m.Insights {
			fmt.Printf("  - %s\n", line)
		}
	}

	fmt.Println("\nWorkflow:")
	for _, step := range workflow.Steps(m.CurrentStep) {
		marker := " "
		switch step.Status {
		case workflow.StatusCompleted:
			marker = "x"
		case workflow.StatusActive:
			marker = ">"
		}
		fmt.Printf("  [%s] %d. %-20s (%s)\n", marker, step.ID, step.Title, step.EstimatedDuration)
	}

	if len(m.Messages) > 0 {
		now := time.Now().UTC()
		fmt.Println("\nMessages:")
		for _, msg := range m.Messages {
			fmt.Printf("  %s (%s): %s\n",
				msg.SenderID, format.RelativeTime(msg.Timestamp, now),
				format.Truncate(msg.Content, 80))
		}
	}
	return nil
}

func runMatchesStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := model.MatchStatus(args[1])
	switch status {
	case model.MatchStatusPending, model.MatchStatusMatched, model.MatchStatusInNegotiation,
		model.MatchStatusCompleted, model.MatchStatusRejected:
	default:
		return eris.Errorf("matches: invalid status %q", args[1])
	}

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	if err := s.UpdateMatchStatus(ctx, args[0], status); err != nil {
		return err
	}
	fmt.Printf("Match %s is now %s\n", args[0], status)
	return nil
}

func runMatchesAdvance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	m, err := s.GetMatch(ctx, args[0])
	if err != nil {
		return err
	}

	if err := workflow.Advance(m); err != nil {
		return err
	}
	if err := s.UpdateMatchStep(ctx, m.ID, m.CurrentStep); err != nil {
		return err
	}
	if err := s.UpdateMatchStatus(ctx, m.ID, m.Status); err != nil {
		return err
	}

	completed, total := workflow.Progress(m)
	fmt.Printf("Match %s: step %d/%d, status %s\n", m.ID, completed, total, m.Status)
	if m.Status != model.MatchStatusCompleted {
		step, err := workflow.Lookup(m.CurrentStep)
		if err != nil {
			return err
		}
		fmt.Printf("Now at: %s (%s)\n", step.Title, step.EstimatedDuration)
	}
	return nil
}
