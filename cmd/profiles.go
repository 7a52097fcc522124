package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dealmatch/internal/format"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and inspect buyer and seller profiles",
}

var profilesBuyersCmd = &cobra.Command{
	Use:   "buyers",
	Short: "List buyer profiles",
	RunE:  runProfilesBuyers,
}

var profilesSellersCmd = &cobra.Command{
	Use:   "sellers",
	Short: "List seller profiles",
	RunE:  runProfilesSellers,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one profile in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

func init() {
	profilesCmd.AddCommand(profilesBuyersCmd, profilesSellersCmd, profilesShowCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runProfilesBuyers(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	buyers, err := s.ListBuyers(ctx)
	if err != nil {
		return err
	}
	if len(buyers) == 0 {
		fmt.Println("No buyer profiles. Run 'dealmatch seed' to load starter data.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "Name", "Industry", "Budget", "Experience", "Size Pref", "Location")
	for _, b := range buyers {
		budget := format.CompactCurrency(b.InvestmentRange.Min) + " - " +
			format.CompactCurrency(b.InvestmentRange.Max)
		table.Append([]string{
			b.ID, b.Name, b.Industry, budget,
			format.Experience(b.Experience),
			string(b.PreferredBusinessSize),
			b.Location,
		})
	}
	return table.Render()
}

func runProfilesSellers(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	sellers, err := s.ListSellers(ctx)
	if err != nil {
		return err
	}
	if len(sellers) == 0 {
		fmt.Println("No seller profiles. Run 'dealmatch seed' to load starter data.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "Business", "Industry", "Revenue", "Asking", "Multiple", "Years", "Location")
	for _, sl := range sellers {
		table.Append([]string{
			sl.ID, sl.BusinessName, sl.Industry,
			format.CompactCurrency(sl.Revenue),
			format.CompactCurrency(sl.AskingPrice),
			format.ValuationMultiple(sl.AskingPrice, sl.Revenue),
			strconv.FormatFloat(sl.YearsInBusiness, 'f', -1, 64),
			sl.Location,
		})
	}
	return table.Render()
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	id := args[0]
	if b, err := s.GetBuyer(ctx, id); err == nil {
		fmt.Printf("Buyer:      %s\n", b.Name)
		fmt.Printf("Industry:   %s\n", b.Industry)
		fmt.Printf("Interested: %v\n", b.InterestedIndustries)
		fmt.Printf("Budget:     %s - %s\n",
			format.Currency(b.InvestmentRange.Min), format.Currency(b.InvestmentRange.Max))
		fmt.Printf("Experience: %s\n", format.Experience(b.Experience))
		fmt.Printf("Size pref:  %s\n", b.PreferredBusinessSize)
		fmt.Printf("Location:   %s\n", b.Location)
		if b.FundingSource != "" {
			fmt.Printf("Funding:    %s\n", format.FundingSource(b.FundingSource))
		}
		if b.Bio != "" {
			fmt.Printf("Bio:        %s\n", format.Truncate(b.Bio, 200))
		}
		return nil
	}

	if sl, err := s.GetSeller(ctx, id); err == nil {
		fmt.Printf("Business:   %s\n", sl.BusinessName)
		fmt.Printf("Industry:   %s\n", sl.Industry)
		fmt.Printf("Revenue:    %s (%s)\n", format.Currency(sl.Revenue), format.BusinessSize(sl.Revenue))
		fmt.Printf("Asking:     %s (%s)\n",
			format.Currency(sl.AskingPrice), format.ValuationMultiple(sl.AskingPrice, sl.Revenue))
		fmt.Printf("Margin:     %s\n", format.Percentage(sl.ProfitMargin))
		fmt.Printf("Years:      %s\n", strconv.FormatFloat(sl.YearsInBusiness, 'f', -1, 64))
		fmt.Printf("Employees:  %d\n", sl.Employees)
		fmt.Printf("Location:   %s\n", sl.Location)
		if sl.Description != "" {
			fmt.Printf("About:      %s\n", format.Truncate(sl.Description, 200))
		}
		return nil
	}

	return eris.Errorf("profiles: no profile with id %s", id)
}
