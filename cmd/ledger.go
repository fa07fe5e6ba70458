package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stueygo/recon-cli/internal/ledger"
)

var ledgerInspectPath string

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Partner ledger utilities",
}

var ledgerInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Parse a ledger and report what was recognized",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := ledgerOptions()
		if err != nil {
			return err
		}

		records, err := ledger.ParseFile(ledgerInspectPath, opts)
		if err != nil {
			return err
		}

		var withCity, withPhone, withBonus, withOrders int
		for _, r := range records {
			if r.City != "" {
				withCity++
			}
			if r.PhoneLast4 != "" {
				withPhone++
			}
			if r.BonusAmount.IsPositive() {
				withBonus++
			}
			if r.OrdersCount > 0 {
				withOrders++
			}
		}

		fmt.Printf("records:     %d\n", len(records))
		fmt.Printf("with city:   %d\n", withCity)
		fmt.Printf("with phone:  %d\n", withPhone)
		fmt.Printf("with bonus:  %d\n", withBonus)
		fmt.Printf("with orders: %d\n", withOrders)
		return nil
	},
}

func init() {
	ledgerInspectCmd.Flags().StringVar(&ledgerInspectPath, "file", "", "path to ledger file (required)")
	_ = ledgerInspectCmd.MarkFlagRequired("file")
	ledgerCmd.AddCommand(ledgerInspectCmd)
	rootCmd.AddCommand(ledgerCmd)
}
