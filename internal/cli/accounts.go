//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/resolver"
	"github.com/pgEdge/pgedge-brokeradmin/internal/service"
)

// resolveScanLimit bounds the CDS records and users loaded to resolve rows.
const resolveScanLimit = 1000

var (
	accountsClientCode string
	accountsCDSID      string
	accountsUserID     string
	accountsType       string
	accountsStatus     string
	accountsMinCapital string
	accountsMaxCapital string
	accountsLimit      int
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List stock accounts with their CDS and owner",
	Long: `List stock accounts, newest first, resolving each account's CDS name
and owner email. Flags narrow the list; capital bounds are inclusive.

Example:
  pgedge-brokeradmin accounts --status ACTIVE --min-capital 10000
  pgedge-brokeradmin accounts --user-id 01J... --limit 5`,
	RunE: runAccounts,
}

func init() {
	accountsCmd.Flags().StringVar(&accountsClientCode, "client-code", "", "exact client code")
	accountsCmd.Flags().StringVar(&accountsCDSID, "cds-id", "", "CDS record ID")
	accountsCmd.Flags().StringVar(&accountsUserID, "user-id", "", "owner's directory user ID")
	accountsCmd.Flags().StringVar(&accountsType, "type", "",
		"account type (BASIC, PREMIUM, BUSINESS, INVESTOR)")
	accountsCmd.Flags().StringVar(&accountsStatus, "status", "",
		"account status (ACTIVE, INACTIVE, PENDING, CLOSED)")
	accountsCmd.Flags().StringVar(&accountsMinCapital, "min-capital", "", "minimum capital")
	accountsCmd.Flags().StringVar(&accountsMaxCapital, "max-capital", "", "maximum capital")
	accountsCmd.Flags().IntVar(&accountsLimit, "limit", 0, "maximum rows (default: 20)")
}

// accountFilterFromFlags builds a filter from the flags the user set.
func accountFilterFromFlags(cmd *cobra.Command) (domain.AccountFilter, bool, error) {
	f := domain.AccountFilter{Limit: accountsLimit}
	flags := cmd.Flags()
	set := false

	str := func(name, value string) *string {
		if !flags.Changed(name) {
			return nil
		}
		set = true
		return &value
	}
	dec := func(name, value string) (*decimal.Decimal, error) {
		if !flags.Changed(name) {
			return nil, nil
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", name, err)
		}
		set = true
		return &d, nil
	}

	f.ClientCode = str("client-code", accountsClientCode)
	f.CDSID = str("cds-id", accountsCDSID)
	f.UserID = str("user-id", accountsUserID)
	if s := str("type", accountsType); s != nil {
		t := domain.AccountType(*s)
		f.Type = &t
	}
	if s := str("status", accountsStatus); s != nil {
		st := domain.AccountStatus(*s)
		f.Status = &st
	}

	var err error
	if f.MinCapital, err = dec("min-capital", accountsMinCapital); err != nil {
		return f, false, err
	}
	if f.MaxCapital, err = dec("max-capital", accountsMaxCapital); err != nil {
		return f, false, err
	}
	return f, set, nil
}

func runAccounts(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f, filtered, err := accountFilterFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := service.New(service.Config{Store: b.store, Directory: b.directory})

	var accounts []domain.StockAccount
	if filtered {
		accounts, err = svc.FilterAccounts(ctx, f)
	} else {
		accounts, err = svc.ListAccounts(ctx, f.Limit)
	}
	if err != nil {
		return err
	}

	// Rows still print when lookups fail; names then read "Loading...".
	cds, err := svc.ListCDS(ctx, resolveScanLimit)
	if err != nil {
		cds = nil
	}
	users, err := svc.ListUsers(ctx, resolveScanLimit)
	if err != nil {
		users = nil
	}

	printAccounts(cmd, resolver.Accounts(accounts, cds, users))
	return nil
}

func printAccounts(cmd *cobra.Command, rows []resolver.AccountRow) {
	if len(rows) == 0 {
		cmd.Println("No accounts found.")
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENT CODE\tCDS NO\tCDS\tOWNER\tTYPE\tSTATUS\tCAPITAL\tESTIMATED TOTAL")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ClientCode, r.CDSNo, r.CDSName, r.UserEmail, r.Type, r.Status,
			r.Capital.StringFixed(2), r.EstimatedTotal.StringFixed(2))
	}
	w.Flush()
}
