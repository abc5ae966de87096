package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/app"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/display"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/google/subcommands"
)

// cliEnv is shared by every command: where to write and how to open the app.
type cliEnv struct {
	configPath string
	out        io.Writer
	open       func(configPath string) (*app.App, error)
}

func openApp(configPath string) (*app.App, error) {
	return app.NewApp(configPath)
}

func commands(env *cliEnv) []subcommands.Command {
	return []subcommands.Command{
		&importCmd{env: env},
		&transactionsCmd{env: env},
		&balanceCmd{env: env},
		&dashboardCmd{env: env},
		&balanceSheetCmd{env: env},
		&portfolioCmd{env: env},
	}
}

// run opens the app, runs fn and reports any error on stderr.
func (e *cliEnv) run(ctx context.Context, fn func(ctx context.Context, a *app.App) error) subcommands.ExitStatus {
	a, err := e.open(e.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// emit writes v as indented JSON when asJSON is set, otherwise the markdown from render.
func (e *cliEnv) emit(ctx context.Context, a *app.App, asJSON bool, v interface{}, render func(*display.Formatter) string) error {
	if asJSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := io.WriteString(e.out, render(a.Formatter(ctx)))
	return err
}

// parseDateFlag parses an optional date flag value. Empty means unset.
func parseDateFlag(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, ok := common.ParseTimestamp(value)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid -%s date %q, expected YYYY-MM-DD", name, value)
	}
	return common.TruncateDay(t), nil
}

// --- import ---

type importCmd struct {
	env *cliEnv
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import records from a JSON export" }
func (*importCmd) Usage() string {
	return `tally import <file.json>

  Creates every document in a JSON object keyed by collection name
  (accounts, income, expenses, investments, loans, loan_payments).
  Unknown collections are skipped.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "import requires exactly one file argument")
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(ctx context.Context, a *app.App) error {
		counts, err := app.ImportRecordsFromFile(ctx, a.RecordService, a.Logger, f.Arg(0))
		if err != nil {
			return err
		}
		names := make([]string, 0, len(counts))
		for col := range counts {
			names = append(names, string(col))
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(c.env.out, "%s: %d\n", name, counts[models.Collection(name)])
		}
		return nil
	})
}

// --- transactions ---

type transactionsCmd struct {
	env     *cliEnv
	from    string
	to      string
	account string
	json    bool
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the derived ledger" }
func (*transactionsCmd) Usage() string {
	return `tally transactions [-from <date>] [-to <date>] [-account <id>] [-json]

  Derives every ledger entry from the stored records, newest first.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "window start date (inclusive)")
	f.StringVar(&c.to, "to", "", "window end date (inclusive)")
	f.StringVar(&c.account, "account", "", "only entries for this account id")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := parseDateFlag("from", c.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	to, err := parseDateFlag("to", c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(ctx context.Context, a *app.App) error {
		txs, err := a.LedgerService.DeriveTransactions(ctx, models.LedgerQuery{
			DateWindow: models.DateWindow{From: from, To: to},
			AccountID:  c.account,
		})
		if err != nil {
			return err
		}
		return c.env.emit(ctx, a, c.json, txs, func(f *display.Formatter) string { return f.Transactions(txs) })
	})
}

// --- balance ---

type balanceCmd struct {
	env  *cliEnv
	asOf string
	json bool
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show account balances" }
func (*balanceCmd) Usage() string {
	return `tally balance [-as-of <date>] [-json] [account-id]

  Shows the balance of one account, or of every account when no id is given.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "as-of", "", "balance date (defaults to today)")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDateFlag("as-of", c.asOf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(ctx context.Context, a *app.App) error {
		if f.NArg() > 0 {
			b, err := a.ReportService.AccountBalance(ctx, f.Arg(0), asOf)
			if err != nil {
				return err
			}
			return c.env.emit(ctx, a, c.json, b, func(fm *display.Formatter) string {
				return fm.Balances([]models.AccountBalance{*b})
			})
		}
		balances, err := a.ReportService.AccountBalances(ctx, asOf)
		if err != nil {
			return err
		}
		return c.env.emit(ctx, a, c.json, balances, func(fm *display.Formatter) string { return fm.Balances(balances) })
	})
}

// --- dashboard ---

type dashboardCmd struct {
	env  *cliEnv
	from string
	to   string
	json bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show headline totals" }
func (*dashboardCmd) Usage() string {
	return `tally dashboard [-from <date>] [-to <date>] [-json]

  Total invested, income, expenses, liabilities, net worth and net P&L.
  Income and expenses respect the window; the rest are all-time.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "window start date (inclusive)")
	f.StringVar(&c.to, "to", "", "window end date (inclusive)")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := parseDateFlag("from", c.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	to, err := parseDateFlag("to", c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(ctx context.Context, a *app.App) error {
		d, err := a.ReportService.DashboardTotals(ctx, models.DateWindow{From: from, To: to})
		if err != nil {
			return err
		}
		return c.env.emit(ctx, a, c.json, d, func(f *display.Formatter) string { return f.Dashboard(d) })
	})
}

// --- balance-sheet ---

type balanceSheetCmd struct {
	env  *cliEnv
	asOf string
	from string
	json bool
}

func (*balanceSheetCmd) Name() string     { return "balance-sheet" }
func (*balanceSheetCmd) Synopsis() string { return "show the balance sheet with income and cash-flow statements" }
func (*balanceSheetCmd) Usage() string {
	return `tally balance-sheet [-as-of <date>] [-from <date>] [-json]
`
}

func (c *balanceSheetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "as-of", "", "balance sheet date (defaults to today)")
	f.StringVar(&c.from, "from", "", "statement window start (defaults to all history)")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *balanceSheetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDateFlag("as-of", c.asOf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	from, err := parseDateFlag("from", c.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(ctx context.Context, a *app.App) error {
		sheet, err := a.ReportService.BalanceSheet(ctx, asOf, from)
		if err != nil {
			return err
		}
		return c.env.emit(ctx, a, c.json, sheet, func(f *display.Formatter) string { return f.BalanceSheet(sheet) })
	})
}

// --- portfolio ---

type portfolioCmd struct {
	env   *cliEnv
	asOf  string
	chart string
	json  bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show allocation, P&L and upcoming maturities" }
func (*portfolioCmd) Usage() string {
	return `tally portfolio [-as-of <date>] [-chart <file.png>] [-json]

  With -chart, also writes the allocation pie chart as PNG.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "as-of", "", "valuation date (defaults to today)")
	f.StringVar(&c.chart, "chart", "", "write the allocation chart PNG to this file")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDateFlag("as-of", c.asOf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(ctx context.Context, a *app.App) error {
		p, err := a.PortfolioService.Snapshot(ctx, asOf)
		if err != nil {
			return err
		}
		if c.chart != "" {
			png, err := a.Formatter(ctx).AllocationChart(p)
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.chart, png, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
		}
		return c.env.emit(ctx, a, c.json, p, func(f *display.Formatter) string { return f.Portfolio(p) })
	})
}
