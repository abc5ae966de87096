package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/tally/internal/app"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportJSON = `{
	"accounts": [{"id": "acct_bank", "name": "Bank"}],
	"income": [{"source": "Salary", "amount": 3000, "date": "2025-02-01", "account_id": "acct_bank"}],
	"expenses": [{"category": "Rent", "amount": 1200, "date": "2025-02-03", "account_id": "acct_bank"}]
}`

// newTestEnv returns an env backed by a badger store in a temp dir, so data
// survives the open/close cycle of each command.
func newTestEnv(t *testing.T) (*cliEnv, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	env := &cliEnv{
		out: out,
		open: func(string) (*app.App, error) {
			config := common.NewDefaultConfig()
			config.Storage.Backend = common.BackendBadger
			config.Storage.Path = filepath.Join(dir, "records")
			config.Display = common.DisplayConfig{CurrencyCode: "USD", Locale: "en-US"}
			return app.NewAppWithConfig(config, common.NewSilentLogger())
		},
	}
	return env, out
}

func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c.Execute(context.Background(), f)
}

func importFixture(t *testing.T, env *cliEnv) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(exportJSON), 0o600))
	require.Equal(t, subcommands.ExitSuccess, execute(t, &importCmd{env: env}, path))
}

func TestImportCmd(t *testing.T) {
	env, out := newTestEnv(t)
	importFixture(t, env)
	assert.Equal(t, "accounts: 1\nexpenses: 1\nincome: 1\n", out.String())

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &importCmd{env: env}))
}

func TestTransactionsCmd(t *testing.T) {
	env, out := newTestEnv(t)
	importFixture(t, env)
	out.Reset()

	require.Equal(t, subcommands.ExitSuccess, execute(t, &transactionsCmd{env: env}))
	assert.Contains(t, out.String(), "# Transactions (2)")
	assert.Contains(t, out.String(), "$3,000.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, &transactionsCmd{env: env}, "-from", "2025-02-02", "-json"))
	assert.Contains(t, out.String(), `"outflow": 1200`)
	assert.NotContains(t, out.String(), "Salary")

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &transactionsCmd{env: env}, "-from", "someday"))
}

func TestBalanceCmd(t *testing.T) {
	env, out := newTestEnv(t)
	importFixture(t, env)
	out.Reset()

	require.Equal(t, subcommands.ExitSuccess, execute(t, &balanceCmd{env: env}, "-as-of", "2025-12-31", "acct_bank"))
	assert.Contains(t, out.String(), "| Bank | $3,000.00 | $1,200.00 | $1,800.00 | 2 |")

	assert.Equal(t, subcommands.ExitFailure, execute(t, &balanceCmd{env: env}, "missing"))
}

func TestReportCmds(t *testing.T) {
	env, out := newTestEnv(t)
	importFixture(t, env)

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, &dashboardCmd{env: env}))
	assert.Contains(t, out.String(), "**Income:** $3,000.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, &balanceSheetCmd{env: env}, "-as-of", "2025-12-31"))
	assert.Contains(t, out.String(), "Balance check: balanced")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, &portfolioCmd{env: env}, "-as-of", "2025-12-31"))
	assert.Contains(t, out.String(), "# Portfolio as of 2025-12-31")
}
