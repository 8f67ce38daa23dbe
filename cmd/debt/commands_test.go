package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata" // zones for DEBT_ENGINE_TIMEZONE

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t      *testing.T
	home   string
	dbPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &testEnv{
		t:      t,
		home:   home,
		dbPath: filepath.Join(home, "data", "debt.db"),
	}
}

// run executes the CLI with a fresh command tree and viper state.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--db", e.dbPath,
		"--env-file", filepath.Join(e.home, ".env"),
		"--log-level", "error",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "debt %v", args)
	return out
}

func TestCLI_LimitLifecycle(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("accounts", "add", "Visa", "--id", "visa", "--limit", "1000")
	assert.Contains(t, out, `Created account "Visa"`)

	out = env.mustRun("limits", "add", "Groceries", "--id", "groc", "--amount", "200",
		"--type", "custom", "--start", "2024-01-01", "--category", "groceries")
	assert.Contains(t, out, `custom limit "Groceries"`)

	env.mustRun("txn", "add", "--account", "visa", "--amount", "150", "--category", "groceries", "--at", "2024-01-05")
	env.mustRun("txn", "add", "--account", "visa", "--amount", "99", "--category", "fuel", "--at", "2024-01-06")

	out = env.mustRun("limits", "status")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "NORMAL")

	env.mustRun("txn", "add", "--account", "visa", "--amount", "20", "--category", "groceries", "--at", "2024-01-07")

	out = env.mustRun("limits", "status")
	assert.Contains(t, out, "85%")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "Groceries is at 85%")

	out = env.mustRun("txn", "list", "--category", "groceries")
	assert.Contains(t, out, "150.00")
	assert.NotContains(t, out, "99.00")

	out = env.mustRun("limits", "list")
	assert.Contains(t, out, "groc")

	env.mustRun("limits", "delete", "groc")
	out = env.mustRun("limits", "list")
	assert.Contains(t, out, "No limits found")
}

func TestCLI_EndDateInConfiguredTimezone(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("DEBT_ENGINE_TIMEZONE", "Asia/Tokyo")

	env.mustRun("accounts", "add", "Visa", "--id", "visa", "--limit", "1000")
	env.mustRun("limits", "add", "Trip", "--id", "trip", "--amount", "100",
		"--type", "custom", "--start", "2024-05-01", "--end", "2024-05-14")

	out := env.mustRun("limits", "list")
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "2024-05-14")
	assert.NotContains(t, out, "2024-05-13")

	// Late evening on the last day still counts; the next morning does not.
	env.mustRun("txn", "add", "--account", "visa", "--amount", "40", "--at", "2024-05-14 22:00")
	env.mustRun("txn", "add", "--account", "visa", "--amount", "30", "--at", "2024-05-15 00:30")

	out = env.mustRun("limits", "status")
	assert.Contains(t, out, "$40.00")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "2024-05-15 00:00")
}

func TestCLI_Reconcile(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("accounts", "add", "Amex", "--id", "amex", "--limit", "500", "--used", "10")
	env.mustRun("txn", "add", "--account", "amex", "--amount", "120", "--at", "2024-02-01")
	env.mustRun("txn", "add", "--account", "amex", "--amount", "20", "--kind", "payment", "--at", "2024-02-03")

	out := env.mustRun("reconcile")
	assert.Contains(t, out, "1 account(s) drift")

	out = env.mustRun("reconcile", "--apply")
	assert.Contains(t, out, "Corrected 1 account(s)")

	out = env.mustRun("reconcile")
	assert.Contains(t, out, "All accounts match the ledger")

	out = env.mustRun("accounts", "list")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$400.00")
}

func TestCLI_Report(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("accounts", "add", "Visa", "--id", "visa", "--limit", "1000")
	env.mustRun("limits", "add", "Everything", "--amount", "100", "--type", "custom", "--start", "2024-01-01")
	env.mustRun("txn", "add", "--account", "visa", "--amount", "130", "--at", "2024-01-02")

	out := env.mustRun("report")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "DANGER")
	assert.Contains(t, out, "Everything is at 130%")
	assert.Contains(t, out, "drift from the ledger")
}

func TestCLI_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("txn", "add", "--account", "missing", "--amount", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no account with ID "missing"`)

	_, err = env.run("limits", "add", "Broken", "--amount", "0", "--start", "2024-01-01")
	require.Error(t, err)

	_, err = env.run("accounts", "delete", "nobody")
	require.Error(t, err)

	env.mustRun("accounts", "add", "Visa", "--id", "visa", "--limit", "10")
	_, err = env.run("accounts", "add", "Visa again", "--id", "visa", "--limit", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCLI_Import(t *testing.T) {
	env := newTestEnv(t)

	statement := filepath.Join(env.home, "visa.qfx")
	require.NoError(t, os.WriteFile(statement, []byte(sampleStatement), 0o600))

	env.mustRun("accounts", "add", "Visa", "--id", "visa", "--limit", "1000")

	out := env.mustRun("import", statement, "--account", "visa", "--dry-run")
	assert.Contains(t, out, "Dry run: 2 transaction(s)")

	out = env.mustRun("import", statement, "--account", "visa")
	assert.Contains(t, out, "Imported 2 new transaction(s)")

	out = env.mustRun("import", statement, "--account", "visa")
	assert.Contains(t, out, "Imported 0 new transaction(s)")
	assert.Contains(t, out, "2 already in the ledger")

	out = env.mustRun("txn", "list", "--account", "visa")
	assert.Contains(t, out, "withdrawal")
	assert.Contains(t, out, "payment")

	_, err := env.run("import", filepath.Join(env.home, "nothing-*.qfx"))
	assert.Error(t, err)
}

func TestCLI_ImportRequiresStatementAccount(t *testing.T) {
	env := newTestEnv(t)

	statement := filepath.Join(env.home, "card.qfx")
	require.NoError(t, os.WriteFile(statement, []byte(sampleStatement), 0o600))

	_, err := env.run("import", statement)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnknownAccount)
	assert.Contains(t, err.Error(), `no account with ID "4111111111111111"`)

	out := env.mustRun("txn", "list")
	assert.Contains(t, out, "No transactions found")

	env.mustRun("accounts", "add", "Card", "--id", "4111111111111111", "--limit", "1000")
	out = env.mustRun("import", statement)
	assert.Contains(t, out, "Imported 2 new transaction(s)")

	out = env.mustRun("reconcile")
	assert.Contains(t, out, "4111111111111111")
	assert.Contains(t, out, "1 account(s) drift")
}

func TestCLI_MigrateAndVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("migrate", "--status")
	assert.Contains(t, out, "Current version: 0")

	out = env.mustRun("migrate")
	assert.Contains(t, out, "schema version")

	out = env.mustRun("migrate", "--status")
	assert.NotContains(t, out, "Migrations pending")

	out = env.mustRun("version")
	assert.Contains(t, out, "debt dev")
}

func TestCLI_DotEnv(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.home, ".env"), []byte("DEBT_ENGINE_TIMEZONE=Not/AZone\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DEBT_ENGINE_TIMEZONE") })

	_, err := env.run("limits", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

const sampleStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>PAYMENT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>100.00
<FITID>CC2024012001
<NAME>ONLINE PAYMENT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`
