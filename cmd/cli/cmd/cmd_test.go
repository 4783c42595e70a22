package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/glebarez/go-sqlite"
	"github.com/shopspring/decimal"

	"sms-cost/api"
	"sms-cost/core/types"
)

const (
	bandFile = "../../../adapters/bandfile/testdata/bands.hcl"
	subject  = "5d7b5b0e-2f59-4c8e-9d55-1f1f7a0c3b21"
)

// run executes the root command with args and returns its stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	computeSubject, computeFormat = "", formatText
	costPeriod, costFormat = "", formatText
	usagePeriod = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "sms-cost version "+version) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestComputeText(t *testing.T) {
	out, err := run(t, "compute", "--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--bands", bandFile, "--quantity", "1500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"1-200", "201-500", "501-1000", "1001+", "89.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestComputeJSONForSubject(t *testing.T) {
	out, err := run(t, "compute", "--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--bands", bandFile, "--quantity", "1500", "--format", "json",
		"--subject", "fb908c44-7af1-4894-a0a5-860338468dfa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp api.ComputeResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !resp.Total.Equal(decimal.RequireFromString("62.5")) {
		t.Errorf("expected 62.5, got %s", resp.Total)
	}
	if len(resp.Charges) != 2 {
		t.Errorf("expected 2 charges, got %d", len(resp.Charges))
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.yaml")

	if _, err := run(t, "compute", "--config", cfg, "--bands", bandFile, "--quantity", "-3"); err == nil {
		t.Error("expected error for negative quantity")
	}
	if _, err := run(t, "compute", "--config", cfg, "--bands", bandFile, "--quantity", "3", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := run(t, "compute", "--config", cfg, "--bands", "../../../adapters/bandfile/testdata/gapped.hcl", "--quantity", "3"); err == nil {
		t.Error("expected error for gapped band file")
	}
}

func TestBandsValidate(t *testing.T) {
	out, err := run(t, "bands", "validate", bandFile, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "ok (4 default bands, 1 subjects)") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestSQLWorkflow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sms-cost.yaml")
	cfg := fmt.Sprintf(`
bands:
  source: sql
usage:
  source: sql
database:
  driver: sqlite
  dsn: %s
  max_open_conns: 1
  max_idle_conns: 1
logging:
  level: error
`, filepath.Join(dir, "sms-cost.db"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "bands", "import", bandFile, "--config", cfgPath)
	if err != nil {
		t.Fatalf("import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 2 band sets") {
		t.Errorf("unexpected import output: %s", out)
	}

	for _, q := range []string{"1000", "500"} {
		if out, err := run(t, "usage", "add", "--config", cfgPath,
			"--subject", subject, "--period", "2024-03", "--quantity", q); err != nil {
			t.Fatalf("usage add failed: %v\n%s", err, out)
		}
	}

	out, err = run(t, "cost", "--config", cfgPath, "--subject", subject, "--period", "2024-03", "--format", "json")
	if err != nil {
		t.Fatalf("cost failed: %v\n%s", err, out)
	}

	var stmt types.Statement
	if err := json.Unmarshal([]byte(out), &stmt); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if stmt.Quantity != 1500 {
		t.Errorf("expected 1500 units, got %d", stmt.Quantity)
	}
	if !stmt.Total.Equal(decimal.NewFromInt(89)) {
		t.Errorf("expected 89, got %s", stmt.Total)
	}
}
