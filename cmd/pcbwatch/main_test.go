package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pcbwatch/internal/config"
	"pcbwatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.DataDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	out, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, string(out))
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProcessThenStatusAndIDs(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.cfg.Paths.SourceLog, "PCB0012 ok\nPCB0013 ok\nPCB0012 retest\n")

	out, err := runCLI(t, env, "process")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}
	if !strings.Contains(out, "outcome: processed") {
		t.Fatalf("unexpected process output: %q", out)
	}
	if !strings.Contains(out, "new: 2, total: 2") {
		t.Fatalf("unexpected totals: %q", out)
	}

	out, err = runCLI(t, env, "ids")
	if err != nil {
		t.Fatalf("ids: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0012\n0013\n") {
		t.Fatalf("ids output: %q", out)
	}
	if !strings.Contains(out, "total: 2") {
		t.Fatalf("ids total missing: %q", out)
	}

	out, err = runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Total identifiers") || !strings.Contains(out, "2") {
		t.Fatalf("status output: %q", out)
	}
}

func TestHistoryAfterPasses(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.cfg.Paths.SourceLog, "PCB7\n")

	if out, err := runCLI(t, env, "process"); err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}
	if out, err := runCLI(t, env, "process"); err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}

	out, err := runCLI(t, env, "history", "--limit", "5")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	if !strings.Contains(out, "processed") {
		t.Fatalf("history output: %q", out)
	}
}

func TestHistoryEmptyLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	if !strings.Contains(out, "no passes recorded yet") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConfigShowReportsSource(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "# loaded from "+env.configPath) {
		t.Fatalf("missing source comment: %q", out)
	}
	if !strings.Contains(out, "source_log") {
		t.Fatalf("missing rendered config: %q", out)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "config", "init")
	if err == nil {
		t.Fatalf("expected refusal, got: %q", out)
	}
}

func TestIDsLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.cfg.IdentifierStorePath(), "1\n2\n10\n")

	out, err := runCLI(t, env, "ids", "--limit", "1")
	if err != nil {
		t.Fatalf("ids: %v\n%s", err, out)
	}
	if strings.Contains(out, "\n2\n") {
		t.Fatalf("limit not applied: %q", out)
	}
	if !strings.Contains(out, "10\n") {
		t.Fatalf("highest identifier missing: %q", out)
	}
}
