package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const classified = `{"id":"a","host":"h","title":"A","text":"Ada Lovelace met Babbage","tokens":[{"text":"Ada","start":0,"end":3,"label":"PERSON"},{"text":"Lovelace","start":4,"end":12,"label":"PERSON"},{"text":"met","start":13,"end":16,"label":"O"},{"text":"Babbage","start":17,"end":24,"label":"PERSON"}]}
{"id":"","text":"missing id","tokens":[]}
{"id":"b","text":"London","tokens":[{"text":"London","start":0,"end":6,"label":"LOCATION"}]}
{"id":"c","text":"nothing","tokens":[{"text":"nothing","start":0,"end":7,"label":"O"}]}
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunAndScan(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jsonl")
	if err := os.WriteFile(in, []byte(classified), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	db := filepath.Join(dir, "ann.db")

	if _, err := runCLI(t, "run", "--input", in, "--out", outDir, "--per-file", "2", "--db", db, "--log-level", "error"); err != nil {
		t.Fatalf("run: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(outDir, "entities_*.xml"))
	if len(files) != 2 {
		t.Fatalf("Expected 2 output files, got %v", files)
	}
	if _, err := os.Stat(db); err != nil {
		t.Errorf("Database should be created: %v", err)
	}

	out, err := runCLI(t, append([]string{"scan"}, files...)...)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, want := range []string{`"Ada Lovelace"`, `"Babbage"`, `"London"`} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "missing id") {
		t.Error("Invalid document should have been skipped")
	}
}

func TestRunRequiresInput(t *testing.T) {
	if _, err := runCLI(t, "run", "--out", t.TempDir()); err == nil {
		t.Error("run without --input should fail")
	}
}

func TestRunBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cfg.yaml")
	os.WriteFile(cfg, []byte("output:\n  documents_per_file: -1\n"), 0644)
	in := filepath.Join(dir, "in.jsonl")
	os.WriteFile(in, []byte(classified), 0644)

	if _, err := runCLI(t, "run", "--config", cfg, "--input", in); err == nil {
		t.Error("run with invalid config should fail")
	}
}

func TestLoadRunConfigOverrides(t *testing.T) {
	f := &runFlags{outDir: "x", perFile: 7, resumeBatch: 2, dbPath: "d.db", metricsAddr: ":1"}
	cfg, err := loadRunConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Dir != "x" || cfg.Output.DocumentsPerFile != 7 || cfg.Output.ResumeBatch != 2 {
		t.Errorf("Overrides not applied: %+v", cfg.Output)
	}
	if cfg.Store.Path != "d.db" || cfg.Metrics.Addr != ":1" {
		t.Errorf("Overrides not applied: %+v %+v", cfg.Store, cfg.Metrics)
	}

	f = &runFlags{resumeBatch: -1}
	cfg, err = loadRunConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.ResumeBatch != 0 || cfg.Output.DocumentsPerFile != 5000 {
		t.Errorf("Defaults should be kept: %+v", cfg.Output)
	}
}

func TestScanMissingFile(t *testing.T) {
	if _, err := runCLI(t, "scan", "/nonexistent.xml"); err == nil {
		t.Error("scan of missing file should fail")
	}
}
