package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
	"github.com/sprite-ai/civtriage/internal/triage"
)

// execute runs the root command with args and returns what it printed.
// Flag values persist on the package-level commands, so they are reset first.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CIVTRIAGE_ESTIMATOR", "fixed")

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"classify", "score", "assess", "triage", "serve", "board", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}

	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "civtriage dev (commit none") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestClassifyText(t *testing.T) {
	out, _, err := execute(t, "", "classify", "Large", "pothole", "on", "Elm", "Street")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if !strings.Contains(out, "Road & Infrastructure (road_infrastructure)") {
		t.Errorf("missing category in %q", out)
	}
	if !strings.Contains(out, "pothole, street") {
		t.Errorf("missing matched keywords in %q", out)
	}
}

func TestClassifyStdinJSON(t *testing.T) {
	out, _, err := execute(t, "bin overflowing with garbage\n", "classify", "--format", "json")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var got classifyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Category != "waste_sanitation" {
		t.Errorf("category: got %q, want %q", got.Category, "waste_sanitation")
	}
	if got.Score != 3 {
		t.Errorf("score: got %d, want 3", got.Score)
	}
}

func TestClassifyUnknownFormat(t *testing.T) {
	if _, _, err := execute(t, "", "classify", "-f", "yaml", "pothole"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestScore(t *testing.T) {
	out, _, err := execute(t, "", "score", "-c", "public_safety", "-H", "6", "--format", "json", "Exposed wire hanging low")
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	var got scoreOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Total < 0 || got.Total > 100 {
		t.Errorf("total out of range: %d", got.Total)
	}
	if got.Level != model.LevelFor(got.Total).String() {
		t.Errorf("level %q does not match total %d", got.Level, got.Total)
	}
	e := triage.New(triage.WithEstimators(triage.FixedEstimator(0.5), triage.FixedEstimator(0.5)))
	want := e.Score(model.PublicSafety, "Exposed wire hanging low", 6)
	if got.Total != want.Total || got.Breakdown != want.Breakdown {
		t.Errorf("got %d %+v, want %d %+v", got.Total, got.Breakdown, want.Total, want.Breakdown)
	}
}

func TestScoreRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown category", []string{"score", "-c", "parks", "x"}},
		{"missing category", []string{"score", "x"}},
		{"negative hours", []string{"score", "-c", "public_safety", "-H", "-1", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, "", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAssess(t *testing.T) {
	out, _, err := execute(t, "", "assess", "-H", "12", "Water leaking from a burst pipe onto the sidewalk")
	if err != nil {
		t.Fatalf("assess failed: %v", err)
	}
	for _, want := range []string{"Water & Drainage", "Severity:", "Resolve in:", "This water & drainage issue"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}

	out, _, err = execute(t, "", "assess", "-f", "json", "Water leaking from a burst pipe")
	if err != nil {
		t.Fatalf("assess json failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	for _, key := range []string{"category", "total", "breakdown", "level", "label", "color", "resolution_hours", "explanation"} {
		if _, ok := got[key]; !ok {
			t.Errorf("assessment JSON missing %q", key)
		}
	}
}

func newTestBoard(now time.Time) *board.Board {
	e := triage.New(triage.WithEstimators(triage.FixedEstimator(0.5), triage.FixedEstimator(0.5)))
	return board.New(e, board.WithClock(func() time.Time { return now }))
}

func TestTriageBatch(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "reports.jsonl")
	data := `{"title":"Overflowing bin","description":"Trash bin overflowing","hours_elapsed":2}
{"title":"","description":"no title"}
{"title":"Dangling wire | school","description":"Exposed electrical wire, danger to kids","created_at":"2026-05-04T03:00:00Z"}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := intake.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	b := newTestBoard(now)
	var errOut bytes.Buffer
	if skipped := submitAll(b, recs, &errOut); skipped != 1 {
		t.Errorf("skipped: got %d, want 1", skipped)
	}
	if !strings.Contains(errOut.String(), "skipping report 2") {
		t.Errorf("expected a skip notice, got %q", errOut.String())
	}

	reports := b.List(board.Filter{})
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Assessment.Category != model.PublicSafety {
		t.Errorf("expected the wire report first, got %s", reports[0].Title)
	}

	var md bytes.Buffer
	writeTriageMarkdown(&md, b, reports)
	if !strings.Contains(md.String(), "| ID | Severity |") {
		t.Errorf("missing markdown table header in %q", md.String())
	}
	if !strings.Contains(md.String(), `Dangling wire \| school`) {
		t.Errorf("pipe in title should be escaped in %q", md.String())
	}

	var js bytes.Buffer
	if err := writeTriageJSON(&js, b, reports, 1, false); err != nil {
		t.Fatalf("writeTriageJSON failed: %v", err)
	}
	var got triageOutput
	if err := json.Unmarshal(js.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", js.String(), err)
	}
	if got.Stats.Total != 2 || got.Skipped != 1 || len(got.Reports) != 2 {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestTriageExitCode(t *testing.T) {
	report := func(l model.SeverityLevel) board.Report {
		return board.Report{Assessment: triage.Assessment{Level: l}}
	}
	tests := []struct {
		name   string
		levels []model.SeverityLevel
		want   int
	}{
		{"empty", nil, 0},
		{"low and medium", []model.SeverityLevel{model.SeverityLow, model.SeverityMedium}, 0},
		{"high", []model.SeverityLevel{model.SeverityLow, model.SeverityHigh}, 1},
		{"critical wins", []model.SeverityLevel{model.SeverityHigh, model.SeverityCritical, model.SeverityLow}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reports []board.Report
			for _, l := range tt.levels {
				reports = append(reports, report(l))
			}
			if got := triageExitCode(reports); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTriageRejectsBadArgs(t *testing.T) {
	if _, _, err := execute(t, "", "triage"); err == nil {
		t.Error("expected an error without a file")
	}
	if _, _, err := execute(t, "", "triage", "-f", "html", "x.json"); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if _, _, err := execute(t, "", "triage", "--at", "yesterday", "x.json"); err == nil {
		t.Error("expected an error for a bad --at time")
	}
	if _, _, err := execute(t, "", "triage", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CIVTRIAGE_PORT", "7000")
	t.Setenv("CIVTRIAGE_SEED", "3")
	resetFlags(rootCmd)

	cmd := serveCmd
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	if err := cmd.Flags().Set("port", "8080"); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port: got %d, want 8080", cfg.Port)
	}
	if cfg.Seed != 3 {
		t.Errorf("seed: got %d, want 3", cfg.Seed)
	}
	resetFlags(rootCmd)
}

func TestReadText(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("level<drain blocked\n"))
	got, err := readText(cmd, []string{"-"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "level<drain blocked\n" {
		t.Errorf("got %q, want the input unchanged", got)
	}

	got, _ = readText(cmd, []string{"dark", "road"})
	if got != "dark road" {
		t.Errorf("got %q, want %q", got, "dark road")
	}
}

func TestClassifyStrayAngleBracket(t *testing.T) {
	text := "water level<drain is blocked, sewer overflowing"
	out, _, err := execute(t, "", "classify", "-f", "json", text)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var got classifyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	want := triage.Classify(text)
	if got.Category != want.Category.String() {
		t.Errorf("category: got %q, want %q", got.Category, want.Category)
	}
	if strings.Join(got.Matched, ",") != strings.Join(want.Matched, ",") {
		t.Errorf("matched: got %v, want %v", got.Matched, want.Matched)
	}
}

func TestColorDisabledForBuffers(t *testing.T) {
	if colorEnabled(&cobra.Command{}, &bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
