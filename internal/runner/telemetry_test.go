package runner_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/petasbytes/fsagent/internal/modeltest"
	"github.com/petasbytes/fsagent/internal/runner"
	"github.com/petasbytes/fsagent/internal/telemetry"
)

func readEvents(t *testing.T, sink *telemetry.Sink) ([]map[string]any, []string) {
	t.Helper()
	f, err := os.Open(sink.Path())
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()

	var (
		events []map[string]any
		lines  []string
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		events = append(events, m)
		lines = append(lines, sc.Text())
	}
	return events, lines
}

func TestRun_TelemetryEvents(t *testing.T) {
	reg, _ := newSandboxRegistry(t)
	sink := telemetry.NewSink(t.TempDir(), true)
	model := modeltest.NewScriptedModel(
		modeltest.Calls(call("c1", "write_file", `{"file_path":"out.txt","content":"hi"}`)),
		modeltest.Calls(call("c2", "nope", `{}`)),
		modeltest.Text("done"),
	)

	if _, err := runner.New(model, reg, runner.WithTelemetry(sink)).Run(context.Background(), "task"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	events, _ := readEvents(t, sink)
	var names []string
	for _, e := range events {
		names = append(names, e["event"].(string))
	}
	want := "run_started,model_turn,tool_exec,model_turn,tool_exec,model_turn,run_finished"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("events = %s, want %s", got, want)
	}

	runID := events[0]["turn_id"]
	for _, e := range events {
		if e["turn_id"] != runID {
			t.Fatalf("turn_id not propagated: %v vs %v", e["turn_id"], runID)
		}
	}

	ok, unknown := events[2], events[4]
	if ok["tool_name"] != "write_file" || ok["error"] != nil {
		t.Fatalf("write_file exec event = %v", ok)
	}
	if v, _ := ok["output_size"].(float64); v <= 0 {
		t.Fatalf("output_size should be > 0, got %v", ok["output_size"])
	}
	if unknown["error"] != "unknown_tool" || unknown["output_size"] != float64(0) {
		t.Fatalf("unknown tool exec event = %v", unknown)
	}
	if events[6]["outcome"] != "answer" || events[6]["turns"] != float64(3) {
		t.Fatalf("run_finished = %v", events[6])
	}
}

func TestRun_TelemetryHasNoRawPayloads(t *testing.T) {
	reg, _ := newSandboxRegistry(t)
	sink := telemetry.NewSink(t.TempDir(), true)
	secret := "__SECRET_NEVER_APPEAR__"
	model := modeltest.NewScriptedModel(
		modeltest.Calls(call("c1", "write_file", fmt.Sprintf(`{"file_path":"s.txt","content":%q}`, secret))),
		modeltest.Calls(call("c2", "read_file", `{"file_path":"s.txt"}`)),
		modeltest.Text("the secret is "+secret),
	)

	if _, err := runner.New(model, reg, runner.WithTelemetry(sink)).Run(context.Background(), "remember "+secret); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, lines := readEvents(t, sink)
	for _, line := range lines {
		if strings.Contains(line, secret) {
			t.Fatalf("raw payload leaked into telemetry: %q", line)
		}
	}
}

func TestRun_NilSinkWritesNothing(t *testing.T) {
	reg, _ := newSandboxRegistry(t)
	dir := t.TempDir()
	t.Chdir(dir)
	model := modeltest.NewScriptedModel(modeltest.Text("ok"))

	if _, err := runner.New(model, reg, runner.WithTelemetry(telemetry.NewSink("", false))).Run(context.Background(), "task"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(telemetry.DefaultDir); !os.IsNotExist(err) {
		t.Fatalf("expected no %s directory when telemetry is off", telemetry.DefaultDir)
	}
}
