package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"auditdesk/internal/core"
	"auditdesk/internal/platform/config"
)

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:        "127.0.0.1:0",
		ShutdownTimeout: 5 * time.Second,
		StorageDriver:   "memory",
		BlobDriver:      "memory",
		LogLevel:        "error",
		LogFormat:       "json",
	}
}

func testApplication(cfg config.Config) *application {
	app := newApplication()
	app.loadConfig = func() (config.Config, error) { return cfg, nil }
	app.newLogger = func(string, string) (*zap.Logger, error) { return zap.NewNop(), nil }
	return app
}

func execute(t *testing.T, app *application, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(app)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCommand(newApplication())
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["dump"])
	require.True(t, names["export"])
}

func TestDumpAllRoundTripsThroughFixtureLoader(t *testing.T) {
	out, err := execute(t, testApplication(testConfig()), "dump", "--format", "yaml")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))
	loaded, err := core.LoadFixtures(path)
	require.NoError(t, err)
	want, err := core.DefaultFixtures()
	require.NoError(t, err)
	if diff := cmp.Diff(want, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("dump round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpSingleCollectionJSON(t *testing.T) {
	out, err := execute(t, testApplication(testConfig()), "dump", "stores")
	require.NoError(t, err)
	var stores []core.Store
	require.NoError(t, json.Unmarshal([]byte(out), &stores))
	require.Len(t, stores, 10)
	require.Equal(t, "North", stores[0].Region)
}

func TestDumpRejectsBadInput(t *testing.T) {
	app := testApplication(testConfig())
	_, err := execute(t, app, "dump", "payroll")
	require.ErrorContains(t, err, "unknown collection")
	_, err = execute(t, app, "dump", "--format", "xml")
	require.ErrorContains(t, err, "unsupported format")
}

func TestDumpUsesConfiguredFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	doc := "stores:\n  - Id: 7\n    name: Harbour\n    region: Coast\n    performanceScore: 81\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	cfg := testConfig()
	cfg.FixturesPath = path

	out, err := execute(t, testApplication(cfg), "dump", "stores")
	require.NoError(t, err)
	var stores []core.Store
	require.NoError(t, json.Unmarshal([]byte(out), &stores))
	require.Equal(t, []core.Store{{ID: 7, Name: "Harbour", Region: "Coast", PerformanceScore: 81}}, stores)
}

func TestExportWritesCSVToStdout(t *testing.T) {
	out, err := execute(t, testApplication(testConfig()), "export", "exceptions")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	require.Equal(t, "Id", records[0][0])
}

func TestExportWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpis.json")
	out, err := execute(t, testApplication(testConfig()), "export", "kpis", "--format", "json", "-o", path)
	require.NoError(t, err)
	require.Empty(t, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var kpis []core.KPI
	require.NoError(t, json.Unmarshal(raw, &kpis))
	require.Len(t, kpis, 8)
}

func TestExportRejectsBadInput(t *testing.T) {
	app := testApplication(testConfig())
	_, err := execute(t, app, "export", "payroll")
	require.ErrorContains(t, err, "unknown report")
	_, err = execute(t, app, "export", "stores", "--format", "xlsx")
	require.ErrorContains(t, err, "unsupported format")
	_, err = execute(t, app, "export")
	require.Error(t, err)
}

func TestConfigErrorsSurface(t *testing.T) {
	app := testApplication(testConfig())
	app.loadConfig = func() (config.Config, error) { return config.Config{}, os.ErrPermission }
	_, err := execute(t, app, "dump")
	require.ErrorIs(t, err, os.ErrPermission)
}

func TestServeStopsOnCancel(t *testing.T) {
	app := testApplication(testConfig())
	addrs := make(chan net.Addr, 1)
	app.onListen = func(addr net.Addr) { addrs <- addr }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not start")
	}

	base := "http://" + addr.String()
	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/v1/stores/1")
	require.NoError(t, err)
	var store core.Store
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&store))
	_ = resp.Body.Close()
	require.Equal(t, 1, store.ID)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body := &bytes.Buffer{}
	_, _ = body.ReadFrom(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, body.String(), "auditdesk_service_operations_total")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestOpenTracerWritesTraceFileWithoutEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.TraceFile = filepath.Join(t.TempDir(), "spans.jsonl")
	tracer, shutdown, err := openTracer(context.Background(), cfg)
	require.NoError(t, err)

	svc := core.NewInMemoryService(nil, core.WithSleeper(core.NoopSleeper{}), core.WithTracer(tracer))
	_, err = svc.GetStore(context.Background(), "404")
	require.Error(t, err)
	require.NoError(t, shutdown(context.Background()))

	raw, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	var entry core.JSONTraceEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	require.Equal(t, "get_store", entry.Operation)
	require.Equal(t, "error", entry.Status)

	cfg.TraceFile = filepath.Join(t.TempDir(), "missing", "spans.jsonl")
	_, _, err = openTracer(context.Background(), cfg)
	require.ErrorContains(t, err, "open trace file")

	cfg.TraceFile = ""
	tracer, shutdown, err = openTracer(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &core.OTelTracer{}, tracer)
	require.NoError(t, shutdown(context.Background()))
}

func TestServeReportsListenErrors(t *testing.T) {
	app := testApplication(testConfig())
	app.listen = func(string, string) (net.Listener, error) { return nil, os.ErrPermission }
	err := app.serve(context.Background())
	require.ErrorIs(t, err, os.ErrPermission)
}
