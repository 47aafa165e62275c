package rpcserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"centy/internal/logging"
	"centy/internal/service"
)

func setupHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	projectDir := t.TempDir()
	homeDir := t.TempDir()
	svc := service.New(homeDir, "0.1.0", logging.Nop())
	h := NewHandler(svc, nil)

	if _, err := h.Init(context.Background(), params{"projectPath": projectDir}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return h, projectDir
}

func asSuccess(t *testing.T, resp interface{}, err error) params {
	t.Helper()
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	p, ok := resp.(params)
	if !ok {
		t.Fatalf("unexpected response type %T", resp)
	}
	if ok, _ := p["success"].(bool); !ok {
		t.Fatalf("expected success=true, got %v", p)
	}
	return p
}

func TestInitReportsSuccess(t *testing.T) {
	h, dir := setupHandler(t)
	resp, err := h.IsInitialized(context.Background(), params{"projectPath": dir})
	p := asSuccess(t, resp, err)
	if initialized, _ := p["initialized"].(bool); !initialized {
		t.Error("expected initialized=true after Init")
	}
}

func TestCreateAndGetIssue(t *testing.T) {
	h, dir := setupHandler(t)

	created, err := h.CreateIssue(context.Background(), params{
		"projectPath": dir,
		"title":       "Login bug",
	})
	createdP := asSuccess(t, created, err)
	id, _ := createdP["id"].(string)
	if id == "" {
		t.Fatal("expected non-empty issue id")
	}

	got, err := h.GetIssue(context.Background(), params{"projectPath": dir, "id": id})
	gotP := asSuccess(t, got, err)
	if _, ok := gotP["issue"]; !ok {
		t.Error("expected issue field in response")
	}
}

func TestCreateIssueValidationFailureIsWireFailure(t *testing.T) {
	h, dir := setupHandler(t)

	resp, err := h.CreateIssue(context.Background(), params{"projectPath": dir, "title": ""})
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	p, ok := resp.(params)
	if !ok {
		t.Fatalf("unexpected response type %T", resp)
	}
	if ok, _ := p["success"].(bool); ok {
		t.Error("expected success=false for empty title")
	}
	if _, ok := p["error"].(string); !ok {
		t.Error("expected error message in failure response")
	}
}

func TestDocLifecycle(t *testing.T) {
	h, dir := setupHandler(t)

	created, err := h.CreateDoc(context.Background(), params{
		"projectPath": dir,
		"title":       "Architecture Notes",
		"content":     "body text",
	})
	asSuccess(t, created, err)

	listed, err := h.ListDocs(context.Background(), params{"projectPath": dir})
	p := asSuccess(t, listed, err)
	if _, ok := p["docs"]; !ok {
		t.Error("expected docs field in response")
	}
}

func TestGetDaemonInfo(t *testing.T) {
	h, _ := setupHandler(t)
	resp, err := h.GetDaemonInfo(context.Background(), params{})
	p := asSuccess(t, resp, err)
	if v, _ := p["version"].(string); v != "0.1.0" {
		t.Errorf("expected daemon version 0.1.0, got %v", p["version"])
	}
}

func TestShutdownSignalsControlChannel(t *testing.T) {
	projectDir := t.TempDir()
	homeDir := t.TempDir()
	svc := service.New(homeDir, "0.1.0", logging.Nop())
	control := make(chan ControlSignal, 1)
	h := NewHandler(svc, control)

	if _, err := h.Init(context.Background(), params{"projectPath": projectDir}); err != nil {
		t.Fatal(err)
	}

	resp, err := h.Shutdown(context.Background(), params{"projectPath": projectDir})
	asSuccess(t, resp, err)

	select {
	case sig := <-control:
		if sig.Kind != SignalShutdown {
			t.Errorf("expected signalShutdown, got %v", sig.Kind)
		}
	case <-time.After(time.Second):
		t.Error("expected a signal on the control channel")
	}
}

func TestShutdownWithDelayReportsScheduledMessage(t *testing.T) {
	projectDir := t.TempDir()
	homeDir := t.TempDir()
	svc := service.New(homeDir, "0.1.0", logging.Nop())
	control := make(chan ControlSignal, 1)
	h := NewHandler(svc, control)

	resp, err := h.Shutdown(context.Background(), params{"projectPath": projectDir, "delaySeconds": float64(30)})
	out := asSuccess(t, resp, err)

	msg, _ := out["message"].(string)
	if !strings.Contains(msg, "30s") {
		t.Errorf("expected message to mention the delay, got %q", msg)
	}

	select {
	case <-control:
		t.Error("expected no signal before the delay elapses")
	default:
	}
}
