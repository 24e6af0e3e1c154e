package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestToolInvocationLifecycle(t *testing.T) {
	ti := NewToolInvocation("commit_proposal").
		WithCalendar("work").
		WithProposal("prop-123").
		WithOperation(OperationCommit)

	if ti.Tool != "commit_proposal" {
		t.Errorf("expected tool name commit_proposal, got %s", ti.Tool)
	}
	if ti.StartTime.IsZero() {
		t.Error("expected start time to be set")
	}

	time.Sleep(time.Millisecond)
	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("expected success")
	}
	if ti.Duration <= 0 {
		t.Error("expected positive duration")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("expected status success, got %s", ti.Status())
	}
}

func TestToolInvocationError(t *testing.T) {
	ti := NewToolInvocation("withdraw_proposal")
	ti.CompleteWithError(errors.New("proposal not found"))

	if ti.Success {
		t.Error("expected failure")
	}
	if ti.Error != "proposal not found" {
		t.Errorf("unexpected error string: %s", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("expected status error, got %s", ti.Status())
	}
}

func TestToolInvocationLogAttrs(t *testing.T) {
	ti := NewToolInvocation("get_free_busy").
		WithCalendar("personal").
		WithOperation(OperationQuery)
	ti.CompleteSuccess()

	attrs := ti.LogAttrs()
	keys := make(map[string]bool)
	for _, a := range attrs {
		keys[a.Key] = true
	}
	for _, want := range []string{"tool", "duration", "success", "calendar", "operation"} {
		if !keys[want] {
			t.Errorf("missing attribute %s", want)
		}
	}
	// Empty optional fields stay out of the attribute set.
	if keys["proposal"] || keys["trace_id"] || keys["error"] {
		t.Error("unexpected optional attributes for a clean invocation")
	}
}

func TestAuditLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLogger(logger)

	ti := NewToolInvocation("list_events").WithCalendar("work")
	ti.CompleteSuccess()
	al.LogToolInvocation(ti)

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("expected tool_executed entry: %s", out)
	}
	if !strings.Contains(out, "calendar=work") {
		t.Errorf("expected calendar attribute: %s", out)
	}

	buf.Reset()
	failing := NewToolInvocation("remove_event")
	failing.CompleteWithError(errors.New("event not found"))
	al.LogToolInvocation(failing)
	if !strings.Contains(buf.String(), "tool_failed") {
		t.Errorf("expected tool_failed entry: %s", buf.String())
	}
}

func TestAuditLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})

	ti := NewToolInvocation("list_events")
	ti.CompleteSuccess()
	al.LogToolInvocation(ti)

	if buf.Len() != 0 {
		t.Errorf("disabled audit logger should not write: %s", buf.String())
	}
}
