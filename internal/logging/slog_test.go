package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestAttributeHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("test",
		Operation("commit"),
		Tool("commit_proposal"),
		Calendar("work"),
		Proposal("prop-1"),
		EventCount(3),
		Status(StatusSuccess),
	)

	out := buf.String()
	for _, want := range []string{
		"operation=commit",
		"tool=commit_proposal",
		"calendar=work",
		"proposal=prop-1",
		"event_count=3",
		"status=success",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestErrNil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("no error", Err(nil))
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error should not produce an error attribute: %s", buf.String())
	}

	buf.Reset()
	logger.Info("with error", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error attribute: %s", buf.String())
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	WithCalendar(WithTool(base, "list_events"), "personal").Info("scoped")
	out := buf.String()
	if !strings.Contains(out, "tool=list_events") || !strings.Contains(out, "calendar=personal") {
		t.Errorf("scoped logger missing attributes: %s", out)
	}
}
