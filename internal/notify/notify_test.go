package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestLogTracker(t *testing.T) {
	log, buf := bufferLogger()
	NewLogTracker(log).Track(context.Background(), EventAnalysisCompleted, CategoryAnalysis, "octo")

	out := buf.String()
	for _, want := range []string{"event=analysis_completed", "category=analysis", "label=octo"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogMailer(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		subject string
		wantErr bool
		is      error
	}{
		{name: "valid", to: "Octo Cat <octo@example.com>", subject: "Your report"},
		{name: "bad address", to: "not-an-address", subject: "Your report", wantErr: true, is: ErrInvalidRecipient},
		{name: "empty subject", to: "octo@example.com", subject: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := bufferLogger()
			err := NewLogMailer(log).Send(context.Background(), tt.to, "<p>report</p>", tt.subject)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.is != nil && !errors.Is(err, tt.is) {
					t.Errorf("Send() error = %v, want %v", err, tt.is)
				}
				return
			}
			if err != nil {
				t.Fatalf("Send() error: %v", err)
			}
			if !strings.Contains(buf.String(), "to=octo@example.com") {
				t.Errorf("log output missing recipient: %s", buf.String())
			}
		})
	}
}
