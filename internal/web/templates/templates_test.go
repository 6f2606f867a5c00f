package templates

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestJobsPage_EscapesValues(t *testing.T) {
	var b strings.Builder
	rows := []JobRow{{
		ID:          "id-1",
		FileName:    `<script>alert(1)</script>.csv`,
		Bank:        "hdfc",
		Type:        "booking",
		Status:      "running",
		SubmittedAt: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
	}}
	if err := JobsPage(rows, true).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("file name was not escaped")
	}
	for _, want := range []string{"&lt;script&gt;", "2024-01-05 10:30:00", `http-equiv="refresh"`, `data-status="running"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestJobsPage_Empty(t *testing.T) {
	var b strings.Builder
	if err := JobsPage(nil, false).Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "No uploads yet.") {
		t.Errorf("output = %s", b.String())
	}
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	if err := ErrorAlert("File could not be read", "", "FILE002").Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "File could not be read") || !strings.Contains(out, "Code: FILE002") {
		t.Errorf("output = %s", out)
	}
	if strings.Contains(out, "<p>") {
		t.Error("empty action should not render a paragraph")
	}
}

func TestJobsPage_ShowsMessage(t *testing.T) {
	var b strings.Builder
	rows := []JobRow{{
		ID:       "id-2",
		FileName: "kvb.csv",
		Status:   "failed",
		Message:  "Bank has no configured bank code (Code: BNK001). Ask an administrator to add the bank code",
	}}
	if err := JobsPage(rows, false).Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{`id="job-id-2"`, "(Code: BNK001)", `data-status="failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestErrorPage_UsesLayout(t *testing.T) {
	var b strings.Builder
	if err := ErrorPage("Job not found", "Upload the file again", "UPL003").Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "<!doctype html>") || !strings.HasSuffix(out, "</body></html>") {
		t.Errorf("output not wrapped in layout: %s", out)
	}
	if !strings.Contains(out, "<title>Error</title>") || !strings.Contains(out, "Code: UPL003") {
		t.Errorf("output = %s", out)
	}
}
