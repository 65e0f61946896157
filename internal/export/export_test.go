package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/drpaneas/devgrowth/internal/report"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	p := &profile.DeveloperProfile{
		User: profile.User{Username: "testdev", DisplayName: "Test Dev"},
		Repositories: []profile.Repository{
			{Name: "cli", LanguageBytes: map[string]int64{"Go": 900, "Shell": 100}},
			{Name: "site", LanguageBytes: map[string]int64{"TypeScript": 500}},
		},
	}
	p.RecomputeLanguageStats()

	rep := &report.Report{
		Strengths:           []string{"Ships focused CLI tools"},
		AreasForImprovement: []string{"Sparse READMEs"},
		Recommendations:     []string{"Write a design doc for cli"},
		TechnicalAssessment: "A pragmatic Go developer.",
		ProfileRating:       report.Rating{Score: 7.4, Explanation: "Solid overall."},
	}

	paths, err := w.Write("testdev", p, rep)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d", len(paths))
	}

	mdContent, err := os.ReadFile(filepath.Join(dir, "testdev", "REPORT.md"))
	if err != nil {
		t.Fatalf("reading markdown report: %v", err)
	}
	md := string(mdContent)
	for _, want := range []string{
		"# Developer growth report: @testdev",
		"Test Dev · 2 repositories analyzed · Go, Shell, TypeScript",
		"## Profile rating: 7.4/10",
		"- Ships focused CLI tools",
		"- Write a design doc for cli",
		"A pragmatic Go developer.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}

	jsContent, err := os.ReadFile(filepath.Join(dir, "testdev", "report.json"))
	if err != nil {
		t.Fatalf("reading json report: %v", err)
	}
	var got report.Report
	if err := json.Unmarshal(jsContent, &got); err != nil {
		t.Fatalf("report.json is not valid JSON: %v", err)
	}
	if got.ProfileRating.Score != 7.4 || got.TechnicalAssessment != rep.TechnicalAssessment {
		t.Errorf("report.json = %+v", got)
	}
}

func TestWrite_WithoutProfile(t *testing.T) {
	dir := t.TempDir()
	rep := &report.Report{}
	for _, s := range report.Sections {
		rep.Set(s, report.Fallback(s))
	}

	if _, err := NewWriter(dir).Write("testdev", nil, rep); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	md, err := os.ReadFile(filepath.Join(dir, "testdev", "REPORT.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "Unable to analyze strengths at this time") {
		t.Error("fallback content should render as ordinary content")
	}

	if _, err := NewWriter(dir).Write("testdev", nil, nil); err == nil {
		t.Error("expected error for nil report")
	}
}
