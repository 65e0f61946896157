package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetAndValue(t *testing.T) {
	r := &Report{}
	values := map[Section]any{
		Strengths:           []string{"a"},
		AreasForImprovement: []string{"b"},
		Recommendations:     []string{"c"},
		TechnicalAssessment: "solid",
		ProfileRating:       Rating{Score: 7.5, Explanation: "good"},
	}
	for s, v := range values {
		if !r.Set(s, v) {
			t.Fatalf("Set(%s) rejected %v", s, v)
		}
	}
	if r.Value(TechnicalAssessment) != "solid" {
		t.Errorf("TechnicalAssessment = %v", r.Value(TechnicalAssessment))
	}
	if got := r.Value(ProfileRating).(Rating); got.Score != 7.5 {
		t.Errorf("ProfileRating = %+v", got)
	}
	if got := r.Value(Recommendations).([]string); len(got) != 1 || got[0] != "c" {
		t.Errorf("Recommendations = %v", got)
	}
}

func TestSetRejectsWrongType(t *testing.T) {
	r := &Report{}
	tests := []struct {
		section Section
		value   any
	}{
		{Strengths, "not a list"},
		{TechnicalAssessment, []string{"x"}},
		{ProfileRating, 7.0},
		{Section("bogus"), "x"},
	}
	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			if r.Set(tt.section, tt.value) {
				t.Errorf("Set(%s, %T) = true, want false", tt.section, tt.value)
			}
		})
	}
}

func TestFallbackMatchesSectionType(t *testing.T) {
	for _, s := range Sections {
		r := &Report{}
		if !r.Set(s, Fallback(s)) {
			t.Errorf("Fallback(%s) has the wrong type for its section", s)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := &Report{Strengths: []string{"a", "b"}}
	c := r.Clone()
	c.Strengths[0] = "changed"
	if r.Strengths[0] != "a" {
		t.Error("Clone shares the strengths slice with the original")
	}
}

func TestDefaultOverrides(t *testing.T) {
	o := DefaultOverrides()
	r, ok := o.Lookup("Torvalds")
	if !ok {
		t.Fatal("expected built-in override to match case-insensitively")
	}
	if r.ProfileRating.Score != 10 {
		t.Errorf("Score = %v, want 10", r.ProfileRating.Score)
	}
	if _, ok := o.Lookup("octocat"); ok {
		t.Error("unexpected override for octocat")
	}

	var empty *Overrides
	if _, ok := empty.Lookup("torvalds"); ok {
		t.Error("nil Overrides must not match")
	}
}

func TestParseOverrides(t *testing.T) {
	data := []byte(`
overrides:
  - handle: Gopher
    report:
      strengths: [mascot]
      technicalAssessment: furry
      profileRating:
        score: 9.5
        explanation: very blue
`)
	o, err := ParseOverrides(data)
	if err != nil {
		t.Fatalf("ParseOverrides() error: %v", err)
	}
	r, ok := o.Lookup("gopher")
	if !ok {
		t.Fatal("gopher override missing")
	}
	if r.TechnicalAssessment != "furry" || r.ProfileRating.Score != 9.5 || r.Strengths[0] != "mascot" {
		t.Errorf("report = %+v", r)
	}
}

func TestParseOverridesInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "overrides: [\n"},
		{"missing handle", "overrides:\n  - report: {technicalAssessment: x}\n"},
		{"score too high", "overrides:\n  - handle: a\n    report: {profileRating: {score: 11}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOverrides([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	if err := os.WriteFile(path, []byte("overrides:\n  - handle: rob\n    report: {technicalAssessment: plan9}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error: %v", err)
	}
	if o.Len() != 2 {
		t.Errorf("Len() = %d, want built-in plus file entry", o.Len())
	}
	if _, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderHTML(t *testing.T) {
	r := &Report{
		Strengths:           []string{"Writes <b>tests</b>"},
		AreasForImprovement: []string{"Docs"},
		Recommendations:     []string{"Blog more"},
		TechnicalAssessment: "Solid.",
		ProfileRating:       Rating{Score: 7.5, Explanation: "Good"},
	}
	out, err := RenderHTML("octo", r)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"@octo", "7.5/10", "<li>Writes &lt;b&gt;tests&lt;/b&gt;</li>", "<li>Blog more</li>", "Solid."} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
	if _, err := RenderHTML("octo", nil); err == nil {
		t.Error("expected error for nil report")
	}
}
