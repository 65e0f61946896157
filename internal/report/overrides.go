package report

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides maps a handle to a fixed report that replaces the model-backed
// analysis entirely. Lookups are case-insensitive. The zero value is empty.
type Overrides struct {
	byHandle map[string]Report
}

// Lookup returns the fixed report for handle, if any.
func (o *Overrides) Lookup(handle string) (*Report, bool) {
	if o == nil || o.byHandle == nil {
		return nil, false
	}
	r, ok := o.byHandle[strings.ToLower(handle)]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Len returns the number of entries.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.byHandle)
}

// Add registers r for handle, replacing any existing entry.
func (o *Overrides) Add(handle string, r Report) {
	if o.byHandle == nil {
		o.byHandle = make(map[string]Report)
	}
	o.byHandle[strings.ToLower(handle)] = r
}

// overrideFile is the on-disk layout:
//
//	overrides:
//	  - handle: someone
//	    report:
//	      strengths: [...]
//	      profileRating: {score: 10, explanation: "..."}
type overrideFile struct {
	Overrides []struct {
		Handle string     `yaml:"handle"`
		Report yamlReport `yaml:"report"`
	} `yaml:"overrides"`
}

type yamlReport struct {
	Strengths           []string `yaml:"strengths"`
	AreasForImprovement []string `yaml:"areasForImprovement"`
	Recommendations     []string `yaml:"recommendations"`
	TechnicalAssessment string   `yaml:"technicalAssessment"`
	ProfileRating       struct {
		Score       float64 `yaml:"score"`
		Explanation string  `yaml:"explanation"`
	} `yaml:"profileRating"`
}

// ParseOverrides decodes a YAML override table.
func ParseOverrides(data []byte) (*Overrides, error) {
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	o := &Overrides{}
	for i, e := range f.Overrides {
		if strings.TrimSpace(e.Handle) == "" {
			return nil, fmt.Errorf("override %d: handle is required", i)
		}
		score := e.Report.ProfileRating.Score
		if score < 0 || score > 10 {
			return nil, fmt.Errorf("override %q: score %.1f outside 0-10", e.Handle, score)
		}
		o.Add(e.Handle, Report{
			Strengths:           e.Report.Strengths,
			AreasForImprovement: e.Report.AreasForImprovement,
			Recommendations:     e.Report.Recommendations,
			TechnicalAssessment: e.Report.TechnicalAssessment,
			ProfileRating:       Rating{Score: score, Explanation: e.Report.ProfileRating.Explanation},
		})
	}
	return o, nil
}

// LoadOverrides returns the built-in table, extended (and, per handle,
// replaced) by the entries in path when path is non-empty.
func LoadOverrides(path string) (*Overrides, error) {
	o := DefaultOverrides()
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}
	extra, err := ParseOverrides(data)
	if err != nil {
		return nil, err
	}
	for h, r := range extra.byHandle {
		o.Add(h, r)
	}
	return o, nil
}

// DefaultOverrides holds the one built-in entry: the creator of Linux and
// Git gets a fixed celebratory report instead of a model-generated one.
func DefaultOverrides() *Overrides {
	o := &Overrides{}
	o.Add("torvalds", Report{
		Strengths: []string{
			"Created Linux, the kernel running most of the world's servers, phones and supercomputers",
			"Created Git, the version control system nearly every developer uses daily",
			"Decades of sustained technical leadership of one of the largest collaborative projects in history",
			"Deep systems programming expertise in C",
			"Legendary code review standards",
		},
		AreasForImprovement: []string{
			"Honestly? We couldn't find any.",
			"Maybe add a few more stars to your repositories. Just kidding.",
		},
		Recommendations: []string{
			"Keep doing what you're doing",
			"Consider taking a well-deserved vacation",
		},
		TechnicalAssessment: "An exceptional engineer whose work underpins modern computing. " +
			"Linux and Git define how software is built, shipped and collaborated on worldwide.",
		ProfileRating: Rating{
			Score:       10,
			Explanation: "**Impact**: 10/10\n**Technical Depth**: 10/10\n**Leadership**: 10/10\n**Consistency**: 10/10\n**Community**: 10/10\n\nThere is no higher rating.",
		},
	})
	return o
}
