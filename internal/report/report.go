// Package report defines the developer growth report and its sections.
package report

// Section names one slot of a Report. The value doubles as the JSON key.
type Section string

const (
	Strengths           Section = "strengths"
	AreasForImprovement Section = "areasForImprovement"
	Recommendations     Section = "recommendations"
	TechnicalAssessment Section = "technicalAssessment"
	ProfileRating       Section = "profileRating"
)

// Sections lists every section in declaration order.
var Sections = []Section{Strengths, AreasForImprovement, Recommendations, TechnicalAssessment, ProfileRating}

// Rating is the overall 0–10 score with its explanation.
type Rating struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Report is the analysis result for one profile.
type Report struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
	Recommendations     []string `json:"recommendations"`
	TechnicalAssessment string   `json:"technicalAssessment"`
	ProfileRating       Rating   `json:"profileRating"`
}

// Update is emitted once per section when it settles.
type Update struct {
	Section Section `json:"section"`
	Data    any     `json:"data"`
}

// Value returns the section's current content.
func (r *Report) Value(s Section) any {
	switch s {
	case Strengths:
		return r.Strengths
	case AreasForImprovement:
		return r.AreasForImprovement
	case Recommendations:
		return r.Recommendations
	case TechnicalAssessment:
		return r.TechnicalAssessment
	case ProfileRating:
		return r.ProfileRating
	}
	return nil
}

// Set stores v into section s. It reports false when v has the wrong type
// for s.
func (r *Report) Set(s Section, v any) bool {
	switch s {
	case Strengths, AreasForImprovement, Recommendations:
		items, ok := v.([]string)
		if !ok {
			return false
		}
		switch s {
		case Strengths:
			r.Strengths = items
		case AreasForImprovement:
			r.AreasForImprovement = items
		default:
			r.Recommendations = items
		}
	case TechnicalAssessment:
		text, ok := v.(string)
		if !ok {
			return false
		}
		r.TechnicalAssessment = text
	case ProfileRating:
		rating, ok := v.(Rating)
		if !ok {
			return false
		}
		r.ProfileRating = rating
	default:
		return false
	}
	return true
}

// Clone returns a deep copy so callers can read it while the original
// keeps changing.
func (r *Report) Clone() *Report {
	c := *r
	c.Strengths = append([]string(nil), r.Strengths...)
	c.AreasForImprovement = append([]string(nil), r.AreasForImprovement...)
	c.Recommendations = append([]string(nil), r.Recommendations...)
	return &c
}

// Fallback returns the placeholder content used when section s fails.
// The placeholder is shown to the user as ordinary content.
func Fallback(s Section) any {
	switch s {
	case Strengths:
		return []string{"Unable to analyze strengths at this time"}
	case AreasForImprovement:
		return []string{"Unable to analyze areas for improvement at this time"}
	case Recommendations:
		return []string{"Unable to generate recommendations at this time"}
	case TechnicalAssessment:
		return "Unable to generate technical assessment at this time"
	case ProfileRating:
		return Rating{Score: 0, Explanation: "Unable to generate profile rating at this time"}
	}
	return nil
}
