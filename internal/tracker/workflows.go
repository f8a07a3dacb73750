package tracker

import (
	"encoding/json"
	"fmt"
)

// Names of the analysis workflows the dashboard knows how to show.
const (
	WorkflowExtractRoleDetails  = "extract_role_details"
	WorkflowGenerateCoverLetter = "generate_cover_letter"
	WorkflowResearchCompany     = "research_company"
)

// WorkflowView is the display shape of one workflow result for one
// application. Only the fields of its workflow kind are set.
type WorkflowView struct {
	WorkflowName     string                       `json:"workflow_name"`
	Responsibilities json.RawMessage              `json:"responsibilities,omitempty"`
	Requirements     json.RawMessage              `json:"requirements,omitempty"`
	CoverLetter      string                       `json:"cover_letter,omitempty"`
	CompanyResearch  map[string][]ResearchExample `json:"company_research,omitempty"`
}

// ResearchExample is a company value with an example backing it.
type ResearchExample struct {
	Value   string `json:"value"`
	Example string `json:"example"`
}

type roleDetails struct {
	JobID            int64           `json:"job_id"`
	Responsibilities json.RawMessage `json:"responsibilities"`
	Requirements     json.RawMessage `json:"requirements"`
}

// WorkflowViews renders the workflows linked to application appID.
// Unknown workflow names are skipped. A workflow whose output cannot be
// decoded is skipped and reported in the returned errors.
func WorkflowViews(appID int64, workflows []Workflow) ([]WorkflowView, []error) {
	views := make([]WorkflowView, 0, len(workflows))
	var errs []error
	for _, w := range workflows {
		switch w.Name {
		case WorkflowExtractRoleDetails:
			var details []roleDetails
			if err := json.Unmarshal([]byte(w.Output), &details); err != nil {
				errs = append(errs, fmt.Errorf("workflow %d %s: %w", w.ID, w.Name, err))
				continue
			}
			for _, d := range details {
				if d.JobID != appID {
					continue
				}
				views = append(views, WorkflowView{
					WorkflowName:     w.Name,
					Responsibilities: d.Responsibilities,
					Requirements:     d.Requirements,
				})
			}
		case WorkflowGenerateCoverLetter:
			views = append(views, WorkflowView{WorkflowName: w.Name, CoverLetter: w.Output})
		case WorkflowResearchCompany:
			var research map[string][]ResearchExample
			if err := json.Unmarshal([]byte(w.Output), &research); err != nil {
				errs = append(errs, fmt.Errorf("workflow %d %s: %w", w.ID, w.Name, err))
				continue
			}
			views = append(views, WorkflowView{WorkflowName: w.Name, CompanyResearch: research})
		}
	}
	return views, errs
}
