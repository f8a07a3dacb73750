// Package tracker holds the job-application pipeline: the status taxonomy,
// field transitions, dashboard aggregates and display ordering.
//
// Status priority (lower rank is shown first) and dashboard category:
//
//	1 Offer                  → Offer
//	2 Technical Interview    → In Progress
//	3 HR Interview           → In Progress
//	4 Preparing Application  → Preparing Application
//	5 Applied                → Applied
//	6 Ghosted                → Negative
//	7 Rejected               → Negative
//	8 Avoid                  → Negative
package tracker

import "fmt"

// Status is the lifecycle state of a job application.
type Status string

const (
	StatusPreparing          Status = "Preparing Application"
	StatusApplied            Status = "Applied"
	StatusGhosted            Status = "Ghosted"
	StatusAvoid              Status = "Avoid"
	StatusRejected           Status = "Rejected"
	StatusTechnicalInterview Status = "Technical Interview"
	StatusHRInterview        Status = "HR Interview"
	StatusOffer              Status = "Offer"
)

// InitialStatus is assigned to applications created without a status.
const InitialStatus = StatusPreparing

// Category is the coarse dashboard grouping of statuses.
type Category string

const (
	CategoryPreparing  Category = "Preparing Application"
	CategoryApplied    Category = "Applied"
	CategoryInProgress Category = "In Progress"
	CategoryNegative   Category = "Negative"
	CategoryOffer      Category = "Offer"
)

// Source is where an application was found.
type Source string

const (
	SourceLinkedIn       Source = "LinkedIn"
	SourceCareersWebsite Source = "Careers Website"
	SourceOther          Source = "Other"
)

// DefaultSource is assigned to applications created without a source.
const DefaultSource = SourceCareersWebsite

// statusInfo keeps rank and category in one row so neither can drift.
type statusInfo struct {
	rank     int
	category Category
}

var statusTable = map[Status]statusInfo{
	StatusOffer:              {1, CategoryOffer},
	StatusTechnicalInterview: {2, CategoryInProgress},
	StatusHRInterview:        {3, CategoryInProgress},
	StatusPreparing:          {4, CategoryPreparing},
	StatusApplied:            {5, CategoryApplied},
	StatusGhosted:            {6, CategoryNegative},
	StatusRejected:           {7, CategoryNegative},
	StatusAvoid:              {8, CategoryNegative},
}

// statusChoices is the declaration order offered to clients.
var statusChoices = []Status{
	StatusPreparing,
	StatusApplied,
	StatusGhosted,
	StatusAvoid,
	StatusRejected,
	StatusTechnicalInterview,
	StatusHRInterview,
	StatusOffer,
}

var categoryOrder = []Category{
	CategoryPreparing,
	CategoryApplied,
	CategoryInProgress,
	CategoryNegative,
	CategoryOffer,
}

var sourceChoices = []Source{SourceLinkedIn, SourceCareersWebsite, SourceOther}

// Statuses returns every valid status in declaration order.
func Statuses() []Status {
	out := make([]Status, len(statusChoices))
	copy(out, statusChoices)
	return out
}

// Categories returns every dashboard category in canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Sources returns every valid source.
func Sources() []Source {
	out := make([]Source, len(sourceChoices))
	copy(out, sourceChoices)
	return out
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusTable[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// ParseSource converts a raw string to a Source.
func ParseSource(s string) (Source, error) {
	for _, src := range sourceChoices {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown application source %q", s)
}

// IsValid reports whether s belongs to the taxonomy.
func (s Status) IsValid() bool {
	_, ok := statusTable[s]
	return ok
}

// PriorityRank returns the display rank of s; lower sorts first.
// Unknown statuses rank after every known one.
func PriorityRank(s Status) int {
	if info, ok := statusTable[s]; ok {
		return info.rank
	}
	return len(statusTable) + 1
}

// CategoryOf maps a status to its dashboard category.
func CategoryOf(s Status) (Category, bool) {
	info, ok := statusTable[s]
	return info.category, ok
}

// ResearchCategory classifies a research note attached to an application.
type ResearchCategory int

const (
	ResearchResponsibility  ResearchCategory = 1
	ResearchRequirement     ResearchCategory = 2
	ResearchCompanyResearch ResearchCategory = 3
	ResearchRoleResearch    ResearchCategory = 4
)

// ParseResearchCategory validates a raw category code.
func ParseResearchCategory(code int) (ResearchCategory, error) {
	c := ResearchCategory(code)
	switch c {
	case ResearchResponsibility, ResearchRequirement, ResearchCompanyResearch, ResearchRoleResearch:
		return c, nil
	}
	return 0, fmt.Errorf("unknown research category %d", code)
}
