package tracker

import "time"

// Application is a tracked job application.
type Application struct {
	ID             int64     `json:"id"`
	JobTitle       string    `json:"job_title"`
	CompanyName    string    `json:"company_name"`
	CompanyURL     string    `json:"company_url"`
	JobDescription string    `json:"job_description"`
	ResumeVersion  string    `json:"resume_version"`
	Salary         string    `json:"salary"`
	CoverLetter    string    `json:"cover_letter"`
	Status         Status    `json:"status"`
	Source         Source    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewApplication carries the fields accepted by AddJob. Status and Source
// fall back to InitialStatus and DefaultSource when empty.
type NewApplication struct {
	JobTitle       string `json:"job_title"`
	CompanyName    string `json:"company_name"`
	CompanyURL     string `json:"company_url"`
	JobDescription string `json:"job_description"`
	ResumeVersion  string `json:"resume_version"`
	Salary         string `json:"salary"`
	Status         string `json:"status"`
	Source         string `json:"source"`
}

// Step is an append-only timeline entry of an application.
type Step struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"job_application_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResearchData is a categorised note about an application.
type ResearchData struct {
	ID            int64            `json:"id"`
	ApplicationID int64            `json:"job_application_id"`
	Category      ResearchCategory `json:"category"`
	Info          string           `json:"info"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// JobBoard is a site the user checks for openings.
type JobBoard struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	LastVisited *time.Time `json:"last_visited"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Workflow is the stored result of an external analysis run. The tracker
// only reads workflows.
type Workflow struct {
	ID         int64     `json:"workflow_id"`
	Name       string    `json:"workflow_name"`
	CreatedAt  time.Time `json:"created_at"`
	Prompt     string    `json:"prompt"`
	AgentModel string    `json:"agent_model"`
	Output     string    `json:"output"`
	Parameters string    `json:"parameters"`
}

// WorkExperience is an entry of the user's work history.
type WorkExperience struct {
	ID           int64             `json:"id"`
	JobTitle     string            `json:"job_title"`
	CompanyName  string            `json:"company_name"`
	CompanyURL   string            `json:"company_url"`
	StartDate    time.Time         `json:"start_date"`
	EndDate      time.Time         `json:"end_date"`
	Achievements []WorkAchievement `json:"work_achievements"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// WorkAchievement is a note attached to a work history entry.
type WorkAchievement struct {
	ID               int64     `json:"id"`
	WorkExperienceID int64     `json:"work_experience_id"`
	Description      string    `json:"description"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
