package tracker

import (
	"bytes"
	"encoding/json"
)

// Field names an application column that UpdateField may write.
type Field string

const (
	FieldStatus        Field = "status"
	FieldSource        Field = "source"
	FieldSalary        Field = "salary"
	FieldCoverLetter   Field = "cover_letter"
	FieldResumeVersion Field = "resume_version"
)

// Title and description of the step recorded when an application is sent.
const (
	AppliedStepTitle       = "Applied"
	AppliedStepDescription = "Application sent"
)

// ParseField checks name against the update allow-list.
func ParseField(name string) (Field, error) {
	f := Field(name)
	switch f {
	case FieldStatus, FieldSource, FieldSalary, FieldCoverLetter, FieldResumeVersion:
		return f, nil
	}
	return "", invalidf("Invalid field %s", name)
}

// IsFreeText reports whether f is written without value validation.
func (f Field) IsFreeText() bool {
	return f == FieldSalary || f == FieldCoverLetter || f == FieldResumeVersion
}

// ParseFieldUpdate decodes a {"<field>": "<value>"} request body.
func ParseFieldUpdate(body []byte) (Field, string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &raw); err != nil || raw == nil {
		return "", "", malformedf("body must be a JSON object with a single field")
	}
	if len(raw) != 1 {
		return "", "", malformedf("body must contain exactly one field, got %d", len(raw))
	}
	for name, v := range raw {
		var value string
		if err := json.Unmarshal(v, &value); err != nil || bytes.Equal(v, []byte("null")) {
			return "", "", malformedf("value of %s must be a string", name)
		}
		f, err := ParseField(name)
		if err != nil {
			return "", "", err
		}
		return f, value, nil
	}
	return "", "", malformedf("body must contain exactly one field")
}

// CreatesAppliedStep reports whether moving from → to records the
// "Applied" timeline step. Only the move out of the initial state into
// Applied does.
func CreatesAppliedStep(from, to Status) bool {
	return from == InitialStatus && to == StatusApplied
}

// applyField validates value for f and writes it into app. It returns the
// step implied by the change, if any. app is untouched on error.
func applyField(app *Application, f Field, value string) (*Step, error) {
	switch f {
	case FieldSalary:
		app.Salary = value
	case FieldCoverLetter:
		app.CoverLetter = value
	case FieldResumeVersion:
		app.ResumeVersion = value
	case FieldSource:
		src, err := ParseSource(value)
		if err != nil {
			return nil, invalidf("Invalid source")
		}
		app.Source = src
	case FieldStatus:
		st, err := ParseStatus(value)
		if err != nil {
			return nil, invalidf("Invalid status")
		}
		var step *Step
		if CreatesAppliedStep(app.Status, st) {
			step = &Step{
				ApplicationID: app.ID,
				Title:         AppliedStepTitle,
				Description:   AppliedStepDescription,
			}
		}
		app.Status = st
		return step, nil
	default:
		return nil, invalidf("Invalid field %s", f)
	}
	return nil, nil
}
