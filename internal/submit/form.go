// Package submit is the client side of lead capture. A Submitter validates a
// Form locally and then tries an ordered chain of strategies (direct table
// insert, ingestion endpoint) until one stores the lead. Failures are
// classified where they happen and folded into one domain.Error that Render
// turns into the banner shown to the submitter.
package submit

import "github.com/tbourn/go-lead-backend/internal/domain"

// Form holds the raw field values as typed by the submitter.
type Form struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Service string
	Message string
}

// Input returns the normalized payload for the form's current values.
func (f *Form) Input() domain.LeadInput {
	return domain.LeadInput{
		Name:    f.Name,
		Email:   f.Email,
		Company: f.Company,
		Phone:   f.Phone,
		Service: f.Service,
		Message: f.Message,
	}.Normalize()
}

// Reset clears every field.
func (f *Form) Reset() { *f = Form{} }
