package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Validation messages shown to the submitter.
const (
	MsgRequiredFields = "Please fill in all required fields (Name, Email, and Message)."
	MsgInvalidEmail   = "Please enter a valid email address."
	MsgShortMessage   = "Please provide a more detailed message (at least 10 characters)."
	MsgShortName      = "Name must be at least 2 characters long."
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LeadInput is the raw payload a client submits. All fields are strings and
// may contain surrounding whitespace until Normalize is called.
type LeadInput struct {
	Name    string `json:"name"              example:"Ada Lovelace"`
	Email   string `json:"email"             example:"ada@example.com"`
	Message string `json:"message"           example:"Hello there, interested in services."`
	Company string `json:"company,omitempty" example:"Analytical Engines Ltd"`
	Phone   string `json:"phone,omitempty"   example:"+44 20 7946 0000"`
	Service string `json:"service,omitempty" example:"automation"`
}

// Rules selects how strict validation is. The endpoint and the client can
// run different variants; the zero value only checks presence and email shape.
type Rules struct {
	MinMessageLen int // runes, 0 disables
	MinNameLen    int // runes, 0 disables
}

var (
	// StrictRules is what the contact form enforces on submit. Name length
	// is left to callers that opt in through MinNameLen.
	StrictRules = Rules{MinMessageLen: 10}
	// BasicRules only requires the fields and a plausible email.
	BasicRules = Rules{}
)

// Normalize trims every field after NFC normalization so that visually equal
// input compares and measures the same.
func (in LeadInput) Normalize() LeadInput {
	clean := func(s string) string { return strings.TrimSpace(norm.NFC.String(s)) }
	return LeadInput{
		Name:    clean(in.Name),
		Email:   clean(in.Email),
		Message: clean(in.Message),
		Company: clean(in.Company),
		Phone:   clean(in.Phone),
		Service: clean(in.Service),
	}
}

// Validate checks a normalized input and returns the first violation as a
// validation-kind *Error, or nil.
func (in LeadInput) Validate(r Rules) error {
	switch {
	case in.Name == "":
		return NewValidation("name", MsgRequiredFields)
	case in.Email == "":
		return NewValidation("email", MsgRequiredFields)
	case in.Message == "":
		return NewValidation("message", MsgRequiredFields)
	}
	if !ValidEmail(in.Email) {
		return NewValidation("email", MsgInvalidEmail)
	}
	if r.MinMessageLen > 0 && utf8.RuneCountInString(in.Message) < r.MinMessageLen {
		return NewValidation("message", MsgShortMessage)
	}
	if r.MinNameLen > 0 && utf8.RuneCountInString(in.Name) < r.MinNameLen {
		return NewValidation("name", MsgShortName)
	}
	return nil
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool { return emailRE.MatchString(s) }
