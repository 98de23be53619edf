package submit

import (
	"errors"
	"fmt"
	"time"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// Banner messages.
const (
	MsgSuccess   = "Thank you for your message! We'll get back to you within 24 hours."
	MsgDuplicate = "It looks like you've already submitted a message with this email address. We'll get back to you soon!"
	MsgNetwork   = "Network error. Please check your internet connection and try again."
	MsgBusy      = "Your message is being sent. Please wait."
)

// SuccessDismissAfter is how long the success banner stays up.
const SuccessDismissAfter = 5 * time.Second

// Tone is the visual style of a banner.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Banner is the message shown above the form after a submit. A zero
// AutoDismiss keeps it until the next submit.
type Banner struct {
	Tone        Tone
	Text        string
	AutoDismiss time.Duration
}

// Contact is the manual channel offered when everything else failed.
type Contact struct {
	Email string
	Phone string
}

// Outcome is the result of one Submit call.
type Outcome struct {
	Receipt *Receipt
	Err     error
}

// Render maps an outcome to the banner for the submitter.
func Render(o Outcome, c Contact) Banner {
	if o.Err == nil {
		return Banner{Tone: ToneSuccess, Text: MsgSuccess, AutoDismiss: SuccessDismissAfter}
	}
	if errors.Is(o.Err, ErrSubmitInProgress) {
		return Banner{Tone: ToneError, Text: MsgBusy}
	}

	switch domain.KindOf(o.Err) {
	case domain.KindConflict:
		return Banner{Tone: ToneError, Text: MsgDuplicate}
	case domain.KindNetwork:
		return Banner{Tone: ToneError, Text: networkMessage(c)}
	case domain.KindValidation:
		if msg := domain.MessageOf(o.Err); msg != "" {
			return Banner{Tone: ToneError, Text: msg}
		}
	}
	return Banner{Tone: ToneError, Text: genericMessage(c)}
}

func genericMessage(c Contact) string {
	msg := "Sorry, there was an error submitting your message. Please try again or contact us directly"
	if at := contactAt(c); at != "" {
		return msg + at
	}
	return msg + "."
}

// networkMessage keeps the manual channel visible when every strategy
// failed to reach the backend.
func networkMessage(c Contact) string {
	if at := contactAt(c); at != "" {
		return MsgNetwork + " If the problem persists, contact us directly" + at + "."
	}
	return MsgNetwork
}

func contactAt(c Contact) string {
	switch {
	case c.Email != "" && c.Phone != "":
		return fmt.Sprintf(" at %s or %s", c.Email, c.Phone)
	case c.Email != "":
		return " at " + c.Email
	case c.Phone != "":
		return " at " + c.Phone
	}
	return ""
}
