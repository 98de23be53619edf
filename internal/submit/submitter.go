package submit

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// ErrSubmitInProgress is returned when Submit is called while another
// attempt of the same Submitter is still running.
var ErrSubmitInProgress = errors.New("submit: a submission is already in progress")

// ErrNoStrategy is returned when the Submitter was built without strategies.
var ErrNoStrategy = &domain.Error{Kind: domain.KindServer, Msg: "no submission method configured"}

// DefaultServiceLabel tags analytics events of submissions without a service.
const DefaultServiceLabel = "General Inquiry"

// Event is the analytics record of one successful submission.
type Event struct {
	Name       string // always "form_submit"
	Category   string // always "Contact"
	Label      string // service, or DefaultServiceLabel
	Value      int
	Via        string
	HasCompany bool
	HasPhone   bool
}

// Tracker receives analytics events. Implementations must not block.
type Tracker interface {
	Track(ctx context.Context, ev Event)
}

// TrackerFunc adapts a function to Tracker.
type TrackerFunc func(ctx context.Context, ev Event)

func (f TrackerFunc) Track(ctx context.Context, ev Event) { f(ctx, ev) }

// LogTracker writes events to the context logger.
type LogTracker struct{}

func (LogTracker) Track(ctx context.Context, ev Event) {
	zerolog.Ctx(ctx).Info().
		Str("event", ev.Name).
		Str("category", ev.Category).
		Str("label", ev.Label).
		Str("via", ev.Via).
		Bool("has_company", ev.HasCompany).
		Bool("has_phone", ev.HasPhone).
		Msg("form submitted")
}

// Submitter runs the fallback chain for one form.
type Submitter struct {
	strategies []Strategy
	rules      domain.Rules
	tracker    Tracker
	newKey     func() string

	busy atomic.Bool
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithStrategies appends strategies; they are tried in the order given.
func WithStrategies(s ...Strategy) Option {
	return func(sub *Submitter) {
		for _, st := range s {
			if st != nil {
				sub.strategies = append(sub.strategies, st)
			}
		}
	}
}

// WithRules overrides the local validation rules (StrictRules by default).
func WithRules(r domain.Rules) Option { return func(s *Submitter) { s.rules = r } }

// WithTracker sets the analytics sink.
func WithTracker(t Tracker) Option { return func(s *Submitter) { s.tracker = t } }

// WithKeyFunc overrides the idempotency key generator.
func WithKeyFunc(fn func() string) Option { return func(s *Submitter) { s.newKey = fn } }

// NewSubmitter builds a Submitter from opts.
func NewSubmitter(opts ...Option) *Submitter {
	s := &Submitter{
		rules:   domain.StrictRules,
		tracker: LogTracker{},
		newKey:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Busy reports whether a submission is running.
func (s *Submitter) Busy() bool { return s.busy.Load() }

// Submit validates f and tries each strategy in order until one stores the
// lead. On success f is reset and an analytics event is emitted. On failure
// f is left as is and the returned error is a *domain.Error: a conflict from
// any attempt wins, otherwise the last attempt's kind is reported.
func (s *Submitter) Submit(ctx context.Context, f *Form) (*Receipt, error) {
	in := f.Input()
	if err := in.Validate(s.rules); err != nil {
		return nil, err
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer s.busy.Store(false)

	if len(s.strategies) == 0 {
		return nil, ErrNoStrategy
	}

	logger := zerolog.Ctx(ctx)
	key := s.newKey()

	var errs []error
	for _, st := range s.strategies {
		rc, err := st.Submit(ctx, in, key)
		if err == nil {
			if rc.Via == "" {
				rc.Via = st.Name()
			}
			f.Reset()
			s.track(ctx, in, rc)
			return rc, nil
		}
		logger.Warn().Err(err).Str("strategy", st.Name()).Msg("submission attempt failed")
		errs = append(errs, err)
	}
	return nil, consolidate(errs)
}

func (s *Submitter) track(ctx context.Context, in domain.LeadInput, rc *Receipt) {
	if s.tracker == nil {
		return
	}
	label := in.Service
	if label == "" {
		label = DefaultServiceLabel
	}
	s.tracker.Track(ctx, Event{
		Name:       "form_submit",
		Category:   "Contact",
		Label:      label,
		Value:      1,
		Via:        rc.Via,
		HasCompany: in.Company != "",
		HasPhone:   in.Phone != "",
	})
}

// consolidate folds per-strategy failures into one error.
func consolidate(errs []error) error {
	var chosen *domain.Error
	for _, err := range errs {
		de := classified("submission", err)
		if chosen != nil && chosen.Kind == domain.KindConflict {
			continue
		}
		chosen = de
	}
	return &domain.Error{
		Kind:  chosen.Kind,
		Field: chosen.Field,
		Msg:   chosen.Msg,
		Err:   errors.Join(errs...),
	}
}
