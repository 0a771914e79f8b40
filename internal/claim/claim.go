// Package claim drives the three-step business claim: send a claim email,
// confirm the emailed OTP, then fill in the business details.
package claim

import (
	"context"
	"log/slog"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/pkg/model"
)

// Step is the position of a Flow.
type Step int

const (
	StepEmail Step = iota
	StepOTP
	StepDetails
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepEmail:
		return "email"
	case StepOTP:
		return "otp"
	case StepDetails:
		return "details"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Number is the 1-based step number shown in the step indicator.
func (s Step) Number() int {
	return int(s) + 1
}

// Service is the part of the business service the flow calls.
type Service interface {
	Claim(ctx context.Context, placeID, businessEmail string) error
	VerifyClaim(ctx context.Context, placeID, otp string) error
	UpdateBusiness(ctx context.Context, placeID string, info model.BusinessInfo) error
}

// Fallback texts shown when the backend gives no message.
const (
	FallbackEmail   = "Failed to send claim request"
	FallbackOTP     = "Invalid OTP"
	FallbackDetails = "Failed to update business information"
)

// Flow is one claim attempt. It is not safe for concurrent use; a Flow
// belongs to one modal or command invocation.
type Flow struct {
	svc      Service
	logger   *slog.Logger
	business model.Business

	step   Step
	email  string
	info   model.BusinessInfo
	banner string
	errs   forms.Errors
}

// New starts a claim of business at StepEmail with the details pre-filled
// from the business record.
func New(svc Service, business model.Business, logger *slog.Logger) *Flow {
	return &Flow{
		svc:      svc,
		logger:   logging.Component(logger, "claim").With("place_id", business.PlaceID),
		business: business,
		step:     StepEmail,
		info:     business.Info(),
		errs:     forms.Errors{},
	}
}

// Resume rebuilds a flow that an earlier request left at step, for front
// ends that keep the step in the page rather than in memory. The step is
// only trusted as far as the flow could have got: StepOTP needs the email
// the code was sent to, and StepDetails needs verified, meaning the backend
// already records the caller as the claimant. Anything else, StepDone
// included, restarts at StepEmail.
func Resume(svc Service, business model.Business, step Step, email string, verified bool, logger *slog.Logger) *Flow {
	f := New(svc, business, logger)
	switch {
	case step == StepOTP && email != "":
		f.step, f.email = StepOTP, email
	case step == StepDetails && verified:
		f.step, f.email = StepDetails, email
	}
	return f
}

// Step returns the current step.
func (f *Flow) Step() Step { return f.step }

// Business returns the business being claimed.
func (f *Flow) Business() model.Business { return f.business }

// Email returns the business email submitted at the first step.
func (f *Flow) Email() string { return f.email }

// Details returns the details as last submitted, or as pre-filled.
func (f *Flow) Details() model.BusinessInfo { return f.info }

// Banner returns the error banner of the last failed submit, or "".
func (f *Flow) Banner() string { return f.banner }

// FieldErrors returns the field errors of the last submit.
func (f *Flow) FieldErrors() forms.Errors { return f.errs }

// Done reports whether the claim completed.
func (f *Flow) Done() bool { return f.step == StepDone }

// SubmitEmail sends the claim request and moves to StepOTP.
func (f *Flow) SubmitEmail(ctx context.Context, businessEmail string) error {
	if err := f.expect(StepEmail, StepOTP); err != nil {
		return err
	}
	form := forms.ClaimEmail{BusinessEmail: businessEmail}
	if f.invalid(form.Validate()) {
		return f.errs
	}
	if err := f.svc.Claim(ctx, f.business.PlaceID, form.BusinessEmail); err != nil {
		return f.fail(err, FallbackEmail)
	}
	f.email = form.BusinessEmail
	f.advance(StepOTP)
	return nil
}

// SubmitOTP confirms the claim code and moves to StepDetails.
func (f *Flow) SubmitOTP(ctx context.Context, otp string) error {
	if err := f.expect(StepOTP, StepDetails); err != nil {
		return err
	}
	form := forms.OTP{OTP: otp}
	if f.invalid(form.Validate()) {
		return f.errs
	}
	if err := f.svc.VerifyClaim(ctx, f.business.PlaceID, form.OTP); err != nil {
		return f.fail(err, FallbackOTP)
	}
	f.advance(StepDetails)
	return nil
}

// SubmitDetails saves the business details and completes the claim.
func (f *Flow) SubmitDetails(ctx context.Context, info model.BusinessInfo) error {
	if err := f.expect(StepDetails, StepDone); err != nil {
		return err
	}
	f.info = info
	f.errs = forms.Errors{}
	if err := f.svc.UpdateBusiness(ctx, f.business.PlaceID, info); err != nil {
		return f.fail(err, FallbackDetails)
	}
	f.advance(StepDone)
	return nil
}

// Back returns from StepOTP to StepEmail. It is the only backward move.
func (f *Flow) Back() error {
	if err := f.expect(StepOTP, StepEmail); err != nil {
		return err
	}
	f.advance(StepEmail)
	return nil
}

func (f *Flow) expect(from, to Step) error {
	if f.step != from {
		return &model.InvalidTransitionError{Flow: "claim", From: f.step.String(), To: to.String()}
	}
	return nil
}

func (f *Flow) invalid(errs forms.Errors) bool {
	f.errs = errs
	if errs.OK() {
		return false
	}
	f.banner = errs.First()
	return true
}

// fail records the banner and leaves the step unchanged.
func (f *Flow) fail(err error, fallback string) error {
	f.banner = model.MessageOf(err, fallback)
	f.logger.Warn("claim step failed", "step", f.step.String(), "error", err)
	return err
}

func (f *Flow) advance(to Step) {
	f.logger.Debug("claim step", "from", f.step.String(), "to", to.String())
	f.step = to
	f.banner = ""
	f.errs = forms.Errors{}
}
