// Package forms validates page input before any network call is made.
// Each form is a struct with validator tags; failures come back as a
// field-scoped Errors map carrying the text shown next to the field.
package forms

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/me/bizdir/pkg/model"
)

// OTPLength is the length of every one-time code the backend sends.
const OTPLength = 6

// MinPasswordLength is the shortest password the signup and reset forms accept.
const MinPasswordLength = 6

var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

// Errors maps a form field to its error message.
type Errors map[string]string

// OK reports whether there are no errors.
func (e Errors) OK() bool { return len(e) == 0 }

// Get returns the message for field, or "".
func (e Errors) Get(field string) string { return e[field] }

// First returns the message of the alphabetically first field, for
// front ends that show a single line.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e[keys[0]]
}

func (e Errors) Error() string {
	return e.First()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("form"), ","); name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	must(v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		p, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && !math.IsInf(p, 0) && !math.IsNaN(p) && p >= 0
	}))
	must(v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		d, err := time.ParseInLocation(model.DateLayout, fl.Field().String(), time.Local)
		if err != nil {
			return false
		}
		y, m, day := time.Now().Date()
		return !d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.Local))
	}))
	must(v.RegisterValidation("options", func(fl validator.FieldLevel) bool {
		opts, ok := fl.Field().Interface().([]string)
		return ok && len(nonEmpty(opts)) >= 2
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// check validates form and translates failures with msgs, keyed
// "field.tag". Only the first failing rule of a field is reported.
func check(form any, msgs map[string]string) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		msg, ok := msgs[field+"."+fe.Tag()]
		if !ok {
			msg = field + " is invalid"
		}
		errs[field] = msg
	}
	return errs
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// --- Account forms ---

// Signup is the user and owner signup form.
type Signup struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,emailshape"`
	Password string `form:"password" validate:"required,min=6"`
}

var signupMessages = map[string]string{
	"name.required":     "Name is required",
	"email.required":    "Email is required",
	"email.emailshape":  "Email is invalid",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
}

// Validate trims the name and email and checks every field.
func (f *Signup) Validate() Errors {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return check(f, signupMessages)
}

// Login is the login form.
type Login struct {
	Email    string `form:"email" validate:"required,emailshape"`
	Password string `form:"password" validate:"required"`
}

// Validate checks the login form.
func (f *Login) Validate() Errors {
	f.Email = strings.TrimSpace(f.Email)
	return check(f, signupMessages)
}

// ForgotPassword is the password reset request form.
type ForgotPassword struct {
	Email string `form:"email" validate:"required,emailshape"`
}

// Validate checks the reset request form.
func (f *ForgotPassword) Validate() Errors {
	f.Email = strings.TrimSpace(f.Email)
	return check(f, map[string]string{
		"email.required":   "Email is required",
		"email.emailshape": "Please enter a valid email",
	})
}

// OTP is a one-time code form: email verification, password reset and
// the claim flow all use it.
type OTP struct {
	OTP string `form:"otp" validate:"len=6"`
}

// Validate checks the code length.
func (f *OTP) Validate() Errors {
	f.OTP = strings.TrimSpace(f.OTP)
	return check(f, map[string]string{
		"otp.len": "Please enter a valid 6-digit OTP",
	})
}

// UpdatePassword is the new password form.
type UpdatePassword struct {
	NewPassword     string `form:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Validate checks the new password and its confirmation.
func (f *UpdatePassword) Validate() Errors {
	return check(f, map[string]string{
		"newPassword.required":     "Password is required",
		"newPassword.min":          "Password must be at least 6 characters",
		"confirmPassword.required": "Please confirm your password",
		"confirmPassword.eqfield":  "Passwords do not match",
	})
}

// --- Directory forms ---

// Search is the business search form.
type Search struct {
	Location string `form:"location" validate:"required"`
	Type     string `form:"type" validate:"required"`
}

// Validate trims both fields and requires them.
func (f *Search) Validate() Errors {
	f.Location = strings.TrimSpace(f.Location)
	f.Type = strings.TrimSpace(f.Type)
	return check(f, map[string]string{
		"location.required": "Location is required",
		"type.required":     "Business type is required",
	})
}

// ClaimEmail is the first claim step.
type ClaimEmail struct {
	BusinessEmail string `form:"businessEmail" validate:"required,emailshape"`
}

// Validate checks the business email.
func (f *ClaimEmail) Validate() Errors {
	f.BusinessEmail = strings.TrimSpace(f.BusinessEmail)
	return check(f, map[string]string{
		"businessEmail.required":   "Business email is required",
		"businessEmail.emailshape": "Business email is invalid",
	})
}

// Item is the add-item form. Price is kept as typed so that a bad number
// can be reported against the field.
type Item struct {
	Name      string `form:"name" validate:"required"`
	Price     string `form:"price" validate:"required,price"`
	Available bool   `form:"available"`
}

// Validate checks the item form.
func (f *Item) Validate() Errors {
	f.Name = strings.TrimSpace(f.Name)
	f.Price = strings.TrimSpace(f.Price)
	return check(f, map[string]string{
		"name.required":  "Item name is required",
		"price.required": "Price is required",
		"price.price":    "Price must be a non-negative number",
	})
}

// PriceValue returns the parsed price. Call it after Validate.
func (f *Item) PriceValue() float64 {
	p, _ := strconv.ParseFloat(f.Price, 64)
	return p
}

// Offer is the create-offer form.
type Offer struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description" validate:"required"`
	ValidTill   string `form:"validTill" validate:"required,notpast"`
}

// Validate checks the offer form. ValidTill must be YYYY-MM-DD and not
// earlier than today.
func (f *Offer) Validate() Errors {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.ValidTill = strings.TrimSpace(f.ValidTill)
	return check(f, map[string]string{
		"title.required":       "Title is required",
		"description.required": "Description is required",
		"validTill.required":   "Valid till date is required",
		"validTill.notpast":    "Valid till must be a date (YYYY-MM-DD) that is not in the past",
	})
}

// Poll is the create-poll form.
type Poll struct {
	Question string   `form:"question" validate:"required"`
	Options  []string `form:"options" validate:"options"`
}

// Validate checks the poll form. Blank options are dropped first.
func (f *Poll) Validate() Errors {
	f.Question = strings.TrimSpace(f.Question)
	errs := check(f, map[string]string{
		"question.required": "Question is required",
		"options.options":   "Please provide at least 2 options",
	})
	f.Options = nonEmpty(f.Options)
	return errs
}

// Announcement is the create-announcement form.
type Announcement struct {
	Title   string `form:"title" validate:"required"`
	Message string `form:"message" validate:"required"`
}

// Validate checks the announcement form.
func (f *Announcement) Validate() Errors {
	f.Title = strings.TrimSpace(f.Title)
	f.Message = strings.TrimSpace(f.Message)
	return check(f, map[string]string{
		"title.required":   "Title is required",
		"message.required": "Message is required",
	})
}
