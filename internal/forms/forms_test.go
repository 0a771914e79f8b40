package forms

import (
	"testing"
	"time"

	"github.com/me/bizdir/pkg/model"
)

func TestSignup_Validate(t *testing.T) {
	tests := []struct {
		name string
		form Signup
		want Errors
	}{
		{"valid", Signup{Name: "Ann", Email: "ann@x.co", Password: "secret"}, Errors{}},
		{"all empty", Signup{}, Errors{
			"name":     "Name is required",
			"email":    "Email is required",
			"password": "Password is required",
		}},
		{"blank name", Signup{Name: "   ", Email: "ann@x.co", Password: "secret"}, Errors{"name": "Name is required"}},
		{"bad email", Signup{Name: "Ann", Email: "ann@x", Password: "secret"}, Errors{"email": "Email is invalid"}},
		{"short password", Signup{Name: "Ann", Email: "ann@x.co", Password: "12345"}, Errors{
			"password": "Password must be at least 6 characters",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.form.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("errors = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestLogin_Validate(t *testing.T) {
	f := Login{Email: " ann@x.co ", Password: "x"}
	if errs := f.Validate(); !errs.OK() {
		t.Errorf("unexpected errors: %v", errs)
	}
	if f.Email != "ann@x.co" {
		t.Errorf("email not trimmed: %q", f.Email)
	}

	f = Login{Email: "nope"}
	errs := f.Validate()
	if errs.Get("email") != "Email is invalid" || errs.Get("password") != "Password is required" {
		t.Errorf("errors = %v", errs)
	}
}

func TestForgotPassword_Validate(t *testing.T) {
	f := ForgotPassword{Email: "bad"}
	if got := f.Validate().Get("email"); got != "Please enter a valid email" {
		t.Errorf("message = %q", got)
	}
	f = ForgotPassword{}
	if got := f.Validate().Get("email"); got != "Email is required" {
		t.Errorf("message = %q", got)
	}
}

func TestOTP_Validate(t *testing.T) {
	for _, code := range []string{"", "12345", "1234567"} {
		f := OTP{OTP: code}
		if got := f.Validate().Get("otp"); got != "Please enter a valid 6-digit OTP" {
			t.Errorf("otp %q: message = %q", code, got)
		}
	}
	f := OTP{OTP: "123456"}
	if errs := f.Validate(); !errs.OK() {
		t.Errorf("valid otp rejected: %v", errs)
	}
}

func TestUpdatePassword_Validate(t *testing.T) {
	tests := []struct {
		name  string
		form  UpdatePassword
		field string
		want  string
	}{
		{"missing", UpdatePassword{}, "newPassword", "Password is required"},
		{"short", UpdatePassword{NewPassword: "abc", ConfirmPassword: "abc"}, "newPassword", "Password must be at least 6 characters"},
		{"no confirm", UpdatePassword{NewPassword: "abcdef"}, "confirmPassword", "Please confirm your password"},
		{"mismatch", UpdatePassword{NewPassword: "abcdef", ConfirmPassword: "abcdeg"}, "confirmPassword", "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.Validate().Get(tt.field); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
			}
		})
	}

	ok := UpdatePassword{NewPassword: "abcdef", ConfirmPassword: "abcdef"}
	if errs := ok.Validate(); !errs.OK() {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestPoll_Validate(t *testing.T) {
	f := Poll{Question: "Best dish?", Options: []string{"Dosa", "  ", ""}}
	if got := f.Validate().Get("options"); got != "Please provide at least 2 options" {
		t.Errorf("message = %q", got)
	}

	f = Poll{Question: "Best dish?", Options: []string{" Dosa ", "", "Idli"}}
	if errs := f.Validate(); !errs.OK() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(f.Options) != 2 || f.Options[0] != "Dosa" || f.Options[1] != "Idli" {
		t.Errorf("options = %q", f.Options)
	}
}

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		price string
		valid bool
	}{
		{" 3.50 ", true},
		{"0", true},
		{"-1", false},
		{"abc", false},
		{"", false},
		{"Inf", false},
		{"+Inf", false},
		{"-Inf", false},
		{"NaN", false},
		{"1e400", false},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			f := Item{Name: "Latte", Price: tt.price}
			got := f.Validate().Get("price")
			if (got == "") != tt.valid {
				t.Errorf("price %q: error = %q, want valid = %v", tt.price, got, tt.valid)
			}
		})
	}

	f := Item{Name: "Latte", Price: "-1"}
	if got := f.Validate().Get("price"); got != "Price must be a non-negative number" {
		t.Errorf("message = %q", got)
	}
	f = Item{Name: "Latte", Price: " 3.50 "}
	if errs := f.Validate(); !errs.OK() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if f.PriceValue() != 3.5 {
		t.Errorf("price = %v", f.PriceValue())
	}
}

func TestOffer_Validate(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(model.DateLayout)
	today := time.Now().Format(model.DateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(model.DateLayout)

	for _, d := range []string{today, tomorrow} {
		f := Offer{Title: "20% off", Description: "Mains", ValidTill: d}
		if errs := f.Validate(); !errs.OK() {
			t.Errorf("validTill %s rejected: %v", d, errs)
		}
	}
	for _, d := range []string{yesterday, "31/12/2099", "soon"} {
		f := Offer{Title: "20% off", Description: "Mains", ValidTill: d}
		if f.Validate().Get("validTill") == "" {
			t.Errorf("validTill %q accepted", d)
		}
	}
}

func TestSearchAndClaim_Validate(t *testing.T) {
	s := Search{Location: " ", Type: "Cafe"}
	if got := s.Validate().Get("location"); got != "Location is required" {
		t.Errorf("location = %q", got)
	}
	c := ClaimEmail{BusinessEmail: "owner@"}
	if got := c.Validate().Get("businessEmail"); got != "Business email is invalid" {
		t.Errorf("businessEmail = %q", got)
	}
	a := Announcement{Title: "Hi"}
	if got := a.Validate().Get("message"); got != "Message is required" {
		t.Errorf("message = %q", got)
	}
}

func TestErrors_First(t *testing.T) {
	e := Errors{"password": "p", "email": "e"}
	if e.First() != "e" {
		t.Errorf("First = %q", e.First())
	}
	if (Errors{}).First() != "" {
		t.Error("empty First should be empty")
	}
}
