package validation

import (
	"net/http"
	"strings"
	"testing"
)

type signup struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Region          string `json:"region" validate:"region"`
}

func TestValidateStructOK(t *testing.T) {
	in := signup{Username: "a", Email: "a@example.com", Password: "pw", ConfirmPassword: "pw", Region: "Europe"}
	if err := ValidateStruct(&in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructMessages(t *testing.T) {
	tests := []struct {
		name string
		in   signup
		want string
	}{
		{"missing username", signup{Email: "a@example.com", Password: "p", ConfirmPassword: "p"}, "username is required"},
		{"bad email", signup{Username: "a", Email: "nope", Password: "p", ConfirmPassword: "p"}, "email must be a valid email address"},
		{"mismatch", signup{Username: "a", Email: "a@example.com", Password: "p", ConfirmPassword: "q"}, "confirmPassword must match Password"},
		{"bad region", signup{Username: "a", Email: "a@example.com", Password: "p", ConfirmPassword: "p", Region: "Oceania"}, "region must be a known region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Status != http.StatusBadRequest {
				t.Errorf("status = %d", err.Status)
			}
			if !strings.Contains(err.Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", err.Message, tt.want)
			}
		})
	}
}
