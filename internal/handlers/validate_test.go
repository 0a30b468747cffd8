package handlers

import (
	"strings"
	"testing"
)

func TestPolicyFormValidate(t *testing.T) {
	tests := []struct {
		name string
		form policyForm
		want string
	}{
		{"valid", policyForm{Name: "Password Policy", Content: "# Password Policy"}, ""},
		{"empty content allowed", policyForm{Name: "Draft"}, ""},
		{"missing name", policyForm{Content: "x"}, "Policy name is required."},
		{"name too long", policyForm{Name: strings.Repeat("a", 301)}, "Policy name is too long (max 300 characters)."},
		{"name at limit", policyForm{Name: strings.Repeat("é", 300)}, ""},
		{"content too long", policyForm{Name: "x", Content: strings.Repeat("a", maxContentLen+1)}, "Policy content is too long (max 500,000 characters)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formMessage(tt.form.Validate(), "name", "content")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoryFormValidate(t *testing.T) {
	tests := []struct {
		name string
		form categoryForm
		want string
	}{
		{"valid", categoryForm{Name: "Security", Icon: "Shield"}, ""},
		{"empty icon allowed", categoryForm{Name: "HR"}, ""},
		{"missing name", categoryForm{Icon: "Lock"}, "Category name is required."},
		{"unknown icon", categoryForm{Name: "HR", Icon: "Rocket"}, "Unknown category icon."},
		{"name too long", categoryForm{Name: strings.Repeat("a", 101)}, "Category name is too long (max 100 characters)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formMessage(tt.form.Validate(), "name", "icon")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormMessageOrder(t *testing.T) {
	err := loginForm{}.Validate()
	if got := formMessage(err, "username", "password"); got != "Username is required." {
		t.Errorf("got %q, want the username error first", got)
	}
	if got := formMessage(err, "password", "username"); got != "Password is required." {
		t.Errorf("got %q, want the password error first", got)
	}
}
