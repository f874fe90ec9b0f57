package models_test

import (
	"errors"
	"testing"

	"github.com/tavtun/docsys/internal/models"
)

func TestParseDocumentCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    models.DocumentCategory
		wantErr bool
	}{
		{"FORMULAIRE_DOC", models.CategoryFormulaire, false},
		{"QUALITE_DOC", models.CategoryQualite, false},
		{"NOUVEAU_DOC", models.CategoryNouveau, false},
		{"GENERAL", models.CategoryGeneral, false},
		{"CORRESPONDANCE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := models.ParseDocumentCategory(tt.in)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidValue) {
					t.Errorf("err = %v, want ErrInvalidValue", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDocumentStatus(t *testing.T) {
	for _, s := range []string{"DRAFT", "ACTIVE", "ARCHIVED"} {
		if _, err := models.ParseDocumentStatus(s); err != nil {
			t.Errorf("ParseDocumentStatus(%q) error = %v", s, err)
		}
	}

	if _, err := models.ParseDocumentStatus("draft"); err == nil {
		t.Error("ParseDocumentStatus(draft) expected error for lowercase value")
	}
}

func TestEnumValid(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"role agent bureau ordre", models.RoleAgentBureauOrdre.Valid(), true},
		{"role unknown", models.UserRole("ROOT").Valid(), false},
		{"priority urgent", models.PriorityUrgent.Valid(), true},
		{"priority unknown", models.Priority("CRITICAL").Valid(), false},
		{"action cancelled", models.ActionCancelled.Valid(), true},
		{"action unknown", models.ActionStatus("DONE").Valid(), false},
		{"airport generale", models.AirportGenerale.Valid(), true},
		{"airport unknown", models.Airport("TUNIS").Valid(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Valid() = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	if r, err := models.ParseUserRole("APPROVER"); err != nil || r != models.RoleApprover {
		t.Errorf("ParseUserRole(APPROVER) = %q, %v", r, err)
	}
	if _, err := models.ParsePriority("critical"); !errors.Is(err, models.ErrInvalidValue) {
		t.Errorf("ParsePriority(critical) err = %v", err)
	}
	if s, err := models.ParseActionStatus("IN_PROGRESS"); err != nil || s != models.ActionInProgress {
		t.Errorf("ParseActionStatus(IN_PROGRESS) = %q, %v", s, err)
	}
	if a, err := models.ParseAirport("MONASTIR"); err != nil || a != models.AirportMonastir {
		t.Errorf("ParseAirport(MONASTIR) = %q, %v", a, err)
	}
	if len(models.Airports()) != 3 {
		t.Errorf("Airports() = %v", models.Airports())
	}
}
