package awards

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("agency", "DOD")
	values.Set("branch", "DARPA")
	values.Set("controlled", "true")

	f := FiltersFromQuery(values)

	if f.Agency == nil || *f.Agency != "DOD" {
		t.Error("agency filter not extracted")
	}
	if f.Branch == nil || *f.Branch != "DARPA" {
		t.Error("branch filter not extracted")
	}
	if f.Controlled == nil || !*f.Controlled {
		t.Error("controlled filter not extracted")
	}
	if f.AwardNumber != nil {
		t.Error("absent parameter produced a filter")
	}
}

func TestFiltersFromQueryIgnoresBadControlled(t *testing.T) {
	values := url.Values{}
	values.Set("controlled", "maybe")

	if f := FiltersFromQuery(values); f.Controlled != nil {
		t.Error("invalid controlled value produced a filter")
	}
}

func TestValidateCreate(t *testing.T) {
	valid := CreateCommand{
		AwardNumber: "FA8750-26-C-0001",
		Agency:      "DOD",
		Title:       "Qubit Control Electronics",
		AwardDate:   time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(*CreateCommand)
		wantErr bool
	}{
		{"valid", func(*CreateCommand) {}, false},
		{"missing award number", func(c *CreateCommand) { c.AwardNumber = " " }, true},
		{"missing agency", func(c *CreateCommand) { c.Agency = "" }, true},
		{"missing title", func(c *CreateCommand) { c.Title = "" }, true},
		{"negative amount", func(c *CreateCommand) { c.AmountCents = -1 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := valid
			tc.mutate(&cmd)

			err := validateCreate(cmd)
			if tc.wantErr && !errors.Is(err, ErrInvalidAward) {
				t.Errorf("err = %v, want ErrInvalidAward", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHasSolicitation(t *testing.T) {
	source := "sbir"
	id := "SOL-1"
	empty := ""

	tests := []struct {
		name  string
		award Award
		want  bool
	}{
		{"both set", Award{SolicitationSource: &source, SolicitationID: &id}, true},
		{"missing id", Award{SolicitationSource: &source}, false},
		{"empty source", Award{SolicitationSource: &empty, SolicitationID: &id}, false},
		{"neither", Award{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.award.HasSolicitation(); got != tc.want {
				t.Errorf("HasSolicitation = %v, want %v", got, tc.want)
			}
		})
	}
}
