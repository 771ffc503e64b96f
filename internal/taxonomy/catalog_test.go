package taxonomy

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewCatalogValidation(t *testing.T) {
	effective := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	unknown := "nope"

	tests := []struct {
		name       string
		version    string
		categories []Category
	}{
		{"empty version", "", []Category{{ID: "a"}}},
		{"no categories", "v1", nil},
		{"empty category id", "v1", []Category{{ID: " "}}},
		{"duplicate id", "v1", []Category{{ID: "a"}, {ID: "a"}}},
		{"unknown parent", "v1", []Category{{ID: "a", ParentID: &unknown}}},
		{"invalid status", "v1", []Category{{ID: "a", Status: "paused"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.version, effective, tc.categories); !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("err = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestCatalogActiveIDs(t *testing.T) {
	catalog, err := NewCatalog("v1", time.Now(), []Category{
		{ID: "zeta"},
		{ID: "alpha", Status: StatusRetired},
		{ID: "mid"},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	if got, want := catalog.IDs(), []string{"alpha", "mid", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
	if got, want := catalog.ActiveIDs(), []string{"mid", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveIDs = %v, want %v", got, want)
	}
}

func TestCatalogDefaultsStatusActive(t *testing.T) {
	catalog, err := NewCatalog("v1", time.Now(), []Category{{ID: "a"}})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	cat, ok := catalog.Category("a")
	if !ok {
		t.Fatal("category missing")
	}
	if cat.Status != StatusActive {
		t.Errorf("status = %s, want active", cat.Status)
	}
}

func TestParseDocument(t *testing.T) {
	doc := `
version: cet-2026.1
effective_date: 2026-03-01
categories:
  - id: biotech
    name: Biotechnology
    keywords:
      core: ["gene therapy"]
      negative: ["agriculture"]
  - id: medical_devices
    name: Medical Devices
    parent: biotech
    status: retired
`

	catalog, err := ParseDocument([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if catalog.Version() != "cet-2026.1" {
		t.Errorf("version = %s", catalog.Version())
	}
	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !catalog.EffectiveDate().Equal(want) {
		t.Errorf("effective date = %v, want %v", catalog.EffectiveDate(), want)
	}

	biotech, _ := catalog.Category("biotech")
	if !reflect.DeepEqual(biotech.Core, []string{"gene therapy"}) {
		t.Errorf("core keywords = %v", biotech.Core)
	}

	devices, _ := catalog.Category("medical_devices")
	if devices.ParentID == nil || *devices.ParentID != "biotech" {
		t.Error("parent reference not preserved")
	}
	if devices.Status != StatusRetired {
		t.Errorf("status = %s, want retired", devices.Status)
	}
}

func TestParseDocumentRejectsBadDate(t *testing.T) {
	doc := `
version: v1
effective_date: 03/01/2026
categories:
  - id: a
`

	if _, err := ParseDocument([]byte(doc)); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("err = %v, want ErrInvalidCatalog", err)
	}
}
