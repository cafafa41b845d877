package catalog

import (
	"strings"
	"testing"

	"github.com/civiclab/radca/internal/models"
)

func testDomains() []models.Domain {
	return []models.Domain{
		{ID: "weather", Description: "Opady, temperatury i inne dane pogodowe."},
		{ID: "finance", Description: "Dane o finansach publicznych i długu."},
	}
}

func TestNew(t *testing.T) {
	c, err := New(testDomains())
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if !c.Has("weather") || !c.Has("finance") {
		t.Error("expected both domains present")
	}
	if c.Has("unknown_domain") {
		t.Error("Has should be false for unknown id")
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("empty catalog should error")
	}
	if _, err := New([]models.Domain{{ID: "", Description: "x"}}); err == nil {
		t.Error("empty id should error")
	}
	if _, err := New([]models.Domain{{ID: "a", Description: ""}}); err == nil {
		t.Error("empty description should error")
	}
	dup := []models.Domain{
		{ID: "a", Description: "x"},
		{ID: "a", Description: "y"},
	}
	if _, err := New(dup); err == nil {
		t.Error("duplicate id should error")
	}
}

func TestDescribe(t *testing.T) {
	c, err := New(testDomains())
	if err != nil {
		t.Fatal(err)
	}
	got := c.Describe()
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "weather: Opady, temperatury i inne dane pogodowe." {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "finance: ") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestDomains_ReturnsCopy(t *testing.T) {
	c, err := New(testDomains())
	if err != nil {
		t.Fatal(err)
	}
	ds := c.Domains()
	ds[0].ID = "mutated"
	if !c.Has("weather") {
		t.Error("mutating the returned slice must not affect the catalog")
	}
}
