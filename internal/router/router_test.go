package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/civiclab/radca/internal/catalog"
	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/provider"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]models.Domain{
		{ID: "finanse_publiczne", Description: "Dane o stanie zadłużenia publicznego."},
		{ID: "geologia_sejsmika", Description: "Zjawiska sejsmiczne na obszarze GZW."},
	})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestRoute(t *testing.T) {
	cat := testCatalog(t)
	gen := provider.NewMockGenerator("geologia_sejsmika")
	r := New(cat, gen, nil)

	domain, err := r.Route(context.Background(), "Ile trzęsień zanotowano w 2023?")
	if err != nil {
		t.Fatal(err)
	}
	if domain != "geologia_sejsmika" {
		t.Errorf("domain = %s, want geologia_sejsmika", domain)
	}

	req := gen.Request(0)
	if !strings.Contains(req.Prompt, "finanse_publiczne: Dane o stanie zadłużenia publicznego.") {
		t.Error("prompt should list every domain with its description")
	}
	if !strings.Contains(req.Prompt, "Ile trzęsień zanotowano w 2023?") {
		t.Error("prompt should contain the question")
	}
	if req.Temperature != 0 {
		t.Errorf("classification temperature = %v, want 0", req.Temperature)
	}
}

func TestRoute_NormalizesReply(t *testing.T) {
	cat := testCatalog(t)
	for _, reply := range []string{
		"finanse_publiczne",
		"  finanse_publiczne\n",
		"'finanse_publiczne'",
		"\"finanse_publiczne\"",
	} {
		r := New(cat, provider.NewMockGenerator(reply), nil)
		domain, err := r.Route(context.Background(), "Jaki jest dług publiczny?")
		if err != nil {
			t.Errorf("reply %q: %v", reply, err)
			continue
		}
		if domain != "finanse_publiczne" {
			t.Errorf("reply %q routed to %s", reply, domain)
		}
	}
}

func TestRoute_Unresolved(t *testing.T) {
	cat := testCatalog(t)
	r := New(cat, provider.NewMockGenerator("pogoda"), nil)

	_, err := r.Route(context.Background(), "Jaka będzie pogoda jutro?")
	if !errors.Is(err, ErrUnresolved) {
		t.Errorf("err = %v, want ErrUnresolved", err)
	}
}

func TestRoute_GeneratorFailure(t *testing.T) {
	cat := testCatalog(t)
	boom := errors.New("upstream timeout")
	r := New(cat, provider.NewFailingGenerator(boom), nil)

	_, err := r.Route(context.Background(), "Jaki jest dług publiczny?")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped upstream error", err)
	}
	if errors.Is(err, ErrUnresolved) {
		t.Error("provider failure must not look like an unresolved domain")
	}
}
