package answerer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/provider"
)

func TestAnswer(t *testing.T) {
	gen := provider.NewMockGenerator("Dług publiczny wynosił 52% PKB.")
	a := New(gen, nil)

	passages := []models.Passage{
		{Content: "Dług publiczny 2023: 52% PKB", Source: "dlug.csv", Score: 0.9},
		{Content: "Deficyt sektora: 5,1%", Source: "deficyt.csv", Score: 0.8},
	}
	answer, err := a.Answer(context.Background(), "Jaki był dług publiczny w 2023?", passages)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Dług publiczny wynosił 52% PKB." {
		t.Errorf("answer = %q", answer)
	}

	req := gen.Request(0)
	if req.System == "" {
		t.Error("system persona must be set")
	}
	if !strings.Contains(req.Prompt, "Dług publiczny 2023: 52% PKB") {
		t.Error("prompt should contain passage content")
	}
	if !strings.Contains(req.Prompt, "Jaki był dług publiczny w 2023?") {
		t.Error("prompt should contain the question")
	}
	if !strings.Contains(req.Prompt, RefusalInsufficient) {
		t.Error("prompt should instruct the exact refusal sentence")
	}
	if !strings.Contains(req.Prompt, RefusalTooGeneral) {
		t.Error("prompt should instruct the too-general refusal sentence")
	}
}

func TestAnswer_NoPassages(t *testing.T) {
	gen := provider.NewMockGenerator(RefusalInsufficient)
	a := New(gen, nil)

	answer, err := a.Answer(context.Background(), "Ile wynosi X?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if answer != RefusalInsufficient {
		t.Errorf("answer = %q", answer)
	}
}

func TestAnswer_GeneratorFailure(t *testing.T) {
	boom := errors.New("rate limited")
	a := New(provider.NewFailingGenerator(boom), nil)

	_, err := a.Answer(context.Background(), "Pytanie", nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped upstream error", err)
	}
}

func TestIsRefusal(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{RefusalInsufficient, true},
		{"NIE POSIADAM WYSTARCZAJĄCYCH INFORMACJI, aby odpowiedzieć.", true},
		{"Niestety, nie posiadam wystarczających informacji w tej sprawie.", true},
		{RefusalTooGeneral, false},
		{"Dług publiczny wynosił 52% PKB.", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRefusal(tt.answer); got != tt.want {
			t.Errorf("IsRefusal(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}
