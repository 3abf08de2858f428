package letters_test

import (
	"strings"
	"testing"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/letters"
)

func TestFlattenOrdersSections(t *testing.T) {
	sections := []ai.Section{
		{Type: "demand", Title: "Demand", Content: "We demand payment.", Order: 2},
		{Type: "introduction", Title: "Introduction", Content: "We represent Ms. Smith.", Order: 1},
	}

	content := letters.Flatten(sections)

	wantIntro := "## Introduction\n\nWe represent Ms. Smith."
	if !strings.HasPrefix(content, wantIntro) {
		t.Errorf("content does not start with introduction:\n%s", content)
	}
	if !strings.Contains(content, "## Demand\n\nWe demand payment.") {
		t.Errorf("content missing demand section:\n%s", content)
	}
	if strings.Index(content, "## Introduction") > strings.Index(content, "## Demand") {
		t.Error("sections out of order")
	}
}

func TestFlattenEmpty(t *testing.T) {
	if content := letters.Flatten(nil); content != "" {
		t.Errorf("content: got %q, want empty", content)
	}
}

func TestParseSections(t *testing.T) {
	content := "## Introduction\n\nWe represent Ms. Smith.\n\n## Demand\n\nWe demand payment.\n\nWithin 30 days."

	sections := letters.ParseSections(content)
	if len(sections) != 2 {
		t.Fatalf("sections: got %d, want 2", len(sections))
	}

	if sections[0].Type != "introduction" || sections[0].Title != "Introduction" {
		t.Errorf("first section: %+v", sections[0])
	}
	if sections[0].Order != 1 || sections[1].Order != 2 {
		t.Errorf("orders: %d, %d", sections[0].Order, sections[1].Order)
	}
	if sections[1].Content != "We demand payment.\n\nWithin 30 days." {
		t.Errorf("second content: %q", sections[1].Content)
	}
}

func TestParseSectionsIgnoresPreamble(t *testing.T) {
	content := "stray text\n\n## Closing\n\nSincerely."

	sections := letters.ParseSections(content)
	if len(sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(sections))
	}
	if sections[0].Type != "closing" {
		t.Errorf("type: got %s, want closing", sections[0].Type)
	}
}

func TestSectionsRoundTrip(t *testing.T) {
	original := []ai.Section{
		{Type: "header", Title: "Header", Content: "Finch Law LLP", Order: 1},
		{Type: "facts", Title: "Facts", Content: "On January 3 the defendant ran a red light.", Order: 2},
		{Type: "pain_and_suffering", Title: "Pain and Suffering", Content: "Ongoing physical therapy.", Order: 3},
	}

	parsed := letters.ParseSections(letters.Flatten(original))
	if len(parsed) != len(original) {
		t.Fatalf("sections: got %d, want %d", len(parsed), len(original))
	}

	for i, s := range parsed {
		if s.Type != original[i].Type {
			t.Errorf("section %d type: got %s, want %s", i, s.Type, original[i].Type)
		}
		if s.Title != original[i].Title {
			t.Errorf("section %d title: got %s, want %s", i, s.Title, original[i].Title)
		}
		if s.Content != original[i].Content {
			t.Errorf("section %d content: got %q, want %q", i, s.Content, original[i].Content)
		}
		if s.Order != original[i].Order {
			t.Errorf("section %d order: got %d, want %d", i, s.Order, original[i].Order)
		}
	}
}
