package model

import "testing"

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		url  string
		want error
	}{
		{"https://example.com", nil},
		{"http://localhost:8080/docs", nil},
		{"", ErrInvalidURL},
		{"example.com", ErrInvalidURL},
		{"/relative/path", ErrInvalidURL},
		{"mailto:someone", ErrInvalidURL},
	}

	for _, tt := range tests {
		d := &Document{URL: tt.url}
		if err := d.Validate(); err != tt.want {
			t.Errorf("Validate(%q) = %v, want %v", tt.url, err, tt.want)
		}
	}
}

func TestMergeTags(t *testing.T) {
	d := &Document{Tags: "go, search"}
	d.MergeTags(&Document{Tags: "Search,ai"})

	if d.Tags != "go,search,ai" {
		t.Errorf("Expected merged tags 'go,search,ai', got '%s'", d.Tags)
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if len(id) != 26 {
		t.Errorf("Expected 26 char ID, got %d (%s)", len(id), id)
	}
	if !ValidateID(id) {
		t.Errorf("Generated ID %s failed validation", id)
	}
	if ValidateID("ab-cd-ef") {
		t.Error("Expected ID with dashes to be rejected")
	}
}

func TestLinkRecordLabel(t *testing.T) {
	if got := (LinkRecord{URL: "https://a.dev"}).Label(); got != "https://a.dev" {
		t.Errorf("Label() = %q", got)
	}
	if got := (LinkRecord{URL: "https://a.dev", Title: "A"}).Label(); got != "A" {
		t.Errorf("Label() = %q", got)
	}
}
