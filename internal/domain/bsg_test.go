package domain

import "testing"

func TestExtractBSGNumber(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"space separated", "BSG 432.311", "432.311"},
		{"underscore separated", "BSG_153_01.pdf", "153"},
		{"filename with extension", "BSG_432.311.pdf", "432.311"},
		{"with suffix", "BSG 153.01-1", "153.01-1"},
		{"embedded in title", "Volksschulgesetz BSG 432.210", "432.210"},
		{"no number", "Irgendein Dokument", ""},
		{"no prefix", "432.311", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBSGNumber(tt.title); got != tt.want {
				t.Errorf("ExtractBSGNumber(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestLawURL(t *testing.T) {
	want := "https://www.belex.sites.be.ch/api/de/texts_of_law/432.311"
	if got := LawURL("432.311"); got != want {
		t.Errorf("LawURL() = %q, want %q", got, want)
	}
}
