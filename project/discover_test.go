package project

import "testing"

func TestLangForHonorsOverride(t *testing.T) {
	if got := langFor("widget.hpp", "c"); got != "" {
		t.Fatalf("expected no match for .hpp under c override, got %q", got)
	}
	if got := langFor("widget.hpp", "cpp"); got != "cpp" {
		t.Fatalf("expected cpp, got %q", got)
	}
}

func TestLangForInfersFromSuffix(t *testing.T) {
	if got := langFor("main.c", ""); got != "c" {
		t.Fatalf("expected c, got %q", got)
	}
	if got := langFor("main.cpp", ""); got != "cpp" {
		t.Fatalf("expected cpp, got %q", got)
	}
	if got := langFor("README.md", ""); got != "" {
		t.Fatalf("expected no match for .md, got %q", got)
	}
}
