package main

import (
	"testing"

	"github.com/viant/codeviews/graph"
	"github.com/viant/codeviews/syntax"
)

func TestParseLang(t *testing.T) {
	cases := map[string]syntax.Language{"c": syntax.C, "cpp": syntax.Cpp}
	for in, want := range cases {
		got, err := parseLang(in)
		if err != nil {
			t.Fatalf("parseLang(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("parseLang(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseLang("python"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestParseGraphKinds(t *testing.T) {
	got, err := parseGraphKinds("cfg, dfg,combined")
	if err != nil {
		t.Fatalf("parseGraphKinds: %v", err)
	}
	want := []string{"cfg", "dfg", "combined"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if _, err := parseGraphKinds(""); err == nil {
		t.Fatal("expected error for empty --graphs")
	}
	if _, err := parseGraphKinds("bogus"); err == nil {
		t.Fatal("expected error for unknown graph kind")
	}
}

func TestParseFormats(t *testing.T) {
	if got, err := parseFormats("all"); err != nil || len(got) != 2 {
		t.Fatalf("parseFormats(all) = %v, %v", got, err)
	}
	if _, err := parseFormats("xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestEmitProducesNonEmptyPayloadForBothFormats(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Label: "entry", KindTag: "entry"})

	for _, format := range []string{"json", "dot"} {
		payload, err := emit(g, format)
		if err != nil {
			t.Fatalf("emit(%s): %v", format, err)
		}
		if len(payload) == 0 {
			t.Fatalf("emit(%s) produced empty payload", format)
		}
	}

	if _, err := emit(g, "xml"); err == nil {
		t.Fatal("expected error for unsupported emit format")
	}
}

func TestExitCodeForMapsCliErrorCodes(t *testing.T) {
	if code := exitCodeFor(flagError(errTest)); code != 2 {
		t.Fatalf("flagError exit code = %d, want 2", code)
	}
	if code := exitCodeFor(parseError(errTest)); code != 1 {
		t.Fatalf("parseError exit code = %d, want 1", code)
	}
	if code := exitCodeFor(errTest); code != 1 {
		t.Fatalf("plain error exit code = %d, want 1", code)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

var errTest = testError("boom")
