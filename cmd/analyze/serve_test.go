package main

import "testing"

func TestSourceInputSchemaRequiresLangAndSource(t *testing.T) {
	schema := sourceInputSchema()
	if schema.Type != "object" {
		t.Fatalf("schema.Type = %q, want object", schema.Type)
	}
	want := map[string]bool{"lang": false, "source": false}
	for _, name := range schema.Required {
		if _, ok := want[name]; !ok {
			t.Fatalf("unexpected required field %q", name)
		}
		want[name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("required field %q missing from schema", name)
		}
	}
	if _, ok := schema.Properties["lang"]; !ok {
		t.Fatal("schema missing lang property")
	}
	if _, ok := schema.Properties["source"]; !ok {
		t.Fatal("schema missing source property")
	}
}

func TestToolErrorMarksResultAsError(t *testing.T) {
	result, err := toolError("bad input")
	if err != nil {
		t.Fatalf("toolError returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError true")
	}
	if len(result.Content) == 0 {
		t.Fatal("expected non-empty content")
	}
}
