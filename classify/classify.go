// Package classify implements the Node Classifier (spec.md C1): a purely
// syntactic dispatch table, per language, answering whether a parser kind
// is a statement worth modeling, a control statement, a loop header, a
// definition, or a statement-holder. Grounded on the kind-switch dispatch
// repeated across the pack's C/C++ extractors (see DESIGN.md).
package classify

import "github.com/viant/codeviews/syntax"

// Info is everything the rest of the pipeline needs to know about a parser
// kind, decided once per kind rather than scattered across call sites.
type Info struct {
	Statement bool // worth modeling as a GraphNode
	Control   bool // branches or loops control flow
	Loop      bool // is a loop header
	Definition bool // function/class/namespace/enum/typedef
	Holder    bool // holds a list of statements (block, translation unit)
	Jump      bool // break/continue/goto/return
}

// Table is a closed per-language lookup from parser kind to Info.
type Table map[string]Info

// Lookup returns the Info for kind, defaulting to the zero value (not a
// statement) for anything the table doesn't name — matching spec.md §9's
// "closed enum, switch exhaustively" guidance: unknown kinds are inert by
// default rather than causing a crash.
func (t Table) Lookup(kind string) Info { return t[kind] }

func (t Table) IsStatement(kind string) bool  { return t[kind].Statement }
func (t Table) IsControl(kind string) bool    { return t[kind].Control }
func (t Table) IsLoop(kind string) bool       { return t[kind].Loop }
func (t Table) IsDefinition(kind string) bool { return t[kind].Definition }
func (t Table) IsHolder(kind string) bool     { return t[kind].Holder }
func (t Table) IsJump(kind string) bool       { return t[kind].Jump }

// For returns the table for a language.
func For(lang syntax.Language) Table {
	if lang == syntax.Cpp {
		return cppTable
	}
	return cTable
}

// cTable is shared by both languages; cppTable embeds it and adds the OO
// and exception-handling kinds C++ introduces (spec.md §4.1).
var cTable = Table{
	"translation_unit":       {Holder: true},
	"compound_statement":     {Holder: true},
	"function_definition":    {Statement: true, Definition: true, Holder: true},
	"declaration":            {Statement: true},
	"expression_statement":   {Statement: true},
	"if_statement":           {Statement: true, Control: true},
	"while_statement":        {Statement: true, Control: true, Loop: true},
	"do_statement":           {Statement: true, Control: true, Loop: true},
	"for_statement":          {Statement: true, Control: true, Loop: true},
	"switch_statement":       {Statement: true, Control: true},
	"case_statement":         {Statement: true, Control: true},
	"labeled_statement":      {Statement: true},
	"break_statement":        {Statement: true, Control: true, Jump: true},
	"continue_statement":     {Statement: true, Control: true, Jump: true},
	"goto_statement":         {Statement: true, Control: true, Jump: true},
	"return_statement":       {Statement: true, Jump: true},
	"struct_specifier":       {Statement: true, Definition: true, Holder: true},
	"union_specifier":        {Statement: true, Definition: true, Holder: true},
	"enum_specifier":         {Statement: true, Definition: true},
	"type_definition":        {Statement: true, Definition: true},
	"preproc_if":             {Statement: true},
	"preproc_ifdef":          {Statement: true},
	"preproc_elif":           {Statement: true},
	"preproc_else":           {Statement: true},
	"preproc_def":            {Statement: true},
	"preproc_function_def":   {Statement: true},
	"preproc_call":           {Statement: true},
	"preproc_include":        {Statement: false},
	"linkage_specification":  {Holder: true},
}

// cppTable overlays the C table with the OO/exception/lambda kinds spec.md
// §4.1 calls out explicitly ("C++ adds for_range_loop, try_statement,
// catch_clause, throw_statement, lambda_expression, class_specifier,
// namespace_definition, etc.").
var cppTable = buildCppTable()

func buildCppTable() Table {
	t := make(Table, len(cTable)+32)
	for k, v := range cTable {
		t[k] = v
	}
	for k, v := range map[string]Info{
		"for_range_loop":        {Statement: true, Control: true, Loop: true},
		"try_statement":         {Statement: true, Control: true},
		"catch_clause":          {Statement: true, Control: true},
		"throw_statement":       {Statement: true, Jump: true},
		"lambda_expression":     {Statement: false},
		"class_specifier":       {Statement: true, Definition: true, Holder: true},
		"namespace_definition":  {Statement: true, Definition: true, Holder: true},
		"namespace_alias_definition": {Statement: true},
		"template_declaration":  {Statement: true, Definition: true, Holder: true},
		"template_function":     {Statement: false},
		"field_declaration":     {Statement: true},
		"using_declaration":     {Statement: true},
		"alias_declaration":     {Statement: true},
		"delete_expression":     {Statement: false},
		"new_expression":        {Statement: false},
		"concept_definition":    {Statement: true, Definition: true},
		"requires_clause":       {Statement: false},
	} {
		t[k] = v
	}
	return t
}
