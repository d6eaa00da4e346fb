package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/viant/codeviews/extract"
	"github.com/viant/codeviews/graph"
	"github.com/viant/codeviews/syntax"
)

var (
	flagLang     string
	flagCodeFile string
	flagGraphs   string
	flagOutput   string
	flagFormat   string
	flagConfig   string
)

// runAnalyze is wired as rootCmd's RunE in this init, so "analyze --lang c
// --code-file f.c" works directly, matching spec.md §6's invocation shape
// (no nested "analyze analyze" subcommand).
func init() {
	rootCmd.RunE = runAnalyze
	rootCmd.Flags().StringVar(&flagLang, "lang", "", "source language: c or cpp (required)")
	rootCmd.Flags().StringVar(&flagCodeFile, "code-file", "", "path to the translation unit to analyze (required)")
	rootCmd.Flags().StringVar(&flagGraphs, "graphs", "cfg", "comma-separated graph kinds: cfg,dfg,ast,combined")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "output file path (default: stdout)")
	rootCmd.Flags().StringVar(&flagFormat, "format", "json", "output format: json, dot, or all")
	rootCmd.Flags().StringVar(&flagConfig, "config", "analyze.yaml", "optional YAML file supplying flag defaults")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fileCfg, err := loadFileConfig(flagConfig)
	if err != nil {
		return flagError(err)
	}
	applyDefaults(fileCfg)

	lang, err := parseLang(flagLang)
	if err != nil {
		return flagError(err)
	}
	if flagCodeFile == "" {
		return flagError(fmt.Errorf("--code-file is required"))
	}
	kinds, err := parseGraphKinds(flagGraphs)
	if err != nil {
		return flagError(err)
	}
	formats, err := parseFormats(flagFormat)
	if err != nil {
		return flagError(err)
	}

	fs := afs.New()
	src, err := fs.DownloadWithURL(ctx, flagCodeFile)
	if err != nil {
		return parseError(fmt.Errorf("reading %s: %w", flagCodeFile, err))
	}

	result, err := runPipeline(ctx, lang, src, graph.DefaultConfig())
	if err != nil {
		return parseError(err)
	}
	if os.Getenv("DEBUG_PREPROC") == "1" {
		extract.NewTracer(os.Stderr).Write(result.preprocTrace)
	}

	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", flagOutput, err)
		}
		defer f.Close()
		out = f
	}

	for _, kind := range kinds {
		g, err := result.selectGraph(kind)
		if err != nil {
			return flagError(err)
		}
		for _, format := range formats {
			payload, err := emit(g, format)
			if err != nil {
				return fmt.Errorf("emitting %s as %s: %w", kind, format, err)
			}
			fmt.Fprintf(out, "--- %s (%s) ---\n", kind, format)
			out.Write(payload)
			fmt.Fprintln(out)
		}
	}
	return nil
}

func parseLang(s string) (syntax.Language, error) {
	switch s {
	case "c":
		return syntax.C, nil
	case "cpp":
		return syntax.Cpp, nil
	default:
		return "", fmt.Errorf("invalid --lang %q (want c or cpp)", s)
	}
}

func parseGraphKinds(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("--graphs must name at least one kind")
	}
	var kinds []string
	for _, part := range strings.Split(s, ",") {
		kind := strings.TrimSpace(part)
		switch kind {
		case "cfg", "dfg", "ast", "combined":
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("invalid --graphs entry %q (want cfg|dfg|ast|combined)", kind)
		}
	}
	return kinds, nil
}

func parseFormats(s string) ([]string, error) {
	switch s {
	case "json":
		return []string{"json"}, nil
	case "dot":
		return []string{"dot"}, nil
	case "all":
		return []string{"json", "dot"}, nil
	default:
		return nil, fmt.Errorf("invalid --format %q (want json|dot|all)", s)
	}
}

func emit(g *graph.Graph, format string) ([]byte, error) {
	switch format {
	case "json":
		return graph.JSONEmitter{}.Emit(g)
	case "dot":
		return graph.DOTEmitter{}.Emit(g)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
