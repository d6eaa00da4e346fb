package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/viant/codeviews/graph"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose build_cfg/build_sdfg as MCP tools over stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	mcpServer := server.NewMCPServer("codeviews", "0.1.0", server.WithToolCapabilities(true))

	mcpServer.AddTool(mcp.Tool{
		Name:        "build_cfg",
		Description: "Parse a C/C++ source snippet and return its control-flow graph as node-link JSON.",
		InputSchema: sourceInputSchema(),
	}, handleBuildGraph("cfg"))

	mcpServer.AddTool(mcp.Tool{
		Name:        "build_sdfg",
		Description: "Parse a C/C++ source snippet and return its static data-flow (reaching-definitions) graph as node-link JSON.",
		InputSchema: sourceInputSchema(),
	}, handleBuildGraph("dfg"))

	mcpServer.AddTool(mcp.Tool{
		Name:        "build_combined",
		Description: "Parse a C/C++ source snippet and return a merged CFG+SDFG graph as node-link JSON.",
		InputSchema: sourceInputSchema(),
	}, handleBuildGraph("combined"))

	return server.ServeStdio(mcpServer)
}

func sourceInputSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"lang": map[string]interface{}{
				"type":        "string",
				"description": "source language: c or cpp",
				"enum":        []string{"c", "cpp"},
			},
			"source": map[string]interface{}{
				"type":        "string",
				"description": "C/C++ source text of one translation unit",
			},
		},
		Required: []string{"lang", "source"},
	}
}

func handleBuildGraph(kind string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		langStr, _ := req.Params.Arguments["lang"].(string)
		source, _ := req.Params.Arguments["source"].(string)
		if source == "" {
			return toolError("source is required")
		}

		lang, err := parseLang(langStr)
		if err != nil {
			return toolError(err.Error())
		}

		result, err := runPipeline(ctx, lang, []byte(source), graph.DefaultConfig())
		if err != nil {
			return toolError(fmt.Sprintf("building graph: %v", err))
		}
		g, err := result.selectGraph(kind)
		if err != nil {
			return toolError(err.Error())
		}
		payload, err := emit(g, "json")
		if err != nil {
			return toolError(fmt.Sprintf("serializing graph: %v", err))
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(payload)}},
		}, nil
	}
}

func toolError(msg string) (*mcp.CallToolResult, error) {
	payload, _ := json.Marshal(map[string]interface{}{"error": true, "message": msg})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(payload)}},
		IsError: true,
	}, nil
}
