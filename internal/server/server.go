// Package server exposes the obfuscation pipeline over MCP stdio transport.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeveil/codeveil/internal/cache"
	"github.com/codeveil/codeveil/internal/config"
	"github.com/codeveil/codeveil/internal/engine"
	"github.com/codeveil/codeveil/internal/symbols"
)

// Server wraps the MCP server and connects it to the obfuscation engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "codeveil",
		Version: engine.ToolVersion,
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources adds MCP resources for run artifacts.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         "veil://mapping",
		Name:        "Rename Mapping",
		Description: "The latest original-to-obfuscated name mapping document",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		root, err := filepath.Abs(s.cfg.Root)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(root, s.cfg.Output.Dir, engine.MappingFileName)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("no mapping available: %w (run run_obfuscation first)", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: string(data), MIMEType: "application/json"},
			},
		}, nil
	})
}

// runObfuscationArgs are the arguments for the run_obfuscation tool.
type runObfuscationArgs struct {
	ProjectPath string `json:"project_path,omitempty" jsonschema:"Path to the project to obfuscate. Defaults to the configured root."`
	Force       bool   `json:"force,omitempty" jsonschema:"Ignore the incremental cache and reprocess every file"`
	DryRun      bool   `json:"dry_run,omitempty" jsonschema:"Compute the rename map and replacement counts without writing any output"`
}

// querySymbolsArgs are the arguments for the query_symbols tool.
type querySymbolsArgs struct {
	Kind string `json:"kind,omitempty" jsonschema:"Filter by symbol kind: class, protocol, category, extension, struct, enum, method, property, ivar, constant, macro, or typedef"`
	File string `json:"file,omitempty" jsonschema:"Filter by source file path substring"`
	Name string `json:"name,omitempty" jsonschema:"Filter by name using substring match"`
}

// cacheStatusArgs are the arguments for the cache_status tool.
type cacheStatusArgs struct {
	ProjectPath string `json:"project_path,omitempty" jsonschema:"Project root whose cache to inspect. Defaults to the configured root."`
}

// registerTools adds MCP tools for running the pipeline and inspecting results.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "run_obfuscation",
		Description: "Run the identifier obfuscation pipeline: parse sources, build the rename map, rewrite files, and export the mapping document.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args runObfuscationArgs) (*mcp.CallToolResult, any, error) {
		if args.ProjectPath != "" {
			s.cfg.Root = args.ProjectPath
		}

		summary, err := s.eng.Run(ctx, engine.Options{Force: args.Force, DryRun: args.DryRun})
		if err != nil {
			return errorResult(fmt.Sprintf("obfuscation failed: %v", err)), nil, nil
		}

		text := fmt.Sprintf(
			"Obfuscation complete.\n\n"+
				"- Project: %s\n"+
				"- Files found: %d\n"+
				"- Files parsed: %d\n"+
				"- Symbols: %d\n"+
				"- Names issued: %d\n"+
				"- Replacements: %d\n"+
				"- Duration: %s\n"+
				"- Output: %s\n\n"+
				"Use the veil://mapping resource to read the rename mapping.",
			summary.ProjectPath, summary.FilesFound, summary.FilesParsed,
			summary.Symbols, summary.NamesIssued, summary.Replacements,
			summary.Duration, summary.OutputDir,
		)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_symbols",
		Description: "Query the symbols extracted by the last pipeline run by kind, file, or name. Returns matching symbols as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args querySymbolsArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult("no symbols available: run run_obfuscation first"), nil, nil
		}

		var matched []symbols.Symbol
		for _, sym := range store.AllSymbols() {
			if args.Kind != "" && string(sym.Kind) != args.Kind {
				continue
			}
			if args.File != "" && !strings.Contains(sym.File, args.File) {
				continue
			}
			if args.Name != "" && !strings.Contains(sym.Name, args.Name) {
				continue
			}
			matched = append(matched, sym)
		}

		data, err := json.MarshalIndent(matched, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("marshaling symbols: %v", err)), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "cache_status",
		Description: "Classify every project file against the incremental cache as added, modified, deleted, or unchanged without running the pipeline.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args cacheStatusArgs) (*mcp.CallToolResult, any, error) {
		root := s.cfg.Root
		if args.ProjectPath != "" {
			root = args.ProjectPath
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid project path: %v", err)), nil, nil
		}

		c := cache.Load(absRoot)
		status := map[string]any{
			"project_path":    absRoot,
			"cache_exists":    !c.IsFresh(),
			"cache_version":   c.CacheVersion,
			"tracked_files":   c.TotalFiles,
			"last_build_time": c.LastBuildTime,
		}
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("marshaling status: %v", err)), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil, nil
	})
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
