// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Harvest catalog tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/loader"
	"github.com/starford/harvest/internal/metrics"
)

const farmFormatURI = "harvest://farm-format"

// Server wraps the MCP server with Harvest tools.
type Server struct {
	mcp *server.MCPServer
	src *loader.Source
}

// New creates a new MCP server with all Harvest tools registered.
func New(src *loader.Source) *Server {
	s := &Server{src: src}

	s.mcp = server.NewMCPServer(
		"Harvest",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_farms",
		mcp.WithDescription("Filter the farm catalog. A farm matches when its name or description "+
			"contains the query (case-insensitive) and it carries every requested tag."),
		mcp.WithString("query", mcp.Description("Search text; empty matches every farm")),
		mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Tags a farm must all carry")),
		mcp.WithString("mode", mcp.Enum(string(catalog.List), string(catalog.Map)),
			mcp.Description("View mode to render (default list)")),
	), s.searchFarms)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the tag vocabulary usable as search_farms filters."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_farm",
		mcp.WithDescription("Get the full record of one farm by name (case-insensitive)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Farm name")),
	), s.getFarm)

	s.mcp.AddTool(mcp.NewTool("get_farm_contract",
		mcp.WithDescription("Returns the Harvest farm file format contract. "+
			"Call this before writing farm files for the catalog directory."),
	), s.getFarmContract)

	s.mcp.AddResource(
		mcp.NewResource(farmFormatURI, "Farm Format Contract",
			mcp.WithResourceDescription("Markdown farm file format that catalog files must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFarmFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) searchFarms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := catalog.List
	if raw := req.GetString("mode", ""); raw != "" {
		m, err := catalog.ParseViewMode(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		mode = m
	}
	state := catalog.State{
		Query: req.GetString("query", ""),
		Tags:  catalog.NewTagSet(req.GetStringSlice("tags", nil)...),
		Mode:  mode,
	}
	view := catalog.Present(s.src.Catalog(), state)
	metrics.ObserveFilter("mcp", view.Matched)
	return jsonResult(view)
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.src.Catalog().Vocabulary())
}

func (s *Server) getFarm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	farm, ok := s.src.Catalog().Find(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	return jsonResult(farm)
}

func (s *Server) getFarmContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FarmFormatContract), nil
}

func (s *Server) readFarmFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      farmFormatURI,
			MIMEType: "text/markdown",
			Text:     FarmFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
