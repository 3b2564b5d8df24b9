package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/memberboard/memberboard/internal/storage"
)

// MCPStore is the store surface the operator tools need.
type MCPStore interface {
	GetProfile(userID string) (storage.Profile, error)
	ListProfiles(limit int) ([]storage.Profile, error)
	CountProfiles() (int, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store MCPStore
}

// NewMCPServer creates an MCP server exposing read-only operator tools for
// inspecting the profile board. Mutations go through the HTTP API so every
// write passes the same ownership and publishing path.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"memberboard",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("memberboard — community profile board: inspect member profiles and their posted cards."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Fetch a member's stored profile record, including the generated summary and the id of the posted card."),
			mcp.WithString("user_id", mcp.Description("The member's user id"), mcp.Required()),
		),
		mcpGetProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List recently updated member profiles."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of profiles to return (default 10)")),
		),
		mcpListProfiles(deps),
	)

	s.AddTool(
		mcp.NewTool("profile_stats",
			mcp.WithDescription("Report how many member profiles are stored and how many have a card on the board."),
		),
		mcpProfileStats(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"memberboard://profiles/recent",
			"Recent Profiles",
			mcp.WithResourceDescription("The 10 most recently updated member profiles as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpRecentProfilesResource(deps),
	)

	return s
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}

		p, err := deps.Store.GetProfile(userID)
		if err == storage.ErrNotFound {
			return mcpError(fmt.Sprintf("no profile for user %s", userID)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		b, err := json.MarshalIndent(profileView(p), "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListProfiles(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		profiles, err := deps.Store.ListProfiles(limit)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list profiles: %v", err)), nil
		}
		if len(profiles) == 0 {
			return mcpText("No profiles stored yet."), nil
		}

		views := make([]map[string]any, 0, len(profiles))
		for _, p := range profiles {
			views = append(views, profileView(p))
		}
		b, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode profiles: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpProfileStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		total, err := deps.Store.CountProfiles()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to count profiles: %v", err)), nil
		}

		// All stored rows are expected to carry a card id, but a failed save
		// after publish can leave gaps worth surfacing to an operator.
		profiles, err := deps.Store.ListProfiles(total)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list profiles: %v", err)), nil
		}
		withCard := 0
		for _, p := range profiles {
			if p.ArtifactID != "" {
				withCard++
			}
		}

		return mcpText(fmt.Sprintf("%d profiles stored, %d with a posted card", total, withCard)), nil
	}
}

func mcpRecentProfilesResource(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		profiles, err := deps.Store.ListProfiles(10)
		if err != nil {
			return nil, fmt.Errorf("listing profiles: %w", err)
		}

		views := make([]map[string]any, 0, len(profiles))
		for _, p := range profiles {
			views = append(views, profileView(p))
		}
		b, err := json.Marshal(views)
		if err != nil {
			return nil, fmt.Errorf("encoding profiles: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func profileView(p storage.Profile) map[string]any {
	fields := p.FieldsJSON
	if fields == "" {
		fields = "{}"
	}
	return map[string]any{
		"user_id":          p.UserID,
		"artifact_id":      p.ArtifactID,
		"fields":           json.RawMessage(fields),
		"summary":          p.Summary,
		"experience_level": p.ExperienceLevel,
		"skills":           p.Skills,
		"updated_at":       p.UpdatedAt.Format(time.RFC3339),
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
