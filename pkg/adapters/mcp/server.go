// Package mcp exposes the dialogue engine as MCP tools so assistant
// hosts can drive eligibility flows over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/scheme"
)

// Version of the MCP surface, reported during initialization.
const Version = "0.3.0"

// Engine defines the interface required by the MCP server.
type Engine interface {
	HandleTurn(ctx context.Context, sessionID, rawInput string, meta *domain.TurnMeta) (*domain.TurnResult, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	Catalog() scheme.Catalog
}

// SchemeList is the structured output of the list_schemes tool.
type SchemeList struct {
	Schemes []SchemeInfo `json:"schemes" jsonschema_description:"Available benefit schemes"`
}

// SchemeInfo summarizes one scheme.
type SchemeInfo struct {
	Name        string `json:"name" jsonschema_description:"Canonical scheme name for start_apply"`
	DisplayName string `json:"display_name,omitempty" jsonschema_description:"Human-readable scheme name"`
	Description string `json:"description,omitempty" jsonschema_description:"What the scheme provides"`
	SlotCount   int    `json:"slot_count" jsonschema_description:"Number of questions the application asks"`
}

// Server wraps the dialogue Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("sahayak-mcp", Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	turnTool := mcp.NewTool("handle_turn",
		mcp.WithDescription("Process one dialogue turn for a session. Input may be free text, start_apply:<scheme>, grievance:<text>, track_status, or restart."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller session ID")),
		mcp.WithString("input", mcp.Required(), mcp.Description("User input for this turn")),
		mcp.WithNumber("asr_confidence", mcp.Description("Speech recognition confidence in [0,1] (optional)")),
		mcp.WithNumber("intent_confidence", mcp.Description("Intent classification confidence in [0,1] (optional)")),
		mcp.WithBoolean("caller_history_clean", mcp.Description("Whether the caller has a clean history (optional)")),
		mcp.WithOutputSchema[domain.TurnResult](),
	)
	s.mcpServer.AddTool(turnTool, mcp.NewStructuredToolHandler(s.handleTurn))

	statusTool := mcp.NewTool("track_status",
		mcp.WithDescription("Report the application and grievance status of a session without changing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller session ID")),
		mcp.WithOutputSchema[domain.TurnResult](),
	)
	s.mcpServer.AddTool(statusTool, mcp.NewStructuredToolHandler(s.handleStatus))

	listTool := mcp.NewTool("list_schemes",
		mcp.WithDescription("List the benefit schemes this deployment can evaluate."),
		mcp.WithOutputSchema[SchemeList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListSchemes))
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.TurnResult, error) {
	sessionID, _ := args["session_id"].(string)
	input, _ := args["input"].(string)
	if sessionID == "" {
		return domain.TurnResult{}, fmt.Errorf("session_id is required")
	}

	var meta *domain.TurnMeta
	asr, hasASR := args["asr_confidence"].(float64)
	intent, hasIntent := args["intent_confidence"].(float64)
	clean, hasClean := args["caller_history_clean"].(bool)
	if hasASR || hasIntent || hasClean {
		meta = &domain.TurnMeta{
			Channel:            "mcp",
			ASRConfidence:      asr,
			IntentConfidence:   intent,
			CallerHistoryClean: clean,
		}
	}

	result, err := s.engine.HandleTurn(ctx, sessionID, input, meta)
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("turn failed: %w", err)
	}
	return *result, nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.TurnResult, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return domain.TurnResult{}, fmt.Errorf("session_id is required")
	}

	result, err := s.engine.HandleTurn(ctx, sessionID, "track_status", nil)
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("status lookup failed: %w", err)
	}
	return *result, nil
}

func (s *Server) handleListSchemes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SchemeList, error) {
	catalog := s.engine.Catalog()

	out := SchemeList{}
	for _, name := range catalog.Names() {
		sch, ok := catalog.GetScheme(name)
		if !ok {
			continue
		}
		out.Schemes = append(out.Schemes, SchemeInfo{
			Name:        sch.Name,
			DisplayName: sch.DisplayName,
			Description: sch.Description,
			SlotCount:   len(sch.Slots),
		})
	}
	return out, nil
}
