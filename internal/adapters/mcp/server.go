// Package mcp exposes the lineup service as Model Context Protocol tools.
package mcp

import (
	"context"
	"net/http"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/types"
	"github.com/okian/lineup/pkg/logger"
)

// Tool names.
const (
	ToolListPlayers    = "list_players"
	ToolAnalyzePlayers = "analyze_players"
)

const implementationName = "lineup"

// Dependencies is the slice of the service the tools call into.
type Dependencies interface {
	Players(ctx context.Context) []model.Player
	Analyze(ctx context.Context, names []string) types.Result
}

// ListPlayersInput filters the snapshot listing.
type ListPlayersInput struct {
	Position string `json:"position,omitempty" jsonschema:"only return players at this position, e.g. QB or WR"`
}

// ListPlayersOutput is the result of list_players.
type ListPlayersOutput struct {
	Players []model.Player `json:"players"`
}

// AnalyzeInput names the players to compare.
type AnalyzeInput struct {
	Players []string `json:"players,omitempty" jsonschema:"exact player names to score and label"`
}

// NewServer builds an MCP server with the lineup tools registered.
func NewServer(deps Dependencies, version string) *sdk.Server {
	log := logger.Get().Named("mcp")
	srv := sdk.NewServer(&sdk.Implementation{Name: implementationName, Version: version}, nil)

	sdk.AddTool(srv, &sdk.Tool{
		Name:        ToolListPlayers,
		Description: "List the players in the active snapshot, optionally filtered by position.",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, in ListPlayersInput) (*sdk.CallToolResult, ListPlayersOutput, error) {
		players := filterByPosition(deps.Players(ctx), in.Position)
		log.Debug(ctx, "tool call", logger.String("tool", ToolListPlayers), logger.Int("players", len(players)))
		return nil, ListPlayersOutput{Players: players}, nil
	})

	sdk.AddTool(srv, &sdk.Tool{
		Name:        ToolAnalyzePlayers,
		Description: "Score the named players and recommend which to start and which to bench.",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, in AnalyzeInput) (*sdk.CallToolResult, types.Result, error) {
		res := deps.Analyze(ctx, in.Players)
		log.Debug(ctx, "tool call",
			logger.String("tool", ToolAnalyzePlayers),
			logger.Int("requested", len(in.Players)),
			logger.Int("selected", res.TotalSelected),
		)
		return nil, res, nil
	})

	return srv
}

// Handler serves srv over the streamable HTTP transport.
func Handler(srv *sdk.Server) http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server { return srv }, nil)
}

// Register mounts the MCP endpoint at /mcp.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies, version string) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/mcp", Handler(NewServer(deps, version)))
}

func filterByPosition(players []model.Player, position string) []model.Player {
	position = strings.TrimSpace(position)
	out := make([]model.Player, 0, len(players))
	for _, p := range players {
		if position == "" || strings.EqualFold(p.Position, position) {
			out = append(out, p)
		}
	}
	return out
}
