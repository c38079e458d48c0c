// Package mcpserver exposes the registered module tools over the Model
// Context Protocol on stdio. Typed parameter structs give MCP clients a real
// argument schema; execution funnels through the modules registry so every
// tool shares one validation path and one error boundary.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"cwsmcp/internal/modules"
)

// ServerName identifies this server to MCP clients.
const ServerName = "cws-mcp"

// =============================================================================
// Tool parameter structs
// =============================================================================

// Optional numeric and boolean arguments are pointers so that an omitted
// argument is distinguishable from a zero value.

type UploadParams struct {
	ZipPath     string `json:"zipPath" mcp:"Path to the extension ZIP package"`
	ItemID      string `json:"itemId,omitempty" mcp:"Item ID to update; omit to create a new item"`
	PublisherID string `json:"publisherId,omitempty" mcp:"Publisher ID (default: CWS_PUBLISHER_ID or 'me')"`
}

type ItemParams struct {
	ItemID      string `json:"itemId,omitempty" mcp:"Item ID (default: CWS_ITEM_ID)"`
	PublisherID string `json:"publisherId,omitempty" mcp:"Publisher ID (default: CWS_PUBLISHER_ID or 'me')"`
}

type DeployPercentageParams struct {
	Percentage  *float64 `json:"percentage,omitempty" mcp:"Rollout percentage, 0 to 100"`
	ItemID      string   `json:"itemId,omitempty" mcp:"Item ID (default: CWS_ITEM_ID)"`
	PublisherID string   `json:"publisherId,omitempty" mcp:"Publisher ID (default: CWS_PUBLISHER_ID or 'me')"`
}

type GetItemParams struct {
	ItemID     string `json:"itemId,omitempty" mcp:"Item ID (default: CWS_ITEM_ID)"`
	Projection string `json:"projection,omitempty" mcp:"DRAFT or PUBLISHED (default: DRAFT)"`
}

type UpdateMetadataParams struct {
	ItemID        string         `json:"itemId,omitempty" mcp:"Item ID (default: CWS_ITEM_ID)"`
	Title         string         `json:"title,omitempty" mcp:"Listing title"`
	Summary       string         `json:"summary,omitempty" mcp:"Short summary"`
	Description   string         `json:"description,omitempty" mcp:"Full description"`
	Category      string         `json:"category,omitempty" mcp:"Store category"`
	DefaultLocale string         `json:"defaultLocale,omitempty" mcp:"Default locale code"`
	HomepageURL   string         `json:"homepageUrl,omitempty" mcp:"Homepage URL"`
	SupportURL    string         `json:"supportUrl,omitempty" mcp:"Support URL"`
	Metadata      map[string]any `json:"metadata,omitempty" mcp:"Raw metadata object; named fields win on key collision"`
}

type UpdateMetadataUIParams struct {
	ItemID       string   `json:"itemId,omitempty" mcp:"Item ID (default: CWS_ITEM_ID)"`
	Title        string   `json:"title,omitempty" mcp:"Listing title"`
	Summary      string   `json:"summary,omitempty" mcp:"Short summary"`
	Description  string   `json:"description,omitempty" mcp:"Full description"`
	HomepageURL  string   `json:"homepageUrl,omitempty" mcp:"Homepage URL"`
	SupportURL   string   `json:"supportUrl,omitempty" mcp:"Support URL"`
	Category     string   `json:"category,omitempty" mcp:"Category option text, selected best-effort"`
	AccountIndex *float64 `json:"accountIndex,omitempty" mcp:"Google account index in the browser session (default: 0)"`
	Headless     *bool    `json:"headless,omitempty" mcp:"Run the browser headless (default: false)"`
}

// =============================================================================
// Server construction
// =============================================================================

// New builds the MCP server and registers every tool against the modules
// registry.
func New(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload",
		Description: "Upload an extension ZIP package to the Chrome Web Store. With an item ID the package becomes a new draft revision; without one a new item is created.",
	}, handlerFor[UploadParams]("webstore", "upload"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish",
		Description: "Publish the item's current draft to the store.",
	}, handlerFor[ItemParams]("webstore", "publish"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Fetch the item's submission and publish status.",
	}, handlerFor[ItemParams]("webstore", "status"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel",
		Description: "Cancel the item's in-review submission.",
	}, handlerFor[ItemParams]("webstore", "cancel"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deploy_percentage",
		Description: "Set the staged-rollout percentage (0-100) for the published item.",
	}, handlerFor[DeployPercentageParams]("webstore", "deploy_percentage"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_item",
		Description: "Read the item's store-listing metadata (DRAFT or PUBLISHED projection).",
	}, handlerFor[GetItemParams]("webstore", "get_item"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_metadata",
		Description: "Write store-listing metadata via the REST listing API. Named fields overlay the raw metadata object.",
	}, handlerFor[UpdateMetadataParams]("webstore", "update_metadata"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_metadata_ui",
		Description: "Edit listing metadata through the developer dashboard with a browser. Fallback for fields the REST endpoint does not visibly propagate; requires a logged-in persistent browser profile.",
	}, handlerFor[UpdateMetadataUIParams]("dashboard", "update_metadata_ui"))

	return server
}

// Serve runs the server over stdio until the context is cancelled or the
// client disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, mcp.NewStdioTransport())
}

// =============================================================================
// Bridging
// =============================================================================

// handlerFor adapts a typed MCP tool handler onto the modules registry. The
// typed arguments are round-tripped to a generic map so every tool funnels
// through modules.Run, the shared validation and error boundary.
func handlerFor[T any](moduleName, toolName string) func(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[T]) (*mcp.CallToolResultFor[any], error) {
	return func(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[T]) (*mcp.CallToolResultFor[any], error) {
		args, err := toMap(params.Arguments)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		result, err := modules.Run(ctx, moduleName, toolName, args)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return toCallResult(result), nil
	}
}

// toMap converts a typed parameter struct to a generic argument map.
// Optional fields marked omitempty disappear when unset, so the registry's
// required-parameter checks see exactly what the caller sent.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// toCallResult maps the registry envelope onto the MCP result type.
func toCallResult(result *modules.ToolCallResult) *mcp.CallToolResultFor[any] {
	out := &mcp.CallToolResultFor[any]{IsError: result.IsError}
	for _, block := range result.Content {
		out.Content = append(out.Content, &mcp.TextContent{Text: block.Text})
	}
	return out
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
