// Package webstore implements the Chrome Web Store REST tools: package
// upload, publish, submission status, cancel, staged rollout and listing
// metadata.
package webstore

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"cwsmcp/internal/config"
	"cwsmcp/internal/modules"
	cws "cwsmcp/internal/webstore"
)

const moduleDescription = "Chrome Web Store API - upload, publish and manage an extension listing"

// Module implements the modules.Module interface for the Chrome Web Store API.
type Module struct {
	cfg    *config.Config
	client *cws.Client
}

// New creates a new webstore module backed by the given client.
func New(cfg *config.Config, client *cws.Client) *Module {
	return &Module{cfg: cfg, client: client}
}

// Name returns the module name
func (m *Module) Name() string {
	return "webstore"
}

// Description returns the module description
func (m *Module) Description() string {
	return moduleDescription
}

// Tools returns all available tools
func (m *Module) Tools() []modules.Tool {
	return toolDefinitions
}

// ExecuteTool executes a tool by name and returns the raw API response
func (m *Module) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	switch name {
	case "upload":
		return m.upload(ctx, params)
	case "publish":
		return m.publish(ctx, params)
	case "status":
		return m.status(ctx, params)
	case "cancel":
		return m.cancel(ctx, params)
	case "deploy_percentage":
		return m.deployPercentage(ctx, params)
	case "get_item":
		return m.getItem(ctx, params)
	case "update_metadata":
		return m.updateMetadata(ctx, params)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// =============================================================================
// Parameter resolution
// =============================================================================

// publisherID resolves the target publisher: explicit argument, then the
// environment default, then the literal "me".
func (m *Module) publisherID(params map[string]any) string {
	if v, ok := params["publisherId"].(string); ok && v != "" {
		return v
	}
	if m.cfg.PublisherID != "" {
		return m.cfg.PublisherID
	}
	return "me"
}

// itemID resolves the target item: explicit argument, then the environment
// default. Absence is an error; no literal fallback exists for items.
func (m *Module) itemID(params map[string]any) (string, error) {
	if v, ok := params["itemId"].(string); ok && v != "" {
		return v, nil
	}
	if m.cfg.ItemID != "" {
		return m.cfg.ItemID, nil
	}
	return "", fmt.Errorf("itemId is required: pass itemId or set CWS_ITEM_ID")
}

// optionalItemID resolves like itemID but treats absence as the empty string.
func (m *Module) optionalItemID(params map[string]any) string {
	if v, ok := params["itemId"].(string); ok && v != "" {
		return v
	}
	return m.cfg.ItemID
}

// =============================================================================
// Tool Definitions
// =============================================================================

var toolDefinitions = []modules.Tool{
	{
		Name:        "upload",
		Description: "Upload an extension ZIP package. With an item ID the package becomes a new draft revision of that item; without one a new item is created.",
		Annotations: modules.AnnotateCreate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"zipPath":     {Type: "string", Description: "Path to the extension ZIP package"},
				"itemId":      {Type: "string", Description: "Item ID to update (omit to create a new item; falls back to CWS_ITEM_ID)"},
				"publisherId": {Type: "string", Description: "Publisher ID (default: CWS_PUBLISHER_ID or \"me\")"},
			},
			Required: []string{"zipPath"},
		},
	},
	{
		Name:        "publish",
		Description: "Publish the item's current draft to the store.",
		Annotations: modules.AnnotateCreate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"itemId":      {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"publisherId": {Type: "string", Description: "Publisher ID (default: CWS_PUBLISHER_ID or \"me\")"},
			},
		},
	},
	{
		Name:        "status",
		Description: "Fetch the item's submission and publish status.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"itemId":      {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"publisherId": {Type: "string", Description: "Publisher ID (default: CWS_PUBLISHER_ID or \"me\")"},
			},
		},
	},
	{
		Name:        "cancel",
		Description: "Cancel the item's in-review submission.",
		Annotations: modules.AnnotateDestructive,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"itemId":      {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"publisherId": {Type: "string", Description: "Publisher ID (default: CWS_PUBLISHER_ID or \"me\")"},
			},
		},
	},
	{
		Name:        "deploy_percentage",
		Description: "Set the staged-rollout percentage for the published item.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"percentage":  {Type: "number", Description: "Rollout percentage, 0 to 100", Minimum: modules.Float64(0), Maximum: modules.Float64(100)},
				"itemId":      {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"publisherId": {Type: "string", Description: "Publisher ID (default: CWS_PUBLISHER_ID or \"me\")"},
			},
			Required: []string{"percentage"},
		},
	},
	{
		Name:        "get_item",
		Description: "Read the item's store-listing metadata.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"itemId":     {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"projection": {Type: "string", Description: "Listing revision to read (default: DRAFT)", Enum: []string{"DRAFT", "PUBLISHED"}},
			},
		},
	},
	{
		Name:        "update_metadata",
		Description: "Write store-listing metadata. Named fields overlay the raw metadata object; at least one of either is required.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"itemId":        {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"title":         {Type: "string", Description: "Listing title"},
				"summary":       {Type: "string", Description: "Short summary"},
				"description":   {Type: "string", Description: "Full description"},
				"category":      {Type: "string", Description: "Store category"},
				"defaultLocale": {Type: "string", Description: "Default locale code"},
				"homepageUrl":   {Type: "string", Description: "Homepage URL"},
				"supportUrl":    {Type: "string", Description: "Support URL"},
				"metadata":      {Type: "object", Description: "Raw metadata object, passed through; named fields win on key collision"},
			},
		},
	},
}

// metadataFields are the named update_metadata fields, overlaid onto the raw
// metadata object in this order.
var metadataFields = []string{"title", "summary", "description", "category", "defaultLocale", "homepageUrl", "supportUrl"}

// =============================================================================
// Tool Handlers
// =============================================================================

func (m *Module) upload(ctx context.Context, params map[string]any) (string, error) {
	zipPath, _ := params["zipPath"].(string)
	data, err := os.ReadFile(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to read package %s: %w", zipPath, err)
	}

	pub := m.publisherID(params)

	// Presence of a resolved item ID selects the update endpoint; absence
	// selects item creation. This decides whether the store treats the call
	// as a new listing or a revision.
	var endpoint string
	if itemID := m.optionalItemID(params); itemID != "" {
		endpoint = m.client.UploadUpdateURL(pub, itemID)
	} else {
		endpoint = m.client.UploadCreateURL(pub)
	}

	res, err := m.client.Do(ctx, "POST", endpoint, map[string]string{"Content-Type": "application/zip"}, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return resultText(res)
}

func (m *Module) publish(ctx context.Context, params map[string]any) (string, error) {
	return m.itemVerb(ctx, params, "POST", "publish")
}

func (m *Module) status(ctx context.Context, params map[string]any) (string, error) {
	return m.itemVerb(ctx, params, "GET", "fetchStatus")
}

func (m *Module) cancel(ctx context.Context, params map[string]any) (string, error) {
	return m.itemVerb(ctx, params, "POST", "cancelSubmission")
}

// itemVerb dispatches the shared v2 verb shape used by publish, status and
// cancel.
func (m *Module) itemVerb(ctx context.Context, params map[string]any, method, verb string) (string, error) {
	itemID, err := m.itemID(params)
	if err != nil {
		return "", err
	}
	res, err := m.client.Do(ctx, method, m.client.ItemVerbURL(m.publisherID(params), itemID, verb), nil, nil)
	if err != nil {
		return "", err
	}
	return resultText(res)
}

func (m *Module) deployPercentage(ctx context.Context, params map[string]any) (string, error) {
	itemID, err := m.itemID(params)
	if err != nil {
		return "", err
	}
	pct, _ := params["percentage"].(float64)

	body, err := modules.EncodeObject(map[string]any{"deployPercentage": pct})
	if err != nil {
		return "", err
	}

	endpoint := m.client.ItemVerbURL(m.publisherID(params), itemID, "setPublishedDeployPercentage")
	res, err := m.client.Do(ctx, "POST", endpoint, map[string]string{"Content-Type": "application/json"}, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return resultText(res)
}

func (m *Module) getItem(ctx context.Context, params map[string]any) (string, error) {
	itemID, err := m.itemID(params)
	if err != nil {
		return "", err
	}
	projection, _ := params["projection"].(string)
	if projection == "" {
		projection = "DRAFT"
	}
	res, err := m.client.Do(ctx, "GET", m.client.ItemProjectionURL(itemID, projection), nil, nil)
	if err != nil {
		return "", err
	}
	return resultText(res)
}

func (m *Module) updateMetadata(ctx context.Context, params map[string]any) (string, error) {
	itemID, err := m.itemID(params)
	if err != nil {
		return "", err
	}

	// Start from a copy of the raw metadata object, then overlay each named
	// field that is present in the call, empty strings included; named
	// fields win on key collision.
	payload := make(map[string]any)
	if raw, ok := params["metadata"].(map[string]any); ok {
		for k, v := range raw {
			payload[k] = v
		}
	}
	for _, field := range metadataFields {
		if v, present := params[field]; present {
			if s, ok := v.(string); ok {
				payload[field] = s
			}
		}
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("update_metadata requires at least one metadata field or a metadata object")
	}

	body, err := modules.EncodeObject(payload)
	if err != nil {
		return "", err
	}

	res, err := m.client.Do(ctx, "PUT", m.client.ItemURL(itemID), map[string]string{"Content-Type": "application/json"}, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return resultText(res)
}

// resultText surfaces an upstream response verbatim: the raw body on
// success, the raw body as the error text on a non-2xx status.
func resultText(res cws.Result) (string, error) {
	if !res.OK {
		if res.Body == "" {
			return "", fmt.Errorf("request failed: status %d", res.Status)
		}
		return "", fmt.Errorf("%s", res.Body)
	}
	return res.Body, nil
}
