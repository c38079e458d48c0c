package modules

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// Registry
// =============================================================================

// registry holds all registered modules
var registry = make(map[string]Module)

// logger is used for tool call logging; replaced via SetLogger at startup.
var logger = zap.NewNop()

// RegisterModule adds a module to the registry
func RegisterModule(m Module) {
	registry[m.Name()] = m
}

// GetModule returns a module by name
func GetModule(name string) (Module, bool) {
	m, ok := registry[name]
	return m, ok
}

// ListModules returns all registered module names
func ListModules() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// AllTools returns every tool of every registered module, keyed by module name.
func AllTools() map[string][]Tool {
	out := make(map[string][]Tool, len(registry))
	for name, m := range registry {
		out[name] = m.Tools()
	}
	return out
}

// SetLogger installs the process logger for tool call logging.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// =============================================================================
// Tool Execution
// =============================================================================

// Run executes a single tool in a module. It is the error boundary for every
// tool invocation: validation failures, credential problems, upstream HTTP
// errors and automation failures all come back as an error envelope, never as
// a transport-level failure. The context is passed through untouched; REST
// calls rely on the transport's defaults and the dashboard module imposes its
// own navigation timeout.
func Run(ctx context.Context, moduleName, toolName string, params map[string]interface{}) (*ToolCallResult, error) {
	start := time.Now()

	m, ok := registry[moduleName]
	if !ok {
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Unknown module: %s", moduleName)}},
			IsError: true,
		}, nil
	}

	// Validate params against tool's InputSchema
	if tool, found := findTool(m.Tools(), toolName); found {
		validated, err := ValidateParams(tool.InputSchema, params)
		if err != nil {
			return &ToolCallResult{
				Content: []ContentBlock{{Type: "text", Text: err.Error()}},
				IsError: true,
			}, nil
		}
		params = validated
	}

	result, err := m.ExecuteTool(ctx, toolName, params)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		logger.Warn("tool call failed",
			zap.String("module", moduleName),
			zap.String("tool", toolName),
			zap.Int64("duration_ms", durationMs),
			zap.String("error", err.Error()))
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}

	logger.Info("tool call succeeded",
		zap.String("module", moduleName),
		zap.String("tool", toolName),
		zap.Int64("duration_ms", durationMs))
	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: result}},
	}, nil
}
