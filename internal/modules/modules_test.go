package modules

import (
	"context"
	"errors"
	"testing"
)

// fakeModule is a minimal Module for registry and Run tests.
type fakeModule struct {
	name    string
	tools   []Tool
	result  string
	err     error
	gotTool string
	gotArgs map[string]any
}

func (f *fakeModule) Name() string        { return f.name }
func (f *fakeModule) Description() string { return "fake module for tests" }
func (f *fakeModule) Tools() []Tool       { return f.tools }

func (f *fakeModule) ExecuteTool(ctx context.Context, toolName string, params map[string]any) (string, error) {
	f.gotTool = toolName
	f.gotArgs = params
	return f.result, f.err
}

func TestRegistry(t *testing.T) {
	m := &fakeModule{name: "fake_registry"}
	RegisterModule(m)

	got, ok := GetModule("fake_registry")
	if !ok {
		t.Fatal("expected module to be registered")
	}
	if got.Name() != "fake_registry" {
		t.Errorf("expected name fake_registry, got %s", got.Name())
	}

	found := false
	for _, name := range ListModules() {
		if name == "fake_registry" {
			found = true
		}
	}
	if !found {
		t.Error("expected fake_registry in ListModules")
	}
}

func TestRun_UnknownModule(t *testing.T) {
	result, err := Run(context.Background(), "no_such_module", "whatever", nil)
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for unknown module")
	}
	want := "Unknown module: no_such_module"
	if result.Content[0].Text != want {
		t.Errorf("expected %q, got %q", want, result.Content[0].Text)
	}
}

func TestRun_ValidationFailureIsErrorEnvelope(t *testing.T) {
	m := &fakeModule{
		name: "fake_validate",
		tools: []Tool{{
			Name: "needs_id",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"itemId": {Type: "string"}},
				Required:   []string{"itemId"},
			},
		}},
	}
	RegisterModule(m)

	result, err := Run(context.Background(), "fake_validate", "needs_id", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for validation failure")
	}
	want := "missing required parameter(s): itemId"
	if result.Content[0].Text != want {
		t.Errorf("expected %q, got %q", want, result.Content[0].Text)
	}
	if m.gotTool != "" {
		t.Error("handler must not run when validation fails")
	}
}

func TestRun_HandlerErrorIsErrorEnvelope(t *testing.T) {
	m := &fakeModule{
		name:  "fake_err",
		tools: []Tool{{Name: "boom"}},
		err:   errors.New("upstream said no"),
	}
	RegisterModule(m)

	result, err := Run(context.Background(), "fake_err", "boom", nil)
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError when handler fails")
	}
	if result.Content[0].Text != "upstream said no" {
		t.Errorf("expected verbatim handler error, got %q", result.Content[0].Text)
	}
}

func TestRun_Success(t *testing.T) {
	m := &fakeModule{
		name:   "fake_ok",
		tools:  []Tool{{Name: "echo"}},
		result: `{"ok":true}`,
	}
	RegisterModule(m)

	result, err := Run(context.Background(), "fake_ok", "echo", map[string]any{"a": "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected IsError: %s", result.Content[0].Text)
	}
	if result.Content[0].Text != `{"ok":true}` {
		t.Errorf("expected handler result passed through, got %q", result.Content[0].Text)
	}
	if result.Content[0].Type != "text" {
		t.Errorf("expected text content block, got %q", result.Content[0].Type)
	}
	if m.gotArgs["a"] != "b" {
		t.Error("expected params forwarded to handler")
	}
}
