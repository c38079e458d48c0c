package modules

import (
	"testing"
)

func TestValidateParams_RequiredFields(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"zipPath": {Type: "string", Description: "Path to the package"},
			"itemId":  {Type: "string", Description: "Item ID"},
		},
		Required: []string{"zipPath"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
		errMsg  string
	}{
		{
			name:    "required present",
			params:  map[string]any{"zipPath": "/tmp/ext.zip"},
			wantErr: false,
		},
		{
			name:    "missing required",
			params:  map[string]any{"itemId": "abc"},
			wantErr: true,
			errMsg:  "missing required parameter(s): zipPath",
		},
		{
			name:    "nil params",
			params:  nil,
			wantErr: true,
			errMsg:  "missing required parameter(s): zipPath",
		},
		{
			name:    "empty string for required field",
			params:  map[string]any{"zipPath": ""},
			wantErr: true,
			errMsg:  "missing required parameter(s): zipPath",
		},
		{
			name:    "nil value for required field",
			params:  map[string]any{"zipPath": nil},
			wantErr: true,
			errMsg:  "missing required parameter(s): zipPath",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateParams(schema, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestValidateParams_TypeCheck(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"itemId":     {Type: "string"},
			"percentage": {Type: "number"},
			"headless":   {Type: "boolean"},
			"metadata":   {Type: "object"},
		},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
		errMsg  string
	}{
		{
			name:    "all correct types",
			params:  map[string]any{"itemId": "abc", "percentage": float64(50), "headless": true, "metadata": map[string]interface{}{"title": "A"}},
			wantErr: false,
		},
		{
			name:    "string where number expected",
			params:  map[string]any{"percentage": "fifty"},
			wantErr: true,
			errMsg:  `parameter "percentage": expected number, got string`,
		},
		{
			name:    "number where string expected",
			params:  map[string]any{"itemId": float64(42)},
			wantErr: true,
			errMsg:  `parameter "itemId": expected string, got float64`,
		},
		{
			name:    "string where object expected",
			params:  map[string]any{"metadata": "not-object"},
			wantErr: true,
			errMsg:  `parameter "metadata": expected object, got string`,
		},
		{
			name:    "extra params not in schema pass through",
			params:  map[string]any{"unknown_field": "whatever"},
			wantErr: false,
		},
		{
			name:    "nil value skips type check",
			params:  map[string]any{"itemId": nil},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateParams(schema, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestValidateParams_Bounds(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"percentage": {Type: "number", Minimum: Float64(0), Maximum: Float64(100)},
		},
		Required: []string{"percentage"},
	}

	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"lower bound accepted", 0, false},
		{"upper bound accepted", 100, false},
		{"mid-range accepted", 37, false},
		{"above maximum rejected", 150, true},
		{"below minimum rejected", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateParams(schema, map[string]any{"percentage": tt.value})
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %v, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %v: %v", tt.value, err)
			}
		})
	}
}

func TestValidateParams_Enum(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"projection": {Type: "string", Enum: []string{"DRAFT", "PUBLISHED"}},
		},
	}

	if _, err := ValidateParams(schema, map[string]any{"projection": "DRAFT"}); err != nil {
		t.Errorf("unexpected error for DRAFT: %v", err)
	}
	if _, err := ValidateParams(schema, map[string]any{"projection": "PUBLISHED"}); err != nil {
		t.Errorf("unexpected error for PUBLISHED: %v", err)
	}

	_, err := ValidateParams(schema, map[string]any{"projection": "draft"})
	if err == nil {
		t.Fatal("expected error for lowercase projection")
	}
	want := `parameter "projection": must be one of DRAFT, PUBLISHED, got "draft"`
	if err.Error() != want {
		t.Errorf("expected error %q, got %q", want, err.Error())
	}
}

func TestFindTool(t *testing.T) {
	tools := []Tool{
		{Name: "upload"},
		{Name: "publish"},
	}

	tool, found := findTool(tools, "publish")
	if !found {
		t.Fatal("expected to find publish")
	}
	if tool.Name != "publish" {
		t.Errorf("expected name publish, got %s", tool.Name)
	}

	_, found = findTool(tools, "nonexistent")
	if found {
		t.Error("expected not to find nonexistent tool")
	}
}
