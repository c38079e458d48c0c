package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chromedp/chromedp"

	"cwsmcp/internal/config"
)

// fakeSession wires the module to a stub browser session, counting releases.
// The run func decides the outcome of each page action batch.
func fakeSession(m *Module, releases *int, run runFunc) {
	m.newSession = func(ctx context.Context, profileDir string, headless bool) (context.Context, context.CancelFunc, error) {
		return ctx, func() { *releases++ }, nil
	}
	m.run = run
}

func TestUpdateMetadataUI_MissingItemID(t *testing.T) {
	m := New(&config.Config{})

	_, err := m.ExecuteTool(context.Background(), "update_metadata_ui", map[string]any{
		"title": "New Title",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := "itemId is required: pass itemId or set CWS_ITEM_ID"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestUpdateMetadataUI_NoFields(t *testing.T) {
	m := New(&config.Config{ItemID: "abc123"})

	_, err := m.ExecuteTool(context.Background(), "update_metadata_ui", map[string]any{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := "update_metadata_ui requires at least one of: title, summary, description, homepageUrl, supportUrl, category"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestUnknownTool(t *testing.T) {
	m := New(&config.Config{})

	_, err := m.ExecuteTool(context.Background(), "nope", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "unknown tool: nope" {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestSession_ReleasedOnceOnNavigationFailure(t *testing.T) {
	m := New(&config.Config{ItemID: "abc123"})
	releases := 0
	fakeSession(m, &releases, func(ctx context.Context, actions ...chromedp.Action) error {
		return errors.New("net::ERR_CONNECTION_REFUSED")
	})

	_, err := m.ExecuteTool(context.Background(), "update_metadata_ui", map[string]any{
		"title": "New Title",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open dashboard") {
		t.Errorf("unexpected error %q", err.Error())
	}
	if releases != 1 {
		t.Errorf("expected the session released exactly once, got %d", releases)
	}
}

func TestSession_ReleasedOnceOnMidFlowFailure(t *testing.T) {
	m := New(&config.Config{ItemID: "abc123"})
	releases := 0
	// Every action batch succeeds but nothing on the page matches, so the
	// flow fails after navigation at the first field fill.
	fakeSession(m, &releases, func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	})

	_, err := m.ExecuteTool(context.Background(), "update_metadata_ui", map[string]any{
		"title": "New Title",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "could not locate the title field") {
		t.Errorf("unexpected error %q", err.Error())
	}
	if releases != 1 {
		t.Errorf("expected the session released exactly once, got %d", releases)
	}
}

func TestSession_StartFailureReleasesNothing(t *testing.T) {
	m := New(&config.Config{ItemID: "abc123"})
	releases := 0
	m.newSession = func(ctx context.Context, profileDir string, headless bool) (context.Context, context.CancelFunc, error) {
		return nil, nil, errors.New("chrome not found")
	}

	_, err := m.ExecuteTool(context.Background(), "update_metadata_ui", map[string]any{
		"title": "New Title",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to start browser session") {
		t.Errorf("unexpected error %q", err.Error())
	}
	if releases != 0 {
		t.Errorf("expected no release for a session that never opened, got %d", releases)
	}
}

func TestSessionsAreSerialized(t *testing.T) {
	profileMu.Lock()
	defer profileMu.Unlock()

	// A second session must block while one holds the profile.
	if profileMu.TryLock() {
		profileMu.Unlock()
		t.Fatal("expected the profile lock to exclude a second session")
	}
}

func TestLabelsFor(t *testing.T) {
	labels := labelsFor("title")
	if len(labels) == 0 {
		t.Fatal("expected synonyms for title")
	}
	if labels[0] != "title" {
		t.Errorf("expected canonical label first, got %q", labels[0])
	}

	if labelsFor("nonexistent") != nil {
		t.Error("expected nil for unknown field")
	}
}

func TestLabelSynonymsCoverEditableFields(t *testing.T) {
	want := []string{"title", "summary", "description", "homepageUrl", "supportUrl"}
	if len(labelSynonyms) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(labelSynonyms))
	}
	for i, field := range want {
		if labelSynonyms[i].field != field {
			t.Errorf("field %d: expected %s, got %s", i, field, labelSynonyms[i].field)
		}
		if len(labelSynonyms[i].labels) == 0 {
			t.Errorf("field %s: no label synonyms", field)
		}
	}
}

func TestFillFieldJS_EmbedsArguments(t *testing.T) {
	js := fillFieldJS([]string{"title", "item title"}, `My "quoted" value`)

	if !strings.Contains(js, `["title","item title"]`) {
		t.Errorf("expected label array literal, got:\n%s", js)
	}
	// JSON escaping must keep the value a single valid JS string literal.
	if !strings.Contains(js, `"My \"quoted\" value"`) {
		t.Errorf("expected escaped value literal, got:\n%s", js)
	}
	if !strings.Contains(js, "dispatchEvent(new Event('input'") {
		t.Error("expected input event dispatch")
	}
	if !strings.Contains(js, "dispatchEvent(new Event('change'") {
		t.Error("expected change event dispatch")
	}
}

func TestClickSaveJS_EmbedsNames(t *testing.T) {
	js := clickSaveJS([]string{"save draft", "save"})
	if !strings.Contains(js, `["save draft","save"]`) {
		t.Errorf("expected name array literal, got:\n%s", js)
	}
	if !strings.Contains(js, `[role="button"]`) {
		t.Error("expected role-based candidate selector")
	}
}

func TestSelectCategoryJS_EmbedsValue(t *testing.T) {
	js := selectCategoryJS("Developer Tools")
	if !strings.Contains(js, `"Developer Tools"`) {
		t.Errorf("expected category literal, got:\n%s", js)
	}
}

func TestToolDefinitions(t *testing.T) {
	m := New(&config.Config{})
	tools := m.Tools()
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	if tools[0].Name != "update_metadata_ui" {
		t.Errorf("expected update_metadata_ui, got %s", tools[0].Name)
	}
	props := tools[0].InputSchema.Properties
	for _, p := range []string{"itemId", "title", "summary", "description", "homepageUrl", "supportUrl", "category", "accountIndex", "headless"} {
		if _, ok := props[p]; !ok {
			t.Errorf("missing property %s", p)
		}
	}
}
