// Package dashboard drives a real browser session against the developer
// dashboard to edit listing metadata through the web UI. It is the fallback
// path for edits the REST listing endpoint does not visibly propagate; the
// automation depends on third-party page structure and is inherently fragile.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"cwsmcp/internal/config"
	"cwsmcp/internal/modules"
)

const (
	moduleDescription = "Developer dashboard automation - edit listing metadata through the web UI"

	// dashboardURLPattern is the per-account, per-item edit page.
	dashboardURLPattern = "https://chrome.google.com/webstore/devconsole/u/%d/dashboard/%s/edit"

	// loginDomain in the final URL signals the persistent profile is not
	// authenticated.
	loginDomain = "accounts.google.com"

	navigationTimeout = 90 * time.Second
	settleAfterNav    = 2 * time.Second
	settleAfterSave   = 2500 * time.Millisecond
)

// profileMu serializes runs: two concurrent sessions against the same
// persistent profile directory are a conflict at the browser layer.
var profileMu sync.Mutex

// sessionFactory opens a browser session against the given profile directory
// and returns its context plus a release func that closes the session.
type sessionFactory func(ctx context.Context, profileDir string, headless bool) (context.Context, context.CancelFunc, error)

// runFunc executes page actions in a session context.
type runFunc func(ctx context.Context, actions ...chromedp.Action) error

// Module implements the modules.Module interface for dashboard automation.
// The session factory and action runner are injectable so the flow around
// the browser is testable without one.
type Module struct {
	cfg        *config.Config
	newSession sessionFactory
	run        runFunc
}

// New creates a new dashboard module driving a real Chrome session.
func New(cfg *config.Config) *Module {
	return &Module{cfg: cfg, newSession: chromeSession, run: chromedp.Run}
}

// chromeSession launches Chrome on the persistent profile. The returned
// release closes the browser and the allocator, in that order.
func chromeSession(ctx context.Context, profileDir string, headless bool) (context.Context, context.CancelFunc, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("headless", headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	release := func() {
		cancelBrowser()
		cancelAlloc()
	}
	return browserCtx, release, nil
}

// Name returns the module name
func (m *Module) Name() string {
	return "dashboard"
}

// Description returns the module description
func (m *Module) Description() string {
	return moduleDescription
}

// Tools returns all available tools
func (m *Module) Tools() []modules.Tool {
	return toolDefinitions
}

// ExecuteTool executes a tool by name
func (m *Module) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	if name != "update_metadata_ui" {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return m.updateMetadataUI(ctx, params)
}

var toolDefinitions = []modules.Tool{
	{
		Name:        "update_metadata_ui",
		Description: "Edit listing metadata through the developer dashboard with a browser. Fallback for fields the REST listing endpoint does not visibly propagate; requires a logged-in persistent browser profile.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"itemId":       {Type: "string", Description: "Item ID (default: CWS_ITEM_ID)"},
				"title":        {Type: "string", Description: "Listing title"},
				"summary":      {Type: "string", Description: "Short summary"},
				"description":  {Type: "string", Description: "Full description"},
				"homepageUrl":  {Type: "string", Description: "Homepage URL"},
				"supportUrl":   {Type: "string", Description: "Support URL"},
				"category":     {Type: "string", Description: "Category option text, selected best-effort"},
				"accountIndex": {Type: "number", Description: "Google account index in the browser session (default: 0)", Minimum: modules.Float64(0)},
				"headless":     {Type: "boolean", Description: "Run the browser headless (default: false)"},
			},
		},
	},
}

// uiResult is the tool's success payload.
type uiResult struct {
	OK         bool   `json:"ok"`
	ProfileDir string `json:"profileDir"`
	FinalURL   string `json:"finalUrl"`
}

func (m *Module) updateMetadataUI(ctx context.Context, params map[string]any) (string, error) {
	itemID, _ := params["itemId"].(string)
	if itemID == "" {
		itemID = m.cfg.ItemID
	}
	if itemID == "" {
		return "", fmt.Errorf("itemId is required: pass itemId or set CWS_ITEM_ID")
	}

	fields := make(map[string]string)
	for _, fl := range labelSynonyms {
		if v, ok := params[fl.field].(string); ok && v != "" {
			fields[fl.field] = v
		}
	}
	category, _ := params["category"].(string)
	if len(fields) == 0 && category == "" {
		return "", fmt.Errorf("update_metadata_ui requires at least one of: title, summary, description, homepageUrl, supportUrl, category")
	}

	accountIndex := 0
	if v, ok := params["accountIndex"].(float64); ok {
		accountIndex = int(v)
	}
	headless, _ := params["headless"].(bool)

	result, err := m.runSession(ctx, itemID, fields, category, accountIndex, headless)
	if err != nil {
		return "", err
	}
	return modules.ToJSON(result)
}

// runSession owns the browser session for one invocation. The session is
// always released exactly once on exit, success or failure; runs are
// serialized because the persistent profile directory admits one session at
// a time.
func (m *Module) runSession(ctx context.Context, itemID string, fields map[string]string, category string, accountIndex int, headless bool) (*uiResult, error) {
	profileMu.Lock()
	defer profileMu.Unlock()

	browserCtx, release, err := m.newSession(ctx, m.cfg.ProfileDir, headless)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	defer release()

	pageURL := fmt.Sprintf(dashboardURLPattern, accountIndex, url.PathEscape(itemID))

	navCtx, cancelNav := context.WithTimeout(browserCtx, navigationTimeout)
	defer cancelNav()
	if err := m.run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(settleAfterNav),
	); err != nil {
		return nil, fmt.Errorf("failed to open dashboard %s: %w", pageURL, err)
	}

	var currentURL string
	if err := m.run(browserCtx, chromedp.Location(&currentURL)); err != nil {
		return nil, fmt.Errorf("failed to read page location: %w", err)
	}
	if strings.Contains(currentURL, loginDomain) {
		return nil, fmt.Errorf("dashboard session is not authenticated (redirected to %s): run once with headless=false and log in; the profile at %s keeps the session", loginDomain, m.cfg.ProfileDir)
	}

	// Fill fields in declaration order so failures are deterministic.
	for _, fl := range labelSynonyms {
		value, ok := fields[fl.field]
		if !ok {
			continue
		}
		var filled bool
		if err := m.run(browserCtx, chromedp.Evaluate(fillFieldJS(fl.labels, value), &filled)); err != nil {
			return nil, fmt.Errorf("failed to fill %s: %w", fl.field, err)
		}
		if !filled {
			return nil, fmt.Errorf("could not locate the %s field (tried labels: %s)", fl.field, strings.Join(fl.labels, ", "))
		}
	}

	// Category selection is best-effort: a missing combobox or option is
	// silently skipped.
	if category != "" {
		var selected bool
		_ = m.run(browserCtx, chromedp.Evaluate(selectCategoryJS(category), &selected))
	}

	var saved bool
	if err := m.run(browserCtx, chromedp.Evaluate(clickSaveJS(saveLabels), &saved)); err != nil {
		return nil, fmt.Errorf("failed to click save: %w", err)
	}
	if !saved {
		return nil, fmt.Errorf("could not locate a save control (tried: %s)", strings.Join(saveLabels, ", "))
	}

	var finalURL string
	if err := m.run(browserCtx,
		chromedp.Sleep(settleAfterSave),
		chromedp.Location(&finalURL),
	); err != nil {
		return nil, fmt.Errorf("failed to read final location: %w", err)
	}

	return &uiResult{OK: true, ProfileDir: m.cfg.ProfileDir, FinalURL: finalURL}, nil
}

// =============================================================================
// Page scripts
// =============================================================================

// jsArg serializes a Go value as a JS literal.
func jsArg(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// fillFieldJS locates the first form control whose visible label matches any
// of the synonyms (alternation, case-insensitive) and fills it, dispatching
// input/change events so the page's client-side state picks up the value.
func fillFieldJS(labels []string, value string) string {
	return fmt.Sprintf(`(() => {
	const labels = %s;
	const value = %s;
	const escaped = labels.map(l => l.replace(/[.*+?^${}()|[\]\\]/g, '\\$&'));
	const re = new RegExp('^\\s*(' + escaped.join('|') + ')\\s*$', 'i');
	const label = Array.from(document.querySelectorAll('label')).find(l => re.test(l.textContent));
	if (!label) return false;
	let el = null;
	if (label.htmlFor) el = document.getElementById(label.htmlFor);
	if (!el) el = label.querySelector('input, textarea');
	if (!el && label.parentElement) el = label.parentElement.querySelector('input, textarea');
	if (!el) return false;
	el.focus();
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()`, jsArg(labels), jsArg(value))
}

// clickSaveJS locates the save control by accessible role and name and
// clicks it.
func clickSaveJS(names []string) string {
	return fmt.Sprintf(`(() => {
	const names = %s;
	const escaped = names.map(n => n.replace(/[.*+?^${}()|[\]\\]/g, '\\$&'));
	const re = new RegExp('^\\s*(' + escaped.join('|') + ')\\s*$', 'i');
	const candidates = Array.from(document.querySelectorAll('button, [role="button"]'));
	const btn = candidates.find(b => re.test(b.getAttribute('aria-label') || b.textContent || ''));
	if (!btn) return false;
	btn.click();
	return true;
})()`, jsArg(names))
}

// selectCategoryJS picks a category option by visible text from a native
// select or an ARIA combobox. Best-effort only.
func selectCategoryJS(value string) string {
	return fmt.Sprintf(`(() => {
	const want = %s.trim().toLowerCase();
	for (const sel of Array.from(document.querySelectorAll('select'))) {
		const opt = Array.from(sel.options).find(o => o.textContent.trim().toLowerCase() === want);
		if (opt) {
			sel.value = opt.value;
			sel.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		}
	}
	const combo = document.querySelector('[role="combobox"]');
	if (combo) {
		combo.click();
		const opt = Array.from(document.querySelectorAll('[role="option"]')).find(o => o.textContent.trim().toLowerCase() === want);
		if (opt) { opt.click(); return true; }
	}
	return false;
})()`, jsArg(value))
}
