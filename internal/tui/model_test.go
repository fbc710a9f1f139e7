package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/coolteam/cardshop/internal/testutil"
	"github.com/coolteam/cardshop/internal/tui/msg"
	"github.com/spf13/afero"
)

// -----------------------------------------------------------------------------
// Harness
// -----------------------------------------------------------------------------

type fakeClipboard struct {
	copied []string
}

func (c *fakeClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

// harness drives a Model synchronously against a FakeShop. Commands run
// inline and their messages are fed back into Update until nothing is left.
type harness struct {
	t      *testing.T
	shop   *testutil.FakeShop
	client *api.Client
	store  *session.Store
	clip   *fakeClipboard
	m      Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	shop := testutil.NewFakeShop(t)
	store := session.New(afero.NewMemMapFs(), "/session", nil)
	client := api.NewClient(shop.URL, api.WithTokenSource(store))
	return &harness{t: t, shop: shop, client: client, store: store, clip: &fakeClipboard{}}
}

// start builds the model after the fake shop has been seeded and runs Init.
func (h *harness) start() *harness {
	h.t.Helper()
	h.m = NewModel(context.Background(), Deps{
		Client:       h.client,
		Store:        h.store,
		FS:           afero.NewMemMapFs(),
		Clipboard:    h.clip,
		CopyFeedback: 5 * time.Millisecond,
	})
	h.run(h.m.Init())
	return h
}

func (h *harness) send(m tea.Msg) {
	h.t.Helper()
	updated, cmd := h.m.Update(m)
	h.m = updated.(Model)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			h.t.Fatal("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch v := next().(type) {
		case nil, spinner.TickMsg, msg.TickMsg, cursor.BlinkMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, v...)
		default:
			updated, more := h.m.Update(v)
			h.m = updated.(Model)
			queue = append(queue, more)
		}
	}
}

func (h *harness) key(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

// typeText sends s as a single rune burst, the way a paste arrives.
func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// -----------------------------------------------------------------------------
// Model
// -----------------------------------------------------------------------------

func TestModel_InitLoadsCatalog(t *testing.T) {
	h := newHarness(t)
	cat := h.shop.SeedCategory("Games", "")
	h.shop.SeedProduct(cat.ID, "Steam 50", "50.00", "A1")
	h.shop.SetNotice("Welcome to the shop")
	h.start()

	if !h.m.shop.catalog.Loaded() {
		t.Fatal("catalog not loaded after Init")
	}
	if h.m.busy() {
		t.Error("busy() = true after the catalog settled")
	}

	view := h.m.View()
	for _, want := range []string{"Steam 50", "Games", "Welcome to the shop"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_ScreenSwitching(t *testing.T) {
	h := newHarness(t).start()

	tests := []struct {
		key  string
		want screenID
	}{
		{"f2", screenQuery},
		{"f3", screenAdmin},
		{"f1", screenShop},
		{"tab", screenQuery},
	}
	for _, tt := range tests {
		h.key(tt.key)
		if h.m.active != tt.want {
			t.Errorf("after %q active = %d, want %d", tt.key, h.m.active, tt.want)
		}
	}
}

func TestModel_GlobalKeysYieldToInputs(t *testing.T) {
	h := newHarness(t).start()

	// The query screen focuses its contact field, so q is text.
	h.key("f2", "q")
	if h.m.quitting {
		t.Fatal("q quit while typing into the contact field")
	}
	if got := h.m.query.contact.Value(); got != "q" {
		t.Errorf("contact = %q, want %q", got, "q")
	}

	h.key("f1", "q")
	if !h.m.quitting {
		t.Error("q did not quit from the shop list")
	}
	if h.m.View() != "" {
		t.Error("View() should be empty after quitting")
	}
}

func TestModel_CtrlCAlwaysQuits(t *testing.T) {
	h := newHarness(t).start()
	h.key("f3", "ctrl+c")
	if !h.m.quitting {
		t.Error("ctrl+c did not quit from the admin login")
	}
}

func TestModel_WindowSize(t *testing.T) {
	h := newHarness(t).start()
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	if h.m.width != 120 || h.m.height != 40 || h.m.admin.width != 120 {
		t.Errorf("size = %dx%d admin=%d", h.m.width, h.m.height, h.m.admin.width)
	}
}

func TestModel_SessionChangeLogsAdminOut(t *testing.T) {
	h := newHarness(t).start()
	h.key("f3")
	h.typeText(testutil.AdminPassword)
	h.key("enter")
	if !h.m.admin.console.Authorized() {
		t.Fatal("login failed")
	}

	// Another process removes the token.
	h.store.ClearToken()
	h.send(msg.SessionChangedMsg{Key: session.KeyAdminToken})

	if h.m.admin.loaded {
		t.Error("admin screen still loaded after the token vanished")
	}
	if !h.m.admin.capturing() {
		t.Error("admin screen should be back at the login prompt")
	}
}
