package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coolteam/cardshop/internal/admin"
	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/catalog"
	"github.com/coolteam/cardshop/internal/checkout"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/lookup"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/coolteam/cardshop/internal/tui/msg"
	"github.com/coolteam/cardshop/internal/tui/styles"
	"github.com/spf13/afero"
)

// Deps holds what the screens are built from. Client and Store are
// required.
type Deps struct {
	Client *api.Client
	Store  *session.Store
	Logger *logging.Logger
	// FS is where admin image uploads are read from. Nil means the OS.
	FS        afero.Fs
	Clipboard lookup.Clipboard

	PayTypes     []model.PayType
	ContactType  int
	CopyFeedback time.Duration

	// SessionEvents delivers session keys changed by other processes.
	SessionEvents <-chan string
}

type screenID int

const (
	screenShop screenID = iota
	screenQuery
	screenAdmin
	screenCount
)

var screenNames = [screenCount]string{"Shop", "Order Query", "Admin"}

// screen is one top-level tab.
type screen interface {
	handleKey(k tea.KeyMsg) tea.Cmd
	// forward passes non-key messages such as cursor blinks to the focused input.
	forward(m tea.Msg) tea.Cmd
	// enter runs when the screen becomes active.
	enter() tea.Cmd
	// capturing reports whether keys belong to a text input or dialog, which
	// disables the single-letter global keys.
	capturing() bool
	busy() bool
	view(width int, spin string) string
	help() string
}

// Model is the root Bubbletea model.
type Model struct {
	events <-chan string

	active  screenID
	shop    *shopScreen
	query   *queryScreen
	admin   *adminScreen
	spinner spinner.Model

	width    int
	height   int
	quitting bool
}

// NewModel wires the three screens over one API client and session store.
func NewModel(ctx context.Context, d Deps) Model {
	logger := d.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	var checkoutOpts []checkout.Option
	checkoutOpts = append(checkoutOpts, checkout.WithLogger(logger))
	if len(d.PayTypes) > 0 {
		checkoutOpts = append(checkoutOpts, checkout.WithPayTypes(d.PayTypes...))
	}
	if d.ContactType > 0 {
		checkoutOpts = append(checkoutOpts, checkout.WithContactType(d.ContactType))
	}

	lookupOpts := []lookup.Option{lookup.WithLogger(logger)}
	if d.Clipboard != nil {
		lookupOpts = append(lookupOpts, lookup.WithClipboard(d.Clipboard))
	}
	if d.CopyFeedback > 0 {
		lookupOpts = append(lookupOpts, lookup.WithCopyFeedback(d.CopyFeedback))
	}

	flow := checkout.New(d.Client, d.Store, checkoutOpts...)
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = styles.Primary

	return Model{
		events:  d.SessionEvents,
		shop:    newShopScreen(ctx, catalog.New(d.Client, logger), flow, d.Client),
		query:   newQueryScreen(ctx, d.Client, d.Store, lookup.New(d.Client, d.Store, lookupOpts...)),
		admin:   newAdminScreen(ctx, admin.New(d.Client, d.Store, d.FS, logger)),
		spinner: s,
		width:   80,
	}
}

func (m Model) screen() screen {
	switch m.active {
	case screenQuery:
		return m.query
	case screenAdmin:
		return m.admin
	default:
		return m.shop
	}
}

func (m Model) busy() bool {
	return m.shop.busy() || m.query.busy() || m.admin.busy()
}

// Init loads the catalog and starts listening for session changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.shop.load(), m.spinner.Tick, msg.WaitForSession(m.events))
}

// Update handles messages and keyboard input.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	wasBusy := m.busy()
	cmd := m.handle(message)
	if !wasBusy && m.busy() {
		cmd = tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m *Model) handle(message tea.Msg) tea.Cmd {
	switch v := message.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.admin.width = v.Width
		return nil

	case tea.KeyMsg:
		return m.handleKey(v)

	case spinner.TickMsg:
		if !m.busy() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(v)
		return cmd

	case msg.CatalogLoadedMsg:
		m.shop.onCatalog(v)
		return nil
	case msg.ProductLoadedMsg:
		m.shop.onProduct(v)
		return nil
	case msg.OrderCreatedMsg:
		return m.shop.onOrderCreated(v)
	case msg.OrdersFoundMsg:
		return m.query.onOrders(v)
	case msg.AdminDoneMsg:
		return m.admin.onDone(v)

	case msg.SessionChangedMsg:
		return tea.Batch(m.admin.sessionChanged(v.Key), msg.WaitForSession(m.events))

	case msg.TickMsg:
		// Redraw only; transient labels read the clock when rendering.
		return nil
	}
	return m.screen().forward(message)
}

func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "f1":
		return m.switchTo(screenShop)
	case "f2":
		return m.switchTo(screenQuery)
	case "f3":
		return m.switchTo(screenAdmin)
	}

	if !m.screen().capturing() {
		switch k.String() {
		case "q":
			m.quitting = true
			return tea.Quit
		case "tab":
			return m.switchTo((m.active + 1) % screenCount)
		case "shift+tab":
			return m.switchTo((m.active + screenCount - 1) % screenCount)
		}
	}
	return m.screen().handleKey(k)
}

func (m *Model) switchTo(id screenID) tea.Cmd {
	if id == m.active {
		return nil
	}
	m.active = id
	return m.screen().enter()
}

// View renders the active screen between the tab bar and the help bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	tabs := make([]string, 0, screenCount)
	for i, name := range screenNames {
		tabs = append(tabs, categoryTab(name, screenID(i) == m.active))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Primary.Bold(true).Render("cardshop  "),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
	)

	body := m.screen().view(m.width, m.spinner.View())

	global := helpLine("F1-F3", "screens", "ctrl+c", "quit")
	if !m.screen().capturing() {
		global = helpLine("tab", "screens", "q", "quit")
	}
	help := styles.HelpBar.Render(strings.Join([]string{m.screen().help(), global}, "  •  "))

	return header + "\n\n" + body + "\n" + help
}
