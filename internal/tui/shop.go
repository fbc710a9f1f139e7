package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coolteam/cardshop/internal/catalog"
	"github.com/coolteam/cardshop/internal/checkout"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/tui/msg"
	"github.com/coolteam/cardshop/internal/tui/styles"
	"github.com/coolteam/cardshop/internal/util"
)

type shopMode int

const (
	shopList shopMode = iota
	shopDetail
)

// Purchase dialog fields in focus order.
const (
	fieldQuantity = iota
	fieldContact
	fieldPassword
	fieldPayType
	fieldSubmit
	dialogFields
)

// shopScreen lists products, shows one product in detail and hosts the
// purchase dialog.
type shopScreen struct {
	ctx     context.Context
	catalog *catalog.View
	flow    *checkout.Workflow
	orderer checkout.Orderer

	loading  bool
	fetching bool
	// err holds failures the catalog and the flow do not own: a refused
	// Open or a failed detail fetch.
	err    error
	cursor int
	mode   shopMode
	detail model.Product

	focus    int
	contact  textinput.Model
	password textinput.Model
}

func newShopScreen(ctx context.Context, view *catalog.View, flow *checkout.Workflow, orderer checkout.Orderer) *shopScreen {
	contact := newInput("QQ number")
	contact.CharLimit = 64

	password := newInput("used to look the order up later")
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 64

	return &shopScreen{
		ctx:      ctx,
		catalog:  view,
		flow:     flow,
		orderer:  orderer,
		contact:  contact,
		password: password,
	}
}

func (s *shopScreen) load() tea.Cmd {
	s.loading = true
	return msg.LoadCatalog(s.ctx, s.catalog.Source())
}

func (s *shopScreen) busy() bool {
	return s.loading || s.fetching || s.flow.Submitting()
}

func (s *shopScreen) capturing() bool {
	return s.flow.State() != checkout.StateIdle
}

func (s *shopScreen) enter() tea.Cmd { return nil }

func (s *shopScreen) onCatalog(m msg.CatalogLoadedMsg) {
	s.loading = false
	// Per-source failures stay on the view and are rendered inline.
	_ = s.catalog.Apply(m.Result)
	s.clampCursor()
}

func (s *shopScreen) onProduct(m msg.ProductLoadedMsg) {
	s.fetching = false
	if m.Err != nil {
		s.err = m.Err
		return
	}
	if s.mode == shopDetail && s.detail.ID == m.Product.ID {
		s.detail = m.Product
	}
}

func (s *shopScreen) onOrderCreated(m msg.OrderCreatedMsg) tea.Cmd {
	if err := s.flow.Complete(m.Resp); err != nil && s.flow.State() == checkout.StateFormOpen {
		s.focus = fieldSubmit
		return s.refocus()
	}
	return nil
}

func (s *shopScreen) clampCursor() {
	n := len(s.catalog.Visible())
	s.cursor = max(min(s.cursor, n-1), 0)
}

func (s *shopScreen) selected() (model.Product, bool) {
	if s.mode == shopDetail {
		return s.detail, s.detail.ID != ""
	}
	visible := s.catalog.Visible()
	if s.cursor < 0 || s.cursor >= len(visible) {
		return model.Product{}, false
	}
	return visible[s.cursor], true
}

func (s *shopScreen) cycleCategory(delta int) {
	ids := []model.ID{""}
	for _, c := range s.catalog.Categories {
		ids = append(ids, c.ID)
	}
	i := max(slices.Index(ids, s.catalog.Selected()), 0)
	s.catalog.Select(ids[(i+delta+len(ids))%len(ids)])
	s.cursor = 0
}

func (s *shopScreen) handleKey(k tea.KeyMsg) tea.Cmd {
	switch s.flow.State() {
	case checkout.StateIdle:
		return s.handleBrowseKey(k)
	case checkout.StateSubmitting:
		// Closing mid-flight is allowed; Complete still records the order.
		if k.String() == "esc" {
			s.closeDialog()
		}
		return nil
	case checkout.StateSucceeded:
		switch k.String() {
		case "esc", "enter":
			s.closeDialog()
		}
		return nil
	default:
		return s.handleDialogKey(k)
	}
}

func (s *shopScreen) handleBrowseKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "up", "k":
		if s.mode == shopList && s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.mode == shopList && s.cursor < len(s.catalog.Visible())-1 {
			s.cursor++
		}
	case "left", "h":
		if s.mode == shopList {
			s.cycleCategory(-1)
		}
	case "right", "l":
		if s.mode == shopList {
			s.cycleCategory(1)
		}
	case "enter":
		if p, ok := s.selected(); ok && s.mode == shopList {
			s.mode = shopDetail
			s.detail = p
			s.err = nil
			s.fetching = true
			return msg.LoadProduct(s.ctx, s.catalog, p.ID)
		}
	case "esc", "backspace":
		s.mode = shopList
		s.err = nil
	case "b":
		if p, ok := s.selected(); ok {
			return s.openDialog(p)
		}
	case "r":
		s.err = nil
		return s.load()
	}
	return nil
}

func (s *shopScreen) openDialog(p model.Product) tea.Cmd {
	if err := s.flow.Open(p); err != nil {
		s.err = err
		return nil
	}
	s.err = nil
	s.contact.SetValue(s.flow.Contact())
	s.password.SetValue(s.flow.QueryPassword())
	s.focus = fieldQuantity
	if s.flow.Contact() == "" {
		s.focus = fieldContact
	}
	return s.refocus()
}

func (s *shopScreen) closeDialog() {
	s.flow.Close()
	s.contact.Blur()
	s.password.Blur()
}

func (s *shopScreen) refocus() tea.Cmd {
	s.contact.Blur()
	s.password.Blur()
	switch s.focus {
	case fieldContact:
		return s.contact.Focus()
	case fieldPassword:
		return s.password.Focus()
	}
	return nil
}

func (s *shopScreen) handleDialogKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		s.closeDialog()
		return nil
	case "tab", "down":
		s.focus = (s.focus + 1) % dialogFields
		return s.refocus()
	case "shift+tab", "up":
		s.focus = (s.focus + dialogFields - 1) % dialogFields
		return s.refocus()
	case "enter":
		return s.submit()
	}

	switch s.focus {
	case fieldQuantity:
		switch k.String() {
		case "left", "h", "-":
			s.flow.Decrement()
		case "right", "l", "+":
			s.flow.Increment()
		}
	case fieldPayType:
		switch k.String() {
		case "left", "h":
			s.prevPayType()
		case "right", "l", " ":
			s.flow.CyclePayType()
		}
	case fieldContact, fieldPassword:
		return s.forward(k)
	}
	return nil
}

// forward passes keys and cursor blinks to the focused dialog input.
func (s *shopScreen) forward(m tea.Msg) tea.Cmd {
	if s.flow.State() != checkout.StateFormOpen {
		return nil
	}
	var cmd tea.Cmd
	switch s.focus {
	case fieldContact:
		s.contact, cmd = s.contact.Update(m)
		if s.contact.Value() != s.flow.Contact() {
			s.flow.SetContact(s.contact.Value())
		}
	case fieldPassword:
		s.password, cmd = s.password.Update(m)
		if s.password.Value() != s.flow.QueryPassword() {
			s.flow.SetQueryPassword(s.password.Value())
		}
	}
	return cmd
}

func (s *shopScreen) prevPayType() {
	types := s.flow.PayTypes()
	i := slices.Index(types, s.flow.PayType())
	_ = s.flow.SetPayType(types[(i-1+len(types))%len(types)])
}

func (s *shopScreen) submit() tea.Cmd {
	in, err := s.flow.Begin()
	if err != nil {
		var ve *errors.ValidationError
		if errors.As(err, &ve) {
			switch ve.Field {
			case "contact":
				s.focus = fieldContact
			case "query_password":
				s.focus = fieldPassword
			}
		}
		return s.refocus()
	}
	s.contact.Blur()
	s.password.Blur()
	return msg.CreateOrder(s.ctx, s.orderer, in)
}

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

func (s *shopScreen) view(width int, spin string) string {
	var b strings.Builder

	if notice := util.FirstLine(s.catalog.Notice); notice != "" {
		b.WriteString(styles.Banner.Render(util.Truncate(notice, max(width-4, 10))))
		b.WriteString("\n")
	}

	if !s.catalog.Loaded() {
		b.WriteString(spin + " loading shop…")
		return b.String()
	}

	b.WriteString(s.renderCategories())
	b.WriteString("\n\n")

	for _, err := range []error{s.catalog.CategoriesErr, s.catalog.ProductsErr, s.catalog.NoticeErr, s.err} {
		if err != nil {
			b.WriteString(styles.ErrorMsg.Render(errText(err)))
			b.WriteString("\n")
		}
	}

	switch {
	case s.flow.State() != checkout.StateIdle:
		b.WriteString(s.renderDialog(spin))
	case s.mode == shopDetail:
		b.WriteString(s.renderDetail(width, spin))
	default:
		b.WriteString(s.renderList(width))
		if s.loading {
			b.WriteString("\n" + spin + " refreshing…")
		}
	}
	return b.String()
}

func (s *shopScreen) renderCategories() string {
	tabs := []string{categoryTab("All", s.catalog.Selected() == "")}
	for _, c := range s.catalog.Categories {
		tabs = append(tabs, categoryTab(c.Name, s.catalog.Selected() == c.ID))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func categoryTab(name string, active bool) string {
	if active {
		return styles.TabActive.Render(name)
	}
	return styles.TabInactive.Render(name)
}

func (s *shopScreen) renderList(width int) string {
	visible := s.catalog.Visible()
	if len(visible) == 0 {
		return styles.Muted.Render("no products in this category")
	}

	nameWidth := max(width-34, 12)
	var b strings.Builder
	for i, p := range visible {
		row := util.PadRight(p.Name, nameWidth) + "  " +
			util.PadRight(model.FormatMoney(p.Price), 12) + "  " +
			p.StockLabel()
		style := styles.ListItem
		switch {
		case i == s.cursor:
			style = styles.ListItemSelected
		case !catalog.Purchasable(p):
			style = styles.ListItemDisabled
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *shopScreen) renderDetail(width int, spin string) string {
	p := s.detail
	var b strings.Builder
	b.WriteString(styles.Title.Render(p.Name))
	b.WriteString("\n")
	b.WriteString(row("Category", s.catalog.CategoryName(p)))
	b.WriteString(row("Price", styles.Price.Render(model.FormatMoney(p.Price))))
	stock := p.StockLabel()
	if !p.Purchasable() {
		stock = styles.Error.Render(stock)
	}
	b.WriteString(row("Stock", stock))
	if p.Image != "" {
		b.WriteString(row("Image", p.Image))
	}
	if p.RequiresQueryPassword() {
		b.WriteString(row("Query password", "required"))
	}
	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(util.Wrap(p.Description, max(width-4, 20)))
		b.WriteString("\n")
	}
	if s.fetching {
		b.WriteString("\n" + spin)
	}
	return b.String()
}

func (s *shopScreen) renderDialog(spin string) string {
	p := s.flow.Product()
	var b strings.Builder
	b.WriteString(styles.Title.Render("Buy " + p.Name))
	b.WriteString("\n")

	if result, ok := s.flow.Result(); ok {
		b.WriteString(styles.SuccessMsg.Render("Order created"))
		b.WriteString("\n\n")
		b.WriteString(row("Order no", result.OrderNo))
		b.WriteString(row("Query password", result.QueryPassword))
		b.WriteString(row("Total", styles.Price.Render(model.FormatMoney(result.TotalPrice))))
		if result.PayURL != "" {
			b.WriteString(row("Pay at", result.PayURL))
		}
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("Codes appear under Order Query once the payment is confirmed."))
		return styles.Dialog.Render(b.String())
	}

	qty := fmt.Sprintf("‹ %d ›  (max %d)", s.flow.Quantity(), p.Stock())
	b.WriteString(s.dialogRow(fieldQuantity, "Quantity", qty))
	b.WriteString(s.dialogRow(fieldContact, "Contact (QQ)", s.contact.View()))
	pwdLabel := "Query password"
	if p.RequiresQueryPassword() {
		pwdLabel += "*"
	}
	b.WriteString(s.dialogRow(fieldPassword, pwdLabel, s.password.View()))

	var pays []string
	for _, t := range s.flow.PayTypes() {
		if t == s.flow.PayType() {
			pays = append(pays, styles.TabActive.Render(t.Label()))
		} else {
			pays = append(pays, styles.TabInactive.Render(t.Label()))
		}
	}
	b.WriteString(s.dialogRow(fieldPayType, "Pay with", lipgloss.JoinHorizontal(lipgloss.Top, pays...)))
	b.WriteString(row("Total", styles.Price.Render(model.FormatMoney(s.flow.Total()))))

	button := styles.TabInactive.Render("[ Place order ]")
	if s.focus == fieldSubmit {
		button = styles.TabActive.Render("[ Place order ]")
	}
	b.WriteString("\n" + button + "\n")

	if s.flow.Err != nil {
		b.WriteString("\n" + styles.ErrorMsg.Render(errText(s.flow.Err)) + "\n")
	}
	if s.flow.Submitting() {
		b.WriteString("\n" + spin + " placing order…\n")
	}
	return styles.Dialog.Render(b.String())
}

func (s *shopScreen) dialogRow(field int, label, value string) string {
	style := styles.Label
	if s.focus == field {
		style = styles.FieldFocus
	}
	return style.Render(label) + value + "\n"
}

func (s *shopScreen) help() string {
	switch {
	case s.flow.State() == checkout.StateSucceeded:
		return helpLine("enter/esc", "close")
	case s.flow.State() != checkout.StateIdle:
		return helpLine("tab", "next field", "←/→", "change", "enter", "place order", "esc", "cancel")
	case s.mode == shopDetail:
		return helpLine("b", "buy", "esc", "back", "r", "reload")
	default:
		return helpLine("↑/↓", "select", "←/→", "category", "enter", "details", "b", "buy", "r", "reload")
	}
}

// row renders a label/value line used by detail panes.
func row(label, value string) string {
	return styles.Label.Render(label) + value + "\n"
}

// helpLine renders key/description pairs.
func helpLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, styles.HelpKey.Render(pairs[i])+" "+pairs[i+1])
	}
	return strings.Join(parts, "  •  ")
}

// retryHint follows errors that may succeed if the same action is repeated.
const retryHint = "Try again in a moment."

// errText is the inline text for an error. Messages meant for users are shown
// bare; retryable failures get a hint unless the message already says so.
func errText(err error) string {
	text := err.Error()
	if errors.IsUserFacing(err) {
		text = errors.UserMessage(err, text)
	}
	if errors.IsRetryable(err) && !strings.Contains(strings.ToLower(text), "try again") {
		text += " " + retryHint
	}
	return text
}
