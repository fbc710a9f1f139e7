package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coolteam/cardshop/internal/lookup"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/tui/msg"
	"github.com/coolteam/cardshop/internal/tui/styles"
)

// Query screen focus targets.
const (
	queryContact = iota
	queryPassword
	queryResults
)

// cardRef addresses one visible code in the result list.
type cardRef struct {
	orderNo string
	index   int
}

// queryScreen looks orders up by contact and query password and lets the
// buyer copy paid codes.
type queryScreen struct {
	ctx    context.Context
	finder lookup.Finder
	memory lookup.Prefiller
	lv     *lookup.View
	now    func() time.Time

	loading  bool
	focus    int
	cursor   int
	contact  textinput.Model
	password textinput.Model
}

func newQueryScreen(ctx context.Context, finder lookup.Finder, memory lookup.Prefiller, lv *lookup.View) *queryScreen {
	contact := newInput("QQ number used at checkout")
	contact.SetValue(lv.Contact)

	password := newInput("query password")
	password.EchoMode = textinput.EchoPassword
	password.SetValue(lv.Password)

	return &queryScreen{
		ctx:      ctx,
		finder:   finder,
		memory:   memory,
		lv:       lv,
		now:      time.Now,
		contact:  contact,
		password: password,
	}
}

func (q *queryScreen) busy() bool { return q.loading }

func (q *queryScreen) capturing() bool { return q.focus != queryResults }

func (q *queryScreen) enter() tea.Cmd {
	if q.focus == queryResults && len(q.cards()) > 0 {
		return nil
	}
	q.prefill()
	q.focus = queryContact
	if q.lv.Contact != "" {
		q.focus = queryPassword
	}
	return q.refocus()
}

// prefill reloads both fields from the session store, so a purchase made
// since the last visit shows up. A lookup in flight or on screen is left
// alone.
func (q *queryScreen) prefill() {
	if q.memory == nil || q.loading || len(q.lv.Orders) > 0 {
		return
	}
	q.lv.Contact, q.lv.Password = q.memory.Prefill()
	q.contact.SetValue(q.lv.Contact)
	q.password.SetValue(q.lv.Password)
}

func (q *queryScreen) refocus() tea.Cmd {
	q.contact.Blur()
	q.password.Blur()
	switch q.focus {
	case queryContact:
		return q.contact.Focus()
	case queryPassword:
		return q.password.Focus()
	}
	return nil
}

// cards flattens the visible codes of every order in display order.
func (q *queryScreen) cards() []cardRef {
	var refs []cardRef
	for _, o := range q.lv.Orders {
		for i := range lookup.VisibleCards(o) {
			refs = append(refs, cardRef{o.OrderNo, i})
		}
	}
	return refs
}

func (q *queryScreen) submit() tea.Cmd {
	if q.loading {
		return nil
	}
	q.lv.Contact = strings.TrimSpace(q.contact.Value())
	q.lv.Password = q.password.Value()
	q.lv.Orders = nil
	q.cursor = 0
	if err := q.lv.Validate(); err != nil {
		q.lv.Err = err
		return nil
	}
	q.lv.Err = nil
	q.loading = true
	return msg.FindOrders(q.ctx, q.finder, q.lv.Contact, q.lv.Password)
}

func (q *queryScreen) onOrders(m msg.OrdersFoundMsg) tea.Cmd {
	q.loading = false
	if err := q.lv.Apply(m.Resp); err != nil {
		return nil
	}
	if len(q.cards()) > 0 {
		q.focus = queryResults
		return q.refocus()
	}
	return nil
}

func (q *queryScreen) handleKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "tab", "shift+tab":
		delta := 1
		if k.String() == "shift+tab" {
			delta = 2
		}
		q.focus = (q.focus + delta) % 3
		return q.refocus()
	}

	if q.focus == queryResults {
		return q.handleResultKey(k)
	}

	switch k.String() {
	case "enter":
		return q.submit()
	case "down":
		q.focus = min(q.focus+1, queryPassword)
		return q.refocus()
	case "up":
		q.focus = queryContact
		return q.refocus()
	}
	return q.forward(k)
}

func (q *queryScreen) handleResultKey(k tea.KeyMsg) tea.Cmd {
	refs := q.cards()
	switch k.String() {
	case "up", "k":
		if q.cursor > 0 {
			q.cursor--
		}
	case "down", "j":
		if q.cursor < len(refs)-1 {
			q.cursor++
		}
	case "c", "enter", "y":
		if q.cursor < len(refs) {
			ref := refs[q.cursor]
			if err := q.lv.Copy(ref.orderNo, ref.index); err != nil {
				q.lv.Err = err
				return nil
			}
			return msg.Tick(q.lv.Feedback())
		}
	case "/", "esc":
		q.focus = queryContact
		return q.refocus()
	}
	return nil
}

func (q *queryScreen) forward(m tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch q.focus {
	case queryContact:
		q.contact, cmd = q.contact.Update(m)
	case queryPassword:
		q.password, cmd = q.password.Update(m)
	}
	return cmd
}

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

func (q *queryScreen) view(width int, spin string) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Order Query"))
	b.WriteString("\n")
	b.WriteString(q.field(queryContact, "Contact (QQ)", q.contact.View()))
	b.WriteString(q.field(queryPassword, "Query password", q.password.View()))
	b.WriteString("\n")

	switch {
	case q.loading:
		b.WriteString(spin + " looking up…\n")
	case q.lv.Err != nil:
		b.WriteString(styles.ErrorMsg.Render(errText(q.lv.Err)) + "\n")
	}

	now := q.now()
	flat := 0
	for _, o := range q.lv.Orders {
		b.WriteString(q.renderOrder(o, width, now, &flat))
		b.WriteString("\n")
	}
	return b.String()
}

func (q *queryScreen) field(focus int, label, value string) string {
	style := styles.Label
	if q.focus == focus {
		style = styles.FieldFocus
	}
	return style.Render(label) + value + "\n"
}

func (q *queryScreen) renderOrder(o model.Order, width int, now time.Time, flat *int) string {
	var b strings.Builder
	status := lipgloss.NewStyle().Foreground(styles.StatusColor(string(o.Status))).Render(o.Status.Label())
	b.WriteString(styles.Primary.Bold(true).Render(o.OrderNo) + "  " + status + "\n")
	b.WriteString(row("Product", fmt.Sprintf("%s × %d", o.ProductName, o.Quantity.Int())))
	b.WriteString(row("Total", styles.Price.Render(model.FormatMoney(o.TotalPrice))))
	b.WriteString(row("Created", o.CreatedAt))
	if o.PaidAt != "" {
		b.WriteString(row("Paid", o.PaidAt))
	}

	cards := lookup.VisibleCards(o)
	switch {
	case !o.IsPaid():
		b.WriteString(styles.Muted.Render("Codes appear here once the payment is confirmed.") + "\n")
	case len(cards) == 0:
		b.WriteString(styles.Muted.Render("No codes on this order.") + "\n")
	}
	for i, code := range cards {
		line := styles.Code.Render(code)
		if q.focus == queryResults && *flat == q.cursor {
			line = styles.ListItemSelected.Render(code)
		}
		if q.lv.Copied(o.OrderNo, i, now) {
			line += " " + styles.SuccessMsg.Render("copied")
		}
		b.WriteString("  " + line + "\n")
		*flat++
	}
	return styles.ContentBox.Width(max(width-4, 30)).Render(strings.TrimRight(b.String(), "\n"))
}

func (q *queryScreen) help() string {
	if q.focus == queryResults {
		return helpLine("↑/↓", "select code", "c", "copy", "/", "edit query")
	}
	return helpLine("tab", "next field", "enter", "look up")
}
