package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/tui/styles"
	"github.com/coolteam/cardshop/internal/util"
)

func (a *adminScreen) view(_ int, spin string) string {
	if a.working {
		return a.frame + "\n" + spin + " working…"
	}
	return a.render()
}

func (a *adminScreen) render() string {
	if !a.console.Authorized() {
		return a.renderLogin()
	}

	var b strings.Builder
	tabs := make([]string, 0, sectionCount)
	for i, name := range sectionNames {
		tabs = append(tabs, categoryTab(name, adminSection(i) == a.section))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if a.err != nil {
		b.WriteString(styles.ErrorMsg.Render(errText(a.err)) + "\n")
	}
	if a.status != "" {
		b.WriteString(styles.SuccessMsg.Render(a.status) + "\n")
	}
	if a.confirm != nil {
		b.WriteString(styles.WarningMsg.Render(a.confirm.prompt+" (y/n)") + "\n\n")
	}

	if a.form != nil {
		b.WriteString(a.form.view())
		if a.preview {
			b.WriteString(a.renderFormPreview())
		}
		return b.String()
	}

	switch a.section {
	case sectionCategories:
		b.WriteString(a.renderCategories())
	case sectionProducts:
		if a.console.Cards.IsOpen() {
			b.WriteString(a.renderCards())
		} else {
			b.WriteString(a.renderProducts())
		}
	case sectionOrders:
		b.WriteString(a.renderOrders())
	case sectionNotice:
		b.WriteString(a.renderNotice())
	}
	return b.String()
}

func (a *adminScreen) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Admin login"))
	b.WriteString("\n")
	b.WriteString(styles.FieldFocus.Render("Password") + a.login.View() + "\n")
	if err := a.console.Gate.Err; err != nil {
		b.WriteString("\n" + styles.ErrorMsg.Render(errText(err)) + "\n")
	}
	return b.String()
}

func (a *adminScreen) listRow(i int, text string) string {
	if i == a.cursor {
		return styles.ListItemSelected.Render(text) + "\n"
	}
	return styles.ListItem.Render(text) + "\n"
}

func (a *adminScreen) renderCategories() string {
	c := a.console.Categories
	var b strings.Builder
	if c.Err != nil {
		b.WriteString(styles.ErrorMsg.Render(errText(c.Err)) + "\n")
	}
	if len(c.Items) == 0 {
		b.WriteString(styles.Muted.Render("no categories yet, press a to add one") + "\n")
	}
	nameWidth := 24
	for i, cat := range c.Items {
		text := util.PadRight(cat.Name, nameWidth) + "  " + util.Truncate(cat.Description, max(a.width-nameWidth-8, 10))
		b.WriteString(a.listRow(i, text))
	}
	return b.String()
}

func (a *adminScreen) categoryName(id model.ID) string {
	for _, cat := range a.console.Products.Categories {
		if cat.ID == id {
			return cat.Name
		}
	}
	return id.String()
}

func (a *adminScreen) renderProducts() string {
	p := a.console.Products
	var b strings.Builder
	if p.Err != nil {
		b.WriteString(styles.ErrorMsg.Render(errText(p.Err)) + "\n")
	}
	if len(p.Items) == 0 {
		b.WriteString(styles.Muted.Render("no products yet, press a to add one") + "\n")
	}
	for i, prod := range p.Items {
		text := util.PadRight(prod.Name, 24) + "  " +
			util.PadRight(a.categoryName(prod.CategoryID), 14) + "  " +
			util.PadRight(model.FormatMoney(prod.Price), 10) + "  " +
			prod.StockLabel()
		b.WriteString(a.listRow(i, text))
	}

	if prod, ok := a.selectedProduct(); ok && a.preview {
		b.WriteString("\n" + styles.Subtitle.Render("Content preview") + "\n")
		b.WriteString(previewBox(prod.Content, a.width))
	}
	return b.String()
}

func (a *adminScreen) renderCards() string {
	cards := a.console.Cards
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Cards · %s (%s)", cards.Product.Name, cards.Product.StockLabel())))
	b.WriteString("\n")
	if cards.Err != nil {
		b.WriteString(styles.ErrorMsg.Render(errText(cards.Err)) + "\n")
	}
	if len(cards.Items) == 0 {
		b.WriteString(styles.Muted.Render("no unused codes, press a to add some") + "\n")
	}
	for i, code := range cards.Items {
		text := fmt.Sprintf("%3d  %s", i+1, code)
		if i == a.cardCursor {
			b.WriteString(styles.ListItemSelected.Render(text) + "\n")
		} else {
			b.WriteString(styles.ListItem.Render(text) + "\n")
		}
	}
	return b.String()
}

func (a *adminScreen) renderOrders() string {
	o := a.console.Orders
	var b strings.Builder
	filter := "Status: " + o.Status.Label()
	if o.Keyword != "" {
		filter += "   Search: " + o.Keyword
	}
	b.WriteString(styles.Subtitle.Render(filter) + "\n\n")
	if o.Err != nil {
		b.WriteString(styles.ErrorMsg.Render(errText(o.Err)) + "\n")
	}

	if order, ok := o.Detail(); ok {
		b.WriteString(renderOrderDetail(order, a.width))
		return b.String()
	}

	if len(o.Items) == 0 {
		b.WriteString(styles.Muted.Render("no orders") + "\n")
	}
	for i, order := range o.Items {
		text := util.PadRight(order.OrderNo, 14) + "  " +
			util.PadRight(fmt.Sprintf("%s × %d", order.ProductName, order.Quantity.Int()), 24) + "  " +
			util.PadRight(model.FormatMoney(order.TotalPrice), 10) + "  " +
			util.PadRight(order.Status.Label(), 8) + "  " +
			order.ContactValue()
		b.WriteString(a.listRow(i, text))
	}
	return b.String()
}

func renderOrderDetail(o model.Order, width int) string {
	var b strings.Builder
	status := lipgloss.NewStyle().Foreground(styles.StatusColor(string(o.Status))).Render(o.Status.Label())
	b.WriteString(styles.Title.Render("Order " + o.OrderNo))
	b.WriteString("\n")
	b.WriteString(row("Status", status))
	b.WriteString(row("Product", o.ProductName))
	b.WriteString(row("Quantity", fmt.Sprint(o.Quantity.Int())))
	if o.Price.Valid {
		b.WriteString(row("Unit price", model.FormatMoney(o.Price.Decimal)))
	}
	b.WriteString(row("Total", styles.Price.Render(model.FormatMoney(o.TotalPrice))))
	if o.PayType != "" {
		b.WriteString(row("Paid with", o.PayType.Label()))
	}
	b.WriteString(row("Contact", o.ContactValue()))
	b.WriteString(row("Created", o.CreatedAt))
	if o.PaidAt != "" {
		b.WriteString(row("Paid", o.PaidAt))
	}
	if o.TradeNo != "" {
		b.WriteString(row("Trade no", o.TradeNo))
	}
	if cards := o.VisibleCards(); len(cards) > 0 {
		b.WriteString("\n" + styles.Subtitle.Render("Cards") + "\n")
		for _, code := range cards {
			b.WriteString("  " + styles.Code.Render(code) + "\n")
		}
	}
	return styles.ContentBox.Width(max(width-4, 30)).Render(strings.TrimRight(b.String(), "\n"))
}

func (a *adminScreen) renderNotice() string {
	n := a.console.Notice
	var b strings.Builder
	if n.Err != nil {
		b.WriteString(styles.ErrorMsg.Render(errText(n.Err)) + "\n")
	}
	if status := n.Status(a.now()); status != "" {
		b.WriteString(styles.SuccessMsg.Render(status) + "\n")
	}
	if n.Content == "" {
		b.WriteString(styles.Muted.Render("(no notice)") + "\n")
		return b.String()
	}
	if a.preview {
		b.WriteString(previewBox(n.Content, a.width))
	} else {
		b.WriteString(util.Wrap(n.Content, max(a.width-4, 20)) + "\n")
	}
	return b.String()
}

func (a *adminScreen) renderFormPreview() string {
	var content string
	switch a.kind {
	case formProduct:
		content = a.form.value(prodContent)
	case formNotice:
		content = a.form.value(0)
	}
	return "\n" + styles.Subtitle.Render("Preview") + "\n" + previewBox(content, a.width)
}

// previewBox shows markdown as wrapped plain text in a box.
func previewBox(markdown string, width int) string {
	if strings.TrimSpace(markdown) == "" {
		markdown = "(empty)"
	}
	inner := max(width-8, 20)
	return styles.ContentBox.Render(util.Wrap(markdown, inner)) + "\n"
}

func (a *adminScreen) help() string {
	switch {
	case !a.console.Authorized():
		return helpLine("enter", "log in")
	case a.confirm != nil:
		return helpLine("y", "confirm", "n", "cancel")
	case a.form != nil && a.kind == formProduct:
		return helpLine("tab", "next field", "ctrl+s", "save", "ctrl+u", "upload image", "ctrl+p", "preview", "esc", "cancel")
	case a.form != nil && a.kind == formNotice:
		return helpLine("ctrl+s", "save", "ctrl+p", "preview", "esc", "cancel")
	case a.form != nil:
		return helpLine("tab", "next field", "enter/ctrl+s", "save", "esc", "cancel")
	case a.section == sectionProducts && a.console.Cards.IsOpen():
		return helpLine("a", "add codes", "d", "delete", "r", "reload", "esc", "back")
	case a.section == sectionOrders && a.orderDetailOpen():
		return helpLine("esc", "back")
	}

	common := []string{"←/→", "section"}
	switch a.section {
	case sectionCategories:
		common = append(common, "a", "add", "e", "edit", "d", "delete")
	case sectionProducts:
		common = append(common, "a", "add", "e", "edit", "d", "delete", "c", "cards", "p", "preview")
	case sectionOrders:
		common = append(common, "f", "filter", "/", "search", "enter", "details")
	case sectionNotice:
		common = append(common, "e", "edit", "p", "preview")
	}
	common = append(common, "r", "reload", "L", "logout")
	return helpLine(common...)
}
