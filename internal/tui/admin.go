package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coolteam/cardshop/internal/admin"
	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/coolteam/cardshop/internal/tui/msg"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
)

type adminSection int

const (
	sectionCategories adminSection = iota
	sectionProducts
	sectionOrders
	sectionNotice
	sectionCount
)

var sectionNames = [sectionCount]string{"Categories", "Products", "Orders", "Notice"}

type formKind int

const (
	formNone formKind = iota
	formCategory
	formProduct
	formCards
	formSearch
	formNotice
)

// Product form field positions.
const (
	prodName = iota
	prodCategory
	prodPrice
	prodImage
	prodDescription
	prodContent
	prodDelivery
)

// pendingOp is an operation waiting for a y/n confirmation.
type pendingOp struct {
	prompt string
	op     msg.AdminOp
	fn     func(ctx context.Context) (string, error)
}

// adminScreen drives admin.Console. Every console call runs in a command;
// while one is running the screen ignores keys and shows the frame rendered
// just before it started.
type adminScreen struct {
	ctx     context.Context
	console *admin.Console
	now     func() time.Time

	working bool
	frame   string
	loaded  bool
	width   int

	section    adminSection
	cursor     int
	cardCursor int
	err        error
	status     string

	login   textinput.Model
	form    *form
	kind    formKind
	editing model.ID
	confirm *pendingOp
	preview bool
}

func newAdminScreen(ctx context.Context, console *admin.Console) *adminScreen {
	login := newInput("admin password")
	login.EchoMode = textinput.EchoPassword

	return &adminScreen{
		ctx:     ctx,
		console: console,
		now:     time.Now,
		width:   80,
		login:   login,
	}
}

func (a *adminScreen) busy() bool { return a.working }

func (a *adminScreen) capturing() bool {
	return !a.console.Authorized() || a.form != nil || a.confirm != nil
}

func (a *adminScreen) enter() tea.Cmd {
	if a.working {
		return nil
	}
	if !a.console.Authorized() {
		return a.login.Focus()
	}
	if !a.loaded {
		return a.loadAll()
	}
	return nil
}

// run starts fn in the background. The current frame is kept for display
// because fn mutates the console state the renderer reads.
func (a *adminScreen) run(op msg.AdminOp, fn func(ctx context.Context) (string, error)) tea.Cmd {
	a.frame = a.render()
	a.working = true
	a.err = nil
	a.status = ""
	return msg.RunAdmin(a.ctx, op, fn)
}

func (a *adminScreen) loadAll() tea.Cmd {
	c := a.console
	return a.run(msg.OpLoad, func(ctx context.Context) (string, error) {
		var errs [4]error
		var wg conc.WaitGroup
		wg.Go(func() { errs[0] = c.Categories.Load(ctx) })
		wg.Go(func() { errs[1] = c.Products.Load(ctx) })
		wg.Go(func() { errs[2] = c.Orders.Load(ctx) })
		wg.Go(func() { errs[3] = c.Notice.Load(ctx) })
		wg.Wait()
		return "", errors.Join(errs[:]...)
	})
}

// reset returns to the login prompt, e.g. after a 401 or a logout in
// another terminal.
func (a *adminScreen) reset() tea.Cmd {
	a.loaded = false
	a.form = nil
	a.kind = formNone
	a.confirm = nil
	a.preview = false
	a.cursor = 0
	a.cardCursor = 0
	a.console.Cards.Close()
	a.console.Orders.CloseDetail()
	a.login.SetValue("")
	return a.login.Focus()
}

func (a *adminScreen) onDone(m msg.AdminDoneMsg) tea.Cmd {
	a.working = false
	a.frame = ""

	if m.Op == msg.OpLogin {
		if m.Err != nil {
			return a.login.Focus()
		}
		a.login.SetValue("")
		a.login.Blur()
		return a.loadAll()
	}

	a.err = m.Err
	var cmd tea.Cmd
	switch m.Op {
	case msg.OpLoad:
		a.loaded = true
	case msg.OpUploadImage:
		if m.Err == nil && a.kind == formProduct && a.form != nil {
			a.form.set(prodImage, m.Value)
			a.status = "image uploaded"
		}
	case msg.OpAddCards:
		if a.console.Cards.Added > 0 {
			a.status = fmt.Sprintf("%d cards added", a.console.Cards.Added)
		}
		if m.Err == nil {
			a.closeForm()
		}
	case msg.OpSaveNotice:
		if m.Err == nil {
			a.closeForm()
			cmd = msg.Tick(a.console.Notice.Feedback())
		}
	case msg.OpSaveCategory, msg.OpSaveProduct:
		if m.Err == nil {
			a.closeForm()
		}
	}

	if !a.console.Authorized() {
		return a.reset()
	}
	a.clampCursor()
	return cmd
}

func (a *adminScreen) sessionChanged(key string) tea.Cmd {
	if key != session.KeyAdminToken || a.working {
		return nil
	}
	if !a.console.Authorized() {
		return a.reset()
	}
	if !a.loaded {
		a.login.Blur()
		return a.loadAll()
	}
	return nil
}

func (a *adminScreen) listLen() int {
	c := a.console
	switch a.section {
	case sectionCategories:
		return len(c.Categories.Items)
	case sectionProducts:
		return len(c.Products.Items)
	case sectionOrders:
		return len(c.Orders.Items)
	}
	return 0
}

func (a *adminScreen) clampCursor() {
	a.cursor = max(min(a.cursor, a.listLen()-1), 0)
	a.cardCursor = max(min(a.cardCursor, len(a.console.Cards.Items)-1), 0)
}

func (a *adminScreen) openForm(kind formKind, f *form) tea.Cmd {
	a.form = f
	a.kind = kind
	a.preview = false
	a.err = nil
	a.status = ""
	return f.start()
}

func (a *adminScreen) closeForm() {
	a.form = nil
	a.kind = formNone
	a.editing = ""
	a.preview = false
}

// -----------------------------------------------------------------------------
// Keys
// -----------------------------------------------------------------------------

func (a *adminScreen) handleKey(k tea.KeyMsg) tea.Cmd {
	if a.working {
		return nil
	}
	if !a.console.Authorized() {
		return a.handleLoginKey(k)
	}
	if a.confirm != nil {
		return a.handleConfirmKey(k)
	}
	if a.form != nil {
		return a.handleFormKey(k)
	}
	if k.String() == "L" {
		a.console.Gate.Logout()
		return a.reset()
	}

	switch {
	case a.section == sectionProducts && a.console.Cards.IsOpen():
		return a.handleCardsKey(k)
	case a.section == sectionOrders && a.orderDetailOpen():
		if k.String() == "esc" {
			a.console.Orders.CloseDetail()
		}
		return nil
	}

	switch k.String() {
	case "left", "h":
		a.section = (a.section + sectionCount - 1) % sectionCount
		a.cursor = 0
		a.preview = false
		return nil
	case "right", "l":
		a.section = (a.section + 1) % sectionCount
		a.cursor = 0
		a.preview = false
		return nil
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return nil
	case "down", "j":
		if a.cursor < a.listLen()-1 {
			a.cursor++
		}
		return nil
	case "r":
		return a.loadAll()
	}

	switch a.section {
	case sectionCategories:
		return a.handleCategoryKey(k)
	case sectionProducts:
		return a.handleProductKey(k)
	case sectionOrders:
		return a.handleOrderKey(k)
	case sectionNotice:
		return a.handleNoticeKey(k)
	}
	return nil
}

func (a *adminScreen) handleLoginKey(k tea.KeyMsg) tea.Cmd {
	if k.String() == "enter" {
		password := a.login.Value()
		gate := a.console.Gate
		return a.run(msg.OpLogin, func(ctx context.Context) (string, error) {
			return "", gate.Login(ctx, password)
		})
	}
	var cmd tea.Cmd
	a.login, cmd = a.login.Update(k)
	return cmd
}

func (a *adminScreen) handleConfirmKey(k tea.KeyMsg) tea.Cmd {
	p := a.confirm
	switch k.String() {
	case "y", "Y":
		a.confirm = nil
		return a.run(p.op, p.fn)
	case "n", "N", "esc":
		a.confirm = nil
	}
	return nil
}

func (a *adminScreen) handleFormKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "ctrl+p":
		if a.kind == formProduct || a.kind == formNotice {
			a.preview = !a.preview
		}
		return nil
	case "ctrl+u":
		if a.kind == formProduct {
			return a.uploadImage()
		}
		return nil
	}

	result, cmd := a.form.handleKey(k)
	switch result {
	case formCanceled:
		a.closeForm()
		return nil
	case formSubmitted:
		return a.submitForm()
	}
	return cmd
}

func (a *adminScreen) forward(m tea.Msg) tea.Cmd {
	if a.working {
		return nil
	}
	if a.form != nil {
		return a.form.forward(m)
	}
	if !a.console.Authorized() {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(m)
		return cmd
	}
	return nil
}

func (a *adminScreen) submitForm() tea.Cmd {
	c := a.console
	f := a.form
	id := a.editing

	switch a.kind {
	case formCategory:
		name, description := f.value(0), f.value(1)
		return a.run(msg.OpSaveCategory, func(ctx context.Context) (string, error) {
			return "", c.Categories.Save(ctx, id, name, description)
		})
	case formProduct:
		in, err := a.productInput()
		if err != nil {
			a.err = err
			return nil
		}
		return a.run(msg.OpSaveProduct, func(ctx context.Context) (string, error) {
			return "", c.Products.Save(ctx, id, in)
		})
	case formCards:
		block := f.value(0)
		return a.run(msg.OpAddCards, func(ctx context.Context) (string, error) {
			_, err := c.Cards.AddBlock(ctx, block)
			return "", err
		})
	case formSearch:
		keyword := f.value(0)
		a.closeForm()
		return a.run(msg.OpLoadOrders, func(ctx context.Context) (string, error) {
			return "", c.Orders.Search(ctx, keyword)
		})
	case formNotice:
		content := f.value(0)
		return a.run(msg.OpSaveNotice, func(ctx context.Context) (string, error) {
			return "", c.Notice.Save(ctx, content)
		})
	}
	return nil
}

func (a *adminScreen) handleCategoryKey(k tea.KeyMsg) tea.Cmd {
	items := a.console.Categories.Items
	switch k.String() {
	case "a":
		a.editing = ""
		return a.openForm(formCategory, newForm("New category", a.formWidth()).
			input("Name", "").
			input("Description", ""))
	case "e", "enter":
		if a.cursor < len(items) {
			cat := items[a.cursor]
			a.editing = cat.ID
			return a.openForm(formCategory, newForm("Edit category", a.formWidth()).
				input("Name", cat.Name).
				input("Description", cat.Description))
		}
	case "d":
		if a.cursor < len(items) {
			cat := items[a.cursor]
			categories := a.console.Categories
			a.confirm = &pendingOp{
				prompt: fmt.Sprintf("Delete category %q and all of its products?", cat.Name),
				op:     msg.OpDeleteCategory,
				fn: func(ctx context.Context) (string, error) {
					return "", categories.Delete(ctx, cat.ID)
				},
			}
		}
	}
	return nil
}

func (a *adminScreen) selectedProduct() (model.Product, bool) {
	items := a.console.Products.Items
	if a.cursor < 0 || a.cursor >= len(items) {
		return model.Product{}, false
	}
	return items[a.cursor], true
}

func (a *adminScreen) handleProductKey(k tea.KeyMsg) tea.Cmd {
	c := a.console
	switch k.String() {
	case "a":
		a.editing = ""
		return a.openForm(formProduct, a.productForm("New product", api.ProductInput{}))
	case "e":
		if p, ok := a.selectedProduct(); ok {
			a.editing = p.ID
			return a.openForm(formProduct, a.productForm("Edit product", admin.Input(p)))
		}
	case "d":
		if p, ok := a.selectedProduct(); ok {
			a.confirm = &pendingOp{
				prompt: fmt.Sprintf("Delete product %q?", p.Name),
				op:     msg.OpDeleteProduct,
				fn: func(ctx context.Context) (string, error) {
					return "", c.Products.Delete(ctx, p.ID)
				},
			}
		}
	case "c", "enter":
		if p, ok := a.selectedProduct(); ok {
			a.cardCursor = 0
			return a.run(msg.OpOpenCards, func(ctx context.Context) (string, error) {
				return "", c.Cards.Open(ctx, p)
			})
		}
	case "p":
		a.preview = !a.preview
	}
	return nil
}

func (a *adminScreen) productForm(title string, in api.ProductInput) *form {
	price := ""
	if !in.Price.IsZero() || in.Name != "" {
		price = in.Price.StringFixed(2)
	}
	return newForm(title, a.formWidth()).
		input("Name", in.Name).
		input("Category", in.CategoryID.String()).
		input("Price", price).
		input("Image", in.Image).
		area("Description", in.Description, 3).
		area("Content", in.Content, 5).
		area("Delivery info", in.DeliveryInfo, 3)
}

// productInput reads the product form. The category field accepts an id
// or an exact category name.
func (a *adminScreen) productInput() (api.ProductInput, error) {
	f := a.form
	in := api.ProductInput{
		Name:         f.value(prodName),
		CategoryID:   a.resolveCategory(strings.TrimSpace(f.value(prodCategory))),
		Image:        strings.TrimSpace(f.value(prodImage)),
		Description:  f.value(prodDescription),
		Content:      f.value(prodContent),
		DeliveryInfo: f.value(prodDelivery),
	}
	if raw := strings.TrimSpace(f.value(prodPrice)); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return in, errors.NewValidationError("price must be a number").WithField("price").WithValue(raw)
		}
		in.Price = price
	}
	return in, admin.ValidateInput(in)
}

func (a *adminScreen) resolveCategory(value string) model.ID {
	for _, cat := range a.console.Products.Categories {
		if cat.ID.String() == value || cat.Name == value {
			return cat.ID
		}
	}
	return model.ID(value)
}

func (a *adminScreen) uploadImage() tea.Cmd {
	path := strings.TrimSpace(a.form.value(prodImage))
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		a.err = errors.NewValidationError("type a local file path into Image, then press ctrl+u").WithField("image")
		return nil
	}
	products := a.console.Products
	return a.run(msg.OpUploadImage, func(ctx context.Context) (string, error) {
		return products.UploadImage(ctx, path)
	})
}

func (a *adminScreen) handleCardsKey(k tea.KeyMsg) tea.Cmd {
	cards := a.console.Cards
	switch k.String() {
	case "esc":
		cards.Close()
		a.status = ""
	case "up", "k":
		if a.cardCursor > 0 {
			a.cardCursor--
		}
	case "down", "j":
		if a.cardCursor < len(cards.Items)-1 {
			a.cardCursor++
		}
	case "a":
		return a.openForm(formCards, newForm("Add cards to "+cards.Product.Name, a.formWidth()).
			area("Codes, one per line", "", 8))
	case "d":
		if a.cardCursor < len(cards.Items) {
			index := a.cardCursor
			a.confirm = &pendingOp{
				prompt: fmt.Sprintf("Delete card %q?", cards.Items[index]),
				op:     msg.OpDeleteCard,
				fn: func(ctx context.Context) (string, error) {
					return "", cards.Delete(ctx, index)
				},
			}
		}
	case "r":
		p := cards.Product
		return a.run(msg.OpOpenCards, func(ctx context.Context) (string, error) {
			return "", cards.Open(ctx, p)
		})
	}
	return nil
}

func (a *adminScreen) orderDetailOpen() bool {
	_, ok := a.console.Orders.Detail()
	return ok
}

func (a *adminScreen) handleOrderKey(k tea.KeyMsg) tea.Cmd {
	orders := a.console.Orders
	switch k.String() {
	case "f":
		return a.run(msg.OpLoadOrders, func(ctx context.Context) (string, error) {
			return "", orders.CycleStatus(ctx)
		})
	case "/":
		return a.openForm(formSearch, newForm("Search orders", a.formWidth()).
			input("Keyword", orders.Keyword))
	case "enter":
		if a.cursor < len(orders.Items) {
			orderNo := orders.Items[a.cursor].OrderNo
			return a.run(msg.OpOrderDetail, func(ctx context.Context) (string, error) {
				_, err := orders.ShowDetail(ctx, orderNo)
				return "", err
			})
		}
	}
	return nil
}

func (a *adminScreen) handleNoticeKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "e", "enter":
		return a.openForm(formNotice, newForm("Edit notice", a.formWidth()).
			area("Notice (markdown)", a.console.Notice.Content, 10))
	case "p":
		a.preview = !a.preview
	}
	return nil
}

func (a *adminScreen) formWidth() int {
	return max(a.width-24, 30)
}
