// Package testutil provides testing utilities for cardshop tests.
//
// The main helper is [FakeShop], an in-memory implementation of the remote
// commerce endpoint served over httptest. It keeps enough state to run a
// purchase, a lookup and every admin flow end to end, and it records each
// request so tests can assert what was (or was not) sent.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/coolteam/cardshop/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Defaults used by a fresh FakeShop.
const (
	AdminPassword = "admin123"
	AdminToken    = "fake-admin-token"
)

// RecordedRequest is one request as seen by the fake shop.
type RecordedRequest struct {
	Action        string
	Method        string
	Query         url.Values
	Form          map[string]string
	FileField     string
	FileName      string
	FileBytes     []byte
	Authorization string
	RequestID     string
}

// Handler overrides the behavior of one action.
type Handler func(c echo.Context, req RecordedRequest) error

// FakeShop is an in-memory storefront endpoint.
type FakeShop struct {
	URL    string
	server *httptest.Server
	echo   *echo.Echo

	mu         sync.Mutex
	requests   []RecordedRequest
	overrides  map[string]Handler
	categories []model.Category
	products   []model.Product
	cards      map[model.ID][]string
	orders     []model.Order
	passwords  map[string]string
	notice     string
	nextID     int
}

// NewFakeShop starts a fake endpoint and stops it when the test ends.
// The endpoint lives at URL (which already includes /api.php).
func NewFakeShop(t *testing.T) *FakeShop {
	t.Helper()

	f := &FakeShop{
		overrides: make(map[string]Handler),
		cards:     make(map[model.ID][]string),
		passwords: make(map[string]string),
		nextID:    100,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/api.php", f.dispatch)
	e.POST("/api.php", f.dispatch)
	f.echo = e

	f.server = httptest.NewServer(e)
	f.URL = f.server.URL + "/api.php"
	t.Cleanup(f.server.Close)
	return f
}

// -----------------------------------------------------------------------------
// Seeding and inspection
// -----------------------------------------------------------------------------

// SeedCategory adds a category and returns it.
func (f *FakeShop) SeedCategory(name, description string) model.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.Category{ID: f.newID(), Name: name, Description: description}
	f.categories = append(f.categories, c)
	return c
}

// SeedProduct adds a product with the given unit price and card pool.
func (f *FakeShop) SeedProduct(categoryID model.ID, name, price string, cards ...string) model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Product{
		ID:         f.newID(),
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
	}
	f.products = append(f.products, p)
	f.cards[p.ID] = append([]string(nil), cards...)
	return f.withCount(p)
}

// RequirePassword marks a product as requiring a query password.
func (f *FakeShop) RequirePassword(productID model.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == productID {
			f.products[i].QueryPwdMode = model.QueryPasswordRequired
		}
	}
}

// SetNotice replaces the notice.
func (f *FakeShop) SetNotice(notice string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notice = notice
}

// Notice returns the current notice.
func (f *FakeShop) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Cards returns the unused pool of a product.
func (f *FakeShop) Cards(productID model.ID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cards[productID]...)
}

// Categories returns the current categories.
func (f *FakeShop) Categories() []model.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Category(nil), f.categories...)
}

// Products returns the current products with live card counts.
func (f *FakeShop) Products() []model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, f.withCount(p))
	}
	return out
}

// Orders returns every order.
func (f *FakeShop) Orders() []model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Order(nil), f.orders...)
}

// MarkPaid settles an order, moving codes from the pool onto it.
func (f *FakeShop) MarkPaid(orderNo string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		o := &f.orders[i]
		if o.OrderNo != orderNo || o.IsPaid() {
			continue
		}
		pool := f.cards[o.ProductID]
		n := min(o.Quantity.Int(), len(pool))
		o.Cards = append([]string(nil), pool[:n]...)
		f.cards[o.ProductID] = pool[n:]
		o.Status = model.StatusPaid
		o.PaidAt = "2024-01-01 00:00:00"
	}
}

// Handle overrides one action.
func (f *FakeShop) Handle(action string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[action] = h
}

// Respond makes an action answer with a fixed status and JSON body.
func (f *FakeShop) Respond(action string, status int, body any) {
	f.Handle(action, func(c echo.Context, _ RecordedRequest) error {
		return c.JSON(status, body)
	})
}

// RespondRaw makes an action answer with a fixed status and raw body.
func (f *FakeShop) RespondRaw(action string, status int, body string) {
	f.Handle(action, func(c echo.Context, _ RecordedRequest) error {
		return c.String(status, body)
	})
}

// Requests returns every recorded request.
func (f *FakeShop) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestsFor returns the recorded requests for one action.
func (f *FakeShop) RequestsFor(action string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many times an action was called.
func (f *FakeShop) Count(action string) int {
	return len(f.RequestsFor(action))
}

// ResetRequests forgets recorded requests.
func (f *FakeShop) ResetRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

// -----------------------------------------------------------------------------
// Dispatch
// -----------------------------------------------------------------------------

type envelope map[string]any

func ok(data any) envelope { return envelope{"success": true, "data": data} }

func fail(msg string) envelope { return envelope{"success": false, "message": msg} }

func (f *FakeShop) dispatch(c echo.Context) error {
	rec := record(c)

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	override := f.overrides[rec.Action]
	f.mu.Unlock()

	if override != nil {
		return override(c, rec)
	}

	if isAdminAction(rec.Action) && rec.Authorization != "Bearer "+AdminToken {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch rec.Action {
	case "getNotice":
		return c.JSON(http.StatusOK, ok(f.notice))
	case "getCategories":
		return c.JSON(http.StatusOK, ok(f.categories))
	case "getProducts":
		return c.JSON(http.StatusOK, ok(f.listProducts(model.ID(rec.Query.Get("category_id")))))
	case "getProduct":
		p, found := f.findProduct(model.ID(rec.Query.Get("id")))
		if !found {
			return c.JSON(http.StatusOK, fail("product not found"))
		}
		return c.JSON(http.StatusOK, ok(f.withCount(p)))
	case "createOrder":
		return f.createOrder(c, rec)
	case "getOrder":
		return f.getOrder(c, rec)
	case "login":
		if rec.Form["password"] != AdminPassword {
			return c.JSON(http.StatusOK, fail("wrong password"))
		}
		return c.JSON(http.StatusOK, envelope{"success": true, "token": AdminToken})
	case "addCategory":
		f.categories = append(f.categories, model.Category{ID: f.newID(), Name: rec.Form["name"], Description: rec.Form["description"]})
		return c.JSON(http.StatusOK, envelope{"success": true})
	case "editCategory":
		for i := range f.categories {
			if f.categories[i].ID == model.ID(rec.Form["id"]) {
				f.categories[i].Name = rec.Form["name"]
				f.categories[i].Description = rec.Form["description"]
				return c.JSON(http.StatusOK, envelope{"success": true})
			}
		}
		return c.JSON(http.StatusOK, fail("category not found"))
	case "deleteCategory":
		id := model.ID(rec.Form["id"])
		f.categories = slices.DeleteFunc(f.categories, func(cat model.Category) bool { return cat.ID == id })
		f.products = slices.DeleteFunc(f.products, func(p model.Product) bool { return p.CategoryID == id })
		return c.JSON(http.StatusOK, envelope{"success": true})
	case "addProduct", "editProduct":
		return f.saveProduct(c, rec)
	case "deleteProduct":
		id := model.ID(rec.Form["id"])
		f.products = slices.DeleteFunc(f.products, func(p model.Product) bool { return p.ID == id })
		delete(f.cards, id)
		return c.JSON(http.StatusOK, envelope{"success": true})
	case "getCards":
		return c.JSON(http.StatusOK, ok(f.cardList(model.ID(rec.Query.Get("product_id")))))
	case "addCards":
		id := model.ID(rec.Form["product_id"])
		added := 0
		for _, line := range strings.Split(rec.Form["cards"], "\n") {
			if line = strings.TrimSpace(line); line != "" {
				f.cards[id] = append(f.cards[id], line)
				added++
			}
		}
		return c.JSON(http.StatusOK, envelope{"success": true, "count": added})
	case "deleteCard":
		id := model.ID(rec.Form["product_id"])
		idx, err := strconv.Atoi(rec.Form["index"])
		if err != nil || idx < 0 || idx >= len(f.cards[id]) {
			return c.JSON(http.StatusOK, fail("card not found"))
		}
		f.cards[id] = slices.Delete(f.cards[id], idx, idx+1)
		return c.JSON(http.StatusOK, envelope{"success": true})
	case "getOrders":
		return c.JSON(http.StatusOK, ok(f.filterOrders(rec.Query.Get("status"), rec.Query.Get("keyword"))))
	case "getOrderDetail":
		for _, o := range f.orders {
			if o.OrderNo == rec.Query.Get("order_no") {
				return c.JSON(http.StatusOK, ok(o))
			}
		}
		return c.JSON(http.StatusOK, fail("order not found"))
	case "setNotice":
		f.notice = rec.Form["content"]
		return c.JSON(http.StatusOK, envelope{"success": true})
	case "uploadImage":
		if rec.FileName == "" {
			return c.JSON(http.StatusOK, fail("no file"))
		}
		return c.JSON(http.StatusOK, envelope{"success": true, "url": "https://img.example.com/uploads/" + rec.FileName})
	}

	return c.JSON(http.StatusOK, fail("unknown action"))
}

func record(c echo.Context) RecordedRequest {
	r := c.Request()
	rec := RecordedRequest{
		Action:        c.QueryParam("action"),
		Method:        r.Method,
		Query:         c.QueryParams(),
		Form:          map[string]string{},
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	}

	if r.Method != http.MethodPost {
		return rec
	}
	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			if len(v) > 0 {
				rec.Form[k] = v[0]
			}
		}
		for field, files := range form.File {
			if len(files) == 0 {
				continue
			}
			rec.FileField = field
			rec.FileName = files[0].Filename
			if src, err := files[0].Open(); err == nil {
				rec.FileBytes, _ = io.ReadAll(src)
				_ = src.Close()
			}
		}
	}
	return rec
}

func isAdminAction(action string) bool {
	switch action {
	case "addCategory", "editCategory", "deleteCategory", "addProduct", "editProduct",
		"deleteProduct", "getCards", "addCards", "deleteCard", "getOrders",
		"getOrderDetail", "setNotice", "uploadImage":
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Handlers (caller holds mu)
// -----------------------------------------------------------------------------

func (f *FakeShop) newID() model.ID {
	return model.ID(strconv.Itoa(f.newIDNumber()))
}

func (f *FakeShop) withCount(p model.Product) model.Product {
	p.CardCount = model.Count(len(f.cards[p.ID]))
	return p
}

func (f *FakeShop) findProduct(id model.ID) (model.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (f *FakeShop) listProducts(categoryID model.ID) []model.Product {
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, f.withCount(p))
		}
	}
	return out
}

func (f *FakeShop) cardList(id model.ID) []string {
	out := f.cards[id]
	if out == nil {
		return []string{}
	}
	return out
}

func (f *FakeShop) createOrder(c echo.Context, rec RecordedRequest) error {
	p, found := f.findProduct(model.ID(rec.Form["product_id"]))
	if !found {
		return c.JSON(http.StatusOK, fail("product not found"))
	}
	qty, err := strconv.Atoi(rec.Form["quantity"])
	if err != nil || qty < 1 {
		return c.JSON(http.StatusOK, fail("invalid quantity"))
	}
	if qty > len(f.cards[p.ID]) {
		return c.JSON(http.StatusOK, fail("insufficient stock"))
	}
	contact := rec.Form["contact_info"]
	if contact == "" {
		return c.JSON(http.StatusOK, fail("contact required"))
	}
	password := rec.Form["query_password"]
	if password == "" {
		if p.RequiresQueryPassword() {
			return c.JSON(http.StatusOK, fail("query password required"))
		}
		password = fmt.Sprintf("auto%d", f.nextID)
	}

	orderNo := fmt.Sprintf("CS%06d", f.newIDNumber())
	total := model.Total(p.Price, qty)
	f.orders = append(f.orders, model.Order{
		OrderNo:     orderNo,
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    model.Count(qty),
		Price:       decimal.NewNullDecimal(p.Price),
		TotalPrice:  total,
		PayType:     model.PayType(rec.Form["payment_method"]),
		ContactQQ:   contact,
		Status:      model.StatusPending,
		Cards:       []string{},
		CreatedAt:   "2024-01-01 00:00:00",
	})
	f.passwords[orderNo] = password

	return c.JSON(http.StatusOK, ok(model.OrderCreationResult{
		OrderNo:       orderNo,
		QueryPassword: password,
		TotalPrice:    total,
		PayURL:        "https://pay.example.com/checkout/" + orderNo,
	}))
}

func (f *FakeShop) newIDNumber() int {
	f.nextID++
	return f.nextID
}

func (f *FakeShop) getOrder(c echo.Context, rec RecordedRequest) error {
	contact := rec.Query.Get("contact_qq")
	password := rec.Query.Get("password")

	var found []model.Order
	for _, o := range f.orders {
		if o.ContactQQ == contact && f.passwords[o.OrderNo] == password {
			found = append(found, o)
		}
	}
	if len(found) == 0 {
		return c.JSON(http.StatusOK, fail("order not found"))
	}
	if len(found) == 1 {
		return c.JSON(http.StatusOK, ok(found[0]))
	}
	return c.JSON(http.StatusOK, ok(found))
}

func (f *FakeShop) saveProduct(c echo.Context, rec RecordedRequest) error {
	price, err := decimal.NewFromString(rec.Form["price"])
	if err != nil {
		return c.JSON(http.StatusOK, fail("invalid price"))
	}
	p := model.Product{
		CategoryID:   model.ID(rec.Form["category_id"]),
		Name:         rec.Form["name"],
		Price:        price,
		Description:  rec.Form["description"],
		Content:      rec.Form["content"],
		Image:        rec.Form["image"],
		DeliveryInfo: rec.Form["delivery_info"],
	}

	if rec.Action == "addProduct" {
		p.ID = f.newID()
		f.products = append(f.products, p)
		return c.JSON(http.StatusOK, envelope{"success": true})
	}

	for i := range f.products {
		if f.products[i].ID == model.ID(rec.Form["id"]) {
			p.ID = f.products[i].ID
			p.QueryPwdMode = f.products[i].QueryPwdMode
			f.products[i] = p
			return c.JSON(http.StatusOK, envelope{"success": true})
		}
	}
	return c.JSON(http.StatusOK, fail("product not found"))
}

func (f *FakeShop) filterOrders(status, keyword string) []model.Order {
	out := make([]model.Order, 0, len(f.orders))
	for _, o := range f.orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		if keyword != "" && !strings.Contains(o.OrderNo, keyword) &&
			!strings.Contains(o.ContactQQ, keyword) && !strings.Contains(o.ProductName, keyword) {
			continue
		}
		out = append(out, o)
	}
	return out
}
