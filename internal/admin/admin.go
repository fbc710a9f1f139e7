// Package admin implements the password-gated management console.
//
// Every sub-view follows the same pattern: load the full list, mutate
// through a form, then reload the full list. There are no optimistic or
// partial updates. A 401 from any call clears the stored token inside the
// API client, which closes the Gate on the next check.
package admin

import (
	"context"
	"encoding/json"
	"io"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/spf13/afero"
)

// Backend is the part of the API client the console uses.
type Backend interface {
	Login(ctx context.Context, password string) api.Response[json.RawMessage]

	GetCategories(ctx context.Context) api.Response[[]model.Category]
	AddCategory(ctx context.Context, name, description string) api.Response[json.RawMessage]
	EditCategory(ctx context.Context, id model.ID, name, description string) api.Response[json.RawMessage]
	DeleteCategory(ctx context.Context, id model.ID) api.Response[json.RawMessage]

	GetProducts(ctx context.Context, categoryID model.ID) api.Response[[]model.Product]
	AddProduct(ctx context.Context, in api.ProductInput) api.Response[json.RawMessage]
	EditProduct(ctx context.Context, id model.ID, in api.ProductInput) api.Response[json.RawMessage]
	DeleteProduct(ctx context.Context, id model.ID) api.Response[json.RawMessage]
	UploadImage(ctx context.Context, filename string, body io.Reader) api.Response[json.RawMessage]

	GetCards(ctx context.Context, productID model.ID) api.Response[[]string]
	AddCards(ctx context.Context, productID model.ID, cards string) api.Response[json.RawMessage]
	DeleteCard(ctx context.Context, productID model.ID, index int) api.Response[json.RawMessage]

	GetOrders(ctx context.Context, f api.OrderFilter) api.Response[[]model.Order]
	GetOrderDetail(ctx context.Context, orderNo string) api.Response[model.Order]

	GetNotice(ctx context.Context) api.Response[string]
	SetNotice(ctx context.Context, content string) api.Response[json.RawMessage]
}

// Console groups the gate and the sub-views.
type Console struct {
	Gate       *Gate
	Categories *Categories
	Products   *Products
	Cards      *Cards
	Orders     *Orders
	Notice     *Notice
}

// New wires a console. fs is used to read images for upload.
func New(b Backend, tokens session.TokenKeeper, fs afero.Fs, logger *logging.Logger) *Console {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := logger.WithView("admin")

	products := &Products{b: b, fs: fs, logger: log.With("section", "products")}
	return &Console{
		Gate:       &Gate{b: b, tokens: tokens, logger: log.With("section", "gate")},
		Categories: &Categories{b: b, logger: log.With("section", "categories")},
		Products:   products,
		Cards:      &Cards{b: b, products: products, logger: log.With("section", "cards")},
		Orders:     &Orders{b: b, logger: log.With("section", "orders")},
		Notice:     newNotice(b, log.With("section", "notice")),
	}
}

// Authorized reports whether the console is unlocked.
func (c *Console) Authorized() bool {
	return c.Gate.Open()
}
