// Package catalog holds the shop screen's copy of categories, products and
// the site notice, and the local category filter applied to it.
package catalog

import (
	"context"
	"slices"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/sourcegraph/conc"
)

// Fallback messages when the endpoint gives none.
const (
	MsgCategoriesFailed = "failed to load categories"
	MsgProductsFailed   = "failed to load products"
	MsgNoticeFailed     = "failed to load notice"
	MsgProductFailed    = "product not found"
)

// Source is the part of the API client the catalog reads from.
type Source interface {
	GetNotice(ctx context.Context) api.Response[string]
	GetCategories(ctx context.Context) api.Response[[]model.Category]
	GetProducts(ctx context.Context, categoryID model.ID) api.Response[[]model.Product]
	GetProduct(ctx context.Context, id model.ID) api.Response[model.Product]
}

// View is the shop screen state. It is not safe for concurrent use; Fetch
// is the part that may run off the UI loop.
type View struct {
	src    Source
	logger *logging.Logger

	Categories []model.Category
	Products   []model.Product
	Notice     string

	// Per-source failures from the last Load. A failed source leaves its
	// previous data in place.
	CategoriesErr error
	ProductsErr   error
	NoticeErr     error

	selected model.ID
	loaded   bool
}

// New creates an empty view.
func New(src Source, logger *logging.Logger) *View {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &View{src: src, logger: logger.WithView("catalog")}
}

// Result holds the responses of one catalog fetch.
type Result struct {
	Categories api.Response[[]model.Category]
	Products   api.Response[[]model.Product]
	Notice     api.Response[string]
}

// Fetch requests categories, products and the notice in parallel and
// returns once all three have settled. It touches no view state, so it can
// run outside the UI loop.
func Fetch(ctx context.Context, src Source) Result {
	var r Result
	var wg conc.WaitGroup
	wg.Go(func() { r.Categories = src.GetCategories(ctx) })
	wg.Go(func() { r.Products = src.GetProducts(ctx, "") })
	wg.Go(func() { r.Notice = src.GetNotice(ctx) })
	wg.Wait()
	return r
}

// Load fetches and applies a fresh catalog.
func (v *View) Load(ctx context.Context) error {
	return v.Apply(Fetch(ctx, v.src))
}

// Apply stores a fetch result. It returns the per-source failures joined
// together, or nil when all three succeeded.
func (v *View) Apply(r Result) error {
	v.CategoriesErr = r.Categories.Error(MsgCategoriesFailed)
	if v.CategoriesErr == nil {
		v.Categories = r.Categories.Data
	}
	v.ProductsErr = r.Products.Error(MsgProductsFailed)
	if v.ProductsErr == nil {
		v.Products = r.Products.Data
	}
	v.NoticeErr = r.Notice.Error(MsgNoticeFailed)
	if v.NoticeErr == nil {
		v.Notice = r.Notice.Data
	}
	v.loaded = true

	// A selection whose category disappeared falls back to all.
	if v.selected != "" && v.CategoriesErr == nil && v.Category(v.selected) == nil {
		v.selected = ""
	}

	err := errors.Join(v.CategoriesErr, v.ProductsErr, v.NoticeErr)
	if err != nil {
		v.logger.Warn("catalog partially loaded", "error", err.Error())
	} else {
		v.logger.Debug("catalog loaded", "categories", len(v.Categories), "products", len(v.Products))
	}
	return err
}

// Source returns the API the view reads from.
func (v *View) Source() Source {
	return v.src
}

// Loaded reports whether Load has completed at least once.
func (v *View) Loaded() bool {
	return v.loaded
}

// Select narrows the product list to one category; "" selects all.
func (v *View) Select(categoryID model.ID) {
	v.selected = categoryID
}

// Selected returns the active category filter.
func (v *View) Selected() model.ID {
	return v.selected
}

// Visible returns the products matching the filter in API order.
func (v *View) Visible() []model.Product {
	if v.selected == "" {
		return v.Products
	}
	out := make([]model.Product, 0, len(v.Products))
	for _, p := range v.Products {
		if p.CategoryID == v.selected {
			out = append(out, p)
		}
	}
	return out
}

// Category returns the category with the given id, or nil.
func (v *View) Category(id model.ID) *model.Category {
	i := slices.IndexFunc(v.Categories, func(c model.Category) bool { return c.ID == id })
	if i < 0 {
		return nil
	}
	return &v.Categories[i]
}

// CategoryName returns the display name of a product's category.
func (v *View) CategoryName(p model.Product) string {
	if p.Category != nil && p.Category.Name != "" {
		return p.Category.Name
	}
	if c := v.Category(p.CategoryID); c != nil {
		return c.Name
	}
	return ""
}

// Purchasable reports whether the buy action is enabled for p. Products
// that are out of stock stay listed.
func Purchasable(p model.Product) bool {
	return p.Purchasable()
}

// Product fetches the detail of one product.
func (v *View) Product(ctx context.Context, id model.ID) (model.Product, error) {
	resp := v.src.GetProduct(ctx, id)
	if err := resp.Error(MsgProductFailed); err != nil {
		return model.Product{}, err
	}
	if resp.Data.ID == "" {
		return model.Product{}, errors.NewNotFoundError("product", id.String())
	}
	return resp.Data, nil
}
