package admin

import (
	"context"
	"strings"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/sourcegraph/conc"
)

// Cards manages the unused code pool of one product. Codes are addressed by
// position; after every change both the pool and the product list are
// reloaded so card_count stays current.
type Cards struct {
	b        Backend
	products *Products
	logger   *logging.Logger

	Product model.Product
	Items   []string
	// Added is how many codes the last AddBlock reported.
	Added int
	Err   error
}

// Open loads the pool of p.
func (c *Cards) Open(ctx context.Context, p model.Product) error {
	c.Product = p
	c.Items = nil
	c.Added = 0
	return c.loadCards(ctx)
}

// IsOpen reports whether a product is selected.
func (c *Cards) IsOpen() bool {
	return c.Product.ID != ""
}

// Close deselects the product.
func (c *Cards) Close() {
	c.Product = model.Product{}
	c.Items = nil
	c.Added = 0
	c.Err = nil
}

// AddBlock sends newline-delimited codes and returns how many the server
// added.
func (c *Cards) AddBlock(ctx context.Context, block string) (int, error) {
	if !c.IsOpen() {
		return 0, errors.ErrNotOpen
	}
	if strings.TrimSpace(block) == "" {
		return 0, errors.NewValidationError("enter at least one card").WithField("cards")
	}

	c.Added = 0
	resp := c.b.AddCards(ctx, c.Product.ID, block)
	err := resp.Error("failed to add cards")
	if err == nil {
		c.Added = resp.Count
		c.logger.Info("cards added", "product_id", c.Product.ID.String(), "count", resp.Count)
	}
	return c.Added, errors.Join(err, c.reload(ctx))
}

// Delete removes the code at index.
func (c *Cards) Delete(ctx context.Context, index int) error {
	if !c.IsOpen() {
		return errors.ErrNotOpen
	}
	if index < 0 || index >= len(c.Items) {
		return errors.NewValidationError("no card at that position").WithField("index").WithValue(index)
	}

	err := c.b.DeleteCard(ctx, c.Product.ID, index).Error("failed to delete card")
	if err != nil {
		c.logger.Warn("card delete failed", "product_id", c.Product.ID.String(), "index", index, "error", err.Error())
	}
	return errors.Join(err, c.reload(ctx))
}

func (c *Cards) loadCards(ctx context.Context) error {
	return c.applyCards(c.b.GetCards(ctx, c.Product.ID))
}

func (c *Cards) applyCards(resp api.Response[[]string]) error {
	if err := resp.Error("failed to load cards"); err != nil {
		c.Err = err
		return err
	}
	c.Err = nil
	c.Items = resp.Data
	return nil
}

// reload refreshes the pool and the outer product list in parallel.
func (c *Cards) reload(ctx context.Context) error {
	var (
		cards       api.Response[[]string]
		productsErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() { cards = c.b.GetCards(ctx, c.Product.ID) })
	wg.Go(func() { productsErr = c.products.Load(ctx) })
	wg.Wait()

	cardsErr := c.applyCards(cards)
	if p, ok := c.products.Find(c.Product.ID); ok {
		c.Product = p
	}
	return errors.Join(cardsErr, productsErr)
}
