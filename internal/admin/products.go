package admin

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
)

// Products manages the product list.
type Products struct {
	b      Backend
	fs     afero.Fs
	logger *logging.Logger

	Items      []model.Product
	Categories []model.Category
	// Err is the last load failure of either list.
	Err error
}

// Load fetches products and categories in parallel. A failure of one list
// keeps the other.
func (p *Products) Load(ctx context.Context) error {
	var (
		products   api.Response[[]model.Product]
		categories api.Response[[]model.Category]
	)
	var wg conc.WaitGroup
	wg.Go(func() { products = p.b.GetProducts(ctx, "") })
	wg.Go(func() { categories = p.b.GetCategories(ctx) })
	wg.Wait()

	productsErr := products.Error("failed to load products")
	if productsErr == nil {
		p.Items = products.Data
	}
	categoriesErr := categories.Error("failed to load categories")
	if categoriesErr == nil {
		p.Categories = categories.Data
	}
	p.Err = errors.Join(productsErr, categoriesErr)
	return p.Err
}

// Find returns the product with the given id from the loaded list.
func (p *Products) Find(id model.ID) (model.Product, bool) {
	for _, item := range p.Items {
		if item.ID == id {
			return item, true
		}
	}
	return model.Product{}, false
}

// Input returns the form values of an existing product for editing.
func Input(prod model.Product) api.ProductInput {
	return api.ProductInput{
		Name:         prod.Name,
		CategoryID:   prod.CategoryID,
		Price:        prod.Price,
		Description:  prod.Description,
		Content:      prod.Content,
		Image:        prod.Image,
		DeliveryInfo: prod.DeliveryInfo,
	}
}

// ValidateInput checks a product form before it is sent.
func ValidateInput(in api.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return errors.NewValidationError("product name is required").WithField("name")
	case in.CategoryID == "":
		return errors.NewValidationError("please choose a category").WithField("category_id")
	case in.Price.IsNegative():
		return errors.NewValidationError("price cannot be negative").
			WithField("price").WithValue(in.Price.String())
	}
	return nil
}

// Save adds a product when id is empty and edits it otherwise, then reloads.
func (p *Products) Save(ctx context.Context, id model.ID, in api.ProductInput) error {
	if err := ValidateInput(in); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)

	var err error
	if id == "" {
		err = p.b.AddProduct(ctx, in).Error("failed to add product")
	} else {
		err = p.b.EditProduct(ctx, id, in).Error("failed to save product")
	}
	if err != nil {
		p.logger.Warn("product save failed", "id", id.String(), "error", err.Error())
	}
	return errors.Join(err, p.Load(ctx))
}

// Delete removes a product and reloads.
func (p *Products) Delete(ctx context.Context, id model.ID) error {
	err := p.b.DeleteProduct(ctx, id).Error("failed to delete product")
	if err != nil {
		p.logger.Warn("product delete failed", "id", id.String(), "error", err.Error())
	}
	return errors.Join(err, p.Load(ctx))
}

// UploadImage sends the file at path and returns its hosted URL.
func (p *Products) UploadImage(ctx context.Context, path string) (string, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return "", errors.NewValidationError("cannot read image file").
			WithField("image").WithValue(path).WithCause(err)
	}
	defer func() { _ = f.Close() }()

	resp := p.b.UploadImage(ctx, filepath.Base(path), f)
	if err := resp.Error("failed to upload image"); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", errors.NewAPIError("uploadImage", "upload returned no url", errors.ErrMalformedResponse)
	}
	p.logger.Info("image uploaded", "file", filepath.Base(path), "url", resp.URL)
	return resp.URL, nil
}
