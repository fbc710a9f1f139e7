package admin

import (
	"context"
	"strings"

	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
)

// Categories manages the category list.
type Categories struct {
	b      Backend
	logger *logging.Logger

	Items []model.Category
	// Err is the last load failure.
	Err error
}

// Load replaces Items with the server's list.
func (c *Categories) Load(ctx context.Context) error {
	resp := c.b.GetCategories(ctx)
	if err := resp.Error("failed to load categories"); err != nil {
		c.Err = err
		return err
	}
	c.Err = nil
	c.Items = resp.Data
	return nil
}

// Save adds a category when id is empty and edits it otherwise, then
// reloads the list.
func (c *Categories) Save(ctx context.Context, id model.ID, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.NewValidationError("category name is required").WithField("name")
	}

	var err error
	if id == "" {
		err = c.b.AddCategory(ctx, name, description).Error("failed to add category")
	} else {
		err = c.b.EditCategory(ctx, id, name, description).Error("failed to save category")
	}
	if err != nil {
		c.logger.Warn("category save failed", "id", id.String(), "error", err.Error())
	}
	return errors.Join(err, c.Load(ctx))
}

// Delete removes a category. The server also removes its products.
func (c *Categories) Delete(ctx context.Context, id model.ID) error {
	err := c.b.DeleteCategory(ctx, id).Error("failed to delete category")
	if err != nil {
		c.logger.Warn("category delete failed", "id", id.String(), "error", err.Error())
	}
	return errors.Join(err, c.Load(ctx))
}

// Name returns the name of the category with the given id.
func (c *Categories) Name(id model.ID) string {
	for _, cat := range c.Items {
		if cat.ID == id {
			return cat.Name
		}
	}
	return ""
}
