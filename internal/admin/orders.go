package admin

import (
	"context"
	"slices"
	"strings"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
)

// Orders is the read-only order list with a status filter and keyword
// search. Matching is done by the server.
type Orders struct {
	b      Backend
	logger *logging.Logger

	Status  model.OrderStatus
	Keyword string
	Items   []model.Order
	Err     error

	detail *model.Order
}

// Load fetches the list with the current filter.
func (o *Orders) Load(ctx context.Context) error {
	resp := o.b.GetOrders(ctx, api.OrderFilter{Status: o.Status, Keyword: strings.TrimSpace(o.Keyword)})
	if err := resp.Error("failed to load orders"); err != nil {
		o.Err = err
		return err
	}
	o.Err = nil
	o.Items = resp.Data
	return nil
}

// SetStatus changes the filter ("" for all) and reloads.
func (o *Orders) SetStatus(ctx context.Context, status model.OrderStatus) error {
	if !slices.Contains(model.ValidStatusFilters(), status) {
		return errors.NewValidationError("unknown status filter").WithField("status").WithValue(string(status))
	}
	o.Status = status
	return o.Load(ctx)
}

// CycleStatus moves to the next filter (all, paid, pending) and reloads.
func (o *Orders) CycleStatus(ctx context.Context) error {
	filters := model.ValidStatusFilters()
	i := slices.Index(filters, o.Status)
	return o.SetStatus(ctx, filters[(i+1)%len(filters)])
}

// Search sets the keyword and reloads.
func (o *Orders) Search(ctx context.Context, keyword string) error {
	o.Keyword = keyword
	return o.Load(ctx)
}

// ShowDetail fetches one order on demand.
func (o *Orders) ShowDetail(ctx context.Context, orderNo string) (model.Order, error) {
	resp := o.b.GetOrderDetail(ctx, orderNo)
	if err := resp.Error("failed to load order"); err != nil {
		return model.Order{}, err
	}
	order := resp.Data
	o.detail = &order
	return order, nil
}

// Detail returns the order opened with ShowDetail.
func (o *Orders) Detail() (model.Order, bool) {
	if o.detail == nil {
		return model.Order{}, false
	}
	return *o.detail, true
}

// CloseDetail hides the detail.
func (o *Orders) CloseDetail() {
	o.detail = nil
}
