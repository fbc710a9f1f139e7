package msg

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/catalog"
	"github.com/coolteam/cardshop/internal/checkout"
	"github.com/coolteam/cardshop/internal/lookup"
	"github.com/coolteam/cardshop/internal/model"
)

// Tick returns a command that sends a TickMsg after d.
func Tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// LoadCatalog fetches the shop catalog in the background.
func LoadCatalog(ctx context.Context, src catalog.Source) tea.Cmd {
	return func() tea.Msg {
		return CatalogLoadedMsg{Result: catalog.Fetch(ctx, src)}
	}
}

// ProductFetcher loads one product detail.
type ProductFetcher interface {
	Product(ctx context.Context, id model.ID) (model.Product, error)
}

// LoadProduct fetches a product detail in the background.
func LoadProduct(ctx context.Context, f ProductFetcher, id model.ID) tea.Cmd {
	return func() tea.Msg {
		p, err := f.Product(ctx, id)
		return ProductLoadedMsg{Product: p, Err: err}
	}
}

// CreateOrder sends a create-order request prepared by checkout.Workflow.Begin.
func CreateOrder(ctx context.Context, o checkout.Orderer, in api.CreateOrderInput) tea.Cmd {
	return func() tea.Msg {
		return OrderCreatedMsg{Resp: o.CreateOrder(ctx, in)}
	}
}

// FindOrders runs an order lookup in the background.
func FindOrders(ctx context.Context, f lookup.Finder, contact, password string) tea.Cmd {
	return func() tea.Msg {
		return OrdersFoundMsg{Resp: f.GetOrder(ctx, contact, password)}
	}
}

// RunAdmin runs fn in the background and reports op when it returns. The
// caller must not touch the state fn mutates until the AdminDoneMsg arrives.
func RunAdmin(ctx context.Context, op AdminOp, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		value, err := fn(ctx)
		return AdminDoneMsg{Op: op, Value: value, Err: err}
	}
}

// WaitForSession blocks until a key arrives on ch. The receiver re-issues the
// command after each SessionChangedMsg; a closed channel ends the loop.
func WaitForSession(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return SessionChangedMsg{Key: key}
	}
}
