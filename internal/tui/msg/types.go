package msg

import (
	"time"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/catalog"
	"github.com/coolteam/cardshop/internal/model"
)

// TickMsg is sent when a transient confirmation (copied, notice updated)
// may have expired and the screen should be redrawn.
type TickMsg time.Time

// CatalogLoadedMsg carries the settled categories, products and notice.
type CatalogLoadedMsg struct {
	Result catalog.Result
}

// ProductLoadedMsg carries a product detail fetch.
type ProductLoadedMsg struct {
	Product model.Product
	Err     error
}

// OrderCreatedMsg carries the createOrder response for the open dialog.
type OrderCreatedMsg struct {
	Resp api.Response[model.OrderCreationResult]
}

// OrdersFoundMsg carries a getOrder response for the query screen.
type OrdersFoundMsg struct {
	Resp api.Response[model.OrderList]
}

// AdminOp names an admin console operation.
type AdminOp string

// Admin operations reported through AdminDoneMsg.
const (
	OpLogin          AdminOp = "login"
	OpLoad           AdminOp = "load"
	OpSaveCategory   AdminOp = "save-category"
	OpDeleteCategory AdminOp = "delete-category"
	OpSaveProduct    AdminOp = "save-product"
	OpDeleteProduct  AdminOp = "delete-product"
	OpUploadImage    AdminOp = "upload-image"
	OpOpenCards      AdminOp = "open-cards"
	OpAddCards       AdminOp = "add-cards"
	OpDeleteCard     AdminOp = "delete-card"
	OpLoadOrders     AdminOp = "load-orders"
	OpOrderDetail    AdminOp = "order-detail"
	OpSaveNotice     AdminOp = "save-notice"
)

// AdminDoneMsg signals that an admin operation finished. Value carries an
// operation specific result, such as the uploaded image URL.
type AdminDoneMsg struct {
	Op    AdminOp
	Value string
	Err   error
}

// SessionChangedMsg reports that a session key was changed outside this
// process.
type SessionChangedMsg struct {
	Key string
}
