// Package checkout implements the purchase dialog: a small state machine
// that collects the order form, submits exactly one create-order call at a
// time and persists the returned credentials before anything else happens.
//
// The dialog moves through these states:
//
//	Idle -> FormOpen -> Submitting -> Succeeded
//	                       |
//	                       +-> FormOpen (failure, fields kept)
//
// Workflow is driven from a single goroutine (the TUI update loop or a CLI
// command). The network call itself may run elsewhere between Begin and
// Complete; Begin refuses a second submission while one is in flight.
package checkout

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/shopspring/decimal"
)

// State is the dialog state.
type State int

const (
	StateIdle State = iota
	StateFormOpen
	StateSubmitting
	StateSucceeded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFormOpen:
		return "form_open"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Inline messages.
const (
	MsgContactRequired  = "please enter your contact"
	MsgPasswordRequired = "this product requires a query password"
	MsgCreateFailed     = "failed to create order"
)

// Orderer places orders.
type Orderer interface {
	CreateOrder(ctx context.Context, in api.CreateOrderInput) api.Response[model.OrderCreationResult]
}

// Memory is the session state the workflow reads and writes.
type Memory interface {
	session.ContactMemory
	AppendHistory(entry model.HistoryEntry)
}

// Workflow is one purchase dialog.
type Workflow struct {
	orderer     Orderer
	memory      Memory
	logger      *logging.Logger
	payTypes    []model.PayType
	contactType int
	now         func() time.Time

	state         State
	product       model.Product
	quantity      int
	contact       string
	queryPassword string
	payType       model.PayType
	result        *model.OrderCreationResult
	inflight      *submission

	// Err is the inline error shown on the form: a validation failure or
	// the last submission failure. It is cleared by a new submission.
	Err error
}

// submission is the form as it was when Begin sent it.
type submission struct {
	product  model.Product
	contact  string
	password string
	total    decimal.Decimal
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithPayTypes sets the offered payment channels; the first is the default.
func WithPayTypes(types ...model.PayType) Option {
	return func(w *Workflow) {
		if len(types) > 0 {
			w.payTypes = types
		}
	}
}

// WithContactType sets the contact kind sent with orders.
func WithContactType(t int) Option {
	return func(w *Workflow) {
		if t > 0 {
			w.contactType = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock replaces the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// New creates an idle workflow.
func New(orderer Orderer, memory Memory, opts ...Option) *Workflow {
	w := &Workflow{
		orderer:     orderer,
		memory:      memory,
		logger:      logging.NopLogger(),
		payTypes:    []model.PayType{model.PayAlipay, model.PayWxpay},
		contactType: model.ContactTypeQQ,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithView("checkout")
	return w
}

// State returns the current state.
func (w *Workflow) State() State { return w.state }

// Submitting reports whether a create-order call is in flight. The submit
// control is disabled while this is true.
func (w *Workflow) Submitting() bool { return w.state == StateSubmitting }

// Product returns the product the form was opened for.
func (w *Workflow) Product() model.Product { return w.product }

// Quantity returns the selected quantity.
func (w *Workflow) Quantity() int { return w.quantity }

// Contact returns the typed contact.
func (w *Workflow) Contact() string { return w.contact }

// QueryPassword returns the typed query password.
func (w *Workflow) QueryPassword() string { return w.queryPassword }

// PayType returns the selected payment channel.
func (w *Workflow) PayType() model.PayType { return w.payType }

// PayTypes returns the offered payment channels.
func (w *Workflow) PayTypes() []model.PayType { return w.payTypes }

// Result returns the created order once Succeeded.
func (w *Workflow) Result() (model.OrderCreationResult, bool) {
	if w.result == nil {
		return model.OrderCreationResult{}, false
	}
	return *w.result, true
}

// Open shows the form for p, prefilled from the session store. Products
// without stock cannot be opened.
func (w *Workflow) Open(p model.Product) error {
	if w.inflight != nil {
		return errors.ErrSubmitting
	}
	if !p.Purchasable() {
		return errors.ErrNotPurchasable
	}

	w.reset()
	w.state = StateFormOpen
	w.product = p
	w.quantity = 1
	w.payType = w.payTypes[0]
	if w.memory != nil {
		w.contact = w.memory.LastContact()
		w.queryPassword = w.memory.LastQueryPassword()
	}
	w.logger.Debug("purchase form opened", "product_id", p.ID.String(), "stock", p.Stock())
	return nil
}

// SetQuantity sets the quantity clamped to [1, stock].
func (w *Workflow) SetQuantity(n int) {
	if !w.editable() {
		return
	}
	w.quantity = min(max(n, 1), max(w.product.Stock(), 1))
}

// Increment raises the quantity by one, up to the stock.
func (w *Workflow) Increment() { w.SetQuantity(w.quantity + 1) }

// Decrement lowers the quantity by one, down to 1.
func (w *Workflow) Decrement() { w.SetQuantity(w.quantity - 1) }

// SetContact updates the contact and remembers it.
func (w *Workflow) SetContact(contact string) {
	if !w.editable() {
		return
	}
	w.contact = contact
	if w.memory != nil {
		w.memory.SetLastContact(contact)
	}
}

// SetQueryPassword updates the query password and remembers it.
func (w *Workflow) SetQueryPassword(password string) {
	if !w.editable() {
		return
	}
	w.queryPassword = password
	if w.memory != nil {
		w.memory.SetLastQueryPassword(password)
	}
}

// SetPayType selects a payment channel from the offered set.
func (w *Workflow) SetPayType(p model.PayType) error {
	if !slices.Contains(w.payTypes, p) {
		return errors.NewValidationError("payment method not available").
			WithField("pay_type").WithValue(string(p))
	}
	if w.editable() {
		w.payType = p
	}
	return nil
}

// CyclePayType selects the next offered payment channel.
func (w *Workflow) CyclePayType() {
	if !w.editable() {
		return
	}
	i := slices.Index(w.payTypes, w.payType)
	w.payType = w.payTypes[(i+1)%len(w.payTypes)]
}

// Total is unit price times quantity.
func (w *Workflow) Total() decimal.Decimal {
	return model.Total(w.product.Price, w.quantity)
}

// Validate checks the form without sending anything.
func (w *Workflow) Validate() error {
	if strings.TrimSpace(w.contact) == "" {
		return errors.NewValidationError(MsgContactRequired).WithField("contact")
	}
	if w.product.RequiresQueryPassword() && w.queryPassword == "" {
		return errors.NewValidationError(MsgPasswordRequired).WithField("query_password")
	}
	return nil
}

// Input returns the create-order request for the current form.
func (w *Workflow) Input() api.CreateOrderInput {
	return api.CreateOrderInput{
		ProductID:     w.product.ID,
		Quantity:      w.quantity,
		PayType:       w.payType,
		Contact:       model.Contact{Type: w.contactType, Value: strings.TrimSpace(w.contact)},
		QueryPassword: w.queryPassword,
	}
}

// Begin validates the form and moves to Submitting, returning the request
// to send. A validation failure sets Err and keeps the form open.
func (w *Workflow) Begin() (api.CreateOrderInput, error) {
	if w.inflight != nil {
		return api.CreateOrderInput{}, errors.ErrSubmitting
	}
	if w.state != StateFormOpen {
		return api.CreateOrderInput{}, errors.ErrNotOpen
	}

	if err := w.Validate(); err != nil {
		w.Err = err
		return api.CreateOrderInput{}, err
	}

	in := w.Input()
	w.Err = nil
	w.state = StateSubmitting
	w.inflight = &submission{
		product:  w.product,
		contact:  in.Contact.Value,
		password: w.queryPassword,
		total:    w.Total(),
	}
	return in, nil
}

// Complete applies the create-order response. On success the contact,
// query password and a history entry are stored before the state changes,
// even when the dialog was closed while the call was in flight. On failure
// the form reopens with every field intact.
func (w *Workflow) Complete(resp api.Response[model.OrderCreationResult]) error {
	sub := w.inflight
	if sub == nil {
		return errors.ErrNotOpen
	}
	w.inflight = nil
	open := w.state == StateSubmitting

	if err := resp.Error(MsgCreateFailed); err != nil {
		if open {
			w.Err = err
			w.state = StateFormOpen
		}
		w.logger.Info("order creation failed", "product_id", sub.product.ID.String(), "error", err.Error())
		return err
	}

	result := resp.Data
	if result.QueryPassword == "" {
		result.QueryPassword = sub.password
	}
	if result.TotalPrice.IsZero() {
		result.TotalPrice = sub.total
	}

	if w.memory != nil {
		w.memory.SetLastContact(sub.contact)
		w.memory.SetLastQueryPassword(result.QueryPassword)
		w.memory.AppendHistory(model.HistoryEntry{
			OrderNo:       result.OrderNo,
			Contact:       sub.contact,
			QueryPassword: result.QueryPassword,
			TotalPrice:    result.TotalPrice.StringFixed(2),
			ProductName:   sub.product.Name,
			CreatedAt:     w.now().Format(time.RFC3339),
		})
	}
	w.logger.Info("order created", "order_no", result.OrderNo, "total", result.TotalPrice.StringFixed(2))

	if open {
		w.result = &result
		w.state = StateSucceeded
	}
	return nil
}

// Submit runs Begin, the create-order call and Complete in sequence.
func (w *Workflow) Submit(ctx context.Context) (model.OrderCreationResult, error) {
	in, err := w.Begin()
	if err != nil {
		return model.OrderCreationResult{}, err
	}
	if err := w.Complete(w.orderer.CreateOrder(ctx, in)); err != nil {
		return model.OrderCreationResult{}, err
	}
	result, _ := w.Result()
	return result, nil
}

// Close returns to Idle and clears the form. The session store is kept,
// and a call already in flight is still recorded by Complete.
func (w *Workflow) Close() {
	w.reset()
}

func (w *Workflow) editable() bool {
	return w.state == StateFormOpen
}

func (w *Workflow) reset() {
	w.state = StateIdle
	w.product = model.Product{}
	w.quantity = 0
	w.contact = ""
	w.queryPassword = ""
	w.payType = ""
	w.result = nil
	w.Err = nil
}
