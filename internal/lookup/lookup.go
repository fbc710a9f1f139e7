// Package lookup implements the order query screen: find orders by contact
// and query password, show card codes of paid orders and copy them.
package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
)

// Inline messages.
const (
	MsgContactRequired  = "please enter your contact"
	MsgPasswordRequired = "please enter the query password"
	MsgNoMatch          = "no matching order"
	MsgNotFound         = "order not found or wrong password"
)

// DefaultCopyFeedback is how long a copied code stays marked.
const DefaultCopyFeedback = 1500 * time.Millisecond

// Finder fetches orders by contact and query password.
type Finder interface {
	GetOrder(ctx context.Context, contact, password string) api.Response[model.OrderList]
}

// Prefiller supplies the remembered contact and password.
type Prefiller interface {
	Prefill() (contact, password string)
}

type copyKey struct {
	orderNo string
	index   int
}

// View is the order query screen state.
type View struct {
	finder   Finder
	clip     Clipboard
	logger   *logging.Logger
	feedback time.Duration
	now      func() time.Time

	Contact  string
	Password string

	// Orders holds the last successful result, normalized to a list.
	Orders []model.Order
	// Err is the inline error: validation, no match or lookup failure.
	Err error

	copied map[copyKey]time.Time
}

// Option configures a View.
type Option func(*View)

// WithClipboard replaces the clipboard.
func WithClipboard(c Clipboard) Option {
	return func(v *View) {
		v.clip = c
	}
}

// WithCopyFeedback sets how long a copied code stays marked.
func WithCopyFeedback(d time.Duration) Option {
	return func(v *View) {
		if d > 0 {
			v.feedback = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithClock replaces the clock.
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		v.now = now
	}
}

// New creates the view, prefilling both fields from memory when given.
func New(finder Finder, memory Prefiller, opts ...Option) *View {
	v := &View{
		finder:   finder,
		logger:   logging.NopLogger(),
		feedback: DefaultCopyFeedback,
		now:      time.Now,
		copied:   make(map[copyKey]time.Time),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.clip == nil {
		v.clip = NewOSC52(nil)
	}
	v.logger = v.logger.WithView("lookup")
	if memory != nil {
		v.Contact, v.Password = memory.Prefill()
	}
	return v
}

// Feedback returns the copy confirmation window.
func (v *View) Feedback() time.Duration {
	return v.feedback
}

// Validate checks both fields without sending anything.
func (v *View) Validate() error {
	if strings.TrimSpace(v.Contact) == "" {
		return errors.NewValidationError(MsgContactRequired).WithField("contact")
	}
	if v.Password == "" {
		return errors.NewValidationError(MsgPasswordRequired).WithField("password")
	}
	return nil
}

// Query looks up orders. The previous result is cleared first.
func (v *View) Query(ctx context.Context) error {
	v.Orders = nil
	v.Err = nil

	if err := v.Validate(); err != nil {
		v.Err = err
		return err
	}

	return v.Apply(v.finder.GetOrder(ctx, strings.TrimSpace(v.Contact), v.Password))
}

// Apply stores a getOrder response. It is split from Query so the TUI can
// run the call off the update loop.
func (v *View) Apply(resp api.Response[model.OrderList]) error {
	v.Orders = nil
	if err := resp.Error(MsgNotFound); err != nil {
		v.Err = err
		return err
	}
	if len(resp.Data) == 0 {
		v.Err = errors.NewNotFoundError("order", strings.TrimSpace(v.Contact)).
			WithMessage(MsgNoMatch).WithSeverity(errors.SeverityInfo)
		return v.Err
	}

	v.Err = nil
	v.Orders = resp.Data
	v.logger.Debug("orders found", "count", len(v.Orders))
	return nil
}

// VisibleCards returns the codes to display for o: none unless it is paid.
func VisibleCards(o model.Order) []string {
	return o.VisibleCards()
}

// Copy puts one card code on the clipboard and marks only that code as
// copied for the feedback window.
func (v *View) Copy(orderNo string, index int) error {
	code, ok := v.code(orderNo, index)
	if !ok {
		return errors.NewNotFoundError("card", orderNo)
	}
	if err := v.clip.Copy(code); err != nil {
		return errors.Wrap(err, "copy to clipboard")
	}

	now := v.now()
	for k, at := range v.copied {
		if now.Sub(at) >= v.feedback {
			delete(v.copied, k)
		}
	}
	v.copied[copyKey{orderNo, index}] = now
	return nil
}

// Copied reports whether the code at index of orderNo was copied within the
// feedback window ending at now.
func (v *View) Copied(orderNo string, index int, now time.Time) bool {
	at, ok := v.copied[copyKey{orderNo, index}]
	return ok && now.Sub(at) < v.feedback
}

func (v *View) code(orderNo string, index int) (string, bool) {
	for _, o := range v.Orders {
		if o.OrderNo != orderNo {
			continue
		}
		cards := VisibleCards(o)
		if index < 0 || index >= len(cards) {
			return "", false
		}
		return cards[index], true
	}
	return "", false
}
