// Package model defines the storefront entities exchanged with the remote
// commerce endpoint. The endpoint is loose about JSON scalar types, so ids,
// counts and prices decode from strings or numbers, and an empty price reads
// as zero.
package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups products.
type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// QueryPasswordRequired is the query_pwd_mode value that forces a buyer to
// set a query password.
const QueryPasswordRequired = 1

// Product is a purchasable item backed by a pool of card codes.
type Product struct {
	ID           ID              `json:"id"`
	CategoryID   ID              `json:"category_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	Content      string          `json:"content"`
	Image        string          `json:"image"`
	DeliveryInfo string          `json:"delivery_info"`
	CardCount    Count           `json:"card_count"`
	QueryPwdMode Count           `json:"query_pwd_mode"`
	Category     *Category       `json:"category,omitempty"`
}

// Stock returns the remaining card count, never below zero.
func (p Product) Stock() int {
	return max(p.CardCount.Int(), 0)
}

// Purchasable reports whether at least one code is left.
func (p Product) Purchasable() bool {
	return p.Stock() > 0
}

// RequiresQueryPassword reports whether the buyer must set a query password.
func (p Product) RequiresQueryPassword() bool {
	return p.QueryPwdMode.Int() == QueryPasswordRequired
}

// StockLabel is the short availability text shown next to a product.
func (p Product) StockLabel() string {
	if !p.Purchasable() {
		return "out of stock"
	}
	return fmt.Sprintf("%d left", p.Stock())
}

// OrderStatus is the payment state of an order.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
)

// ValidStatusFilters lists the admin order filters; "" means all.
func ValidStatusFilters() []OrderStatus {
	return []OrderStatus{"", StatusPaid, StatusPending}
}

// Label returns a display label for the status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPaid:
		return "paid"
	case StatusPending:
		return "pending"
	case "":
		return "all"
	default:
		return string(s)
	}
}

// Order is a purchase record.
type Order struct {
	OrderNo     string              `json:"order_no"`
	ProductID   ID                  `json:"product_id,omitempty"`
	ProductName string              `json:"product_name"`
	Quantity    Count               `json:"quantity"`
	Price       decimal.NullDecimal `json:"price"`
	TotalPrice  decimal.Decimal     `json:"total_price"`
	PayType     PayType             `json:"pay_type,omitempty"`
	Contact     string              `json:"contact,omitempty"`
	ContactQQ   string              `json:"contact_qq"`
	Status      OrderStatus         `json:"status"`
	Cards       []string            `json:"cards"`
	TradeNo     string              `json:"trade_no,omitempty"`
	CreatedAt   string              `json:"created_at"`
	PaidAt      string              `json:"paid_at,omitempty"`
}

// IsPaid reports whether the order has been paid.
func (o Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// ContactValue returns the contact the order was placed with.
func (o Order) ContactValue() string {
	if o.ContactQQ != "" {
		return o.ContactQQ
	}
	return o.Contact
}

// VisibleCards returns the card codes only when the order is paid.
func (o Order) VisibleCards() []string {
	if !o.IsPaid() {
		return nil
	}
	return o.Cards
}

// OrderCreationResult is returned by createOrder.
type OrderCreationResult struct {
	OrderNo       string          `json:"order_no"`
	QueryPassword string          `json:"query_password"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PayURL        string          `json:"pay_url"`
}

// PayType is a payment channel.
type PayType string

const (
	PayAlipay PayType = "alipay"
	PayWxpay  PayType = "wxpay"
	PayQQPay  PayType = "qqpay"
	PayBank   PayType = "bank"
)

// AllPayTypes returns every channel the endpoint understands.
func AllPayTypes() []PayType {
	return []PayType{PayAlipay, PayWxpay, PayQQPay, PayBank}
}

// ParsePayType validates a channel name.
func ParsePayType(s string) (PayType, error) {
	p := PayType(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AllPayTypes(), p) {
		return "", fmt.Errorf("unknown pay type %q", s)
	}
	return p, nil
}

// Label returns the display name of the channel.
func (p PayType) Label() string {
	switch p {
	case PayAlipay:
		return "Alipay"
	case PayWxpay:
		return "WeChat Pay"
	case PayQQPay:
		return "QQ Pay"
	case PayBank:
		return "Bank card"
	default:
		return string(p)
	}
}

// ContactTypeQQ is the contact kind used when nothing else is configured.
const ContactTypeQQ = 1

// Contact identifies a buyer for order lookup.
type Contact struct {
	Type  int
	Value string
}

// HistoryEntry records a successful order in the local session store.
type HistoryEntry struct {
	OrderNo       string `json:"order_no"`
	Contact       string `json:"contact"`
	QueryPassword string `json:"query_password"`
	TotalPrice    string `json:"total_price,omitempty"`
	ProductName   string `json:"product_name,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// Total multiplies a unit price by a quantity.
func Total(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// FormatMoney renders an amount with two decimals and the currency sign.
func FormatMoney(d decimal.Decimal) string {
	return "¥" + d.StringFixed(2)
}
