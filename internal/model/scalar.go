package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

// ID is an identifier the endpoint may send as a JSON string or number.
// It always marshals as a string.
type ID string

// UnmarshalJSON accepts "12", 12 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// Count is a non-fractional quantity the endpoint may send as a JSON number,
// a numeric string, or null.
type Count int

// UnmarshalJSON accepts 3, "3", 3.0, "" and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*c = 0
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*c = 0
			return nil
		}
	}

	if n, err := strconv.Atoi(text); err == nil {
		*c = Count(n)
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("count: invalid value %q", text)
	}
	*c = Count(int(f))
	return nil
}

// Int returns the count as an int.
func (c Count) Int() int { return int(c) }

// amount is a decimal the endpoint may send as a JSON number, a numeric
// string, "" or null. Empty and null decode as not valid.
type amount struct{ decimal.NullDecimal }

// UnmarshalJSON accepts 9.9, "9.90", "", " " and null.
func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	a.NullDecimal = decimal.NullDecimal{}
	if bytes.Equal(data, jsonNull) {
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("amount: invalid value %q", text)
	}
	a.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// orZero returns the amount, or zero when it was empty.
func (a amount) orZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Decimal
}

// UnmarshalJSON decodes a product, reading an empty price as zero.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		Price amount `json:"price"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Price = aux.Price.orZero()
	return nil
}

// UnmarshalJSON decodes an order. An empty unit price stays not valid and an
// empty total reads as zero.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	aux := struct {
		*plain
		Price      amount `json:"price"`
		TotalPrice amount `json:"total_price"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Price = aux.Price.NullDecimal
	o.TotalPrice = aux.TotalPrice.orZero()
	return nil
}

// UnmarshalJSON decodes a create-order result, reading an empty total as zero.
func (r *OrderCreationResult) UnmarshalJSON(data []byte) error {
	type plain OrderCreationResult
	aux := struct {
		*plain
		TotalPrice amount `json:"total_price"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.TotalPrice = aux.TotalPrice.orZero()
	return nil
}

// OrderList decodes either a JSON array of orders or a single bare order
// object. The lookup endpoint returns both shapes.
type OrderList []Order

// UnmarshalJSON accepts [...], {...} and null.
func (l *OrderList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, jsonNull):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '{':
		var o Order
		if err := json.Unmarshal(data, &o); err != nil {
			return err
		}
		*l = OrderList{o}
		return nil
	default:
		var orders []Order
		if err := json.Unmarshal(data, &orders); err != nil {
			return err
		}
		*l = orders
		return nil
	}
}
