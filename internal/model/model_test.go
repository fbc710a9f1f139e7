package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`"12"`, "12"},
		{`12`, "12"},
		{`null`, ""},
		{`"abc-1"`, "abc-1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			if id != tt.want {
				t.Errorf("ID = %q, want %q", id, tt.want)
			}
		})
	}

	var id ID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Error("Unmarshal(true) should fail")
	}
}

func TestCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{`3`, 3},
		{`"3"`, 3},
		{`3.0`, 3},
		{`""`, 0},
		{`null`, 0},
		{`-2`, -2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c Count
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			if c != tt.want {
				t.Errorf("Count = %d, want %d", c, tt.want)
			}
		})
	}

	var c Count
	if err := json.Unmarshal([]byte(`"lots"`), &c); err == nil {
		t.Error(`Unmarshal("lots") should fail`)
	}
}

func TestProduct_DecodeLooseWire(t *testing.T) {
	raw := `{"id":7,"category_id":"2","name":"Steam 50","price":"10.00","description":"d",
		"content":"c","image":"","delivery_info":"","card_count":"4","query_pwd_mode":1}`

	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if p.ID != "7" || p.CategoryID != "2" {
		t.Errorf("ids = %q/%q", p.ID, p.CategoryID)
	}
	if !p.Price.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Price = %s", p.Price)
	}
	if p.Stock() != 4 || !p.Purchasable() {
		t.Errorf("Stock() = %d, Purchasable() = %v", p.Stock(), p.Purchasable())
	}
	if !p.RequiresQueryPassword() {
		t.Error("RequiresQueryPassword() = false, want true")
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in        string
		want      string
		wantValid bool
	}{
		{`"49.90"`, "49.9", true},
		{`49.9`, "49.9", true},
		{`0`, "0", true},
		{`" 12 "`, "12", true},
		{`""`, "0", false},
		{`"  "`, "0", false},
		{`null`, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a amount
			if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			if a.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", a.Valid, tt.wantValid)
			}
			if got := a.orZero(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("orZero() = %s, want %s", got, tt.want)
			}
		})
	}

	var a amount
	if err := json.Unmarshal([]byte(`"free"`), &a); err == nil {
		t.Error(`Unmarshal("free") should fail`)
	}
}

func TestProduct_EmptyPriceDoesNotSpoilList(t *testing.T) {
	raw := `[{"id":1,"name":"Steam 50","price":"50.00","card_count":3},
		{"id":2,"name":"Gift","price":"","card_count":1},
		{"id":3,"name":"Promo","price":null,"card_count":"2"}]`

	var products []Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("len(products) = %d, want 3", len(products))
	}
	if !products[0].Price.Equal(decimal.RequireFromString("50")) {
		t.Errorf("products[0].Price = %s, want 50", products[0].Price)
	}
	for _, p := range products[1:] {
		if !p.Price.IsZero() {
			t.Errorf("%s Price = %s, want 0", p.Name, p.Price)
		}
	}
	if products[2].Stock() != 2 || products[1].Name != "Gift" {
		t.Errorf("other fields lost: %+v", products)
	}
}

func TestProduct_Stock(t *testing.T) {
	tests := []struct {
		count       Count
		wantStock   int
		wantLabel   string
		purchasable bool
	}{
		{5, 5, "5 left", true},
		{1, 1, "1 left", true},
		{0, 0, "out of stock", false},
		{-3, 0, "out of stock", false},
	}

	for _, tt := range tests {
		p := Product{CardCount: tt.count}
		if got := p.Stock(); got != tt.wantStock {
			t.Errorf("Stock(%d) = %d, want %d", tt.count, got, tt.wantStock)
		}
		if got := p.StockLabel(); got != tt.wantLabel {
			t.Errorf("StockLabel(%d) = %q, want %q", tt.count, got, tt.wantLabel)
		}
		if got := p.Purchasable(); got != tt.purchasable {
			t.Errorf("Purchasable(%d) = %v, want %v", tt.count, got, tt.purchasable)
		}
	}
}

func TestOrder_VisibleCards(t *testing.T) {
	paid := Order{Status: StatusPaid, Cards: []string{"AAAA-1111", "BBBB-2222"}}
	if got := paid.VisibleCards(); len(got) != 2 {
		t.Errorf("paid VisibleCards() = %v", got)
	}

	pending := Order{Status: StatusPending, Cards: []string{"leaked"}}
	if got := pending.VisibleCards(); got != nil {
		t.Errorf("pending VisibleCards() = %v, want nil", got)
	}
}

func TestOrder_Decode(t *testing.T) {
	raw := `{"order_no":"A100","product_name":"Steam 50","quantity":"2","price":null,
		"total_price":20,"contact_qq":"12345","status":"paid","cards":["X"],"created_at":"2024-01-01"}`

	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if o.Quantity != 2 || o.Price.Valid || !o.IsPaid() {
		t.Errorf("decoded order = %+v", o)
	}
	if o.ContactValue() != "12345" {
		t.Errorf("ContactValue() = %q", o.ContactValue())
	}

	o.ContactQQ = ""
	o.Contact = "buyer@example.com"
	if o.ContactValue() != "buyer@example.com" {
		t.Errorf("ContactValue() fallback = %q", o.ContactValue())
	}
}

func TestOrder_DecodeEmptyPrices(t *testing.T) {
	raw := `{"order_no":"A101","quantity":1,"price":"","total_price":"","status":"pending"}`

	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if o.Price.Valid {
		t.Errorf("Price = %s, want not valid", o.Price.Decimal)
	}
	if !o.TotalPrice.IsZero() || o.OrderNo != "A101" {
		t.Errorf("decoded order = %+v", o)
	}

	var res OrderCreationResult
	if err := json.Unmarshal([]byte(`{"order_no":"A102","total_price":""}`), &res); err != nil {
		t.Fatalf("Unmarshal result error = %v", err)
	}
	if res.OrderNo != "A102" || !res.TotalPrice.IsZero() {
		t.Errorf("decoded result = %+v", res)
	}
}

func TestParsePayType(t *testing.T) {
	tests := []struct {
		in      string
		want    PayType
		wantErr bool
	}{
		{"alipay", PayAlipay, false},
		{" WXPAY ", PayWxpay, false},
		{"qqpay", PayQQPay, false},
		{"bank", PayBank, false},
		{"paypal", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePayType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePayType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePayType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTotalAndFormatMoney(t *testing.T) {
	total := Total(decimal.RequireFromString("10.00"), 3)
	if got := FormatMoney(total); got != "¥30.00" {
		t.Errorf("FormatMoney(Total(10.00, 3)) = %q, want %q", got, "¥30.00")
	}

	total = Total(decimal.RequireFromString("0.1"), 3)
	if got := total.StringFixed(2); got != "0.30" {
		t.Errorf("Total(0.1, 3) = %s, want 0.30", got)
	}
}

func TestOrderStatus_Label(t *testing.T) {
	for _, s := range ValidStatusFilters() {
		if s.Label() == "" {
			t.Errorf("Label(%q) is empty", s)
		}
	}
	if OrderStatus("").Label() != "all" {
		t.Errorf(`Label("") = %q, want "all"`, OrderStatus("").Label())
	}
}

func TestOrderList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{"array", `[{"order_no":"A1"},{"order_no":"A2"}]`, 2, false},
		{"bare object", `{"order_no":"A1"}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"null", `null`, 0, false},
		{"string", `"A1"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l OrderList
			err := json.Unmarshal([]byte(tt.in), &l)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(l) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(l), tt.wantLen)
			}
		})
	}
}
