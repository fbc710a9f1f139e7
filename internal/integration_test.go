// Package internal contains integration tests that drive the shop packages
// together against one fake endpoint: what the admin console writes is what
// the catalog shows, checkout orders what the catalog lists, and lookup
// finds what checkout placed.
package internal

import (
	"context"
	"testing"

	"github.com/coolteam/cardshop/internal/admin"
	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/catalog"
	"github.com/coolteam/cardshop/internal/checkout"
	"github.com/coolteam/cardshop/internal/lookup"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/coolteam/cardshop/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
)

type nopClipboard struct{ copied []string }

func (c *nopClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

// TestShopRoundTrip stocks the shop through the admin console, buys
// through checkout, settles the order and reads the codes back through
// lookup and the admin order detail.
func TestShopRoundTrip(t *testing.T) {
	ctx := context.Background()
	shop := testutil.NewFakeShop(t)
	store := session.New(afero.NewMemMapFs(), "/session", nil)
	client := api.NewClient(shop.URL, api.WithTokenSource(store))

	console := admin.New(client, store, afero.NewMemMapFs(), nil)
	if err := console.Gate.Login(ctx, testutil.AdminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if store.Token() != testutil.AdminToken {
		t.Fatalf("Token() = %q, want %q", store.Token(), testutil.AdminToken)
	}

	if err := console.Categories.Save(ctx, "", "Games", "PC games"); err != nil {
		t.Fatalf("Categories.Save() error = %v", err)
	}
	games := console.Categories.Items[0]

	if err := console.Products.Save(ctx, "", api.ProductInput{
		Name:       "Steam 50",
		CategoryID: games.ID,
		Price:      decimal.RequireFromString("49.90"),
	}); err != nil {
		t.Fatalf("Products.Save() error = %v", err)
	}
	if err := console.Cards.Open(ctx, console.Products.Items[0]); err != nil {
		t.Fatalf("Cards.Open() error = %v", err)
	}
	if n, err := console.Cards.AddBlock(ctx, "AAA\nBBB\nCCC\n"); err != nil || n != 3 {
		t.Fatalf("AddBlock() = %d, %v, want 3, nil", n, err)
	}

	// ---- Storefront
	view := catalog.New(client, nil)
	if err := view.Load(ctx); err != nil {
		t.Fatalf("catalog Load() error = %v", err)
	}
	visible := view.Visible()
	if len(visible) != 1 || visible[0].Stock() != 3 {
		t.Fatalf("Visible() = %+v, want one product with 3 in stock", visible)
	}
	if got := view.CategoryName(visible[0]); got != "Games" {
		t.Errorf("CategoryName() = %q, want %q", got, "Games")
	}

	flow := checkout.New(client, store)
	if err := flow.Open(visible[0]); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	flow.SetQuantity(2)
	flow.SetContact("10001")
	flow.SetQueryPassword("pw")
	result, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if want := decimal.RequireFromString("99.80"); !result.TotalPrice.Equal(want) {
		t.Errorf("TotalPrice = %s, want %s", result.TotalPrice, want)
	}

	// ---- Admin sees the pending order
	if err := console.Orders.SetStatus(ctx, model.StatusPending); err != nil {
		t.Fatalf("Orders.SetStatus() error = %v", err)
	}
	if len(console.Orders.Items) != 1 || console.Orders.Items[0].OrderNo != result.OrderNo {
		t.Fatalf("pending orders = %+v, want %s", console.Orders.Items, result.OrderNo)
	}

	shop.MarkPaid(result.OrderNo)

	// ---- Lookup prefilled from the purchase
	clip := &nopClipboard{}
	found := lookup.New(client, store, lookup.WithClipboard(clip))
	if found.Contact != "10001" || found.Password != "pw" {
		t.Errorf("prefill = %q/%q, want 10001/pw", found.Contact, found.Password)
	}
	if err := found.Query(ctx); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(found.Orders) != 1 {
		t.Fatalf("len(Orders) = %d, want 1", len(found.Orders))
	}
	codes := lookup.VisibleCards(found.Orders[0])
	if len(codes) != 2 || codes[0] != "AAA" || codes[1] != "BBB" {
		t.Errorf("VisibleCards() = %v, want [AAA BBB]", codes)
	}
	if err := found.Copy(result.OrderNo, 1); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if len(clip.copied) != 1 || clip.copied[0] != "BBB" {
		t.Errorf("clipboard = %v, want [BBB]", clip.copied)
	}

	detail, err := console.Orders.ShowDetail(ctx, result.OrderNo)
	if err != nil {
		t.Fatalf("ShowDetail() error = %v", err)
	}
	if !detail.IsPaid() || len(detail.Cards) != 2 {
		t.Errorf("detail = %+v, want paid with 2 codes", detail)
	}

	if h := store.History(); len(h) != 1 || h[0].OrderNo != result.OrderNo {
		t.Errorf("History() = %+v, want one entry for %s", h, result.OrderNo)
	}
}

// TestExpiredTokenLocksConsole checks that a 401 from any admin call clears
// the stored token for every component sharing the store.
func TestExpiredTokenLocksConsole(t *testing.T) {
	ctx := context.Background()
	shop := testutil.NewFakeShop(t)
	store := session.New(afero.NewMemMapFs(), "/session", nil)
	client := api.NewClient(shop.URL, api.WithTokenSource(store))

	console := admin.New(client, store, nil, nil)
	if err := console.Gate.Login(ctx, testutil.AdminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	shop.Respond("getOrders", 401, map[string]any{"success": false, "message": "token expired"})
	if err := console.Orders.Load(ctx); err == nil {
		t.Fatal("Orders.Load() succeeded with an expired token")
	}
	if store.HasToken() {
		t.Error("token kept after a 401")
	}
	if admin.New(client, store, nil, nil).Authorized() {
		t.Error("a fresh console is authorized after the token was cleared")
	}
}
