package catalog

import (
	"context"
	"net/http"
	"testing"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/testutil"
)

func newView(t *testing.T) (*View, *testutil.FakeShop) {
	t.Helper()
	shop := testutil.NewFakeShop(t)
	return New(api.NewClient(shop.URL), nil), shop
}

func TestView_Load(t *testing.T) {
	v, shop := newView(t)
	games := shop.SeedCategory("Games", "")
	gifts := shop.SeedCategory("Gift cards", "")
	shop.SeedProduct(games.ID, "Key A", "5.00", "K1")
	shop.SeedProduct(gifts.ID, "Steam 50", "10.00")
	shop.SeedProduct(games.ID, "Key B", "7.00", "K2", "K3")
	shop.SetNotice("# Welcome")

	if v.Loaded() {
		t.Error("Loaded() = true before Load")
	}
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !v.Loaded() {
		t.Error("Loaded() = false after Load")
	}

	if len(v.Categories) != 2 || len(v.Products) != 3 {
		t.Errorf("got %d categories, %d products", len(v.Categories), len(v.Products))
	}
	if v.Notice != "# Welcome" {
		t.Errorf("Notice = %q", v.Notice)
	}
	for _, action := range []string{"getCategories", "getProducts", "getNotice"} {
		if n := shop.Count(action); n != 1 {
			t.Errorf("%s called %d times, want 1", action, n)
		}
	}
}

func TestView_LoadPartialFailure(t *testing.T) {
	v, shop := newView(t)
	cat := shop.SeedCategory("Games", "")
	shop.SeedProduct(cat.ID, "Key A", "5.00", "K1")
	shop.RespondRaw("getNotice", http.StatusInternalServerError, "boom")

	err := v.Load(context.Background())
	if err == nil {
		t.Fatal("Load() error = nil, want notice failure")
	}
	if v.NoticeErr == nil {
		t.Error("NoticeErr = nil, want failure")
	}
	if v.CategoriesErr != nil || v.ProductsErr != nil {
		t.Errorf("other sources failed: %v / %v", v.CategoriesErr, v.ProductsErr)
	}
	if len(v.Categories) != 1 || len(v.Products) != 1 {
		t.Error("categories and products should still populate")
	}
	if got := errors.UserMessage(v.NoticeErr, ""); got != "request failed: HTTP 500" {
		t.Errorf("notice error message = %q", got)
	}
}

func TestView_LoadRejectedUsesFallback(t *testing.T) {
	v, shop := newView(t)
	shop.Respond("getProducts", http.StatusOK, map[string]any{"success": false})

	_ = v.Load(context.Background())
	if got := errors.UserMessage(v.ProductsErr, ""); got != MsgProductsFailed {
		t.Errorf("products error = %q, want %q", got, MsgProductsFailed)
	}
}

func TestView_SelectAndVisible(t *testing.T) {
	v := &View{
		Products: []model.Product{
			{ID: "1", CategoryID: "a", Name: "one"},
			{ID: "2", CategoryID: "b", Name: "two"},
			{ID: "3", CategoryID: "a", Name: "three"},
		},
	}

	tests := []struct {
		name     string
		category model.ID
		wantIDs  []model.ID
	}{
		{"all", "", []model.ID{"1", "2", "3"}},
		{"category a keeps order", "a", []model.ID{"1", "3"}},
		{"category b", "b", []model.ID{"2"}},
		{"unknown category", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.Select(tt.category)
			if v.Selected() != tt.category {
				t.Errorf("Selected() = %q, want %q", v.Selected(), tt.category)
			}
			got := v.Visible()
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Visible() returned %d products, want %d", len(got), len(tt.wantIDs))
			}
			for i, p := range got {
				if p.ID != tt.wantIDs[i] {
					t.Errorf("Visible()[%d] = %q, want %q", i, p.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestView_SelectionResetWhenCategoryGone(t *testing.T) {
	v, _ := newView(t)
	v.Select("999")

	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v.Selected() != "" {
		t.Errorf("Selected() = %q, want reset to all", v.Selected())
	}
}

func TestPurchasable(t *testing.T) {
	if Purchasable(model.Product{CardCount: 0}) {
		t.Error("Purchasable(card_count=0) = true")
	}
	if Purchasable(model.Product{CardCount: -1}) {
		t.Error("Purchasable(card_count=-1) = true")
	}
	if !Purchasable(model.Product{CardCount: 1}) {
		t.Error("Purchasable(card_count=1) = false")
	}
}

func TestView_CategoryName(t *testing.T) {
	v := &View{Categories: []model.Category{{ID: "a", Name: "Games"}}}

	if got := v.CategoryName(model.Product{CategoryID: "a"}); got != "Games" {
		t.Errorf("CategoryName() = %q, want Games", got)
	}
	embedded := model.Product{CategoryID: "x", Category: &model.Category{Name: "Embedded"}}
	if got := v.CategoryName(embedded); got != "Embedded" {
		t.Errorf("CategoryName() = %q, want Embedded", got)
	}
	if got := v.CategoryName(model.Product{CategoryID: "missing"}); got != "" {
		t.Errorf("CategoryName() = %q, want empty", got)
	}
}

func TestView_Product(t *testing.T) {
	v, shop := newView(t)
	cat := shop.SeedCategory("Games", "")
	p := shop.SeedProduct(cat.ID, "Key A", "5.00", "K1", "K2")

	got, err := v.Product(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if got.Name != "Key A" || got.Stock() != 2 {
		t.Errorf("Product() = %+v", got)
	}

	if _, err := v.Product(context.Background(), "nope"); err == nil {
		t.Error("Product(nope) error = nil")
	}
}
