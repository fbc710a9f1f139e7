package tui

import (
	"slices"
	"strings"
	"testing"

	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/testutil"
)

func (h *harness) loginAdmin() {
	h.t.Helper()
	h.key("f3")
	h.typeText(testutil.AdminPassword)
	h.key("enter")
	if !h.m.admin.console.Authorized() {
		h.t.Fatalf("admin login failed: %v", h.m.admin.console.Gate.Err)
	}
}

func categoryNames(cats []model.Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}

func TestAdmin_Login(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		h := newHarness(t).start()
		h.key("f3")
		h.typeText("nope")
		h.key("enter")

		a := h.m.admin
		if a.console.Authorized() {
			t.Fatal("authorized with a wrong password")
		}
		if a.console.Gate.Err == nil {
			t.Error("Gate.Err = nil, want incorrect password")
		}
		if h.store.Token() != "" {
			t.Error("token stored after a failed login")
		}
		if a.working {
			t.Error("still working after the login settled")
		}
		if !strings.Contains(h.m.View(), "incorrect password") {
			t.Error("View() does not show the login error")
		}
	})

	t.Run("correct password loads everything", func(t *testing.T) {
		h := newHarness(t)
		h.shop.SeedCategory("Games", "")
		h.start()
		h.loginAdmin()

		a := h.m.admin
		if h.store.Token() != testutil.AdminToken {
			t.Errorf("Token() = %q, want %q", h.store.Token(), testutil.AdminToken)
		}
		if !a.loaded {
			t.Error("sections not loaded after login")
		}
		if got := categoryNames(a.console.Categories.Items); !slices.Equal(got, []string{"Games"}) {
			t.Errorf("categories = %v, want [Games]", got)
		}
		for _, action := range []string{"getCategories", "getOrders", "getNotice"} {
			if h.shop.Count(action) == 0 {
				t.Errorf("%s was not requested", action)
			}
		}
	})
}

func TestAdmin_Logout(t *testing.T) {
	h := newHarness(t).start()
	h.loginAdmin()

	h.key("L")
	if h.store.Token() != "" {
		t.Error("token kept after logout")
	}
	if h.m.admin.console.Authorized() || h.m.admin.loaded {
		t.Error("admin screen still open after logout")
	}
}

func TestAdmin_CategoryCrud(t *testing.T) {
	h := newHarness(t)
	h.shop.SeedCategory("Games", "")
	h.start()
	h.loginAdmin()

	h.key("a")
	if h.m.admin.form == nil || h.m.admin.kind != formCategory {
		t.Fatal("a did not open the category form")
	}
	h.typeText("Music")
	h.key("tab")
	h.typeText("Streaming gift cards")
	h.key("enter")

	if h.m.admin.form != nil {
		t.Fatalf("form still open, err = %v", h.m.admin.err)
	}
	if got := categoryNames(h.shop.Categories()); !slices.Equal(got, []string{"Games", "Music"}) {
		t.Fatalf("server categories = %v", got)
	}
	if got := categoryNames(h.m.admin.console.Categories.Items); !slices.Equal(got, []string{"Games", "Music"}) {
		t.Errorf("listed categories = %v, want the reloaded list", got)
	}

	// Delete asks first; n leaves everything alone.
	h.key("down", "d")
	if h.m.admin.confirm == nil {
		t.Fatal("d did not ask for confirmation")
	}
	h.key("n")
	if len(h.shop.Categories()) != 2 {
		t.Fatal("declined delete still removed the category")
	}

	h.key("d", "y")
	if got := categoryNames(h.shop.Categories()); !slices.Equal(got, []string{"Games"}) {
		t.Errorf("server categories = %v, want [Games]", got)
	}
}

func TestAdmin_FormCancelKeepsServerUntouched(t *testing.T) {
	h := newHarness(t).start()
	h.loginAdmin()
	h.shop.ResetRequests()

	h.key("a")
	h.typeText("Draft")
	h.key("esc")

	if h.m.admin.form != nil {
		t.Error("esc did not close the form")
	}
	if n := h.shop.Count("addCategory"); n != 0 {
		t.Errorf("addCategory calls = %d, want none", n)
	}
}

func TestAdmin_AddCards(t *testing.T) {
	h := newHarness(t)
	cat := h.shop.SeedCategory("Games", "")
	p := h.shop.SeedProduct(cat.ID, "Steam 50", "50.00", "OLD-1")
	h.start()
	h.loginAdmin()

	h.key("right", "c")
	if !h.m.admin.console.Cards.IsOpen() {
		t.Fatalf("cards view not open, err = %v", h.m.admin.err)
	}
	if got := h.m.admin.console.Cards.Items; !slices.Equal(got, []string{"OLD-1"}) {
		t.Errorf("cards = %v, want [OLD-1]", got)
	}

	h.key("a")
	h.typeText("NEW-1")
	h.key("enter")
	h.typeText("NEW-2")
	h.key("ctrl+s")

	if got := h.shop.Cards(p.ID); !slices.Equal(got, []string{"OLD-1", "NEW-1", "NEW-2"}) {
		t.Errorf("server cards = %v", got)
	}
	if h.m.admin.status != "2 cards added" {
		t.Errorf("status = %q, want %q", h.m.admin.status, "2 cards added")
	}

	h.key("esc")
	if h.m.admin.console.Cards.IsOpen() {
		t.Error("esc did not close the cards view")
	}
}

func TestAdmin_ProductFormValidation(t *testing.T) {
	h := newHarness(t)
	h.shop.SeedCategory("Games", "")
	h.start()
	h.loginAdmin()
	h.shop.ResetRequests()

	h.key("right", "a")
	h.typeText("Steam 100")
	h.key("down")
	h.typeText("Games")
	h.key("down")
	h.typeText("ten")
	h.key("ctrl+s")

	if h.m.admin.err == nil {
		t.Fatal("err = nil, want a price validation error")
	}
	if h.m.admin.form == nil {
		t.Error("form closed after a validation error")
	}
	if n := h.shop.Count("addProduct"); n != 0 {
		t.Errorf("addProduct calls = %d, want none", n)
	}
}

func TestAdmin_ProductSaveResolvesCategoryName(t *testing.T) {
	h := newHarness(t)
	cat := h.shop.SeedCategory("Games", "")
	h.start()
	h.loginAdmin()

	h.key("right", "a")
	h.typeText("Steam 100")
	h.key("down")
	h.typeText("Games")
	h.key("down")
	h.typeText("100")
	h.key("ctrl+s")

	if h.m.admin.form != nil {
		t.Fatalf("form still open, err = %v", h.m.admin.err)
	}
	req := h.shop.RequestsFor("addProduct")
	if len(req) != 1 {
		t.Fatalf("addProduct calls = %d, want 1", len(req))
	}
	if got := req[0].Form["category_id"]; got != cat.ID.String() {
		t.Errorf("category_id = %q, want %q", got, cat.ID)
	}
}

func TestAdmin_UnauthorizedResetsToLogin(t *testing.T) {
	h := newHarness(t).start()
	h.loginAdmin()

	// The server forgets the token.
	h.shop.Respond("getOrders", 401, map[string]any{"success": false, "message": "unauthorized"})
	h.key("r")

	if h.store.Token() != "" {
		t.Error("token kept after a 401")
	}
	if h.m.admin.console.Authorized() {
		t.Error("admin screen still authorized after a 401")
	}
}
