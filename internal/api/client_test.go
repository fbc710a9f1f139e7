package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type memTokens struct {
	token   string
	cleared int
}

func (m *memTokens) Token() string { return m.token }

func (m *memTokens) ClearToken() {
	m.token = ""
	m.cleared++
}

func TestNewClient_WithOptions(t *testing.T) {
	hc := &http.Client{}
	tokens := &memTokens{}
	c := NewClient("http://example.invalid/api.php",
		WithHTTPClient(hc),
		WithTimeout(3*time.Second),
		WithTokenSource(tokens),
		WithRequestIDFunc(func() string { return "fixed" }),
	)

	if c.BaseURL() != "http://example.invalid/api.php" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
	if c.httpClient != hc {
		t.Error("WithHTTPClient was not applied")
	}
	if c.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", c.timeout)
	}
	if c.newID() != "fixed" {
		t.Error("WithRequestIDFunc was not applied")
	}
	if c.logger == nil {
		t.Error("logger should default to a no-op logger")
	}
}

func TestAction_Method(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionGetNotice, http.MethodGet},
		{ActionGetProducts, http.MethodGet},
		{ActionGetOrder, http.MethodGet},
		{ActionGetCards, http.MethodGet},
		{ActionGetOrderDetail, http.MethodGet},
		{ActionCreateOrder, http.MethodPost},
		{ActionLogin, http.MethodPost},
		{ActionDeleteCard, http.MethodPost},
		{ActionUploadImage, http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			if got := tt.action.Method(); got != tt.want {
				t.Errorf("Method() = %s, want %s", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Request encoding
// -----------------------------------------------------------------------------

func TestClient_GetDropsEmptyParams(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	c := NewClient(shop.URL)

	c.GetProducts(context.Background(), "")
	c.GetProducts(context.Background(), "7")

	reqs := shop.RequestsFor("getProducts")
	if len(reqs) != 2 {
		t.Fatalf("got %d getProducts requests, want 2", len(reqs))
	}
	if reqs[0].Method != http.MethodGet {
		t.Errorf("method = %s, want GET", reqs[0].Method)
	}
	if _, ok := reqs[0].Query["category_id"]; ok {
		t.Errorf("empty category_id should be dropped, query = %v", reqs[0].Query)
	}
	if got := reqs[1].Query.Get("category_id"); got != "7" {
		t.Errorf("category_id = %q, want 7", got)
	}
}

func TestClient_Headers(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	tokens := &memTokens{token: testutil.AdminToken}
	c := NewClient(shop.URL,
		WithTokenSource(tokens),
		WithRequestIDFunc(func() string { return "req-1" }),
	)

	env := c.Do(context.Background(), Request{Action: ActionGetOrders})
	if !env.Success {
		t.Fatalf("Do() failed: %q (%v)", env.Message, env.Err)
	}
	if env.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", env.RequestID)
	}

	req := shop.RequestsFor("getOrders")[0]
	if req.Authorization != "Bearer "+testutil.AdminToken {
		t.Errorf("Authorization = %q", req.Authorization)
	}
	if req.RequestID != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", req.RequestID)
	}
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	c := NewClient(shop.URL, WithTokenSource(&memTokens{}))

	c.GetNotice(context.Background())

	if got := shop.RequestsFor("getNotice")[0].Authorization; got != "" {
		t.Errorf("Authorization = %q, want empty", got)
	}
}

func TestClient_CreateOrderForm(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	c := NewClient(shop.URL)

	in := CreateOrderInput{
		ProductID: "9",
		Quantity:  2,
		PayType:   model.PayWxpay,
		Contact:   model.Contact{Value: "12345"},
	}
	c.CreateOrder(context.Background(), in)

	req := shop.RequestsFor("createOrder")[0]
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	want := map[string]string{
		"product_id":     "9",
		"quantity":       "2",
		"payment_method": "wxpay",
		"contact_type":   "1",
		"contact_info":   "12345",
	}
	for k, v := range want {
		if req.Form[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, req.Form[k], v)
		}
	}
	if _, ok := req.Form["query_password"]; ok {
		t.Error("empty query_password should be omitted")
	}

	in.QueryPassword = "pw"
	if got := in.Form()["query_password"]; got != "pw" {
		t.Errorf("query_password = %q, want pw", got)
	}
}

func TestClient_PostSendsEmptyFields(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	shop.SetNotice("old")
	c := NewClient(shop.URL, WithTokenSource(&memTokens{token: testutil.AdminToken}))

	resp := c.SetNotice(context.Background(), "")
	if !resp.Success {
		t.Fatalf("SetNotice() failed: %q", resp.Message)
	}
	if shop.Notice() != "" {
		t.Errorf("notice = %q, want it cleared", shop.Notice())
	}
	if _, ok := shop.RequestsFor("setNotice")[0].Form["content"]; !ok {
		t.Error("content field should be sent even when empty")
	}
}

func TestClient_UploadImage(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	c := NewClient(shop.URL, WithTokenSource(&memTokens{token: testutil.AdminToken}))

	resp := c.UploadImage(context.Background(), "cover.png", strings.NewReader("PNGDATA"))
	if !resp.Success {
		t.Fatalf("UploadImage() failed: %q", resp.Message)
	}
	if resp.URL != "https://img.example.com/uploads/cover.png" {
		t.Errorf("URL = %q", resp.URL)
	}

	req := shop.RequestsFor("uploadImage")[0]
	if req.FileField != "image" || req.FileName != "cover.png" {
		t.Errorf("file part = %s/%s, want image/cover.png", req.FileField, req.FileName)
	}
	if string(req.FileBytes) != "PNGDATA" {
		t.Errorf("file bytes = %q", req.FileBytes)
	}
}

// -----------------------------------------------------------------------------
// Response normalization
// -----------------------------------------------------------------------------

func TestClient_Unauthorized(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"server message", `{"success":false,"message":"token expired"}`, "token expired"},
		{"no message", `{"success":false}`, MsgUnauthorized},
		{"not json", `<html>401</html>`, MsgUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := testutil.NewFakeShop(t)
			shop.RespondRaw("getOrders", http.StatusUnauthorized, tt.body)
			tokens := &memTokens{token: "stale"}
			c := NewClient(shop.URL, WithTokenSource(tokens))

			resp := c.GetOrders(context.Background(), OrderFilter{})
			if resp.Success {
				t.Fatal("Success = true, want false")
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", resp.Message, tt.wantMsg)
			}
			if resp.Status != http.StatusUnauthorized {
				t.Errorf("Status = %d, want 401", resp.Status)
			}
			if tokens.token != "" || tokens.cleared != 1 {
				t.Errorf("token = %q cleared %d times, want cleared once", tokens.token, tokens.cleared)
			}
			if !errors.Is(resp.Err, errors.ErrUnauthorized) {
				t.Errorf("Err = %v, want ErrUnauthorized", resp.Err)
			}
		})
	}
}

func TestClient_RateLimited(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	shop.Respond("getProducts", http.StatusTooManyRequests, map[string]any{"success": false, "message": "slow down"})
	c := NewClient(shop.URL)

	resp := c.GetProducts(context.Background(), "")
	if resp.Success {
		t.Fatal("Success = true, want false")
	}
	if resp.Message != MsgRateLimited {
		t.Errorf("Message = %q, want %q", resp.Message, MsgRateLimited)
	}
	if !errors.Is(resp.Err, errors.ErrRateLimited) || !errors.IsRetryable(resp.Err) {
		t.Errorf("Err = %v, want retryable ErrRateLimited", resp.Err)
	}
}

func TestClient_HTTPStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message", http.StatusInternalServerError, `{"success":false,"message":"db down"}`, "db down"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "request failed: HTTP 502"},
		{"success flag ignored", http.StatusInternalServerError, `{"success":true}`, "request failed: HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := testutil.NewFakeShop(t)
			shop.RespondRaw("getCategories", tt.status, tt.body)
			c := NewClient(shop.URL)

			resp := c.GetCategories(context.Background())
			if resp.Success {
				t.Fatal("Success = true, want false")
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", resp.Message, tt.wantMsg)
			}
			if !errors.Is(resp.Err, errors.ErrHTTPStatus) {
				t.Errorf("Err = %v, want ErrHTTPStatus", resp.Err)
			}
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	shop.RespondRaw("getNotice", http.StatusOK, `not json at all`)
	c := NewClient(shop.URL)

	resp := c.GetNotice(context.Background())
	if resp.Success || resp.Message != MsgMalformed {
		t.Errorf("resp = %+v, want malformed failure", resp)
	}
	if !errors.Is(resp.Err, errors.ErrMalformedResponse) {
		t.Errorf("Err = %v, want ErrMalformedResponse", resp.Err)
	}
}

func TestClient_MalformedData(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	shop.Respond("getCategories", http.StatusOK, map[string]any{"success": true, "data": "not a list"})
	c := NewClient(shop.URL)

	resp := c.GetCategories(context.Background())
	if resp.Success || resp.Message != MsgMalformed {
		t.Errorf("resp = %+v, want malformed failure", resp)
	}
	if resp.Data != nil {
		t.Errorf("Data = %v, want nil", resp.Data)
	}
}

func TestClient_ProductsWithEmptyPrice(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	shop.RespondRaw("getProducts", http.StatusOK, `{"success":true,"data":[
		{"id":1,"category_id":1,"name":"Steam 50","price":"50.00","card_count":2},
		{"id":2,"category_id":1,"name":"Gift","price":"","card_count":1}]}`)
	c := NewClient(shop.URL)

	resp := c.GetProducts(context.Background(), "")
	if err := resp.Error("load products"); err != nil {
		t.Fatalf("GetProducts() error = %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}
	if !resp.Data[1].Price.IsZero() {
		t.Errorf("Data[1].Price = %s, want 0", resp.Data[1].Price)
	}
}

func TestClient_Rejected(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	c := NewClient(shop.URL)

	resp := c.GetProduct(context.Background(), "404")
	if resp.Success {
		t.Fatal("Success = true, want false")
	}
	if resp.Message != "product not found" {
		t.Errorf("Message = %q", resp.Message)
	}
	if !errors.Is(resp.Err, errors.ErrRejected) {
		t.Errorf("Err = %v, want ErrRejected", resp.Err)
	}
	if errors.GetSeverity(resp.Err) != errors.SeverityInfo {
		t.Errorf("severity = %v, want info", errors.GetSeverity(resp.Err))
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url)
	env := c.Do(context.Background(), Request{Action: ActionGetNotice})
	if env.Success || env.Message != MsgNetwork {
		t.Errorf("env = %+v, want network failure", env)
	}
	if !errors.Is(env.Err, errors.ErrTransport) {
		t.Errorf("Err = %v, want ErrTransport", env.Err)
	}
}

func TestClient_Timeout(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	shop.Handle("getNotice", func(c echo.Context, _ testutil.RecordedRequest) error {
		select {
		case <-c.Request().Context().Done():
		case <-time.After(2 * time.Second):
		}
		return nil
	})
	c := NewClient(shop.URL, WithTimeout(50*time.Millisecond))

	env := c.Do(context.Background(), Request{Action: ActionGetNotice})
	if env.Success || env.Message != MsgTimeout {
		t.Errorf("env = %+v, want timeout failure", env)
	}
	if !errors.Is(env.Err, errors.ErrTimeout) {
		t.Errorf("Err = %v, want ErrTimeout", env.Err)
	}
}

func TestClient_Canceled(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := NewClient(shop.URL).Do(ctx, Request{Action: ActionGetNotice})
	if env.Success || env.Message != MsgCanceled {
		t.Errorf("env = %+v, want canceled failure", env)
	}
}

func TestClient_GetOrderNormalizesShape(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		wantLen int
	}{
		{"single object", map[string]any{"order_no": "A1", "status": "paid"}, 1},
		{"list", []map[string]any{{"order_no": "A1"}, {"order_no": "A2"}}, 2},
		{"null", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := testutil.NewFakeShop(t)
			shop.Respond("getOrder", http.StatusOK, map[string]any{"success": true, "data": tt.data})

			resp := NewClient(shop.URL).GetOrder(context.Background(), "12345", "pw")
			if !resp.Success {
				t.Fatalf("GetOrder() failed: %q", resp.Message)
			}
			if len(resp.Data) != tt.wantLen {
				t.Errorf("len(Data) = %d, want %d", len(resp.Data), tt.wantLen)
			}

			q := shop.RequestsFor("getOrder")[0].Query
			if q.Get("contact_qq") != "12345" || q.Get("password") != "pw" {
				t.Errorf("query = %v", q)
			}
		})
	}
}

func TestResponse_Error(t *testing.T) {
	ok := Response[string]{Success: true}
	if err := ok.Error("fallback"); err != nil {
		t.Errorf("Error() on success = %v, want nil", err)
	}

	bare := Response[string]{}
	if got := errors.UserMessage(bare.Error("failed to create order"), ""); got != "failed to create order" {
		t.Errorf("UserMessage = %q, want fallback", got)
	}

	rejected := Response[string]{
		Message: "sold out",
		Err:     errors.NewAPIError("createOrder", "sold out", errors.ErrRejected).WithStatus(200),
	}
	err := rejected.Error("failed to create order")
	if got := errors.UserMessage(err, ""); got != "sold out" {
		t.Errorf("UserMessage = %q, want server message", got)
	}
	if !errors.Is(err, errors.ErrRejected) {
		t.Errorf("Error() = %v, want ErrRejected cause", err)
	}
}

// -----------------------------------------------------------------------------
// Endpoints against the in-memory shop
// -----------------------------------------------------------------------------

func TestEndpoints_PurchaseAndLookup(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	cat := shop.SeedCategory("Gift cards", "")
	p := shop.SeedProduct(cat.ID, "Steam 50", "10.00", "AAAA", "BBBB", "CCCC")
	c := NewClient(shop.URL)
	ctx := context.Background()

	products := c.GetProducts(ctx, cat.ID)
	if !products.Success || len(products.Data) != 1 || products.Data[0].Stock() != 3 {
		t.Fatalf("GetProducts() = %+v", products)
	}

	created := c.CreateOrder(ctx, CreateOrderInput{
		ProductID:     p.ID,
		Quantity:      2,
		PayType:       model.PayAlipay,
		Contact:       model.Contact{Type: model.ContactTypeQQ, Value: "12345"},
		QueryPassword: "secret",
	})
	if !created.Success {
		t.Fatalf("CreateOrder() failed: %q", created.Message)
	}
	if !created.Data.TotalPrice.Equal(decimal.RequireFromString("20")) {
		t.Errorf("TotalPrice = %s, want 20", created.Data.TotalPrice)
	}

	shop.MarkPaid(created.Data.OrderNo)

	found := c.GetOrder(ctx, "12345", "secret")
	if !found.Success || len(found.Data) != 1 {
		t.Fatalf("GetOrder() = %+v", found)
	}
	if got := found.Data[0].VisibleCards(); len(got) != 2 || got[0] != "AAAA" {
		t.Errorf("VisibleCards() = %v", got)
	}

	wrong := c.GetOrder(ctx, "12345", "nope")
	if wrong.Success {
		t.Error("GetOrder() with wrong password should fail")
	}
}

func TestEndpoints_AdminFlow(t *testing.T) {
	shop := testutil.NewFakeShop(t)
	tokens := &memTokens{}
	c := NewClient(shop.URL, WithTokenSource(tokens))
	ctx := context.Background()

	if resp := c.Login(ctx, "wrong"); resp.Success {
		t.Fatal("Login() with wrong password should fail")
	}
	login := c.Login(ctx, testutil.AdminPassword)
	if !login.Success || login.Token != testutil.AdminToken {
		t.Fatalf("Login() = %+v", login)
	}
	tokens.token = login.Token

	if resp := c.AddCategory(ctx, "Games", "keys"); !resp.Success {
		t.Fatalf("AddCategory() failed: %q", resp.Message)
	}
	cat := shop.Categories()[0]

	if resp := c.EditCategory(ctx, cat.ID, "Games!", "keys"); !resp.Success {
		t.Fatalf("EditCategory() failed: %q", resp.Message)
	}
	if shop.Categories()[0].Name != "Games!" {
		t.Errorf("category name = %q", shop.Categories()[0].Name)
	}

	in := ProductInput{Name: "Key", CategoryID: cat.ID, Price: decimal.RequireFromString("9.5")}
	if resp := c.AddProduct(ctx, in); !resp.Success {
		t.Fatalf("AddProduct() failed: %q", resp.Message)
	}
	if got := shop.RequestsFor("addProduct")[0].Form["price"]; got != "9.50" {
		t.Errorf("price field = %q, want 9.50", got)
	}
	prod := shop.Products()[0]

	in.Name = "Key v2"
	if resp := c.EditProduct(ctx, prod.ID, in); !resp.Success {
		t.Fatalf("EditProduct() failed: %q", resp.Message)
	}

	added := c.AddCards(ctx, prod.ID, "K1\n\n K2 \nK3")
	if !added.Success || added.Count != 3 {
		t.Fatalf("AddCards() = %+v, want count 3", added)
	}
	if resp := c.DeleteCard(ctx, prod.ID, 1); !resp.Success {
		t.Fatalf("DeleteCard() failed: %q", resp.Message)
	}
	cards := c.GetCards(ctx, prod.ID)
	if !cards.Success || strings.Join(cards.Data, ",") != "K1,K3" {
		t.Errorf("GetCards() = %+v, want K1,K3", cards)
	}

	orders := c.GetOrders(ctx, OrderFilter{Status: model.StatusPaid, Keyword: "x"})
	if !orders.Success || len(orders.Data) != 0 {
		t.Errorf("GetOrders() = %+v", orders)
	}
	q := shop.RequestsFor("getOrders")[0].Query
	if q.Get("status") != "paid" || q.Get("keyword") != "x" {
		t.Errorf("getOrders query = %v", q)
	}
	if _, ok := q["contact_qq"]; ok {
		t.Error("empty contact_qq should be dropped")
	}

	if resp := c.DeleteProduct(ctx, prod.ID); !resp.Success {
		t.Fatalf("DeleteProduct() failed: %q", resp.Message)
	}
	if resp := c.DeleteCategory(ctx, cat.ID); !resp.Success {
		t.Fatalf("DeleteCategory() failed: %q", resp.Message)
	}
	if len(shop.Categories()) != 0 || len(shop.Products()) != 0 {
		t.Error("category and product should be gone")
	}
}
