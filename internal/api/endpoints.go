package api

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/coolteam/cardshop/internal/model"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Public endpoints
// -----------------------------------------------------------------------------

// GetNotice fetches the site notice (markdown).
func (c *Client) GetNotice(ctx context.Context) Response[string] {
	return Decode[string](c.Do(ctx, Request{Action: ActionGetNotice}))
}

// GetCategories fetches all categories.
func (c *Client) GetCategories(ctx context.Context) Response[[]model.Category] {
	return Decode[[]model.Category](c.Do(ctx, Request{Action: ActionGetCategories}))
}

// GetProducts fetches products, optionally restricted to one category.
func (c *Client) GetProducts(ctx context.Context, categoryID model.ID) Response[[]model.Product] {
	return Decode[[]model.Product](c.Do(ctx, Request{
		Action: ActionGetProducts,
		Params: map[string]string{"category_id": categoryID.String()},
	}))
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id model.ID) Response[model.Product] {
	return Decode[model.Product](c.Do(ctx, Request{
		Action: ActionGetProduct,
		Params: map[string]string{"id": id.String()},
	}))
}

// CreateOrderInput is the purchase form as sent to createOrder.
type CreateOrderInput struct {
	ProductID     model.ID
	Quantity      int
	PayType       model.PayType
	Contact       model.Contact
	QueryPassword string
}

// Form returns the wire fields. An empty query password is omitted.
func (in CreateOrderInput) Form() map[string]string {
	contactType := in.Contact.Type
	if contactType == 0 {
		contactType = model.ContactTypeQQ
	}
	form := map[string]string{
		"product_id":     in.ProductID.String(),
		"quantity":       strconv.Itoa(in.Quantity),
		"payment_method": string(in.PayType),
		"contact_type":   strconv.Itoa(contactType),
		"contact_info":   in.Contact.Value,
	}
	if in.QueryPassword != "" {
		form["query_password"] = in.QueryPassword
	}
	return form
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) Response[model.OrderCreationResult] {
	return Decode[model.OrderCreationResult](c.Do(ctx, Request{
		Action: ActionCreateOrder,
		Form:   in.Form(),
	}))
}

// GetOrder looks up orders by contact and query password. The endpoint
// may answer with a list or a single object; both decode to a list.
func (c *Client) GetOrder(ctx context.Context, contact, password string) Response[model.OrderList] {
	return Decode[model.OrderList](c.Do(ctx, Request{
		Action: ActionGetOrder,
		Params: map[string]string{"contact_qq": contact, "password": password},
	}))
}

// -----------------------------------------------------------------------------
// Admin endpoints
// -----------------------------------------------------------------------------

// Login exchanges the admin password for a bearer token (Response.Token).
func (c *Client) Login(ctx context.Context, password string) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionLogin,
		Form:   map[string]string{"password": password},
	}))
}

// AddCategory creates a category.
func (c *Client) AddCategory(ctx context.Context, name, description string) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionAddCategory,
		Form:   map[string]string{"name": name, "description": description},
	}))
}

// EditCategory updates a category.
func (c *Client) EditCategory(ctx context.Context, id model.ID, name, description string) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionEditCategory,
		Form:   map[string]string{"id": id.String(), "name": name, "description": description},
	}))
}

// DeleteCategory removes a category. Products under it are removed
// server-side.
func (c *Client) DeleteCategory(ctx context.Context, id model.ID) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionDeleteCategory,
		Form:   map[string]string{"id": id.String()},
	}))
}

// ProductInput is the admin product form.
type ProductInput struct {
	Name         string
	CategoryID   model.ID
	Price        decimal.Decimal
	Description  string
	Content      string
	Image        string
	DeliveryInfo string
}

// Form returns the wire fields.
func (in ProductInput) Form() map[string]string {
	return map[string]string{
		"name":          in.Name,
		"category_id":   in.CategoryID.String(),
		"price":         in.Price.StringFixed(2),
		"description":   in.Description,
		"content":       in.Content,
		"image":         in.Image,
		"delivery_info": in.DeliveryInfo,
	}
}

// AddProduct creates a product.
func (c *Client) AddProduct(ctx context.Context, in ProductInput) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{Action: ActionAddProduct, Form: in.Form()}))
}

// EditProduct updates a product.
func (c *Client) EditProduct(ctx context.Context, id model.ID, in ProductInput) Response[json.RawMessage] {
	form := in.Form()
	form["id"] = id.String()
	return Decode[json.RawMessage](c.Do(ctx, Request{Action: ActionEditProduct, Form: form}))
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id model.ID) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionDeleteProduct,
		Form:   map[string]string{"id": id.String()},
	}))
}

// GetCards fetches the unused card codes of a product.
func (c *Client) GetCards(ctx context.Context, productID model.ID) Response[[]string] {
	return Decode[[]string](c.Do(ctx, Request{
		Action: ActionGetCards,
		Params: map[string]string{"product_id": productID.String()},
	}))
}

// AddCards uploads newline-delimited codes. Response.Count is the number added.
func (c *Client) AddCards(ctx context.Context, productID model.ID, cards string) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionAddCards,
		Form:   map[string]string{"product_id": productID.String(), "cards": cards},
	}))
}

// DeleteCard removes the code at index from a product's pool.
func (c *Client) DeleteCard(ctx context.Context, productID model.ID, index int) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionDeleteCard,
		Form:   map[string]string{"product_id": productID.String(), "index": strconv.Itoa(index)},
	}))
}

// OrderFilter narrows the admin order list.
type OrderFilter struct {
	Status  model.OrderStatus
	Keyword string
	Contact string
}

// GetOrders lists orders for the admin console.
func (c *Client) GetOrders(ctx context.Context, f OrderFilter) Response[[]model.Order] {
	return Decode[[]model.Order](c.Do(ctx, Request{
		Action: ActionGetOrders,
		Params: map[string]string{"status": string(f.Status), "keyword": f.Keyword, "contact_qq": f.Contact},
	}))
}

// GetOrderDetail fetches one order.
func (c *Client) GetOrderDetail(ctx context.Context, orderNo string) Response[model.Order] {
	return Decode[model.Order](c.Do(ctx, Request{
		Action: ActionGetOrderDetail,
		Params: map[string]string{"order_no": orderNo},
	}))
}

// SetNotice replaces the site notice.
func (c *Client) SetNotice(ctx context.Context, content string) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionSetNotice,
		Form:   map[string]string{"content": content},
	}))
}

// UploadImage uploads an image; Response.URL is where it can be fetched.
func (c *Client) UploadImage(ctx context.Context, filename string, body io.Reader) Response[json.RawMessage] {
	return Decode[json.RawMessage](c.Do(ctx, Request{
		Action: ActionUploadImage,
		File:   &File{Field: "image", Name: filename, Body: body},
	}))
}
