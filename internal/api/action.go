package api

import "net/http"

// Action names one operation of the remote endpoint. It travels as the
// "action" query parameter.
type Action string

// Public actions
const (
	ActionGetNotice     Action = "getNotice"
	ActionGetCategories Action = "getCategories"
	ActionGetProducts   Action = "getProducts"
	ActionGetProduct    Action = "getProduct"
	ActionCreateOrder   Action = "createOrder"
	ActionGetOrder      Action = "getOrder"
)

// Admin actions
const (
	ActionLogin          Action = "login"
	ActionAddCategory    Action = "addCategory"
	ActionEditCategory   Action = "editCategory"
	ActionDeleteCategory Action = "deleteCategory"
	ActionAddProduct     Action = "addProduct"
	ActionEditProduct    Action = "editProduct"
	ActionDeleteProduct  Action = "deleteProduct"
	ActionGetCards       Action = "getCards"
	ActionAddCards       Action = "addCards"
	ActionDeleteCard     Action = "deleteCard"
	ActionGetOrders      Action = "getOrders"
	ActionGetOrderDetail Action = "getOrderDetail"
	ActionSetNotice      Action = "setNotice"
	ActionUploadImage    Action = "uploadImage"
)

// Method returns the HTTP method the endpoint expects for the action.
// Reads are GET with query parameters; everything else is a multipart POST.
func (a Action) Method() string {
	switch a {
	case ActionGetNotice, ActionGetCategories, ActionGetProducts, ActionGetProduct,
		ActionGetOrder, ActionGetCards, ActionGetOrders, ActionGetOrderDetail:
		return http.MethodGet
	default:
		return http.MethodPost
	}
}

// String returns the wire name.
func (a Action) String() string { return string(a) }
