package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

func storeRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/cart/items", app.AddToCart)
	r.Get("/cart", app.GetCart)
	r.Post("/checkout", app.Checkout)
	r.Put("/orders/{id}/status", app.UpdateOrderStatus)
	return r
}

func seedProduct(env *testEnv, id string, priceCents int64, stock int) {
	env.products.byID[id] = &domain.Product{ID: id, Name: "Cat food " + id, PriceCents: priceCents, Stock: stock}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	env := newTestEnv()
	router := storeRouter(env.app)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"nope","quantity":1}`))
	rec := doAs(router, req, "u1", domain.UserRoleUser)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv()
	router := storeRouter(env.app)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := doAs(router, req, "u1", domain.UserRoleUser)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCheckout(t *testing.T) {
	env := newTestEnv()
	seedProduct(env, "prod-1", 500, 10)
	seedProduct(env, "prod-2", 1200, 3)
	env.cart.items["u1"] = []domain.CartItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}
	router := storeRouter(env.app)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := doAs(router, req, "u1", domain.UserRoleUser)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var dto orderDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.TotalCents != 2*500+1200 {
		t.Errorf("total = %d, want 2200", dto.TotalCents)
	}
	if dto.Status != string(domain.OrderPending) {
		t.Errorf("status = %s, want PENDING", dto.Status)
	}
	if len(dto.Items) != 2 {
		t.Errorf("items = %d, want 2", len(dto.Items))
	}
	if len(env.orders.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(env.orders.created))
	}
	if len(env.cart.cleared) != 1 || env.cart.cleared[0] != "u1" {
		t.Errorf("cart was not cleared: %v", env.cart.cleared)
	}
}

func TestCheckoutOutOfStock(t *testing.T) {
	env := newTestEnv()
	seedProduct(env, "prod-1", 500, 1)
	env.cart.items["u1"] = []domain.CartItem{{ProductID: "prod-1", Quantity: 5}}
	env.orders.createErr = domain.ErrOutOfStock
	router := storeRouter(env.app)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := doAs(router, req, "u1", domain.UserRoleUser)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if len(env.cart.cleared) != 0 {
		t.Error("cart must survive a failed checkout")
	}
}

func TestCheckoutSkipsRemovedProducts(t *testing.T) {
	env := newTestEnv()
	seedProduct(env, "prod-1", 500, 10)
	env.cart.items["u1"] = []domain.CartItem{
		{ProductID: "prod-1", Quantity: 1},
		{ProductID: "ghost", Quantity: 3},
	}
	router := storeRouter(env.app)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := doAs(router, req, "u1", domain.UserRoleUser)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var dto orderDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(dto.Items) != 1 || dto.TotalCents != 500 {
		t.Errorf("order = %+v, want only the surviving product", dto)
	}
}

func TestUpdateOrderStatusValidation(t *testing.T) {
	env := newTestEnv()
	router := storeRouter(env.app)

	req := httptest.NewRequest(http.MethodPut, "/orders/o1/status", strings.NewReader(`{"status":"REFUNDED"}`))
	rec := doAs(router, req, "admin", domain.UserRoleAdmin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
