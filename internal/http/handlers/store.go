package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/validate"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
}

type productDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductDTO(p *domain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

// CreateProduct adds a store item. Admin only.
func (a *App) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.PriceCents <= 0 || req.Stock < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "name, positive price and non-negative stock are required")
		return
	}
	p := &domain.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := a.Products.Create(r.Context(), p); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toProductDTO(p))
}

// ListProducts returns store items.
func (a *App) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	products, err := a.Products.List(r.Context(), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]productDTO, 0, len(products))
	for i := range products {
		out = append(out, toProductDTO(&products[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetProduct returns one store item.
func (a *App) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toProductDTO(p))
}

// UpdateProduct edits a store item. Admin only.
func (a *App) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) != "" {
		p.Name = strings.TrimSpace(req.Name)
	}
	p.Description = req.Description
	p.Category = req.Category
	if req.PriceCents > 0 {
		p.PriceCents = req.PriceCents
	}
	if req.Stock >= 0 {
		p.Stock = req.Stock
	}
	p.ImageURL = req.ImageURL
	if err := a.Products.Update(r.Context(), p); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct removes a store item. Admin only.
func (a *App) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddToCart puts quantity units of a product in the caller's cart.
func (a *App) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "product_id and a positive quantity are required")
		return
	}
	if _, err := a.Products.GetByID(r.Context(), req.ProductID); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Cart.Add(r.Context(), a.currentUserID(r), req.ProductID, req.Quantity); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCartQuantity pins a product's cart quantity; zero removes the line.
func (a *App) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ProductID == "" || req.Quantity < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "product_id and a non-negative quantity are required")
		return
	}
	if err := a.Cart.SetQuantity(r.Context(), a.currentUserID(r), req.ProductID, req.Quantity); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFromCart drops a product line from the cart.
func (a *App) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := a.Cart.Remove(r.Context(), a.currentUserID(r), chi.URLParam(r, "productID")); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cartLineDTO struct {
	Product  productDTO `json:"product"`
	Quantity int        `json:"quantity"`
}

// GetCart returns the cart lines joined with their current product data.
// Lines whose product has been removed from the store are skipped.
func (a *App) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := a.Cart.Items(r.Context(), a.currentUserID(r))
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]cartLineDTO, 0, len(items))
	if len(items) > 0 {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		products, err := a.Products.GetMany(r.Context(), ids)
		if err != nil {
			a.domainError(w, err)
			return
		}
		byID := make(map[string]*domain.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		for _, it := range items {
			if p, ok := byID[it.ProductID]; ok {
				out = append(out, cartLineDTO{Product: toProductDTO(p), Quantity: it.Quantity})
			}
		}
	}
	a.json(w, http.StatusOK, out)
}

type orderDTO struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Status     string         `json:"status"`
	TotalCents int64          `json:"total_cents"`
	Items      []orderItemDTO `json:"items"`
	CreatedAt  time.Time      `json:"created_at"`
}

type orderItemDTO struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

func toOrderDTO(o *domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ProductID:  it.ProductID,
			Name:       it.Name,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		})
	}
	return orderDTO{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		Items:      items,
		CreatedAt:  o.CreatedAt,
	}
}

// Checkout turns the cart into a PENDING order, decrementing stock in the
// order transaction, then clears the cart. An empty cart is rejected.
func (a *App) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	items, err := a.Cart.Items(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if len(items) == 0 {
		a.domainError(w, domain.ErrEmptyCart)
		return
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := a.Products.GetMany(r.Context(), ids)
	if err != nil {
		a.domainError(w, err)
		return
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	order := &domain.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: domain.OrderPending,
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    order.ID,
			ProductID:  p.ID,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Quantity:   it.Quantity,
		})
		order.TotalCents += p.PriceCents * int64(it.Quantity)
	}
	if len(order.Items) == 0 {
		a.domainError(w, domain.ErrEmptyCart)
		return
	}

	if err := a.Orders.Create(r.Context(), order); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Cart.Clear(r.Context(), userID); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", userID).Msg("cart clear after checkout failed")
	}
	a.json(w, http.StatusCreated, toOrderDTO(order))
}

// ListMyOrders returns the caller's orders, newest first.
func (a *App) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.Orders.ListByUser(r.Context(), a.currentUserID(r))
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]orderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderDTO(&orders[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetOrder returns one order. Owner or admin only.
func (a *App) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := a.Orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if order.UserID != a.currentUserID(r) && middleware.UserRoleFromContext(r.Context()) != domain.UserRoleAdmin {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	a.json(w, http.StatusOK, toOrderDTO(order))
}

// UpdateOrderStatus sets an order's status. Admin only; the payload is
// schema validated.
func (a *App) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "cannot read body")
		return
	}
	if err := validate.OrderStatus(body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domain.OrderStatus(req.Status)); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
