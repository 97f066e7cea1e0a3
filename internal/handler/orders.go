package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quanviet/store-console/internal/catalog"
	"github.com/quanviet/store-console/internal/editor"
	"github.com/quanviet/store-console/internal/foodapi"
	"github.com/quanviet/store-console/internal/model"
	"github.com/quanviet/store-console/internal/order"
)

// OrderAPI is the slice of the platform client the order handlers need.
// Satisfied by *foodapi.Client; narrow interface for testability.
type OrderAPI interface {
	GetOrder(ctx context.Context, id string) (model.Order, error)
	UpdateOrder(ctx context.Context, o model.Order) (model.Order, error)
	ListStoreOrders(ctx context.Context, storeID string, statuses []string, limit, page int) (foodapi.OrderPage, error)
	StoreDishes(ctx context.Context, storeID string) ([]model.Dish, error)
}

// Transitioner applies a validated status change.
// Satisfied by *order.TransitionService.
type Transitioner interface {
	Apply(ctx context.Context, o model.Order, target string) (model.Order, error)
}

// OrderHandler exposes the order workflow over the console REST surface.
type OrderHandler struct {
	api         OrderAPI
	transitions Transitioner
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(api OrderAPI, transitions Transitioner) *OrderHandler {
	return &OrderHandler{api: api, transitions: transitions}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a store-scoped subrouter: /stores/{sid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Put("/{id}/items", h.SaveItems)
}

// --- Request / Response types ---

type orderListResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
	Tab    string        `json:"tab"`
	Limit  int           `json:"limit"`
	Page   int           `json:"page"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type saveItemsRequest struct {
	Items []model.OrderItem `json:"items"`
}

// --- Handlers ---

// List handles GET /stores/{sid}/orders?tab=&limit=&page=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "sid")

	tabName := r.URL.Query().Get("tab")
	if tabName == "" {
		tabName = "pending"
	}
	tab, err := order.TabByName(tabName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page"})
		return
	}

	result, err := h.api.ListStoreOrders(r.Context(), storeID, tab.Statuses, limit, page)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "order service unavailable"})
		return
	}

	orders := result.Orders
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: orders,
		Total:  result.Total,
		Tab:    tab.Name,
		Limit:  limit,
		Page:   page,
	})
}

// Get handles GET /stores/{sid}/orders/{id}. Topping references on every
// line are reconciled against the live catalog before the order is
// returned, so the console only ever renders canonical selections.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "sid")
	orderID := chi.URLParam(r, "id")

	o, err := h.api.GetOrder(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, "get order", err)
		return
	}
	if o.StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	dishes, err := h.api.StoreDishes(r.Context(), storeID)
	if err != nil {
		log.Printf("ERROR: load catalog: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "order service unavailable"})
		return
	}

	resolvers := make(map[string]*catalog.Resolver, len(dishes))
	for _, d := range dishes {
		resolvers[d.ID] = catalog.NewResolver(d.ToppingGroups)
	}
	for i, item := range o.Items {
		res, ok := resolvers[item.DishID]
		if !ok {
			o.Items[i].Toppings = nil
			continue
		}
		sels := res.Resolve(item.Toppings)
		refs := make([]model.ToppingRef, len(sels))
		for j, s := range sels {
			refs[j] = s.Ref()
		}
		o.Items[i].Toppings = refs
	}

	writeJSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /stores/{sid}/orders/{id}/status. The
// transition is validated locally; an invalid one is rejected with 409
// before any upstream call.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "sid")
	orderID := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !order.ValidStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	o, err := h.api.GetOrder(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, "get order for status update", err)
		return
	}
	if o.StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	updated, err := h.transitions.Apply(r.Context(), o, req.Status)
	if err != nil {
		if errors.Is(err, order.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: apply transition: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "order service unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// SaveItems handles PUT /stores/{sid}/orders/{id}/items. The request body
// carries the desired line set; it is normalized through the editor
// (toppings reconciled, quantities bounded, totals recomputed) and
// committed as one atomic PUT of the full order document.
func (h *OrderHandler) SaveItems(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "sid")
	orderID := chi.URLParam(r, "id")

	var req saveItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	for i, item := range req.Items {
		if item.DishID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "items[" + strconv.Itoa(i) + "]: dishId is required",
			})
			return
		}
	}

	ed := editor.New(h.api, editor.DefaultGrace)
	defer ed.Close()

	if err := ed.Load(r.Context(), orderID); err != nil {
		writeOrderError(w, "load order for item save", err)
		return
	}
	if ed.Order().StoreID != storeID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	ed.ReplaceItems(req.Items)

	updated, err := ed.Save(r.Context())
	if err != nil {
		if errors.Is(err, editor.ErrEmptyOrder) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order must keep at least one item"})
			return
		}
		log.Printf("ERROR: save items: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "order service unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// --- Helpers ---

func writeOrderError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, foodapi.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "order service unavailable"})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}
