package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the full order document as owned by the platform order service.
// The console never creates or deletes one; it mutates status and items and
// submits the whole document back in a single PUT.
type Order struct {
	ID              string               `json:"_id"`
	StoreID         string               `json:"storeId"`
	UserID          string               `json:"userId"`
	Items           []OrderItem          `json:"items"`
	Status          string               `json:"status"`
	PaymentMethod   string               `json:"paymentMethod"`
	ShippingAddress Address              `json:"shippingAddress"`
	DiscountTotal   decimal.Decimal      `json:"discountTotal"`
	ShippingFee     decimal.Decimal      `json:"shippingFee"`
	SubtotalPrice   decimal.Decimal      `json:"subtotalPrice"`
	FinalTotal      decimal.Decimal      `json:"finalTotal"`
	CreatedAt       time.Time            `json:"createdAt"`
	DeliveryHistory []DeliveryAssignment `json:"deliveryHistory,omitempty"`
}

// OrderItem is one line of an order. Name and price are snapshots captured
// at order time; they are not re-read from the catalog unless the editor
// explicitly does so.
type OrderItem struct {
	DishID   string          `json:"dishId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Note     string          `json:"note,omitempty"`
	Toppings []ToppingRef    `json:"toppings,omitempty"`
}

// Address is the shipping address snapshot taken when the order was placed.
type Address struct {
	Receiver string `json:"receiver,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Street   string `json:"street,omitempty"`
	Ward     string `json:"ward,omitempty"`
	District string `json:"district,omitempty"`
	City     string `json:"city,omitempty"`
}

// DeliveryAssignment records one entry of the order's delivery assignment
// history. Written upstream only; the console round-trips it unchanged.
type DeliveryAssignment struct {
	Assignee   string    `json:"assignee"`
	AssignedAt time.Time `json:"assignedAt"`
	ChangeType string    `json:"changeType"`
}

// ToppingRef is the loosely-typed topping reference as persisted upstream.
// Depending on document age it carries the canonical id under "_id", the
// same id under "toppingId", or no id at all (name+price only). It exists
// solely to be resolved by the reconciler; everything downstream works with
// ToppingSelection.
type ToppingRef struct {
	ID        string
	AltID     string
	Name      string
	Price     decimal.Decimal
	GroupID   string
	GroupName string
}

func (r *ToppingRef) UnmarshalJSON(b []byte) error {
	var aux struct {
		MongoID   string          `json:"_id"`
		ID        string          `json:"id"`
		ToppingID string          `json:"toppingId"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		GroupID   string          `json:"groupId"`
		GroupName string          `json:"groupName"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = aux.MongoID
	if r.ID == "" {
		r.ID = aux.ID
	}
	r.AltID = aux.ToppingID
	r.Name = aux.Name
	r.Price = aux.Price
	r.GroupID = aux.GroupID
	r.GroupName = aux.GroupName
	return nil
}

// MarshalJSON writes the canonical shape. Only fields that are actually set
// are emitted so that an untouched order round-trips without inventing ids.
func (r ToppingRef) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":  r.Name,
		"price": r.Price,
	}
	if r.ID != "" {
		out["_id"] = r.ID
	}
	if r.AltID != "" && r.ID == "" {
		out["toppingId"] = r.AltID
	}
	if r.GroupID != "" {
		out["groupId"] = r.GroupID
	}
	if r.GroupName != "" {
		out["groupName"] = r.GroupName
	}
	return json.Marshal(out)
}

// ToppingSelection is the canonical {id, name, price} shape produced by the
// reconciler. Within one order item the ID is unique.
type ToppingSelection struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	GroupID   string          `json:"groupId,omitempty"`
	GroupName string          `json:"groupName,omitempty"`
}

// Ref converts a canonical selection back into the wire reference used in
// order documents.
func (s ToppingSelection) Ref() ToppingRef {
	return ToppingRef{
		ID:        s.ID,
		Name:      s.Name,
		Price:     s.Price,
		GroupID:   s.GroupID,
		GroupName: s.GroupName,
	}
}

// Dish is a catalog entry, read-only to the console's order workflow.
type Dish struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	Description   string          `json:"description,omitempty"`
	IsAvailable   bool            `json:"isAvailable"`
	ToppingGroups []ToppingGroup  `json:"toppingGroups,omitempty"`
}

// ToppingGroup groups a dish's toppings. Upstream documents may contain
// duplicate groups or toppings; the reconciler de-duplicates.
type ToppingGroup struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Toppings []Topping `json:"toppings"`
}

// Topping is a catalog topping inside a group.
type Topping struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// NotificationEvent is one entry on the socket channel, outbound or inbound.
type NotificationEvent struct {
	ID      string `json:"_id,omitempty"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
	Type    string `json:"type"`
	Read    bool   `json:"read"`
}
