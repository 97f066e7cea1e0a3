package enum

// ── Order lifecycle (CHECK constrained upstream, validated locally) ──

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusFinished   = "finished"
	OrderStatusTaken      = "taken"
	OrderStatusDelivering = "delivering"
	OrderStatusDelivered  = "delivered"
	OrderStatusDone       = "done"
	OrderStatusCancelled  = "cancelled"
)

// ── Notification event kinds (wire values on the socket channel) ──

const (
	NotificationTypeOrder   = "order"
	NotificationTypeGeneral = "general"
)

// ── Delivery assignment change types (written upstream, round-tripped here) ──

const (
	AssignmentChangeAssigned   = "assigned"
	AssignmentChangeReassigned = "reassigned"
	AssignmentChangeReleased   = "released"
)

// ── Console roles ──

const (
	UserRoleOwner = "OWNER"
	UserRoleStaff = "STAFF"
)

// ── Configurable labels (no upstream constraint) ──

const (
	PaymentMethodCash     = "cash"
	PaymentMethodWallet   = "wallet"
	PaymentMethodTransfer = "transfer"
)
