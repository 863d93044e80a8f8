package dto

import (
	"time"

	"refurbhq/internal/core/types"
	"refurbhq/internal/domain/pricing"
	"refurbhq/internal/domain/sales"
)

// --- Refurbishing ---

// CreateBatchRequest for creating a refurbishing batch.
type CreateBatchRequest struct {
	ProductID        string  `json:"productId" binding:"required,uuid"`
	SerialNumber     string  `json:"serialNumber" binding:"required"`
	ProducedQuantity int64   `json:"producedQuantity" binding:"omitempty,min=0"`
	Remarks          *string `json:"remarks"`
}

// RecordUsageRequest for recording component consumption.
type RecordUsageRequest struct {
	ComponentID string `json:"componentId" binding:"required,uuid"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
}

// --- Inventory ---

// OpenInventoryRequest creates a rollup for a product.
type OpenInventoryRequest struct {
	ProductID    string `json:"productId" binding:"required,uuid"`
	OpeningStock int64  `json:"openingStock" binding:"omitempty,min=0"`
}

// UpdateInventoryStockRequest replaces the rollup counters.
type UpdateInventoryStockRequest struct {
	OpeningStock int64 `json:"openingStock" binding:"min=0"`
	StockIn      int64 `json:"stockIn" binding:"min=0"`
	StockOut     int64 `json:"stockOut" binding:"min=0"`
}

// RecordDailyProductionRequest for a per-day movement row.
type RecordDailyProductionRequest struct {
	BatchID   string    `json:"batchId" binding:"required,uuid"`
	ProductID string    `json:"productId" binding:"required,uuid"`
	Date      time.Time `json:"productionDate"`

	StockIn  int64 `json:"stockIn" binding:"min=0"`
	StockOut int64 `json:"stockOut" binding:"min=0"`

	SalePrice    types.Money `json:"salePrice"`
	MRP          types.Money `json:"mrp"`
	SerialNumber *string     `json:"serialNumber"`
}

// --- Ledger ---

// AppendLedgerEntryRequest posts a manual ledger line.
type AppendLedgerEntryRequest struct {
	Description string      `json:"description" binding:"required"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
}

// BalanceResponse returns a customer's running balance.
type BalanceResponse struct {
	CustomerID string      `json:"customerId"`
	Balance    types.Money `json:"balance"`
}

// --- Sales ---

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	ProductID       string      `json:"productId" binding:"required,uuid"`
	Quantity        int64       `json:"quantity" binding:"required,min=1"`
	UnitPrice       types.Money `json:"unitPrice"`
	DiscountPercent types.Money `json:"discountPercent"`
	GSTPercent      types.Money `json:"gstPercent"`
}

// CreateOrderRequest for creating a sales order.
type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"required,uuid"`
	Notes      *string            `json:"notes"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1"`
}

// RecordPaymentRequest for recording a payment against an order.
type RecordPaymentRequest struct {
	Amount    types.Money       `json:"amount" binding:"required"`
	Mode      sales.PaymentMode `json:"mode" binding:"required"`
	Reference *string           `json:"reference"`
}

// OrderListQuery narrows order listings.
type OrderListQuery struct {
	PageRequest
	CustomerID    *string    `form:"customerId"`
	Status        *string    `form:"status"`
	PaymentStatus *string    `form:"paymentStatus"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
}

// --- Purchases ---

// PurchaseItemRequest is one line of a new purchase order.
type PurchaseItemRequest struct {
	ComponentID string      `json:"componentId" binding:"required,uuid"`
	Quantity    int64       `json:"quantity" binding:"required,min=1"`
	UnitCost    types.Money `json:"unitCost"`
}

// CreatePurchaseRequest for creating a purchase order.
type CreatePurchaseRequest struct {
	VendorID string                `json:"vendorId" binding:"required,uuid"`
	Notes    *string               `json:"notes"`
	Items    []PurchaseItemRequest `json:"items" binding:"required,min=1"`
}

// RecordVendorPaymentRequest for paying a vendor.
type RecordVendorPaymentRequest struct {
	Amount    types.Money `json:"amount" binding:"required"`
	Mode      string      `json:"mode" binding:"required"`
	Reference *string     `json:"reference"`
}

// --- Pricing ---

// CreateRuleRequest for creating a pricing rule.
type CreateRuleRequest struct {
	Name            string      `json:"name" binding:"required"`
	Expression      string      `json:"expression" binding:"required"`
	DiscountPercent types.Money `json:"discountPercent"`
	Priority        int         `json:"priority"`
	Active          *bool       `json:"active"`
}

// UpdateRuleRequest for changing a pricing rule.
type UpdateRuleRequest struct {
	Name            *string      `json:"name"`
	Expression      *string      `json:"expression"`
	DiscountPercent *types.Money `json:"discountPercent"`
	Priority        *int         `json:"priority"`
	Active          *bool        `json:"active"`
}

// Apply copies set fields onto the rule.
func (r *UpdateRuleRequest) Apply(rule *pricing.Rule) {
	if r.Name != nil {
		rule.Name = *r.Name
	}
	if r.Expression != nil {
		rule.Expression = *r.Expression
	}
	if r.DiscountPercent != nil {
		rule.DiscountPercent = *r.DiscountPercent
	}
	if r.Priority != nil {
		rule.Priority = *r.Priority
	}
	if r.Active != nil {
		rule.Active = *r.Active
	}
}

// ResolveDiscountRequest evaluates the rule set against order facts.
type ResolveDiscountRequest struct {
	ShopType        string      `json:"shopType"`
	IsNew           bool        `json:"isNew"`
	IsGSTRegistered bool        `json:"isGstRegistered"`
	OrderType       string      `json:"orderType"`
	Subtotal        types.Money `json:"subtotal"`
}

// ToFacts converts to domain facts.
func (r *ResolveDiscountRequest) ToFacts() pricing.Facts {
	return pricing.Facts{
		ShopType:        r.ShopType,
		IsNew:           r.IsNew,
		IsGSTRegistered: r.IsGSTRegistered,
		OrderType:       r.OrderType,
		Subtotal:        r.Subtotal,
	}
}

// ResolveDiscountResponse is the winning rule, if any.
type ResolveDiscountResponse struct {
	DiscountPercent types.Money `json:"discountPercent"`
	RuleID          *string     `json:"ruleId,omitempty"`
	RuleName        *string     `json:"ruleName,omitempty"`
}

// --- Attendance ---

// CheckInRequest for attendance check-in.
type CheckInRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// LogVisitRequest for logging a shop visit.
type LogVisitRequest struct {
	CustomerID string   `json:"customerId" binding:"required,uuid"`
	Notes      *string  `json:"notes"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	OrderID    *string  `json:"orderId" binding:"omitempty,uuid"`
}

// RangeQuery filters listings by time range.
type RangeQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// --- Vouchers ---

// CreateSeriesRequest for creating a voucher series.
type CreateSeriesRequest struct {
	Name      string `json:"name" binding:"required"`
	Prefix    string `json:"prefix" binding:"required"`
	StartFrom int64  `json:"startFrom" binding:"omitempty,min=1"`
}
