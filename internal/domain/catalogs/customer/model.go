// Package customer provides the Customer catalog: retail shops that buy
// refurbished units. A customer owns its sales orders and its ledger.
package customer

import (
	"context"
	"regexp"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ShopType classifies the customer's retail channel.
type ShopType string

const (
	ShopNationalModernTrade ShopType = "NMT"
	ShopModernTrade         ShopType = "MT"
	ShopSemiModernTrade     ShopType = "SMT"
	ShopSpeciality          ShopType = "SPECIAL"
	ShopGeneralTrade        ShopType = "GT"
)

// Customer represents a retail shop account.
type Customer struct {
	entity.BaseEntity

	CustomerName *string `db:"customer_name" json:"customerName,omitempty"`
	FullName     *string `db:"full_name" json:"fullName,omitempty"`
	Email        *string `db:"email" json:"email,omitempty"`
	PhoneNumber  *string `db:"phone_number" json:"phoneNumber,omitempty"`

	ShopType  *ShopType `db:"shop_type" json:"shopType,omitempty"`
	GSTNumber *string   `db:"gst_number" json:"gstNumber,omitempty"`

	ShopName     string `db:"shop_name" json:"shopName"`
	ShopAddress  string `db:"shop_address" json:"shopAddress"`
	ShopCity     string `db:"shop_city" json:"shopCity"`
	ShopDistrict string `db:"shop_district" json:"shopDistrict"`
	ShopPincode  string `db:"shop_pincode" json:"shopPincode"`
	ShopState    string `db:"shop_state" json:"shopState"`

	// DiscountPercent is the default discount applied to this customer's
	// orders when no explicit discount is given.
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	IsActive        bool `db:"is_active" json:"isActive"`
	IsNew           bool `db:"is_new" json:"isNew"`
	IsGSTRegistered bool `db:"is_gst_registered" json:"isGstRegistered"`

	WeekdayFootfall *int `db:"weekday_footfall" json:"weekdayFootfall,omitempty"`
	WeekendFootfall *int `db:"weekend_footfall" json:"weekendFootfall,omitempty"`

	// CreditPeriodDays is the agreed payment window
	CreditPeriodDays *int `db:"credit_period_days" json:"creditPeriodDays,omitempty"`

	NatureOfBusiness *string `db:"nature_of_business" json:"natureOfBusiness,omitempty"`
	Latitude         *string `db:"latitude" json:"latitude,omitempty"`
	Longitude        *string `db:"longitude" json:"longitude,omitempty"`
}

// NewCustomer creates an active customer account.
func NewCustomer(shopName string) *Customer {
	return &Customer{
		BaseEntity: entity.NewBaseEntity(),
		ShopName:   shopName,
		IsActive:   true,
		IsNew:      true,
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if c.ShopName == "" {
		return apperror.NewValidation("shop name is required").
			WithDetail("field", "shopName")
	}

	if c.ShopType != nil && !isValidShopType(*c.ShopType) {
		return apperror.NewValidation("invalid shop type").
			WithDetail("field", "shopType").
			WithDetail("value", string(*c.ShopType))
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.DiscountPercent.IsNegative() {
		return apperror.NewValidation("discount percent cannot be negative").
			WithDetail("field", "discountPercent")
	}

	return nil
}

func isValidShopType(t ShopType) bool {
	switch t {
	case ShopNationalModernTrade, ShopModernTrade, ShopSemiModernTrade,
		ShopSpeciality, ShopGeneralTrade:
		return true
	}
	return false
}
