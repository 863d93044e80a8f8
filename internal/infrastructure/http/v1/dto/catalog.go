package dto

import (
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/internal/domain/catalogs/customer"
	"refurbhq/internal/domain/catalogs/product"
	"refurbhq/internal/domain/catalogs/vendor"
)

// --- Components ---

// CreateComponentRequest for creating a component.
type CreateComponentRequest struct {
	Name          string      `json:"name" binding:"required"`
	Description   *string     `json:"description"`
	Unit          string      `json:"unit"`
	PurchasePrice types.Money `json:"purchasePrice"`
	StockQuantity int64       `json:"stockQuantity" binding:"omitempty,min=0"`
}

// ToModel builds the domain component.
func (r *CreateComponentRequest) ToModel() *component.Component {
	c := component.NewComponent(r.Name, r.PurchasePrice)
	c.Description = r.Description
	if r.Unit != "" {
		c.Unit = r.Unit
	}
	c.StockQuantity = r.StockQuantity
	return c
}

// UpdateComponentRequest for catalog updates. Stock is not writable
// through this request.
type UpdateComponentRequest struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	Unit          *string      `json:"unit"`
	PurchasePrice *types.Money `json:"purchasePrice"`
}

// Apply copies set fields onto the component.
func (r *UpdateComponentRequest) Apply(c *component.Component) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	if r.Unit != nil {
		c.Unit = *r.Unit
	}
	if r.PurchasePrice != nil {
		c.PurchasePrice = *r.PurchasePrice
	}
}

// --- Customers ---

// CreateCustomerRequest for creating a customer.
type CreateCustomerRequest struct {
	ShopName     string  `json:"shopName" binding:"required"`
	CustomerName *string `json:"customerName"`
	FullName     *string `json:"fullName"`
	Email        *string `json:"email"`
	PhoneNumber  *string `json:"phoneNumber"`

	ShopType  *customer.ShopType `json:"shopType"`
	GSTNumber *string            `json:"gstNumber"`

	ShopAddress  string `json:"shopAddress"`
	ShopCity     string `json:"shopCity"`
	ShopDistrict string `json:"shopDistrict"`
	ShopPincode  string `json:"shopPincode"`
	ShopState    string `json:"shopState"`

	DiscountPercent types.Money `json:"discountPercent"`
	IsGSTRegistered bool        `json:"isGstRegistered"`

	WeekdayFootfall  *int    `json:"weekdayFootfall"`
	WeekendFootfall  *int    `json:"weekendFootfall"`
	CreditPeriodDays *int    `json:"creditPeriodDays"`
	NatureOfBusiness *string `json:"natureOfBusiness"`
	Latitude         *string `json:"latitude"`
	Longitude        *string `json:"longitude"`
}

// ToModel builds the domain customer.
func (r *CreateCustomerRequest) ToModel() *customer.Customer {
	c := customer.NewCustomer(r.ShopName)
	c.CustomerName = r.CustomerName
	c.FullName = r.FullName
	c.Email = r.Email
	c.PhoneNumber = r.PhoneNumber
	c.ShopType = r.ShopType
	c.GSTNumber = r.GSTNumber
	c.ShopAddress = r.ShopAddress
	c.ShopCity = r.ShopCity
	c.ShopDistrict = r.ShopDistrict
	c.ShopPincode = r.ShopPincode
	c.ShopState = r.ShopState
	c.DiscountPercent = r.DiscountPercent
	c.IsGSTRegistered = r.IsGSTRegistered
	c.WeekdayFootfall = r.WeekdayFootfall
	c.WeekendFootfall = r.WeekendFootfall
	c.CreditPeriodDays = r.CreditPeriodDays
	c.NatureOfBusiness = r.NatureOfBusiness
	c.Latitude = r.Latitude
	c.Longitude = r.Longitude
	return c
}

// UpdateCustomerRequest for customer updates.
type UpdateCustomerRequest struct {
	ShopName        *string            `json:"shopName"`
	CustomerName    *string            `json:"customerName"`
	Email           *string            `json:"email"`
	PhoneNumber     *string            `json:"phoneNumber"`
	ShopType        *customer.ShopType `json:"shopType"`
	ShopAddress     *string            `json:"shopAddress"`
	ShopCity        *string            `json:"shopCity"`
	DiscountPercent *types.Money       `json:"discountPercent"`
	IsActive        *bool              `json:"isActive"`
	IsNew           *bool              `json:"isNew"`
	IsGSTRegistered *bool              `json:"isGstRegistered"`
}

// Apply copies set fields onto the customer.
func (r *UpdateCustomerRequest) Apply(c *customer.Customer) {
	if r.ShopName != nil {
		c.ShopName = *r.ShopName
	}
	if r.CustomerName != nil {
		c.CustomerName = r.CustomerName
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.PhoneNumber != nil {
		c.PhoneNumber = r.PhoneNumber
	}
	if r.ShopType != nil {
		c.ShopType = r.ShopType
	}
	if r.ShopAddress != nil {
		c.ShopAddress = *r.ShopAddress
	}
	if r.ShopCity != nil {
		c.ShopCity = *r.ShopCity
	}
	if r.DiscountPercent != nil {
		c.DiscountPercent = *r.DiscountPercent
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	if r.IsNew != nil {
		c.IsNew = *r.IsNew
	}
	if r.IsGSTRegistered != nil {
		c.IsGSTRegistered = *r.IsGSTRegistered
	}
}

// --- Vendors ---

// CreateVendorRequest for creating a vendor.
type CreateVendorRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	PhoneNumber   *string `json:"phoneNumber"`
	Address       *string `json:"address"`
	GSTNumber     *string `json:"gstNumber"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	Pincode       *string `json:"pincode"`
}

// ToModel builds the domain vendor.
func (r *CreateVendorRequest) ToModel() *vendor.Vendor {
	v := vendor.NewVendor(r.Name)
	v.ContactPerson = r.ContactPerson
	v.Email = r.Email
	v.PhoneNumber = r.PhoneNumber
	v.Address = r.Address
	v.GSTNumber = r.GSTNumber
	v.City = r.City
	v.State = r.State
	v.Pincode = r.Pincode
	return v
}

// --- Products ---

// CreateProductRequest for creating a product.
type CreateProductRequest struct {
	Name       string       `json:"name" binding:"required"`
	CategoryID string       `json:"categoryId" binding:"required,uuid"`
	Type       product.Type `json:"productType" binding:"required"`

	Unit        string  `json:"unit"`
	Description *string `json:"description"`

	HSNCode    *string     `json:"hsnCode"`
	GSTPercent types.Money `json:"gstPercent"`

	BrandName *string `json:"brandName"`
	ModelName *string `json:"modelName"`

	PurchasePrice types.Money `json:"purchasePrice"`
	SalePrice     types.Money `json:"salePrice"`
}

// ToModel builds the domain product.
func (r *CreateProductRequest) ToModel(categoryID id.ID) *product.Product {
	p := product.NewProduct(r.Name, categoryID, r.Type)
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.Description = r.Description
	p.HSNCode = r.HSNCode
	p.GSTPercent = r.GSTPercent
	p.BrandName = r.BrandName
	p.ModelName = r.ModelName
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	return p
}

// CreateCategoryRequest for creating a product category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProductListQuery narrows product listings.
type ProductListQuery struct {
	PageRequest
	Type       *product.Type `form:"type"`
	CategoryID *string       `form:"categoryId"`
}
