package repoargs

import (
	"github.com/shopspring/decimal"
)

type CategoryCreate struct {
	Name      string
	Slug      string
	SortOrder int32
}

type ProductSortType string

const (
	ProductSortNewest    ProductSortType = "newest"
	ProductSortPriceAsc  ProductSortType = "price_asc"
	ProductSortPriceDesc ProductSortType = "price_desc"
	ProductSortName      ProductSortType = "name"
)

// ProductFilter фильтр поиска по каталогу. Пустые значения полей не участвуют в фильтрации.
type ProductFilter struct {
	CategorySlug string
	Query        string
	MinPrice     decimal.NullDecimal
	MaxPrice     decimal.NullDecimal
	InStockOnly  bool
	OnlyActive   bool
	Sort         ProductSortType
	Page         Page
}

type ProductCreate struct {
	CategoryID  int64
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Unit        string
	Stock       int32
	ImageURL    string
}

// ProductUpdate частичное обновление товара, nil поля не изменяются.
type ProductUpdate struct {
	CategoryID  *int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Unit        *string
	ImageURL    *string
	IsActive    *bool
	Stock       *int32
}

type PriceChangeCreate struct {
	ProductID int64
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
}
