package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
)

// relatedLimit максимальное количество похожих товаров на странице товара.
const relatedLimit = 4

type CatalogHandler struct {
	svs CatalogServicer
}

func NewCatalogHandler(svs CatalogServicer) *CatalogHandler {
	return &CatalogHandler{svs: svs}
}

// Categories GET RouteGroup + CategoriesRoute.
func (h *CatalogHandler) Categories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	categories, err := h.svs.ListCategories(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	res := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		res[i] = newCategoryResponse(category)
	}
	c.JSON(http.StatusOK, res)
}

type ProductSearchParams struct {
	PageParams
	Category string `binding:"omitempty,slug"                                 form:"category"`
	Query    string `binding:"omitempty,max=100"                              form:"q"`
	MinPrice string `binding:"omitempty,numeric"                              form:"min_price"`
	MaxPrice string `binding:"omitempty,numeric"                              form:"max_price"`
	InStock  bool   `form:"in_stock"`
	Sort     string `binding:"omitempty,oneof=price_asc price_desc newest name" form:"sort"`
}

type ProductListResponse struct {
	Items   []ProductResponse `json:"items"`
	Total   int64             `json:"total"`
	Page    uint              `json:"page"`
	PerPage uint              `json:"per_page"`
}

// Products GET RouteGroup + ProductsRoute. Поиск по активным товарам каталога.
func (h *CatalogHandler) Products(c *gin.Context) {
	var params ProductSearchParams
	if !bindQuery(c, &params) {
		return
	}

	page := params.toPage()
	filter := repoargs.ProductFilter{
		CategorySlug: params.Category,
		Query:        params.Query,
		MinPrice:     parseNullDecimal(params.MinPrice),
		MaxPrice:     parseNullDecimal(params.MaxPrice),
		InStockOnly:  params.InStock,
		Sort:         repoargs.ProductSortType(params.Sort),
		Page:         page,
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	list, err := h.svs.SearchProducts(ctx, filter)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProductListResponse{
		Items:   newProductsResponse(list.Items),
		Total:   list.Total,
		Page:    page.Offset/page.Limit + 1,
		PerPage: page.Limit,
	})
}

// Product GET RouteGroup + ProductRoute. Товар и до relatedLimit похожих.
func (h *CatalogHandler) Product(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	page, err := h.svs.GetProductPage(ctx, c.Param("slug"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	related := page.Related
	if len(related) > relatedLimit {
		related = related[:relatedLimit]
	}
	c.JSON(http.StatusOK, gin.H{
		"product": newProductResponse(page.Product),
		"related": newProductsResponse(related),
	})
}

type CategoryCreateParams struct {
	Name      string `binding:"required,max=100" json:"name"`
	Slug      string `binding:"required,slug,max=100" json:"slug"`
	SortOrder int32  `json:"sort_order"`
}

// CreateCategory POST RouteGroup + AdminCategoriesRoute.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var params CategoryCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	category, err := h.svs.CreateCategory(ctx, repoargs.CategoryCreate{
		Name:      params.Name,
		Slug:      params.Slug,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCategoryResponse(*category))
}

type ProductCreateParams struct {
	CategoryID  int64           `binding:"required,min=1"          json:"category_id"`
	Name        string          `binding:"required,max=200"        json:"name"`
	Slug        string          `binding:"required,slug,max=200"   json:"slug"`
	Description string          `binding:"max=5000"                json:"description"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `binding:"required,max=20"         json:"unit"`
	Stock       int32           `binding:"min=0"                   json:"stock"`
	ImageURL    string          `binding:"omitempty,url,max=500"   json:"image_url"`
}

// CreateProduct POST RouteGroup + AdminProductsRoute.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var params ProductCreateParams
	if !bindJSON(c, &params) {
		return
	}
	if !params.Price.IsPositive() {
		abortInvalidField(c, "Price", "gt")
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.svs.CreateProduct(ctx, repoargs.ProductCreate{
		CategoryID:  params.CategoryID,
		Name:        params.Name,
		Slug:        params.Slug,
		Description: params.Description,
		Price:       params.Price,
		Unit:        params.Unit,
		Stock:       params.Stock,
		ImageURL:    params.ImageURL,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newProductResponse(*product))
}

type ProductUpdateParams struct {
	CategoryID  *int64           `binding:"omitempty,min=1"        json:"category_id"`
	Name        *string          `binding:"omitempty,min=1,max=200" json:"name"`
	Description *string          `binding:"omitempty,max=5000"     json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `binding:"omitempty,min=1,max=20" json:"unit"`
	ImageURL    *string          `binding:"omitempty,max=500"      json:"image_url"`
	IsActive    *bool            `json:"is_active"`
}

// UpdateProduct PATCH RouteGroup + AdminProductRoute. Изменение цены фиксируется для рассылки подписчикам.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params ProductUpdateParams
	if !bindJSON(c, &params) {
		return
	}
	if params.Price != nil && !params.Price.IsPositive() {
		abortInvalidField(c, "Price", "gt")
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.svs.UpdateProduct(ctx, id, repoargs.ProductUpdate{
		CategoryID:  params.CategoryID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Unit:        params.Unit,
		ImageURL:    params.ImageURL,
		IsActive:    params.IsActive,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductResponse(*product))
}

type StockParams struct {
	Stock *int32 `binding:"required,min=0" json:"stock"`
}

// SetStock PUT RouteGroup + AdminProductStockRoute.
func (h *CatalogHandler) SetStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params StockParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.svs.SetStock(ctx, id, *params.Stock)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductResponse(*product))
}

func parseNullDecimal(value string) decimal.NullDecimal {
	if value == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
