package products

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/listing"
	"github.com/svelazco/storeflow-backend/pkg/db/models"
	"github.com/svelazco/storeflow-backend/pkg/enums"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

// sortColumns maps the allow-listed sort keys onto ORDER BY expressions.
// String sorts go through LOWER so both store implementations agree.
var sortColumns = map[string]string{
	"name":       "LOWER(name)",
	"price":      "price",
	"category":   "LOWER(category)",
	"created_at": "created_at",
}

// Repository is the relational product store.
type Repository struct {
	db     *gorm.DB
	prober *availability.Prober
}

// NewRepository builds a repository tied to the provided GORM DB. The prober
// is optional; without one the generic query path is always used.
func NewRepository(db *gorm.DB, prober *availability.Prober) *Repository {
	return &Repository{db: db, prober: prober}
}

// List returns one filtered, sorted page of products plus the total count of
// matching rows. When the products_filtered routine is known to exist the
// page and total come back in a single round trip; otherwise the count query
// and the data query run separately and are not transactionally consistent
// with respect to concurrent writes.
func (r *Repository) List(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, error) {
	if r.prober != nil && r.prober.HasRoutine(availability.RoutineProductsFiltered) {
		dtos, meta, err := r.listViaRoutine(ctx, q)
		if err == nil {
			return dtos, meta, nil
		}
		r.prober.MarkRoutineMissing(ctx, availability.RoutineProductsFiltered)
	}
	return r.listGeneric(ctx, q)
}

func (r *Repository) listGeneric(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, error) {
	var total int64
	if err := r.filtered(ctx, q).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var rows []models.Product
	err := r.filtered(ctx, q).
		Order(orderClause(q)).
		Limit(q.Limit).
		Offset(q.Params().Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	dtos, err := r.attachStocks(ctx, rows)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return dtos, pagination.NewMeta(q.Page, q.Limit, total), nil
}

type routineRow struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	TotalCount  int64
}

func (r *Repository) listViaRoutine(ctx context.Context, q listing.Query) ([]ProductDTO, pagination.Meta, error) {
	var rows []routineRow
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM products_filtered(?, ?, ?, ?, ?, ?, ?)",
			q.Search, q.Category, q.Status, q.SortBy, q.SortOrder, q.Limit, q.Params().Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	total := int64(0)
	if len(rows) > 0 {
		total = rows[0].TotalCount
	} else {
		// A page past the end returns no rows and therefore no window count.
		if err := r.filtered(ctx, q).Model(&models.Product{}).Count(&total).Error; err != nil {
			return nil, pagination.Meta{}, err
		}
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, models.Product{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Category:    row.Category,
			Price:       row.Price,
			IsActive:    row.IsActive,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}

	dtos, err := r.attachStocks(ctx, products)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return dtos, pagination.NewMeta(q.Page, q.Limit, total), nil
}

// filtered applies the shared predicate: ci substring search over
// name/description/category, AND optional category equality, AND optional
// status equality.
func (r *Repository) filtered(ctx context.Context, q listing.Query) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.Product{})

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if q.Category != "" {
		qb = qb.Where("category = ?", q.Category)
	}
	switch enums.ProductStatusFilter(q.Status) {
	case enums.ProductStatusActive:
		qb = qb.Where("is_active = ?", true)
	case enums.ProductStatusInactive:
		qb = qb.Where("is_active = ?", false)
	}
	return qb
}

func orderClause(q listing.Query) string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns["name"]
	}
	direction := "ASC"
	if q.Desc() {
		direction = "DESC"
	}
	return column + " " + direction
}

// Get loads one product with its branch stock breakdown.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	dtos, err := r.attachStocks(ctx, []models.Product{product})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Create inserts the product and its initial branch stock rows.
func (r *Repository) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product := models.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for _, branch := range sortedBranches(input.Stock) {
			row := models.BranchStock{
				ID:        uuid.New(),
				ProductID: product.ID,
				Branch:    branch,
				Quantity:  input.Stock[branch],
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, product.ID)
}

// Update applies the provided fields and keeps everything else untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := r.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a product; the branch stock rows cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// SetActive toggles the listing status.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return r.Get(ctx, id)
}

// SetBranchStock upserts the quantity for one branch.
func (r *Repository) SetBranchStock(ctx context.Context, id uuid.UUID, branch string, quantity int) (*ProductDTO, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required")
	}

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}

	var row models.BranchStock
	err := r.db.WithContext(ctx).First(&row, "product_id = ? AND branch = ?", id, branch).Error
	switch {
	case err == nil:
		row.Quantity = quantity
		if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.BranchStock{
			ID:        uuid.New(),
			ProductID: id,
			Branch:    branch,
			Quantity:  quantity,
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return r.Get(ctx, id)
}

// Stats aggregates catalog counts for the inventory report. The unit total
// uses the products_stock_totals routine when present.
func (r *Repository) Stats(ctx context.Context) (*InventoryStats, error) {
	stats := InventoryStats{}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	stats.InactiveProducts = stats.TotalProducts - stats.ActiveProducts

	if r.prober != nil && r.prober.HasRoutine(availability.RoutineStockTotals) {
		var total int64
		err := r.db.WithContext(ctx).
			Raw("SELECT COALESCE(SUM(total_stock), 0) FROM products_stock_totals()").
			Scan(&total).Error
		if err == nil {
			stats.TotalUnits = total
			return &stats, nil
		}
		r.prober.MarkRoutineMissing(ctx, availability.RoutineStockTotals)
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.BranchStock{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}
	stats.TotalUnits = total
	return &stats, nil
}

// LowStock pages through products whose summed stock is under the threshold,
// lowest first.
func (r *Repository) LowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductDTO, pagination.Meta, error) {
	limit := pagination.NormalizeLimit(params.Limit, pagination.ReportLimit)
	page := pagination.NormalizePage(params.Page)

	stockExpr := "(SELECT COALESCE(SUM(quantity), 0) FROM branch_stocks WHERE branch_stocks.product_id = products.id)"

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(fmt.Sprintf("%s < ?", stockExpr), threshold).
		Count(&total).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	var rows []models.Product
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(fmt.Sprintf("%s < ?", stockExpr), threshold).
		Order(fmt.Sprintf("%s ASC, LOWER(name) ASC", stockExpr)).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	dtos, err := r.attachStocks(ctx, rows)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return dtos, pagination.NewMeta(page, limit, total), nil
}

// attachStocks loads the branch rows for the page and derives the summed
// stock plus the "branch: qty" detail string ordered by branch name.
func (r *Repository) attachStocks(ctx context.Context, rows []models.Product) ([]ProductDTO, error) {
	dtos := make([]ProductDTO, 0, len(rows))
	if len(rows) == 0 {
		return dtos, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}

	var stocks []models.BranchStock
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("branch ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}

	byProduct := make(map[uuid.UUID][]models.BranchStock, len(rows))
	for _, s := range stocks {
		byProduct[s.ProductID] = append(byProduct[s.ProductID], s)
	}

	for _, p := range rows {
		dtos = append(dtos, toDTO(p, byProduct[p.ID]))
	}
	return dtos, nil
}

func toDTO(p models.Product, stocks []models.BranchStock) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		IsActive:      p.IsActive,
		StockByBranch: make(map[string]int, len(stocks)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	parts := make([]string, 0, len(stocks))
	for _, s := range stocks {
		dto.Stock += s.Quantity
		dto.StockByBranch[s.Branch] = s.Quantity
		parts = append(parts, fmt.Sprintf("%s: %d", s.Branch, s.Quantity))
	}
	dto.StockDetail = strings.Join(parts, ", ")
	return dto
}

func sortedBranches(stock map[string]int) []string {
	branches := make([]string, 0, len(stock))
	for branch := range stock {
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	return branches
}
