package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

const productColumns = "id, title, description, category, image_url, price, stock, created_at, updated_at"

// ProductRepository implements repository.ProductStore on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create inserts a new product and reads back the stored price. A row with the same id makes it
// fail with *repository.UniqueConstraintError.
func (r *ProductRepository) Create(ctx context.Context, product *model.StoredProduct) (*model.StoredProduct, error) {
	product.InitMeta()

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING price`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, product.ID, product.Title, product.Description, product.Category,
		product.ImageURL, product.Price, product.Stock, product.CreatedAt, product.UpdatedAt).Scan(&product.Price)
	if err != nil {
		if uniqueErr := asUniqueConstraintError(err); uniqueErr != nil {
			return nil, uniqueErr
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// Upsert inserts the product or overwrites the row with the same id.
func (r *ProductRepository) Upsert(ctx context.Context, product *model.StoredProduct) (*model.StoredProduct, error) {
	product.InitMeta()

	query := `INSERT INTO products (` + productColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (id) DO UPDATE SET
	              title = EXCLUDED.title,
	              description = EXCLUDED.description,
	              category = EXCLUDED.category,
	              image_url = EXCLUDED.image_url,
	              price = EXCLUDED.price,
	              stock = EXCLUDED.stock,
	              updated_at = EXCLUDED.updated_at
	          RETURNING price, created_at`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, product.ID, product.Title, product.Description, product.Category,
		product.ImageURL, product.Price, product.Stock, product.CreatedAt, product.UpdatedAt).Scan(&product.Price, &product.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}

	return product, nil
}

// FindAll returns every local product ordered by id.
func (r *ProductRepository) FindAll(ctx context.Context) ([]*model.StoredProduct, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*model.StoredProduct
	for rows.Next() {
		var product model.StoredProduct
		if err := rows.Scan(productFields(&product)...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.StoredProduct, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var result model.StoredProduct
	err = stmt.QueryRowContext(ctx, id).Scan(productFields(&result)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &result, nil
}

// Delete removes the product row.
func (r *ProductRepository) Delete(ctx context.Context, product *model.StoredProduct) error {
	query := `DELETE FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %d: %w", product.ID, repository.ErrNotFound)
	}

	return nil
}

// TopIDsDescending returns up to limit of the highest product ids.
func (r *ProductRepository) TopIDsDescending(ctx context.Context, limit int) ([]int64, error) {
	query := `SELECT id FROM products ORDER BY id DESC LIMIT $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query product ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

func productFields(p *model.StoredProduct) []any {
	return []any{&p.ID, &p.Title, &p.Description, &p.Category, &p.ImageURL, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt}
}
