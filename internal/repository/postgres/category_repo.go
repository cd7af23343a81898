package postgres

import (
	"context"
	"time"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.EntityRepository[domain.Category].
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()

	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (title, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $3) RETURNING id`,
		category.Title, category.Description, now,
	).Scan(&category.ID)
	if err != nil {
		return nil, err
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	return category, nil
}

func (r *CategoryRepository) GetByID(id int32) (*domain.Category, error) {
	ctx := context.Background()

	var c domain.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, created_at, updated_at
		 FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) GetAll() ([]*domain.Category, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, created_at, updated_at
		 FROM categories ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET title = $2, description = $3, updated_at = $4
		 WHERE id = $1`,
		category.ID, category.Title, category.Description, now)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrCategoryNotFound
	}
	category.UpdatedAt = now
	return category, nil
}

func (r *CategoryRepository) Delete(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
