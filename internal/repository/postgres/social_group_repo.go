package postgres

import (
	"context"
	"time"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SocialGroupRepository implements domain.EntityRepository[domain.SocialGroup].
type SocialGroupRepository struct {
	pool *pgxpool.Pool
}

// NewSocialGroupRepository creates a new SocialGroupRepository
func NewSocialGroupRepository(pool *pgxpool.Pool) *SocialGroupRepository {
	return &SocialGroupRepository{pool: pool}
}

func (r *SocialGroupRepository) Create(group *domain.SocialGroup) (*domain.SocialGroup, error) {
	ctx := context.Background()

	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO social_groups (name, created_at, updated_at)
		 VALUES ($1, $2, $2) RETURNING id`,
		group.Name, now,
	).Scan(&group.ID)
	if err != nil {
		return nil, err
	}
	group.CreatedAt = now
	group.UpdatedAt = now
	return group, nil
}

func (r *SocialGroupRepository) GetByID(id int32) (*domain.SocialGroup, error) {
	ctx := context.Background()

	var g domain.SocialGroup
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at
		 FROM social_groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSocialGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *SocialGroupRepository) GetAll() ([]*domain.SocialGroup, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at
		 FROM social_groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.SocialGroup
	for rows.Next() {
		var g domain.SocialGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (r *SocialGroupRepository) Update(group *domain.SocialGroup) (*domain.SocialGroup, error) {
	ctx := context.Background()

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx,
		`UPDATE social_groups SET name = $2, updated_at = $3 WHERE id = $1`,
		group.ID, group.Name, now)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrSocialGroupNotFound
	}
	group.UpdatedAt = now
	return group, nil
}

func (r *SocialGroupRepository) Delete(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM social_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSocialGroupNotFound
	}
	return nil
}
