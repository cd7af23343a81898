package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// WorkshopRepository implements domain.WorkshopRepository using PostgreSQL.
type WorkshopRepository struct {
	pool *pgxpool.Pool
}

// NewWorkshopRepository creates a new WorkshopRepository
func NewWorkshopRepository(pool *pgxpool.Pool) *WorkshopRepository {
	return &WorkshopRepository{pool: pool}
}

const workshopColumns = `w.id, w.title, w.keywords, w.category_id, w.price::text,
	w.min_age, w.max_age, w.with_disability_options, w.rating,
	w.provider_id, w.provider_title, w.cover_image_key,
	w.created_at, w.updated_at,
	a.id, a.city, a.street, a.building, a.lat, a.lon`

// Create inserts the workshop, its address and its teachers in one
// transaction and assigns the workshop identity.
func (r *WorkshopRepository) Create(workshop *domain.Workshop) (*domain.Workshop, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var addressID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO addresses (city, street, building, lat, lon)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		workshop.Address.City, workshop.Address.Street, workshop.Address.Building,
		workshop.Address.Lat, workshop.Address.Lon,
	).Scan(&addressID)
	if err != nil {
		return nil, fmt.Errorf("insert address: %w", err)
	}

	id := uuid.New()
	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO workshops
		 (id, title, keywords, category_id, price, min_age, max_age,
		  with_disability_options, rating, provider_id, provider_title,
		  address_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		id, workshop.Title, workshop.Keywords, workshop.CategoryID,
		workshop.Price.String(), workshop.MinAge, workshop.MaxAge,
		workshop.WithDisabilityOptions, workshop.Rating,
		workshop.ProviderID, workshop.ProviderTitle, addressID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workshop: %w", err)
	}

	for i := range workshop.Teachers {
		t := &workshop.Teachers[i]
		err = tx.QueryRow(ctx,
			`INSERT INTO teachers (workshop_id, first_name, last_name, about)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			id, t.FirstName, t.LastName, t.About,
		).Scan(&t.ID)
		if err != nil {
			return nil, fmt.Errorf("insert teacher: %w", err)
		}
		t.WorkshopID = id
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	workshop.ID = id
	workshop.Address.ID = addressID
	workshop.CreatedAt = now
	workshop.UpdatedAt = now
	return workshop, nil
}

// GetByID loads a workshop with its address, teachers and applications.
func (r *WorkshopRepository) GetByID(id uuid.UUID) (*domain.Workshop, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+workshopColumns+`
		 FROM workshops w JOIN addresses a ON a.id = w.address_id
		 WHERE w.id = $1`, id)

	workshop, err := scanWorkshop(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrWorkshopNotFound
		}
		return nil, err
	}

	workshop.Teachers, err = r.teachersFor(ctx, id)
	if err != nil {
		return nil, err
	}
	workshop.Applications, err = r.applicationsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return workshop, nil
}

// GetByProviderID lists a provider's workshops (without child collections).
func (r *WorkshopRepository) GetByProviderID(providerID uuid.UUID) ([]*domain.Workshop, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT `+workshopColumns+`
		 FROM workshops w JOIN addresses a ON a.id = w.address_id
		 WHERE w.provider_id = $1
		 ORDER BY w.created_at DESC`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWorkshops(rows)
}

// GetByFilter runs the fallback listing query; its predicate mirrors the
// search index translation so both read paths agree.
func (r *WorkshopRepository) GetByFilter(filter *domain.WorkshopFilter) ([]*domain.Workshop, int64, error) {
	ctx := context.Background()

	where, args := buildFilterWhere(filter)

	var total int64
	countSQL := `SELECT COUNT(*) FROM workshops w JOIN addresses a ON a.id = w.address_id` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL := `SELECT ` + workshopColumns +
		` FROM workshops w JOIN addresses a ON a.id = w.address_id` + where +
		orderClause(filter.OrderByField) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Size, filter.From)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	workshops, err := collectWorkshops(rows)
	if err != nil {
		return nil, 0, err
	}
	return workshops, total, nil
}

// Update rewrites the workshop row, its address and its teacher set in one
// transaction. A zero-row update is reported as a typed not-found, never
// inferred from driver errors.
func (r *WorkshopRepository) Update(workshop *domain.Workshop) (*domain.Workshop, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	var addressID int64
	err = tx.QueryRow(ctx,
		`UPDATE workshops SET
		   title = $2, keywords = $3, category_id = $4, price = $5::numeric,
		   min_age = $6, max_age = $7, with_disability_options = $8,
		   provider_title = $9, updated_at = $10
		 WHERE id = $1
		 RETURNING address_id`,
		workshop.ID, workshop.Title, workshop.Keywords, workshop.CategoryID,
		workshop.Price.String(), workshop.MinAge, workshop.MaxAge,
		workshop.WithDisabilityOptions, workshop.ProviderTitle, now,
	).Scan(&addressID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrWorkshopNotFound
		}
		return nil, fmt.Errorf("update workshop: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE addresses SET city = $2, street = $3, building = $4, lat = $5, lon = $6
		 WHERE id = $1`,
		addressID, workshop.Address.City, workshop.Address.Street,
		workshop.Address.Building, workshop.Address.Lat, workshop.Address.Lon,
	)
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	// Teachers are replaced wholesale: the workshop owns them.
	if _, err := tx.Exec(ctx, `DELETE FROM teachers WHERE workshop_id = $1`, workshop.ID); err != nil {
		return nil, fmt.Errorf("replace teachers: %w", err)
	}
	for i := range workshop.Teachers {
		t := &workshop.Teachers[i]
		err = tx.QueryRow(ctx,
			`INSERT INTO teachers (workshop_id, first_name, last_name, about)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			workshop.ID, t.FirstName, t.LastName, t.About,
		).Scan(&t.ID)
		if err != nil {
			return nil, fmt.Errorf("insert teacher: %w", err)
		}
		t.WorkshopID = workshop.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	workshop.Address.ID = addressID
	workshop.UpdatedAt = now
	return workshop, nil
}

// Delete removes the workshop and cascades to its applications, teachers
// and address atomically.
func (r *WorkshopRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE workshop_id = $1`, id); err != nil {
		return fmt.Errorf("delete applications: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM teachers WHERE workshop_id = $1`, id); err != nil {
		return fmt.Errorf("delete teachers: %w", err)
	}

	var addressID int64
	err = tx.QueryRow(ctx, `DELETE FROM workshops WHERE id = $1 RETURNING address_id`, id).Scan(&addressID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrWorkshopNotFound
		}
		return fmt.Errorf("delete workshop: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, addressID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	return tx.Commit(ctx)
}

// SetCoverImage stores (or clears) the cover photo object key.
func (r *WorkshopRepository) SetCoverImage(id uuid.UUID, key *string) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx,
		`UPDATE workshops SET cover_image_key = $2, updated_at = $3 WHERE id = $1`,
		id, key, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkshopNotFound
	}
	return nil
}

func (r *WorkshopRepository) teachersFor(ctx context.Context, workshopID uuid.UUID) ([]domain.Teacher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workshop_id, first_name, last_name, about
		 FROM teachers WHERE workshop_id = $1 ORDER BY id`, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []domain.Teacher
	for rows.Next() {
		var t domain.Teacher
		if err := rows.Scan(&t.ID, &t.WorkshopID, &t.FirstName, &t.LastName, &t.About); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

func (r *WorkshopRepository) applicationsFor(ctx context.Context, workshopID uuid.UUID) ([]domain.Application, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workshop_id, parent_id, child_name, status, created_at
		 FROM applications WHERE workshop_id = $1 ORDER BY id`, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []domain.Application
	for rows.Next() {
		var a domain.Application
		if err := rows.Scan(&a.ID, &a.WorkshopID, &a.ParentID, &a.ChildName, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		applications = append(applications, a)
	}
	return applications, rows.Err()
}

// buildFilterWhere renders the filter into a WHERE clause and its args.
func buildFilterWhere(f *domain.WorkshopFilter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.IDs) > 0 {
		conds = append(conds, "w.id = ANY("+arg(f.IDs)+")")
	}
	if f.SearchText != "" {
		p := arg("%" + f.SearchText + "%")
		conds = append(conds, "(w.title ILIKE "+p+" OR w.keywords ILIKE "+p+" OR w.provider_title ILIKE "+p+")")
	}
	if f.MinAge > 0 {
		conds = append(conds, "w.max_age >= "+arg(f.MinAge))
	}
	if f.MaxAge > 0 && f.MaxAge < 100 {
		conds = append(conds, "w.min_age <= "+arg(f.MaxAge))
	}
	if f.IsFree {
		conds = append(conds, "w.price = 0")
	} else {
		if f.MinPrice > 0 {
			conds = append(conds, "w.price >= "+arg(f.MinPrice))
		}
		if f.MaxPrice > 0 {
			conds = append(conds, "w.price <= "+arg(f.MaxPrice))
		}
	}
	if ids := nonZero(f.DirectionIDs); len(ids) > 0 {
		conds = append(conds, "w.category_id = ANY("+arg(ids)+")")
	}
	if f.City != "" {
		conds = append(conds, "a.city = "+arg(f.City))
	}
	if f.WithDisabilityOptions {
		conds = append(conds, "w.with_disability_options = TRUE")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(field string) string {
	switch field {
	case domain.OrderByRating:
		return " ORDER BY w.rating DESC, w.id ASC"
	case domain.OrderByPrice:
		return " ORDER BY w.price ASC, w.id ASC"
	case domain.OrderByTitle:
		return " ORDER BY w.title ASC, w.id ASC"
	default:
		return " ORDER BY w.id ASC"
	}
}

func nonZero(ids []int32) []int32 {
	var out []int32
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkshop(row rowScanner) (*domain.Workshop, error) {
	var w domain.Workshop
	var price string
	err := row.Scan(
		&w.ID, &w.Title, &w.Keywords, &w.CategoryID, &price,
		&w.MinAge, &w.MaxAge, &w.WithDisabilityOptions, &w.Rating,
		&w.ProviderID, &w.ProviderTitle, &w.CoverImageKey,
		&w.CreatedAt, &w.UpdatedAt,
		&w.Address.ID, &w.Address.City, &w.Address.Street, &w.Address.Building,
		&w.Address.Lat, &w.Address.Lon,
	)
	if err != nil {
		return nil, err
	}
	w.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	return &w, nil
}

func collectWorkshops(rows pgx.Rows) ([]*domain.Workshop, error) {
	var workshops []*domain.Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		workshops = append(workshops, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workshops, nil
}
