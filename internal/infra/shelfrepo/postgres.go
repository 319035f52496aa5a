package shelfrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// PostgresRepository persists scanned products with a pgvector column over
// the ingredient embedding for similarity lookups.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Add inserts the product row.
func (r *PostgresRepository) Add(ctx context.Context, p skin.Product, embedding []float32) error {
	var vec any
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shelf_products (id, owner_id, name, brand, product_type, ingredients, base_score, risks, benefits, embedding, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.OwnerID, p.Name, p.Brand, string(p.Type), p.Ingredients, p.BaseScore, p.Risks, p.Benefits, vec, p.ScannedAt)
	return err
}

// Get fetches one product scoped to its owner.
func (r *PostgresRepository) Get(ctx context.Context, ownerID int64, id uuid.UUID) (skin.Product, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, brand, product_type, ingredients, base_score, risks, benefits, scanned_at
		FROM shelf_products
		WHERE owner_id = $1 AND id = $2
		LIMIT 1
	`, ownerID, id)
	if err != nil {
		return skin.Product{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return skin.Product{}, false, rows.Err()
	}
	p, err := scanProduct(rows)
	if err != nil {
		return skin.Product{}, false, err
	}
	return p, true, rows.Err()
}

// List returns the owner's shelf newest first.
func (r *PostgresRepository) List(ctx context.Context, ownerID int64) ([]skin.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, brand, product_type, ingredients, base_score, risks, benefits, scanned_at
		FROM shelf_products
		WHERE owner_id = $1
		ORDER BY scanned_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// SimilarByIngredients orders the owner's shelf by embedding distance.
func (r *PostgresRepository) SimilarByIngredients(ctx context.Context, ownerID int64, embedding []float32, k int) ([]skin.Product, error) {
	if k <= 0 {
		k = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, brand, product_type, ingredients, base_score, risks, benefits, scanned_at
		FROM shelf_products
		WHERE owner_id = $1 AND embedding IS NOT NULL
		ORDER BY (embedding <-> $2) ASC
		LIMIT $3
	`, ownerID, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]skin.Product, error) {
	var out []skin.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (skin.Product, error) {
	var p skin.Product
	var productType string
	var scanned time.Time
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Brand, &productType,
		&p.Ingredients, &p.BaseScore, &p.Risks, &p.Benefits, &scanned,
	); err != nil {
		return skin.Product{}, err
	}
	p.Type = skin.ParseProductType(productType)
	p.ScannedAt = scanned.UTC()
	return p, nil
}

var _ scan.ShelfRepository = (*PostgresRepository)(nil)
