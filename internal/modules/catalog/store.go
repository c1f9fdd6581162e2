// README: Catalog store backed by PostgreSQL (products, rate tables, add-ons).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/types"
)

const pgUniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Product, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, category, description, image_url, created_at, updated_at
		FROM products
		WHERE id = $1`, string(id),
	)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	products := []*Product{&p}
	if err := loadDetails(ctx, s.db, products); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	f = f.Normalized()
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.name, p.category, p.description, p.image_url, p.created_at, p.updated_at
		FROM products p
		WHERE ($1 = '' OR p.category = $1)
		  AND ($2 = '' OR EXISTS (
		        SELECT 1 FROM city_pricing c WHERE c.product_id = p.id AND c.city = $2))
		ORDER BY p.created_at DESC, p.id
		LIMIT $3 OFFSET $4`,
		f.Category, f.City, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadDetails(ctx, s.db, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) Create(ctx context.Context, p *Product) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, category, description, image_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(p.ID), p.Name, p.Category, p.Description, p.ImageURL, p.CreatedAt, p.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		return insertDetails(ctx, tx, p)
	})
}

// Update replaces the product row and its rate tables atomically.
func (s *Store) Update(ctx context.Context, p *Product) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET name = $2, category = $3, description = $4, image_url = $5, updated_at = $6
			WHERE id = $1`,
			string(p.ID), p.Name, p.Category, p.Description, p.ImageURL, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM city_pricing WHERE product_id = $1`, string(p.ID)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM add_ons WHERE product_id = $1`, string(p.ID)); err != nil {
			return err
		}
		return insertDetails(ctx, tx, p)
	})
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertDetails(ctx context.Context, tx pgx.Tx, p *Product) error {
	batch := &pgx.Batch{}
	for i, c := range p.CityPricing {
		batch.Queue(`
			INSERT INTO city_pricing (product_id, city, position, deposit, delivery_charge)
			VALUES ($1, $2, $3, $4, $5)`,
			string(p.ID), c.City, i, c.Deposit.Amount, c.DeliveryCharge.Amount,
		)
		for _, t := range c.TenurePricing {
			batch.Queue(`
				INSERT INTO tenure_pricing (product_id, city, months, monthly_rent)
				VALUES ($1, $2, $3, $4)`,
				string(p.ID), c.City, t.Months, t.MonthlyRent.Amount,
			)
		}
	}
	for i, a := range p.AddOns {
		batch.Queue(`
			INSERT INTO add_ons (product_id, id, position, name, price, type)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			string(p.ID), a.ID, i, a.Name, a.Price.Amount, string(a.Type),
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert rate tables: %w", err)
	}
	return nil
}

// loadDetails fills rate tables and add-ons for a page of products in three queries.
func loadDetails(ctx context.Context, q querier, products []*Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[string]*Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[string(p.ID)] = p
		ids = append(ids, string(p.ID))
	}

	rows, err := q.Query(ctx, `
		SELECT product_id, city, deposit, delivery_charge
		FROM city_pricing
		WHERE product_id = ANY($1)
		ORDER BY product_id, position`, ids,
	)
	if err != nil {
		return err
	}
	for rows.Next() {
		var pid string
		var c CityPricing
		var deposit, delivery int64
		if err := rows.Scan(&pid, &c.City, &deposit, &delivery); err != nil {
			rows.Close()
			return err
		}
		c.Deposit = types.Paise(deposit)
		c.DeliveryCharge = types.Paise(delivery)
		byID[pid].CityPricing = append(byID[pid].CityPricing, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
		SELECT product_id, city, months, monthly_rent
		FROM tenure_pricing
		WHERE product_id = ANY($1)
		ORDER BY product_id, city, months`, ids,
	)
	if err != nil {
		return err
	}
	for rows.Next() {
		var pid, city string
		var months int
		var rent int64
		if err := rows.Scan(&pid, &city, &months, &rent); err != nil {
			rows.Close()
			return err
		}
		p := byID[pid]
		for i := range p.CityPricing {
			if p.CityPricing[i].City == city {
				p.CityPricing[i].TenurePricing = append(p.CityPricing[i].TenurePricing, TenurePricing{
					Months:      months,
					MonthlyRent: types.Paise(rent),
				})
				break
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
		SELECT product_id, id, name, price, type
		FROM add_ons
		WHERE product_id = ANY($1)
		ORDER BY product_id, position`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var pid, typ string
		var a AddOn
		var price int64
		if err := rows.Scan(&pid, &a.ID, &a.Name, &price, &typ); err != nil {
			return err
		}
		a.Price = types.Paise(price)
		if a.Type, err = ParseAddOnType(typ); err != nil {
			return fmt.Errorf("product %s add-on %s: %w", pid, a.ID, err)
		}
		byID[pid].AddOns = append(byID[pid].AddOns, a)
	}
	return rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
