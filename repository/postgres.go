package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-kyugo/productapi/entity"
	"github.com/go-kyugo/productapi/logger"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresProductRepository returns a repository backed by the products
// table reachable through db.
func NewPostgresProductRepository(db *sql.DB, log *logger.Logger) *Repository {
	return newRepository(&postgresStore{db: db}, log)
}

func (s *postgresStore) findByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT id, name, quantity, price FROM products WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *postgresStore) findByName(ctx context.Context, name string) (*entity.Product, error) {
	query := `SELECT id, name, quantity, price FROM products WHERE name = $1 ORDER BY id LIMIT 1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, name))
}

func (s *postgresStore) scanOne(row *sql.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *postgresStore) all(ctx context.Context) ([]entity.Product, error) {
	query := `SELECT id, name, quantity, price FROM products ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []entity.Product{}
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *postgresStore) insert(ctx context.Context, p entity.Product) (int, error) {
	query := `INSERT INTO products (name, quantity, price) VALUES ($1, $2, $3) RETURNING id`
	var id int
	if err := s.db.QueryRowContext(ctx, query, p.Name, p.Quantity, p.Price).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *postgresStore) update(ctx context.Context, p entity.Product) error {
	query := `UPDATE products SET name = $1, quantity = $2, price = $3 WHERE id = $4`
	res, err := s.db.ExecContext(ctx, query, p.Name, p.Quantity, p.Price, p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, p.ID)
}

func (s *postgresStore) delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, errNoRowsAffected)
	}
	return nil
}

func (s *postgresStore) ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
