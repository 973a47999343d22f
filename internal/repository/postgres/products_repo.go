package postgres

import (
	"context"

	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productsRepo struct{ pool *pgxpool.Pool }

func (r *productsRepo) Create(ctx context.Context, name string, price int64, description string) (models.Product, error) {
	p := models.Product{ID: uuid.NewString(), Name: name, Price: price, Description: description}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products(id, name, price, description) VALUES($1,$2,$3,$4) RETURNING created_at`,
		p.ID, p.Name, p.Price, p.Description,
	).Scan(&p.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (r *productsRepo) GetByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price, description, created_at FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.CreatedAt)
	if isNoRows(err) {
		return models.Product{}, models.ErrProductNotFound
	}
	return p, err
}

func (r *productsRepo) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price, description, created_at FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
