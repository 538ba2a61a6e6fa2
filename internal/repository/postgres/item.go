package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sharesphere-backend/internal/domain"
	apperrors "sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, owner_id, title, description, category, value, tokens_per_day,
	available_from, available_until, location, status, images,
	total_borrows, average_rating, created_at`

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO items (` + itemColumns + `)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.OwnerID, item.Title, item.Description, item.Category,
		item.Value, item.TokensPerDay, item.AvailableFrom, item.AvailableUntil,
		item.Location, item.Status, pq.Array(item.Images),
		item.TotalBorrows, item.AverageRating, item.CreatedAt)
	return err
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := r.scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("item not found")
	}
	return item, err
}

func (r *itemRepository) scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Category,
		&item.Value, &item.TokensPerDay, &item.AvailableFrom, &item.AvailableUntil,
		&item.Location, &item.Status, pq.Array(&item.Images),
		&item.TotalBorrows, &item.AverageRating, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, category, query string, page, pageSize int32) ([]domain.Item, int32, error) {
	where := `WHERE status != 'unavailable'`
	args := []any{}
	argIdx := 1
	if category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}
	if query != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+query+"%")
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM items `+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	sqlQuery := `SELECT ` + itemColumns + ` FROM items ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, count, rows.Err()
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *itemRepository) SetStatus(ctx context.Context, id string, status domain.ItemStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE items SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}
