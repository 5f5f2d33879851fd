package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libris/api/internal/models"
)

var ErrThesisNotFound = errors.New("thesis not found")

type ThesisRepository struct {
	pool *pgxpool.Pool
}

func NewThesisRepository(pool *pgxpool.Pool) *ThesisRepository {
	return &ThesisRepository{pool: pool}
}

const thesisColumns = `id, author_id, title, abstract, keywords, document_key, status, reviewed_by, review_note, created_at, updated_at`

func (r *ThesisRepository) Create(ctx context.Context, thesis models.Thesis) error {
	const query = `
		INSERT INTO theses (
			id, author_id, title, abstract, keywords, document_key, status, reviewed_by, review_note, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		thesis.ID,
		thesis.AuthorID,
		thesis.Title,
		thesis.Abstract,
		thesis.Keywords,
		thesis.DocumentKey,
		thesis.Status,
		thesis.ReviewedBy,
		thesis.ReviewNote,
	)
	return err
}

func (r *ThesisRepository) GetByID(ctx context.Context, id string) (models.Thesis, error) {
	query := `SELECT ` + thesisColumns + ` FROM theses WHERE id = $1`
	return r.scanThesis(r.pool.QueryRow(ctx, query, id))
}

func (r *ThesisRepository) ListByStatus(ctx context.Context, status models.ThesisStatus, limit int, offset int) ([]models.Thesis, error) {
	query := `SELECT ` + thesisColumns + ` FROM theses WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, status, limit, offset)
}

func (r *ThesisRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Thesis, error) {
	query := `SELECT ` + thesisColumns + ` FROM theses WHERE author_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, authorID)
}

func (r *ThesisRepository) UpdateStatus(ctx context.Context, id string, status models.ThesisStatus, reviewerID string, note string) error {
	const query = `
		UPDATE theses
		SET status = $2, reviewed_by = $3, review_note = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status, reviewerID, note)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrThesisNotFound
	}
	return nil
}

func (r *ThesisRepository) list(ctx context.Context, query string, args ...any) ([]models.Thesis, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var theses []models.Thesis
	for rows.Next() {
		thesis, err := r.scanThesis(rows)
		if err != nil {
			return nil, err
		}
		theses = append(theses, thesis)
	}
	return theses, rows.Err()
}

func (r *ThesisRepository) scanThesis(row rowScanner) (models.Thesis, error) {
	var thesis models.Thesis
	if err := row.Scan(
		&thesis.ID,
		&thesis.AuthorID,
		&thesis.Title,
		&thesis.Abstract,
		&thesis.Keywords,
		&thesis.DocumentKey,
		&thesis.Status,
		&thesis.ReviewedBy,
		&thesis.ReviewNote,
		&thesis.CreatedAt,
		&thesis.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Thesis{}, ErrThesisNotFound
		}
		return models.Thesis{}, err
	}
	return thesis, nil
}
