package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libris/api/internal/models"
)

var ErrBookNotFound = errors.New("book not found")

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = `id, isbn, title, author, publisher, year, copies, available, created_at, updated_at`

func (r *BookRepository) Create(ctx context.Context, book models.Book) error {
	const query = `
		INSERT INTO books (
			id, isbn, title, author, publisher, year, copies, available, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.Year,
		book.Copies,
		book.Available,
	)
	return err
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return r.scanBook(r.pool.QueryRow(ctx, query, id))
}

func (r *BookRepository) List(ctx context.Context, limit int, offset int) ([]models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY title LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := r.scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *BookRepository) Update(ctx context.Context, book models.Book) error {
	const query = `
		UPDATE books
		SET isbn = $2, title = $3, author = $4, publisher = $5, year = $6, copies = $7, available = $8, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		book.ID,
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.Year,
		book.Copies,
		book.Available,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM books WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) scanBook(row rowScanner) (models.Book, error) {
	var book models.Book
	if err := row.Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.Year,
		&book.Copies,
		&book.Available,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, ErrBookNotFound
		}
		return models.Book{}, err
	}
	return book, nil
}
