package db

import (
	"context"
)

const createRecord = `-- name: CreateRecord :execlastid
INSERT INTO records (user_id, title, content, embedding)
VALUES (?, ?, ?, ?)
`

type CreateRecordParams struct {
	UserID    int64
	Title     string
	Content   string
	Embedding Vector
}

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createRecord,
		arg.UserID,
		arg.Title,
		arg.Content,
		arg.Embedding,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getRecord = `-- name: GetRecord :one
SELECT id, user_id, title, content, embedding, created_at FROM records
WHERE id = ? LIMIT 1
`

func (q *Queries) GetRecord(ctx context.Context, id int64) (Record, error) {
	row := q.db.QueryRowContext(ctx, getRecord, id)
	var i Record
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Content,
		&i.Embedding,
		&i.CreatedAt,
	)
	return i, err
}

const listRecordsByUser = `-- name: ListRecordsByUser :many
SELECT id, user_id, title, content, embedding, created_at FROM records
WHERE user_id = ?
ORDER BY id ASC
`

func (q *Queries) ListRecordsByUser(ctx context.Context, userID int64) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, listRecordsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

const listRecordsByUserPaged = `-- name: ListRecordsByUserPaged :many
SELECT id, user_id, title, content, embedding, created_at FROM records
WHERE user_id = ?
ORDER BY id ASC
LIMIT ? OFFSET ?
`

type ListRecordsByUserPagedParams struct {
	UserID int64
	Limit  int64
	Offset int64
}

func (q *Queries) ListRecordsByUserPaged(ctx context.Context, arg ListRecordsByUserPagedParams) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, listRecordsByUserPaged, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

const getUserEmbeddingDimension = `-- name: GetUserEmbeddingDimension :one
SELECT json_array_length(embedding) FROM records
WHERE user_id = ?
ORDER BY id ASC
LIMIT 1
`

// GetUserEmbeddingDimension returns the length of the user's first embedding,
// or sql.ErrNoRows when the user has no records.
func (q *Queries) GetUserEmbeddingDimension(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUserEmbeddingDimension, userID)
	var dim int64
	err := row.Scan(&dim)
	return dim, err
}

const countRecordsByUser = `-- name: CountRecordsByUser :one
SELECT COUNT(*) FROM records
WHERE user_id = ?
`

func (q *Queries) CountRecordsByUser(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRecordsByUser, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

func scanRecords(rows rowScanner) ([]Record, error) {
	items := []Record{}
	for rows.Next() {
		var i Record
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Title,
			&i.Content,
			&i.Embedding,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
