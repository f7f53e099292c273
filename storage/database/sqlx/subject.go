package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/subject"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	sub.ID = uuid.New().String()
	query := `
		INSERT INTO subject (id, name, code, description, created_at)
		VALUES (:id, :name, :code, :description, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, sub); err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo subjectRepository) FilterSubjects(ctx context.Context, filter subject.QueryFilter) ([]subject.Subject, int, error) {
	var total int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subject`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting subjects")
	}

	subjects := make([]subject.Subject, 0)
	query := `SELECT * FROM subject ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := repo.db.SelectContext(ctx, &subjects, query, filter.Limit, filter.Offset()); err != nil {
		return nil, 0, errors.Wrap(err, "filtering subjects")
	}
	return subjects, total, nil
}

func (repo subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	subjects := make([]subject.Subject, 0)
	if err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subject ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubjectsByID(ctx context.Context, ids ...string) ([]subject.Subject, error) {
	subjects := make([]subject.Subject, 0, len(ids))
	query := `SELECT * FROM subject WHERE id::text = ANY($1)`
	if err := repo.db.SelectContext(ctx, &subjects, query, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "getting subjects by id")
	}
	return subjects, nil
}

func (repo subjectRepository) CountSubjects(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subject`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "counting subjects")
	}
	return count, nil
}
