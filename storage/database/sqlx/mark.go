package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/storage/database"
)

type markRepository struct {
	db *sqlx.DB
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *sqlx.DB) *markRepository {
	return &markRepository{db: db}
}

func (repo markRepository) CreateMark(ctx context.Context, mk mark.Mark) (mark.Mark, error) {
	mk.ID = uuid.New().String()
	query := `
		INSERT INTO mark (id, student_id, subject_id, marks, exam_type, created_at)
		VALUES (:id, :student_id, :subject_id, :marks, :exam_type, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, mk); err != nil {
		if database.IsUniqueViolation(err, "mark_student_subject_exam_key") {
			return mark.Mark{}, mark.ErrAlreadyRecorded
		}
		return mark.Mark{}, errors.Wrap(err, "inserting mark")
	}
	return mk, nil
}

func (repo markRepository) FilterMarks(ctx context.Context, filter mark.QueryFilter) ([]mark.Mark, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		where += fmt.Sprintf(" AND m.student_id = $%d", len(args))
	}

	var total int
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mark m WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting marks")
	}

	query := fmt.Sprintf(`
		SELECT m.*, st.name AS student_name, st.roll_number AS student_roll_number, su.name AS subject_name
		FROM mark m
		JOIN student st ON st.id = m.student_id
		JOIN subject su ON su.id = m.subject_id
		WHERE %s
		ORDER BY m.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	marks := make([]mark.Mark, 0)
	if err := repo.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering marks")
	}
	return marks, total, nil
}

func (repo markRepository) QueryStudentMarks(ctx context.Context, studentID string) ([]mark.Mark, error) {
	marks := make([]mark.Mark, 0)
	query := `SELECT * FROM mark WHERE student_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &marks, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student marks")
	}
	return marks, nil
}

func (repo markRepository) QueryAllMarks(ctx context.Context) ([]mark.Mark, error) {
	marks := make([]mark.Mark, 0)
	if err := repo.db.SelectContext(ctx, &marks, `SELECT * FROM mark ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}
	return marks, nil
}

func (repo markRepository) CountMarks(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mark`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "counting marks")
	}
	return count, nil
}
