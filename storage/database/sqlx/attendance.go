package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/storage/database"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	query := `
		INSERT INTO attendance (id, student_id, date, status, created_at)
		VALUES (:id, :student_id, :date, :status, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, att); err != nil {
		if database.IsUniqueViolation(err, "attendance_student_date_key") {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) FilterAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, int, error) {
	var total int
	if err := repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE student_id = $1`, filter.StudentID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting attendance")
	}

	records := make([]attendance.Attendance, 0)
	query := `SELECT * FROM attendance WHERE student_id = $1 ORDER BY date DESC LIMIT $2 OFFSET $3`
	if err := repo.db.SelectContext(ctx, &records, query, filter.StudentID, filter.Limit, filter.Offset()); err != nil {
		return nil, 0, errors.Wrap(err, "filtering attendance")
	}
	return records, total, nil
}

func (repo attendanceRepository) QueryStudentAttendance(ctx context.Context, studentID string) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0)
	query := `SELECT * FROM attendance WHERE student_id = $1 ORDER BY date`
	if err := repo.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}
	return records, nil
}

func (repo attendanceRepository) QueryAttendanceByDate(ctx context.Context, day time.Time) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0)
	query := `
		SELECT a.*, st.name AS student_name, st.roll_number AS student_roll_number
		FROM attendance a
		JOIN student st ON st.id = a.student_id
		WHERE a.date = $1
		ORDER BY st.roll_number`
	if err := repo.db.SelectContext(ctx, &records, query, day); err != nil {
		return nil, errors.Wrap(err, "querying attendance by date")
	}
	return records, nil
}

func (repo attendanceRepository) QueryAllAttendance(ctx context.Context) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0)
	if err := repo.db.SelectContext(ctx, &records, `SELECT * FROM attendance ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return records, nil
}
