package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/storage/database"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckUniqueness(ctx context.Context, email, rollNumber string, excludedStudents ...student.Student) error {
	ids := make([]string, 0, len(excludedStudents))
	for _, std := range excludedStudents {
		ids = append(ids, std.ID)
	}

	var matches []student.Student
	query := `
		SELECT id, email, roll_number, name, class_name, user_id, created_at, updated_at
		FROM student
		WHERE (email = $1 OR roll_number = $2) AND NOT (id::text = ANY($3))`
	if err := repo.db.SelectContext(ctx, &matches, query, email, rollNumber, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	for _, std := range matches {
		if std.Email == email {
			return student.ErrEmailExists
		}
		if std.RollNumber == rollNumber {
			return student.ErrRollNumberExists
		}
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	query := `
		INSERT INTO student (id, name, email, phone, roll_number, class_name, age, address, user_id, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :roll_number, :class_name, :age, :address, :user_id, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, std); err != nil {
		switch {
		case database.IsUniqueViolation(err, "student_email_key"):
			return student.Student{}, student.ErrEmailExists
		case database.IsUniqueViolation(err, "student_roll_number_key"):
			return student.Student{}, student.ErrRollNumberExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	std.Subjects = []subject.Subject{}
	return std, nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR roll_number ILIKE $%d)", len(args), len(args))
	}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		where += fmt.Sprintf(" AND class_name = $%d", len(args))
	}

	var total int
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM student WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}

	// Ordering() restricts the sort field to known columns.
	query := fmt.Sprintf(
		"SELECT * FROM student WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		where, filter.Ordering(), len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset())

	students := make([]student.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering students")
	}
	if err := repo.populateSubjects(ctx, students); err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var std student.Student
	if err := repo.db.GetContext(ctx, &std, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, database.TrapNoRowsErr(err, student.ErrNotFound, "getting student by id")
	}
	students := []student.Student{std}
	if err := repo.populateSubjects(ctx, students); err != nil {
		return student.Student{}, err
	}
	return students[0], nil
}

func (repo studentRepository) GetStudentByUserID(ctx context.Context, userID string) (student.Student, error) {
	var std student.Student
	if err := repo.db.GetContext(ctx, &std, `SELECT * FROM student WHERE user_id = $1`, userID); err != nil {
		return student.Student{}, database.TrapNoRowsErr(err, student.ErrNotFound, "getting student by owning user")
	}
	students := []student.Student{std}
	if err := repo.populateSubjects(ctx, students); err != nil {
		return student.Student{}, err
	}
	return students[0], nil
}

func (repo studentRepository) GetStudentsByID(ctx context.Context, ids ...string) ([]student.Student, error) {
	students := make([]student.Student, 0, len(ids))
	query := `SELECT * FROM student WHERE id::text = ANY($1)`
	if err := repo.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "getting students by id")
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	query := `
		UPDATE student
		SET name = :name, email = :email, phone = :phone, roll_number = :roll_number,
		    class_name = :class_name, age = :age, address = :address, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, std)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, "student_email_key"):
			return student.Student{}, student.ErrEmailExists
		case database.IsUniqueViolation(err, "student_roll_number_key"):
			return student.Student{}, student.ErrRollNumberExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, std.ID)
}

// DeleteStudent removes a student; marks, attendance and subject links go
// with it via ON DELETE CASCADE.
func (repo studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) SetStudentSubjects(ctx context.Context, id string, subjectIDs []string) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM student_subject WHERE student_id = $1`, id); err != nil {
		return student.Student{}, errors.Wrap(err, "clearing student subjects")
	}
	for _, subID := range subjectIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO student_subject (student_id, subject_id) VALUES ($1, $2)`, id, subID); err != nil {
			return student.Student{}, errors.Wrap(err, "assigning subject")
		}
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetStudentByID(ctx, id)
}

func (repo studentRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM student`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return count, nil
}

// populateSubjects loads every listed student's subjects in one query.
func (repo studentRepository) populateSubjects(ctx context.Context, students []student.Student) error {
	ids := make([]string, 0, len(students))
	for i := range students {
		students[i].Subjects = []subject.Subject{}
		ids = append(ids, students[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		StudentID string `db:"student_id"`
		subject.Subject
	}
	query := `
		SELECT ss.student_id, s.*
		FROM student_subject ss
		JOIN subject s ON s.id = ss.subject_id
		WHERE ss.student_id::text = ANY($1)
		ORDER BY s.created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "loading student subjects")
	}

	byStudent := make(map[string][]subject.Subject, len(students))
	for _, row := range rows {
		byStudent[row.StudentID] = append(byStudent[row.StudentID], row.Subject)
	}
	for i := range students {
		if subs, ok := byStudent[students[i].ID]; ok {
			students[i].Subjects = subs
		}
	}
	return nil
}
