package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckUniqueness(ctx context.Context, email, rollNumber string, excludedStudents ...student.Student) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := func(id string) bool {
		for _, excl := range excludedStudents {
			if excl.ID == id {
				return true
			}
		}
		return false
	}
	for _, std := range repo.db.students {
		if excluded(std.ID) {
			continue
		}
		if std.Email == email {
			return student.ErrEmailExists
		}
		if std.RollNumber == rollNumber {
			return student.ErrRollNumberExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.students {
		if existing.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
		if existing.RollNumber == std.RollNumber {
			return student.Student{}, student.ErrRollNumberExists
		}
	}
	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	repo.db.studentOrder = append(repo.db.studentOrder, std.ID)
	return repo.withSubjects(std), nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	var matches []student.Student
	for _, id := range repo.db.studentOrder {
		std, ok := repo.db.students[id]
		if !ok {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(std.Name), search) &&
			!strings.Contains(strings.ToLower(std.RollNumber), search) {
			continue
		}
		if filter.ClassName != "" && std.ClassName != filter.ClassName {
			continue
		}
		matches = append(matches, repo.withSubjects(*std))
	}
	sortStudents(matches, filter.Ordering())

	total := len(matches)
	lo, hi := paginate(total, filter.Offset(), filter.Limit)
	return matches[lo:hi], total, nil
}

func sortStudents(stds []student.Student, ord core.DBOrdering) {
	less := func(a, b student.Student) bool {
		switch ord.Field {
		case "name":
			return a.Name < b.Name
		case "roll_number":
			return a.RollNumber < b.RollNumber
		case "class_name":
			return a.ClassName < b.ClassName
		case "age":
			return a.Age < b.Age
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(stds, func(i, j int) bool {
		if ord.Ascending {
			return less(stds[i], stds[j])
		}
		return less(stds[j], stds[i])
	})
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return repo.withSubjects(*std), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID == userID {
			return repo.withSubjects(*std), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentsByID(ctx context.Context, ids ...string) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stds := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		if std, ok := repo.db.students[id]; ok {
			stds = append(stds, *std)
		}
	}
	return stds, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	for _, existing := range repo.db.students {
		if existing.ID == std.ID {
			continue
		}
		if existing.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
		if existing.RollNumber == std.RollNumber {
			return student.Student{}, student.ErrRollNumberExists
		}
	}
	repo.db.students[std.ID] = &std
	return repo.withSubjects(std), nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	delete(repo.db.studentSubjects, id)
	// cascade, mirroring the FK rules
	for mkID, mk := range repo.db.marks {
		if mk.StudentID == id {
			delete(repo.db.marks, mkID)
		}
	}
	for attID, att := range repo.db.attendance {
		if att.StudentID == id {
			delete(repo.db.attendance, attID)
		}
	}
	return nil
}

func (repo *studentRepository) SetStudentSubjects(ctx context.Context, id string, subjectIDs []string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.studentSubjects[id] = append([]string(nil), subjectIDs...)
	return repo.withSubjects(*std), nil
}

func (repo *studentRepository) CountStudents(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return len(repo.db.students), nil
}

// withSubjects expects at least a read lock to be held.
func (repo *studentRepository) withSubjects(std student.Student) student.Student {
	std.Subjects = []subject.Subject{}
	for _, subID := range repo.db.studentSubjects[std.ID] {
		if sub, ok := repo.db.subjects[subID]; ok {
			std.Subjects = append(std.Subjects, *sub)
		}
	}
	return std
}
