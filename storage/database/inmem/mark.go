package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core/mark"
)

type markRepository struct {
	db *DB
}

var _ mark.Repository = (*markRepository)(nil)

func NewMarkRepository(db *DB) *markRepository {
	return &markRepository{db: db}
}

func (repo *markRepository) CreateMark(ctx context.Context, mk mark.Mark) (mark.Mark, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.marks {
		if existing.StudentID == mk.StudentID &&
			existing.SubjectID == mk.SubjectID &&
			existing.ExamType == mk.ExamType {
			return mark.Mark{}, mark.ErrAlreadyRecorded
		}
	}
	mk.ID = uuid.New().String()
	repo.db.marks[mk.ID] = &mk
	repo.db.markOrder = append(repo.db.markOrder, mk.ID)
	return mk, nil
}

func (repo *markRepository) FilterMarks(ctx context.Context, filter mark.QueryFilter) ([]mark.Mark, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matches []mark.Mark
	for i := len(repo.db.markOrder) - 1; i >= 0; i-- { // newest first
		mk, ok := repo.db.marks[repo.db.markOrder[i]]
		if !ok {
			continue
		}
		if filter.StudentID != "" && mk.StudentID != filter.StudentID {
			continue
		}
		matches = append(matches, repo.withDisplayFields(*mk))
	}

	total := len(matches)
	lo, hi := paginate(total, filter.Offset(), filter.Limit)
	return matches[lo:hi], total, nil
}

func (repo *markRepository) QueryStudentMarks(ctx context.Context, studentID string) ([]mark.Mark, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var mks []mark.Mark
	for _, id := range repo.db.markOrder {
		if mk, ok := repo.db.marks[id]; ok && mk.StudentID == studentID {
			mks = append(mks, repo.withDisplayFields(*mk))
		}
	}
	return mks, nil
}

func (repo *markRepository) QueryAllMarks(ctx context.Context) ([]mark.Mark, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	mks := make([]mark.Mark, 0, len(repo.db.markOrder))
	for _, id := range repo.db.markOrder {
		if mk, ok := repo.db.marks[id]; ok {
			mks = append(mks, *mk)
		}
	}
	return mks, nil
}

func (repo *markRepository) CountMarks(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return len(repo.db.marks), nil
}

// withDisplayFields expects at least a read lock to be held.
func (repo *markRepository) withDisplayFields(mk mark.Mark) mark.Mark {
	if std, ok := repo.db.students[mk.StudentID]; ok {
		mk.StudentName = std.Name
		mk.StudentRollNumber = std.RollNumber
	}
	if sub, ok := repo.db.subjects[mk.SubjectID]; ok {
		mk.SubjectName = sub.Name
	}
	return mk
}
