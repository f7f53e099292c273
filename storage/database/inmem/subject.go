package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	repo.db.subjects[sub.ID] = &sub
	repo.db.subjectOrder = append(repo.db.subjectOrder, sub.ID)
	return sub, nil
}

func (repo *subjectRepository) FilterSubjects(ctx context.Context, filter subject.QueryFilter) ([]subject.Subject, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	all := repo.newestFirst()
	total := len(all)
	lo, hi := paginate(total, filter.Offset(), filter.Limit)
	return all[lo:hi], total, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.newestFirst(), nil
}

func (repo *subjectRepository) GetSubjectsByID(ctx context.Context, ids ...string) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]subject.Subject, 0, len(ids))
	for _, id := range ids {
		if sub, ok := repo.db.subjects[id]; ok {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (repo *subjectRepository) CountSubjects(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return len(repo.db.subjects), nil
}

// newestFirst expects at least a read lock to be held.
func (repo *subjectRepository) newestFirst() []subject.Subject {
	subs := make([]subject.Subject, 0, len(repo.db.subjectOrder))
	for i := len(repo.db.subjectOrder) - 1; i >= 0; i-- {
		if sub, ok := repo.db.subjects[repo.db.subjectOrder[i]]; ok {
			subs = append(subs, *sub)
		}
	}
	return subs
}
