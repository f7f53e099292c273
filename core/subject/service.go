package subject

import (
	"context"
	"time"

	"github.com/shulehq/shule/core"
)

var ErrNotFound = core.NewNotFoundError("subject not found")

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		// FilterSubjects returns a page of subjects, newest first, plus the total count.
		FilterSubjects(ctx context.Context, filter QueryFilter) ([]Subject, int, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		// GetSubjectsByID resolves several subjects in one round-trip;
		// unknown ids are silently skipped.
		GetSubjectsByID(ctx context.Context, ids ...string) ([]Subject, error)
		CountSubjects(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	sub := Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Description: ns.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Subject, int, error) {
	filter.Clean()
	return svc.repo.FilterSubjects(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, ids ...string) ([]Subject, error) {
	return svc.repo.GetSubjectsByID(ctx, ids...)
}
