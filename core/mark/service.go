package mark

import (
	"context"
	"time"

	"github.com/shulehq/shule/core"
)

var (
	ErrNotFound        = core.NewNotFoundError("mark not found")
	ErrAlreadyRecorded = core.NewConflictError("mark already recorded for this student, subject and exam type")
)

type (
	Repository interface {
		CreateMark(ctx context.Context, mk Mark) (Mark, error)
		// FilterMarks returns a page of marks, newest first, with student
		// and subject display fields joined in, plus the total count.
		FilterMarks(ctx context.Context, filter QueryFilter) ([]Mark, int, error)
		// QueryStudentMarks returns every mark of one student.
		QueryStudentMarks(ctx context.Context, studentID string) ([]Mark, error)
		// QueryAllMarks returns every mark, in insertion order.
		QueryAllMarks(ctx context.Context) ([]Mark, error)
		CountMarks(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nm NewMark) (Mark, error) {
	mk := Mark{
		StudentID: nm.StudentID,
		SubjectID: nm.SubjectID,
		Marks:     *nm.Marks,
		ExamType:  nm.ExamType,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateMark(ctx, mk)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Mark, int, error) {
	filter.Clean()
	return svc.repo.FilterMarks(ctx, filter)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Mark, error) {
	return svc.repo.QueryStudentMarks(ctx, studentID)
}
