package attendance

import (
	"context"
	"time"

	"github.com/shulehq/shule/core"
)

var (
	ErrNotFound      = core.NewNotFoundError("attendance record not found")
	ErrAlreadyMarked = core.NewConflictError("attendance already marked for this student on this date")
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		// FilterAttendance returns a page of one student's records, most
		// recent date first, plus the total count.
		FilterAttendance(ctx context.Context, filter QueryFilter) ([]Attendance, int, error)
		// QueryStudentAttendance returns every record of one student.
		QueryStudentAttendance(ctx context.Context, studentID string) ([]Attendance, error)
		// QueryAttendanceByDate returns every record of one day with
		// student display fields joined in.
		QueryAttendanceByDate(ctx context.Context, day time.Time) ([]Attendance, error)
		// QueryAllAttendance returns every record, in insertion order.
		QueryAllAttendance(ctx context.Context) ([]Attendance, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Mark(ctx context.Context, na NewAttendance) (Attendance, error) {
	att := Attendance{
		StudentID: na.StudentID,
		Date:      na.Day(),
		Status:    na.Status,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateAttendance(ctx, att)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Attendance, int, error) {
	filter.Clean()
	return svc.repo.FilterAttendance(ctx, filter)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	return svc.repo.QueryStudentAttendance(ctx, studentID)
}

func (svc *Service) QueryByDate(ctx context.Context, day time.Time) ([]Attendance, error) {
	return svc.repo.QueryAttendanceByDate(ctx, day)
}
