package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, email, rollNumber, className, userID string,
	createdAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Name:       name,
		Email:      email,
		RollNumber: rollNumber,
		ClassName:  className,
		UserID:     userID,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateSubject(t *testing.T, repo subject.Repository, name, code string) subject.Subject {
	t.Helper()

	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:      name,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateMark(
	t *testing.T,
	repo mark.Repository,
	studentID, subjectID string,
	marks float64,
	examType mark.ExamType,
) mark.Mark {
	t.Helper()

	mk, err := repo.CreateMark(context.Background(), mark.Mark{
		StudentID: studentID,
		SubjectID: subjectID,
		Marks:     marks,
		ExamType:  examType,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMark() failed: %v", err)
	}
	return mk
}

func CreateAttendance(
	t *testing.T,
	repo attendance.Repository,
	studentID string,
	day time.Time,
	status attendance.Status,
) attendance.Attendance {
	t.Helper()

	att, err := repo.CreateAttendance(context.Background(), attendance.Attendance{
		StudentID: studentID,
		Date:      day,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return att
}

// Day builds a UTC day-precision date for attendance fixtures.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
