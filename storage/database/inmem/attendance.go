package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/shulehq/shule/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.attendance {
		if existing.StudentID == att.StudentID && existing.Date.Equal(att.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
	}
	att.ID = uuid.New().String()
	repo.db.attendance[att.ID] = &att
	repo.db.attendanceOrder = append(repo.db.attendanceOrder, att.ID)
	return att, nil
}

func (repo *attendanceRepository) FilterAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matches []attendance.Attendance
	for _, id := range repo.db.attendanceOrder {
		att, ok := repo.db.attendance[id]
		if !ok {
			continue
		}
		if filter.StudentID != "" && att.StudentID != filter.StudentID {
			continue
		}
		matches = append(matches, *att)
	}
	sort.SliceStable(matches, func(i, j int) bool { // most recent date first
		return matches[j].Date.Before(matches[i].Date)
	})

	total := len(matches)
	lo, hi := paginate(total, filter.Offset(), filter.Limit)
	return matches[lo:hi], total, nil
}

func (repo *attendanceRepository) QueryStudentAttendance(ctx context.Context, studentID string) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var atts []attendance.Attendance
	for _, id := range repo.db.attendanceOrder {
		if att, ok := repo.db.attendance[id]; ok && att.StudentID == studentID {
			atts = append(atts, *att)
		}
	}
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendanceByDate(ctx context.Context, day time.Time) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var atts []attendance.Attendance
	for _, id := range repo.db.attendanceOrder {
		att, ok := repo.db.attendance[id]
		if !ok || !att.Date.Equal(day) {
			continue
		}
		record := *att
		if std, ok := repo.db.students[att.StudentID]; ok {
			record.StudentName = std.Name
			record.StudentRollNumber = std.RollNumber
		}
		atts = append(atts, record)
	}
	return atts, nil
}

func (repo *attendanceRepository) QueryAllAttendance(ctx context.Context) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	atts := make([]attendance.Attendance, 0, len(repo.db.attendanceOrder))
	for _, id := range repo.db.attendanceOrder {
		if att, ok := repo.db.attendance[id]; ok {
			atts = append(atts, *att)
		}
	}
	return atts, nil
}
