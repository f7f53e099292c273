// Package inmemdb provides mutex-guarded, map-backed implementations of
// every repository interface. It enforces the same uniqueness and cascade
// rules as the SQL schema and backs the API test suite.
package inmemdb

import (
	"sync"

	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users           map[string]*user.User
	students        map[string]*student.Student
	subjects        map[string]*subject.Subject
	marks           map[string]*mark.Mark
	attendance      map[string]*attendance.Attendance
	studentSubjects map[string][]string // student id -> subject ids

	// insertion orders; map iteration alone would shuffle listings
	userOrder       []string
	studentOrder    []string
	subjectOrder    []string
	markOrder       []string
	attendanceOrder []string
}

func NewDB() *DB {
	return &DB{
		users:           make(map[string]*user.User),
		students:        make(map[string]*student.Student),
		subjects:        make(map[string]*subject.Subject),
		marks:           make(map[string]*mark.Mark),
		attendance:      make(map[string]*attendance.Attendance),
		studentSubjects: make(map[string][]string),
	}
}

// Reset empties every table; used between tests.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.students = make(map[string]*student.Student)
	db.subjects = make(map[string]*subject.Subject)
	db.marks = make(map[string]*mark.Mark)
	db.attendance = make(map[string]*attendance.Attendance)
	db.studentSubjects = make(map[string][]string)
	db.userOrder = nil
	db.studentOrder = nil
	db.subjectOrder = nil
	db.markOrder = nil
	db.attendanceOrder = nil
}

func paginate(total, offset, limit int) (lo, hi int) {
	if offset > total {
		offset = total
	}
	hi = offset + limit
	if hi > total {
		hi = total
	}
	return offset, hi
}
