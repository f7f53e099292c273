package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
)

// DateLayout is the day-precision wire format for attendance dates.
const DateLayout = "2006-01-02"

// Status is the closed set of attendance outcomes. Only Present counts
// towards the attendance percentage.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

type Attendance struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Date      time.Time `json:"date" db:"date"` // day precision, UTC
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC

	// joined display fields, populated on the by-date listing
	StudentName       string `json:"student_name,omitempty" db:"student_name"`
	StudentRollNumber string `json:"student_roll_number,omitempty" db:"student_roll_number"`
}

// NewAttendance contains information needed to mark attendance for one
// student on one day.
type NewAttendance struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    Status `json:"status" validate:"required,oneof=Present Absent Late"`

	date time.Time
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.Date = core.CleanString(na.Date)

	if err := validate.Struct(na); err != nil {
		return err
	}
	day, err := time.ParseInLocation(DateLayout, na.Date, time.UTC)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: "date must be formatted as " + DateLayout})
	}
	na.date = day
	return nil
}

// Day returns the parsed attendance date; only valid after Validate.
func (na NewAttendance) Day() time.Time {
	return na.date
}

type QueryFilter struct {
	StudentID string
	Page      int `query:"page"`
	Limit     int `query:"limit"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.Limit < 1 {
		qf.Limit = 5
	}
}

func (qf QueryFilter) Offset() int {
	return (qf.Page - 1) * qf.Limit
}
