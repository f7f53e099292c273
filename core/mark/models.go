package mark

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
)

// ExamType is the closed set of graded exam kinds.
type ExamType string

const (
	ExamMid        ExamType = "Mid"
	ExamFinal      ExamType = "Final"
	ExamQuiz       ExamType = "Quiz"
	ExamAssignment ExamType = "Assignment"
)

func (e ExamType) Valid() bool {
	switch e {
	case ExamMid, ExamFinal, ExamQuiz, ExamAssignment:
		return true
	}
	return false
}

type Mark struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	Marks     float64   `json:"marks" db:"marks"`
	ExamType  ExamType  `json:"exam_type" db:"exam_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC

	// joined display fields, populated on listings
	StudentName       string `json:"student_name,omitempty" db:"student_name"`
	StudentRollNumber string `json:"student_roll_number,omitempty" db:"student_roll_number"`
	SubjectName       string `json:"subject_name,omitempty" db:"subject_name"`
}

// NewMark contains information needed to record a Mark.
// ExamType defaults to Mid when omitted.
type NewMark struct {
	StudentID string   `json:"student_id" validate:"required"`
	SubjectID string   `json:"subject_id" validate:"required"`
	Marks     *float64 `json:"marks" validate:"required,gte=0,lte=100"`
	ExamType  ExamType `json:"exam_type" validate:"omitempty,oneof=Mid Final Quiz Assignment"`
}

func (nm *NewMark) Validate(validate *validator.Validate) error {
	nm.StudentID = core.CleanString(nm.StudentID)
	nm.SubjectID = core.CleanString(nm.SubjectID)
	if nm.ExamType == "" {
		nm.ExamType = ExamMid
	}
	return validate.Struct(nm)
}

type QueryFilter struct {
	StudentID string `query:"studentId"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
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
