package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/subject"
)

type Student struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Email      string `json:"email" db:"email"`
	Phone      string `json:"phone,omitempty" db:"phone"`
	RollNumber string `json:"roll_number" db:"roll_number"`
	ClassName  string `json:"class_name" db:"class_name"`
	Age        int    `json:"age,omitempty" db:"age"`
	Address    string `json:"address,omitempty" db:"address"`
	// UserID references the owning account; set at creation, never cleared.
	UserID    string            `json:"user_id" db:"user_id"`
	Subjects  []subject.Subject `json:"subjects"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"` // UTC
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	RollNumber string `json:"roll_number" validate:"required,alphanumdash"`
	ClassName  string `json:"class_name" validate:"required"`
	Age        int    `json:"age" validate:"omitempty,gt=0"`
	Address    string `json:"address"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.ClassName = core.CleanString(ns.ClassName)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ns.Email, ns.RollNumber)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Empty fields are left untouched.
type UpdateStudent struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	RollNumber string `json:"roll_number" validate:"omitempty,alphanumdash"`
	ClassName  string `json:"class_name"`
	Age        int    `json:"age" validate:"omitempty,gt=0"`
	Address    string `json:"address"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate, orig Student, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	if roll := core.CleanString(us.RollNumber); roll != "" {
		us.RollNumber = roll
	} else {
		us.RollNumber = orig.RollNumber
	}
	if class := core.CleanString(us.ClassName); class != "" {
		us.ClassName = class
	} else {
		us.ClassName = orig.ClassName
	}
	if us.Phone == "" {
		us.Phone = orig.Phone
	}
	if us.Age == 0 {
		us.Age = orig.Age
	}
	if us.Address == "" {
		us.Address = orig.Address
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.checkUniqueness(us.Email, us.RollNumber, orig)
}

// AssignSubjects replaces a student's subject set.
type AssignSubjects struct {
	Subjects []string `json:"subjects" validate:"required,min=1"`
}

func (as *AssignSubjects) Validate(validate *validator.Validate) error {
	return validate.Struct(as)
}

type QueryFilter struct {
	// Search does a case-insensitive substring match on name or roll number.
	Search    string `query:"search"`
	ClassName string `query:"className"`
	SortBy    string `query:"sortBy"`
	Order     string `query:"order"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.SortBy = core.CleanString(qf.SortBy)
	qf.Order = core.CleanString(qf.Order, true /* lower */)
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

// Ordering maps the API sort params onto a DB ordering, restricted to
// known columns; anything else falls back to newest-first.
func (qf QueryFilter) Ordering() core.DBOrdering {
	field := "created_at"
	switch qf.SortBy {
	case "name":
		field = "name"
	case "rollNumber":
		field = "roll_number"
	case "className":
		field = "class_name"
	case "age":
		field = "age"
	case "createdAt", "":
	}
	return core.DBOrdering{Field: field, Ascending: qf.Order == "asc"}
}
