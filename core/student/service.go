package student

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/core/user"
)

// DefaultPassword is the generated credential for accounts created on the
// fly when a teacher/admin enrolls a student. The student is expected to
// change it; nothing enforces that.
const DefaultPassword = "Student@123"

var (
	ErrNotFound         = core.NewNotFoundError("student not found")
	ErrEmailExists      = core.NewConflictError("a student with this email already exists")
	ErrRollNumberExists = core.NewConflictError("a student with this roll number already exists")
	ErrInvalidSubjects  = "one or more subjects invalid"
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, email, rollNumber string, excludedStudents ...Student) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		// FilterStudents applies AND on available QueryFilter fields and
		// returns a page plus the total matching count. Subjects come
		// populated.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, int, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// GetStudentByUserID resolves the Student owned by a user account.
		GetStudentByUserID(ctx context.Context, userID string) (Student, error)
		// GetStudentsByID resolves several students in one round-trip;
		// unknown ids are silently skipped.
		GetStudentsByID(ctx context.Context, ids ...string) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent removes the student and cascades to their marks
		// and attendance records.
		DeleteStudent(ctx context.Context, id string) error
		SetStudentSubjects(ctx context.Context, id string, subjectIDs []string) (Student, error)
		CountStudents(ctx context.Context) (int, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		subRepo subject.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, usrRepo user.Repository, subRepo subject.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, usrRepo: usrRepo, subRepo: subRepo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) checkUniqueness(email, rollNumber string, exclStudents ...Student) error {
	if err := svc.repo.CheckUniqueness(context.Background(), email, rollNumber, exclStudents...); err != nil {
		var field string
		switch err {
		case ErrEmailExists:
			field = "email"
		case ErrRollNumberExists:
			field = "roll_number"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create enrolls a student. The owning account is the existing user with
// the same email if any, otherwise a student-role account created with
// DefaultPassword; the credential is mailed to the student.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	usr, err := svc.usrRepo.GetUserByEmail(ctx, ns.Email)
	if err != nil {
		if err != user.ErrNotFound {
			return Student{}, errors.Wrap(err, "finding owning user")
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:      ns.Name,
			Email:     ns.Email,
			Role:      user.RoleStudent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(DefaultPassword); err != nil {
			return Student{}, err
		}
		if usr, err = svc.usrRepo.CreateUser(ctx, usr); err != nil {
			return Student{}, errors.Wrap(err, "creating owning user")
		}
		svc.sendCredentials(usr)
	}

	now := time.Now().UTC()
	std := Student{
		Name:       ns.Name,
		Email:      ns.Email,
		Phone:      ns.Phone,
		RollNumber: ns.RollNumber,
		ClassName:  ns.ClassName,
		Age:        ns.Age,
		Address:    ns.Address,
		UserID:     usr.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) sendCredentials(usr user.User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Your student account",
		Body: fmt.Sprintf(
			"Hi %s,\n\nAn account has been created for you on %s.\n\nEmail: %s\nPassword: %s\n\nPlease log in and change your password.\n\n%s",
			usr.Name, svc.conf.AppName, usr.Email, DefaultPassword, svc.conf.FrontendBaseURL,
		),
	})
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, int, error) {
	filter.Clean()
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	std := orig
	std.Name = us.Name
	std.Email = us.Email
	std.Phone = us.Phone
	std.RollNumber = us.RollNumber
	std.ClassName = us.ClassName
	std.Age = us.Age
	std.Address = us.Address
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// AssignSubjects replaces the student's subject set after checking that
// every id resolves to an existing Subject.
func (svc *Service) AssignSubjects(ctx context.Context, std Student, as AssignSubjects) (Student, error) {
	known, err := svc.subRepo.GetSubjectsByID(ctx, as.Subjects...)
	if err != nil {
		return Student{}, errors.Wrap(err, "resolving subjects")
	}
	if len(known) != len(as.Subjects) {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "subjects", Error: ErrInvalidSubjects})
	}
	return svc.repo.SetStudentSubjects(ctx, std.ID, as.Subjects)
}
