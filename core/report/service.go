package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
)

const unknownName = "Unknown"

type (
	// Analytics is the admin/teacher reporting payload.
	Analytics struct {
		TotalStudents     int                 `json:"totalStudents"`
		ClassAverage      float64             `json:"classAverage"`
		Toppers           []RankedStudent     `json:"toppers"`
		WeakStudents      []RankedStudent     `json:"weakStudents"`
		AveragesBySubject []SubjectBreakdown  `json:"averagesBySubject"`
		LowAttendance     []AttendanceRanking `json:"lowAttendance"`
	}

	RankedStudent struct {
		Name         string  `json:"name"`
		AverageMarks float64 `json:"averageMarks"`
	}

	SubjectBreakdown struct {
		Subject string  `json:"subject"`
		Average float64 `json:"average"`
	}

	AttendanceRanking struct {
		Name                 string  `json:"name"`
		AttendancePercentage float64 `json:"attendancePercentage"`
	}

	// StudentDashboard is the dashboard payload for a student caller.
	StudentDashboard struct {
		StudentName          string  `json:"studentName"`
		RollNumber           string  `json:"rollNumber"`
		ClassName            string  `json:"className"`
		TotalSubjects        int     `json:"totalSubjects"`
		TotalMarks           int     `json:"totalMarks"`
		AverageMarks         float64 `json:"averageMarks"`
		TotalAttendance      int     `json:"totalAttendance"`
		PresentDays          int     `json:"presentDays"`
		AttendancePercentage float64 `json:"attendancePercentage"`
	}

	// StaffDashboard is the dashboard payload for admin/teacher callers.
	StaffDashboard struct {
		TotalStudents     int     `json:"totalStudents"`
		TotalSubjects     int     `json:"totalSubjects"`
		TotalMarksEntries int     `json:"totalMarksEntries"`
		OverallAverage    float64 `json:"overallAverage"`
	}

	// StudentAverageReport answers /marks/average/:studentId.
	StudentAverageReport struct {
		StudentID     string  `json:"studentId"`
		Average       float64 `json:"average"`
		TotalSubjects int     `json:"totalSubjects"`
	}

	// AttendanceSummary answers /attendance/summary/:studentId.
	AttendanceSummary struct {
		TotalDays            int     `json:"totalDays"`
		PresentDays          int     `json:"presentDays"`
		AttendancePercentage float64 `json:"attendancePercentage"`
	}

	Service struct {
		stdRepo student.Repository
		subRepo subject.Repository
		mrkRepo mark.Repository
		attRepo attendance.Repository
	}
)

func NewService(
	stdRepo student.Repository,
	subRepo subject.Repository,
	mrkRepo mark.Repository,
	attRepo attendance.Repository,
) *Service {
	return &Service{stdRepo: stdRepo, subRepo: subRepo, mrkRepo: mrkRepo, attRepo: attRepo}
}

// studentNames resolves the names behind a set of student ids in a single
// batched fetch. Unresolved ids map to "Unknown".
func (svc *Service) studentNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	students, err := svc.stdRepo.GetStudentsByID(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "resolving student names")
	}
	names := make(map[string]string, len(students))
	for _, std := range students {
		names[std.ID] = std.Name
	}
	return names, nil
}

func nameOf(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return unknownName
}

// Analytics assembles the admin/teacher reporting payload.
func (svc *Service) Analytics(ctx context.Context) (Analytics, error) {
	totalStudents, err := svc.stdRepo.CountStudents(ctx)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "counting students")
	}

	marks, err := svc.mrkRepo.QueryAllMarks(ctx)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "querying marks")
	}
	avgs := StudentAverages(marks)
	toppers := TopPerformers(avgs, TopPerformersLimit)
	weak := WeakStudents(avgs, WeakThreshold)

	attRecs, err := svc.attRepo.QueryAllAttendance(ctx)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "querying attendance")
	}
	low := LowAttendance(AttendanceTallies(attRecs), LowAttendanceThreshold)

	// one batched lookup for every name needed below
	ids := make([]string, 0, len(toppers)+len(weak)+len(low))
	for _, sa := range toppers {
		ids = append(ids, sa.StudentID)
	}
	for _, sa := range weak {
		ids = append(ids, sa.StudentID)
	}
	for _, t := range low {
		ids = append(ids, t.StudentID)
	}
	names, err := svc.studentNames(ctx, ids)
	if err != nil {
		return Analytics{}, err
	}

	subjAvgs := SubjectAverages(marks)
	subjIDs := make([]string, 0, len(subjAvgs))
	for _, sa := range subjAvgs {
		subjIDs = append(subjIDs, sa.SubjectID)
	}
	subjects, err := svc.subRepo.GetSubjectsByID(ctx, subjIDs...)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "resolving subject names")
	}
	subjNames := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		subjNames[sub.ID] = sub.Name
	}

	out := Analytics{
		TotalStudents:     totalStudents,
		ClassAverage:      Round2(ClassAverage(avgs)),
		Toppers:           make([]RankedStudent, 0, len(toppers)),
		WeakStudents:      make([]RankedStudent, 0, len(weak)),
		AveragesBySubject: make([]SubjectBreakdown, 0, len(subjAvgs)),
		LowAttendance:     make([]AttendanceRanking, 0, len(low)),
	}
	for _, sa := range toppers {
		out.Toppers = append(out.Toppers, RankedStudent{Name: nameOf(names, sa.StudentID), AverageMarks: Round2(sa.Average)})
	}
	for _, sa := range weak {
		out.WeakStudents = append(out.WeakStudents, RankedStudent{Name: nameOf(names, sa.StudentID), AverageMarks: Round2(sa.Average)})
	}
	for _, sa := range subjAvgs {
		out.AveragesBySubject = append(out.AveragesBySubject, SubjectBreakdown{Subject: nameOf(subjNames, sa.SubjectID), Average: Round2(sa.Average)})
	}
	for _, t := range low {
		out.LowAttendance = append(out.LowAttendance, AttendanceRanking{Name: nameOf(names, t.StudentID), AttendancePercentage: Round2(t.Percent())})
	}
	return out, nil
}

// StudentDashboard assembles a student's own dashboard. A student with no
// marks gets a 0 average here (dashboard context), unlike StudentAverage
// which reports "no data".
func (svc *Service) StudentDashboard(ctx context.Context, std student.Student) (StudentDashboard, error) {
	marks, err := svc.mrkRepo.QueryStudentMarks(ctx, std.ID)
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "querying student marks")
	}
	avg, _ := SingleStudentAverage(marks)

	attRecs, err := svc.attRepo.QueryStudentAttendance(ctx, std.ID)
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "querying student attendance")
	}
	tally := AttendanceTally{StudentID: std.ID, Total: len(attRecs)}
	for _, rec := range attRecs {
		if rec.Status == attendance.StatusPresent {
			tally.Present++
		}
	}

	return StudentDashboard{
		StudentName:          std.Name,
		RollNumber:           std.RollNumber,
		ClassName:            std.ClassName,
		TotalSubjects:        len(std.Subjects),
		TotalMarks:           len(marks),
		AverageMarks:         Round2(avg),
		TotalAttendance:      tally.Total,
		PresentDays:          tally.Present,
		AttendancePercentage: Round2(tally.Percent()),
	}, nil
}

// StaffDashboard assembles the aggregate counts for admin/teacher callers.
// The overall average reuses the per-student average computation so that
// dashboard and analytics figures always agree.
func (svc *Service) StaffDashboard(ctx context.Context) (StaffDashboard, error) {
	totalStudents, err := svc.stdRepo.CountStudents(ctx)
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting students")
	}
	totalSubjects, err := svc.subRepo.CountSubjects(ctx)
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting subjects")
	}
	totalMarks, err := svc.mrkRepo.CountMarks(ctx)
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting marks")
	}

	marks, err := svc.mrkRepo.QueryAllMarks(ctx)
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "querying marks")
	}

	return StaffDashboard{
		TotalStudents:     totalStudents,
		TotalSubjects:     totalSubjects,
		TotalMarksEntries: totalMarks,
		OverallAverage:    Round2(ClassAverage(StudentAverages(marks))),
	}, nil
}

// StudentAverage answers the per-student average lookup.
// ok is false when the student has no marks.
func (svc *Service) StudentAverage(ctx context.Context, studentID string) (StudentAverageReport, bool, error) {
	marks, err := svc.mrkRepo.QueryStudentMarks(ctx, studentID)
	if err != nil {
		return StudentAverageReport{}, false, errors.Wrap(err, "querying student marks")
	}
	avg, ok := SingleStudentAverage(marks)
	if !ok {
		return StudentAverageReport{}, false, nil
	}
	return StudentAverageReport{
		StudentID:     studentID,
		Average:       Round2(avg),
		TotalSubjects: len(marks),
	}, true, nil
}

// AttendanceSummary answers the per-student attendance percentage lookup.
// A student with no recorded days gets 0%.
func (svc *Service) AttendanceSummary(ctx context.Context, studentID string) (AttendanceSummary, error) {
	attRecs, err := svc.attRepo.QueryStudentAttendance(ctx, studentID)
	if err != nil {
		return AttendanceSummary{}, errors.Wrap(err, "querying student attendance")
	}
	tally := AttendanceTally{StudentID: studentID, Total: len(attRecs)}
	for _, rec := range attRecs {
		if rec.Status == attendance.StatusPresent {
			tally.Present++
		}
	}
	return AttendanceSummary{
		TotalDays:            tally.Total,
		PresentDays:          tally.Present,
		AttendancePercentage: Round2(tally.Percent()),
	}, nil
}
