package echoapitest

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/shulehq/shule/apps/api/echo"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/user"
	testutil "github.com/shulehq/shule/tests"
)

// withDisplay mirrors the listing payload: marks come back with the
// joined student and subject display fields.
func withDisplay(mk mark.Mark, stdName, stdRoll, subName string) mark.Mark {
	mk.StudentName = stdName
	mk.StudentRollNumber = stdRoll
	mk.SubjectName = subName
	return mk
}

func Test_markApi_create(t *testing.T) {
	app := newTestApp(t)

	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	stdUsr := testutil.CreateUser(t, app.usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)
	std := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", stdUsr.ID)
	math := testutil.CreateSubject(t, app.subRepo, "Mathematics", "math-101")

	teacherToken := app.getToken(t, teacher)

	tests := []httpTest{
		{
			name:     "student cannot record",
			token:    app.getToken(t, stdUsr),
			body:     marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": math.ID, "marks": 80}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name:     "empty payload",
			token:    teacherToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"student_id": "this field is required",
				"subject_id": "this field is required",
				"marks":      "this field is required",
			}),
		},
		{
			name:     "marks above scale",
			token:    teacherToken,
			body:     marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": math.ID, "marks": 101}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"marks": "marks must be 100 or less"}),
		},
		{
			name:     "unknown exam type",
			token:    teacherToken,
			body:     marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": math.ID, "marks": 80, "exam_type": "Oral"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"exam_type": "exam_type must be one of [Mid Final Quiz Assignment]"}),
		},
		{
			name:     "unknown student",
			token:    teacherToken,
			body:     marchallObj(t, map[string]interface{}{"student_id": "nope", "subject_id": math.ID, "marks": 80}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "student not found"}),
		},
		{
			name:     "unknown subject",
			token:    teacherToken,
			body:     marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": "nope", "marks": 80}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "subject not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/marks", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("recorded with default exam type", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/marks", teacherToken,
			marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": math.ID, "marks": 87.5}))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var mk mark.Mark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mk))
		assert.NotEmpty(t, mk.ID)
		assert.Equal(t, std.ID, mk.StudentID)
		assert.Equal(t, math.ID, mk.SubjectID)
		assert.Equal(t, 87.5, mk.Marks)
		assert.Equal(t, mark.ExamMid, mk.ExamType)
	})

	t.Run("duplicate entry", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/marks", teacherToken,
			marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": math.ID, "marks": 90, "exam_type": "Mid"}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Message: "mark already recorded for this student, subject and exam type"}),
		}, rec)
	})

	t.Run("same subject, different exam type", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/marks", teacherToken,
			marchallObj(t, map[string]interface{}{"student_id": std.ID, "subject_id": math.ID, "marks": 90, "exam_type": "Final"}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func Test_markApi_list(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	amaniUsr := testutil.CreateUser(t, app.usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)
	noRecUsr := testutil.CreateUser(t, app.usrRepo, "Ghost", "ghost@test.cd", "", user.RoleStudent)

	amani := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", amaniUsr.ID)
	bupe := testutil.CreateStudent(t, app.stdRepo, "Bupe Chanda", "bupe@test.cd", "R-002", "10A", "")
	math := testutil.CreateSubject(t, app.subRepo, "Mathematics", "math-101")
	eng := testutil.CreateSubject(t, app.subRepo, "English", "eng-101")

	mk1 := testutil.CreateMark(t, app.mrkRepo, amani.ID, math.ID, 80, mark.ExamMid)
	mk2 := testutil.CreateMark(t, app.mrkRepo, amani.ID, eng.ID, 65, mark.ExamMid)
	mk3 := testutil.CreateMark(t, app.mrkRepo, bupe.ID, math.ID, 42, mark.ExamFinal)

	mk1 = withDisplay(mk1, amani.Name, amani.RollNumber, math.Name)
	mk2 = withDisplay(mk2, amani.Name, amani.RollNumber, eng.Name)
	mk3 = withDisplay(mk3, bupe.Name, bupe.RollNumber, math.Name)

	tests := []httpTest{
		{
			name:     "all, newest first",
			path:     "/api/marks",
			token:    app.getToken(t, admin),
			wantData: marchallObj(t, echoapi.MarkListResponse{Marks: []mark.Mark{mk3, mk2, mk1}, TotalMarks: 3, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "paginated",
			path:     "/api/marks?limit=2&page=2",
			token:    app.getToken(t, admin),
			wantData: marchallObj(t, echoapi.MarkListResponse{Marks: []mark.Mark{mk1}, TotalMarks: 3, TotalPages: 2, CurrentPage: 2}),
		},
		{
			name:     "filtered by student",
			path:     "/api/marks?studentId=" + bupe.ID,
			token:    app.getToken(t, admin),
			wantData: marchallObj(t, echoapi.MarkListResponse{Marks: []mark.Mark{mk3}, TotalMarks: 1, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "student scoped to own marks",
			path:     "/api/marks?studentId=" + bupe.ID,
			token:    app.getToken(t, amaniUsr),
			wantData: marchallObj(t, echoapi.MarkListResponse{Marks: []mark.Mark{mk2, mk1}, TotalMarks: 2, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "student without record",
			path:     "/api/marks",
			token:    app.getToken(t, noRecUsr),
			wantData: marchallObj(t, echoapi.MarkListResponse{Marks: []mark.Mark{}}),
		},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_markApi_average(t *testing.T) {
	app := newTestApp(t)

	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	amaniUsr := testutil.CreateUser(t, app.usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)

	amani := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", amaniUsr.ID)
	bupe := testutil.CreateStudent(t, app.stdRepo, "Bupe Chanda", "bupe@test.cd", "R-002", "10A", "")
	math := testutil.CreateSubject(t, app.subRepo, "Mathematics", "math-101")
	eng := testutil.CreateSubject(t, app.subRepo, "English", "eng-101")

	testutil.CreateMark(t, app.mrkRepo, amani.ID, math.ID, 80, mark.ExamMid)
	testutil.CreateMark(t, app.mrkRepo, amani.ID, eng.ID, 65.5, mark.ExamMid)

	tests := []httpTest{
		{
			name:     "rounded to two decimals",
			path:     "/api/marks/average/" + amani.ID,
			token:    app.getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, report.StudentAverageReport{StudentID: amani.ID, Average: 72.75, TotalSubjects: 2}),
		},
		{
			name:     "own average",
			path:     "/api/marks/average/" + amani.ID,
			token:    app.getToken(t, amaniUsr),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, report.StudentAverageReport{StudentID: amani.ID, Average: 72.75, TotalSubjects: 2}),
		},
		{
			name:     "foreign average blocked",
			path:     "/api/marks/average/" + bupe.ID,
			token:    app.getToken(t, amaniUsr),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "you can only access your own student record"}),
		},
		{
			name:     "no marks recorded",
			path:     "/api/marks/average/" + bupe.ID,
			token:    app.getToken(t, teacher),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "no marks found"}),
		},
		{
			name:     "unknown student",
			path:     "/api/marks/average/nope",
			token:    app.getToken(t, teacher),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "student not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
