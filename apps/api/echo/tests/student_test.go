package echoapitest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/shulehq/shule/apps/api/echo"
	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/core/user"
	testutil "github.com/shulehq/shule/tests"
)

// withSubjectList mirrors the listing payload: subjects always come as a
// slice, never null.
func withSubjectList(stds ...student.Student) []student.Student {
	out := make([]student.Student, 0, len(stds))
	for _, std := range stds {
		if std.Subjects == nil {
			std.Subjects = []subject.Subject{}
		}
		out = append(out, std)
	}
	return out
}

func Test_studentApi_list(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	stdUsr := testutil.CreateUser(t, app.usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)

	now := time.Now()
	std1 := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", stdUsr.ID, now.Add(1*time.Hour))
	std2 := testutil.CreateStudent(t, app.stdRepo, "Bupe Chanda", "bupe@test.cd", "R-002", "10A", "", now.Add(2*time.Hour))
	std3 := testutil.CreateStudent(t, app.stdRepo, "Chileshe Daka", "chileshe@test.cd", "R-003", "10B", "", now.Add(3*time.Hour))

	adminToken := app.getToken(t, admin)
	stdToken := app.getToken(t, stdUsr)

	tests := []httpTest{
		{
			name:     "all, newest first",
			path:     "/api/students",
			token:    adminToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std3, std2, std1), TotalStudents: 3, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "paginated",
			path:     "/api/students?limit=2&page=2",
			token:    adminToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std1), TotalStudents: 3, TotalPages: 2, CurrentPage: 2}),
		},
		{
			name:     "search on name",
			path:     "/api/students?search=bupe",
			token:    adminToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std2), TotalStudents: 1, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "search on roll number",
			path:     "/api/students?search=r-003",
			token:    adminToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std3), TotalStudents: 1, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "class filter",
			path:     "/api/students?className=10A",
			token:    adminToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std2, std1), TotalStudents: 2, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "sorted by name ascending",
			path:     "/api/students?sortBy=name&order=asc",
			token:    adminToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std1, std2, std3), TotalStudents: 3, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "student only sees own record",
			path:     "/api/students?search=bupe",
			token:    stdToken,
			wantData: marchallObj(t, echoapi.StudentListResponse{Students: withSubjectList(std1), TotalStudents: 1, TotalPages: 1, CurrentPage: 1}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_create(t *testing.T) {
	app := newTestApp(t)

	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	stdUsr := testutil.CreateUser(t, app.usrRepo, "Student", "std@test.cd", "", user.RoleStudent)
	testutil.CreateStudent(t, app.stdRepo, "Taken", "taken@test.cd", "R-100", "10A", stdUsr.ID)

	teacherToken := app.getToken(t, teacher)

	tests := []httpTest{
		{
			name:     "student cannot create",
			token:    app.getToken(t, stdUsr),
			body:     []byte(`{"name":"X","email":"x@test.cd","roll_number":"R-200","class_name":"10A"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name:     "empty payload",
			token:    teacherToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":        "this field is required",
				"email":       "this field is required",
				"roll_number": "this field is required",
				"class_name":  "this field is required",
			}),
		},
		{
			name:     "bad roll number",
			token:    teacherToken,
			body:     []byte(`{"name":"X","email":"x@test.cd","roll_number":"R 200!","class_name":"10A"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roll_number": "only alphanumeric characters and dashes are allowed"}),
		},
		{
			name:     "email taken",
			token:    teacherToken,
			body:     []byte(`{"name":"X","email":"taken@test.cd","roll_number":"R-200","class_name":"10A"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a student with this email already exists"}),
		},
		{
			name:     "roll number taken",
			token:    teacherToken,
			body:     []byte(`{"name":"X","email":"x@test.cd","roll_number":"R-100","class_name":"10A"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roll_number": "a student with this roll number already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/students", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created with owning account", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/students", teacherToken,
			[]byte(`{"name":"Dalitso Eze","email":"dalitso@test.cd","phone":"+260970000000","roll_number":"R-200","class_name":"10B","age":15}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.StudentCreatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Message, student.DefaultPassword)
		assert.NotEmpty(t, resp.Student.ID)
		assert.Equal(t, "10B", resp.Student.ClassName)
		assert.Equal(t, 15, resp.Student.Age)

		// a student-role account with the default credential now owns the record
		owner, err := app.usrRepo.GetUserByEmail(context.Background(), "dalitso@test.cd")
		require.NoError(t, err)
		assert.Equal(t, user.RoleStudent, owner.Role)
		assert.Equal(t, owner.ID, resp.Student.UserID)
		assert.NoError(t, owner.CheckPassword(student.DefaultPassword))
	})

	t.Run("created against existing account", func(t *testing.T) {
		existing := testutil.CreateUser(t, app.usrRepo, "Eneless", "eneless@test.cd", "ownpass", user.RoleStudent)

		req, rec := newAuthRequest(http.MethodPost, "/api/students", teacherToken,
			[]byte(`{"name":"Eneless Phiri","email":"eneless@test.cd","roll_number":"R-201","class_name":"10B"}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.StudentCreatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, existing.ID, resp.Student.UserID)
	})
}

func Test_studentApi_retrieve(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	ownUsr := testutil.CreateUser(t, app.usrRepo, "Own", "own@test.cd", "", user.RoleStudent)
	otherUsr := testutil.CreateUser(t, app.usrRepo, "Other", "other@test.cd", "", user.RoleStudent)

	own := testutil.CreateStudent(t, app.stdRepo, "Own", "own@test.cd", "R-001", "10A", ownUsr.ID)
	other := testutil.CreateStudent(t, app.stdRepo, "Other", "other@test.cd", "R-002", "10A", otherUsr.ID)

	tests := []httpTest{
		{
			name:     "admin reads any",
			path:     "/api/students/" + other.ID,
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, withSubjectList(other)[0]),
		},
		{
			name:     "student reads own",
			path:     "/api/students/" + own.ID,
			token:    app.getToken(t, ownUsr),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, withSubjectList(own)[0]),
		},
		{
			name:     "student blocked from foreign record",
			path:     "/api/students/" + other.ID,
			token:    app.getToken(t, ownUsr),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "you can only access your own student record"}),
		},
		{
			name:     "unknown id",
			path:     "/api/students/nope",
			token:    app.getToken(t, admin),
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

func Test_studentApi_update(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	std := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", "")

	t.Run("teacher cannot update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+std.ID, app.getToken(t, teacher),
			[]byte(`{"class_name":"11A"}`))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		}, rec)
	})

	t.Run("admin partial update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+std.ID, app.getToken(t, admin),
			[]byte(`{"class_name":"11A"}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated student.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "11A", updated.ClassName)
		// untouched fields survive
		assert.Equal(t, std.Name, updated.Name)
		assert.Equal(t, std.RollNumber, updated.RollNumber)
		assert.Equal(t, std.Email, updated.Email)
	})
}

func Test_studentApi_destroy(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)

	std := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", "")
	sub := testutil.CreateSubject(t, app.subRepo, "Mathematics", "math-101")
	testutil.CreateMark(t, app.mrkRepo, std.ID, sub.ID, 80, mark.ExamMid)
	testutil.CreateAttendance(t, app.attRepo, std.ID, testutil.Day(2026, 3, 2), attendance.StatusPresent)

	t.Run("teacher cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/students/"+std.ID, app.getToken(t, teacher))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin delete cascades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/students/"+std.ID, app.getToken(t, admin))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		_, err := app.stdRepo.GetStudentByID(context.Background(), std.ID)
		assert.Equal(t, student.ErrNotFound, err)

		marks, err := app.mrkRepo.QueryStudentMarks(context.Background(), std.ID)
		require.NoError(t, err)
		assert.Empty(t, marks)

		attRecs, err := app.attRepo.QueryStudentAttendance(context.Background(), std.ID)
		require.NoError(t, err)
		assert.Empty(t, attRecs)
	})
}

func Test_studentApi_assignSubjects(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)

	std := testutil.CreateStudent(t, app.stdRepo, "Amani Banda", "amani@test.cd", "R-001", "10A", "")
	math := testutil.CreateSubject(t, app.subRepo, "Mathematics", "math-101")
	eng := testutil.CreateSubject(t, app.subRepo, "English", "eng-101")

	path := "/api/students/" + std.ID + "/assign-subjects"
	adminToken := app.getToken(t, admin)

	t.Run("teacher cannot assign", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, app.getToken(t, teacher),
			marchallObj(t, map[string][]string{"subjects": {math.ID}}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("empty subject list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, adminToken, []byte(`{"subjects":[]}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unresolved subject id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, adminToken,
			marchallObj(t, map[string][]string{"subjects": {math.ID, "nope"}}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subjects": "one or more subjects invalid"}),
		}, rec)
	})

	t.Run("assigned", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, adminToken,
			marchallObj(t, map[string][]string{"subjects": {math.ID, eng.ID}}))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated student.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Len(t, updated.Subjects, 2)
	})
}
