package echoapitest

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/shulehq/shule/apps/api/echo"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/core/user"
	testutil "github.com/shulehq/shule/tests"
)

func Test_subjectApi_list(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	stdUsr := testutil.CreateUser(t, app.usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)

	math := testutil.CreateSubject(t, app.subRepo, "Mathematics", "math-101")
	eng := testutil.CreateSubject(t, app.subRepo, "English", "eng-101")
	sci := testutil.CreateSubject(t, app.subRepo, "Science", "sci-101")

	tests := []httpTest{
		{
			name:     "all, newest first",
			path:     "/api/subjects",
			token:    app.getToken(t, admin),
			wantData: marchallObj(t, echoapi.SubjectListResponse{Subjects: []subject.Subject{sci, eng, math}, TotalSubjects: 3, TotalPages: 1, CurrentPage: 1}),
		},
		{
			name:     "paginated",
			path:     "/api/subjects?limit=2&page=2",
			token:    app.getToken(t, admin),
			wantData: marchallObj(t, echoapi.SubjectListResponse{Subjects: []subject.Subject{math}, TotalSubjects: 3, TotalPages: 2, CurrentPage: 2}),
		},
		{
			name:     "readable by students",
			path:     "/api/subjects?limit=1",
			token:    app.getToken(t, stdUsr),
			wantData: marchallObj(t, echoapi.SubjectListResponse{Subjects: []subject.Subject{sci}, TotalSubjects: 3, TotalPages: 3, CurrentPage: 1}),
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

func Test_subjectApi_create(t *testing.T) {
	app := newTestApp(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	stdUsr := testutil.CreateUser(t, app.usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)

	adminToken := app.getToken(t, admin)

	tests := []httpTest{
		{
			name:     "teacher cannot create",
			token:    app.getToken(t, teacher),
			body:     []byte(`{"name":"Mathematics","code":"math-101"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name:     "student cannot create",
			token:    app.getToken(t, stdUsr),
			body:     []byte(`{"name":"Mathematics","code":"math-101"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name:     "empty payload",
			token:    adminToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name": "this field is required",
				"code": "this field is required",
			}),
		},
		{
			name:     "bad code",
			token:    adminToken,
			body:     []byte(`{"name":"Mathematics","code":"math 101!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "only alphanumeric characters and dashes are allowed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/subjects", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/subjects", adminToken,
			[]byte(`{"name":"Mathematics","code":"MATH-101","description":"Algebra and geometry"}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var sub subject.Subject
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.NotEmpty(t, sub.ID)
		assert.Equal(t, "Mathematics", sub.Name)
		assert.Equal(t, "math-101", sub.Code) // codes are lowercased
		assert.Equal(t, "Algebra and geometry", sub.Description)
	})
}
