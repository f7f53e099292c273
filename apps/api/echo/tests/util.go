package echoapitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/shulehq/shule/apps/api/echo"
	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
	"github.com/shulehq/shule/core/user"
	emailsvc "github.com/shulehq/shule/services/email"
	inmemdb "github.com/shulehq/shule/storage/database/inmem"
)

var errMissingToken = httpErr{Message: "missing or malformed jwt"}

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// noopLogger keeps server-error logging quiet in tests.
type noopLogger struct{}

func (noopLogger) Enable(bool)                  {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server echoapi.Server
	conf   *core.Config

	usrRepo user.Repository
	stdRepo student.Repository
	subRepo subject.Repository
	mrkRepo mark.Repository
	attRepo attendance.Repository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Shule",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
	}

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	subRepo := inmemdb.NewSubjectRepository(db)
	mrkRepo := inmemdb.NewMarkRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         noopLogger{},
		DisableReqLogs: true,
		UserSvc:        user.NewService(usrRepo, conf),
		StudentSvc:     student.NewService(stdRepo, usrRepo, subRepo, mailSvc, conf),
		SubjectSvc:     subject.NewService(subRepo),
		MarkSvc:        mark.NewService(mrkRepo),
		AttendanceSvc:  attendance.NewService(attRepo),
		ReportSvc:      report.NewService(stdRepo, subRepo, mrkRepo, attRepo),
		Validate:       validate,
		Translator:     translator,
	})

	return &testApp{
		server:  server,
		conf:    conf,
		usrRepo: usrRepo,
		stdRepo: stdRepo,
		subRepo: subRepo,
		mrkRepo: mrkRepo,
		attRepo: attRepo,
	}
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()

	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
