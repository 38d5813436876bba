package echoapi

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/sequence"
	"github.com/philip-ks/eduforge/core/student"
	"github.com/philip-ks/eduforge/core/user"
	emailsvc "github.com/philip-ks/eduforge/services/email"
	logsvc "github.com/philip-ks/eduforge/services/logger"
	dummydb "github.com/philip-ks/eduforge/storage/database/dummy"
)

func newTestConfig() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "EduForge",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			Host:               "localhost",
			JWTExpirationDelta: 10 * time.Minute,
		},
		Email: core.EmailConfig{DefaultFrom: "noreply@localhost"},
	}
}

type testApp struct {
	server   Server
	db       *dummydb.DB
	authn    *auth.Authenticator
	userRepo user.Repository
	userSvc  *user.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := newTestConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("newTestApp() failed: %v", err)
	}

	userRepo := dummydb.NewUserRepository(db)
	userSvc := user.NewService(conf, userRepo, emailsvc.NewConsoleServiceMock(conf))
	studentSvc := student.NewService(dummydb.NewStudentRepository(db))
	requestSvc := request.NewService(
		dummydb.NewRequestRepository(db),
		sequence.NewGenerator(dummydb.NewSequenceRepository(db)),
	)
	authn := auth.NewAuthenticator(conf.AppName, []byte(conf.SecretKey), conf.Server.JWTExpirationDelta)

	server := NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
		Authn:          authn,
		UserSvc:        userSvc,
		StudentSvc:     studentSvc,
		RequestSvc:     requestSvc,
	})

	return &testApp{
		server:   server,
		db:       db,
		authn:    authn,
		userRepo: userRepo,
		userSvc:  userSvc,
	}
}

func (app *testApp) createUser(t *testing.T, email, pwd, role, institutionID string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if institutionID != "" {
		usr.InstitutionID.SetValid(institutionID)
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := app.userRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (app *testApp) createStudent(t *testing.T, usr user.User, displayID, fullName string) student.Student {
	t.Helper()

	stu := student.Student{
		ID:            "stu-" + usr.ID,
		UserID:        usr.ID,
		InstitutionID: usr.InstitutionID,
		DisplayID:     displayID,
		FullName:      fullName,
		ProgramID:     "prog1",
		Semester:      3,
	}
	app.db.AddStudent(stu)
	return stu
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := app.authn.GenerateToken(app.authn.NewClaims(usr.Identity()))
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
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
}
