package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/student"
)

func TestStudentAPIRequiresStudentRole(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "admin@uni.test", "LePass123!", auth.RoleInstitutionAdmin, "inst1", true)
	token := app.getToken(t, usr)

	req, rec := newAuthRequest(http.MethodGet, "/v1/student/me", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newRequest(http.MethodGet, "/v1/student/me")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentProfile(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	usr.Phone.SetValid("+27821234567")
	usr, err := app.userRepo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("updating user: %v", err)
	}
	stu := app.createStudent(t, usr, "STU-0001", "Ada Nkosi")
	app.db.AddProgram(student.Program{ID: "prog1", Name: "BSc Computer Science"})
	token := app.getToken(t, usr)

	req, rec := newAuthRequest(http.MethodGet, "/v1/student/me", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var profile StudentProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, stu.ID, profile.ID)
	assert.Equal(t, "Ada Nkosi", profile.FullName)
	assert.Equal(t, "ada@uni.test", profile.Email)
	assert.Equal(t, "+27821234567", profile.Phone.String)
	assert.Equal(t, "BSc Computer Science", profile.Program.Name)
}

func TestStudentAttendance(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	stu := app.createStudent(t, usr, "STU-0001", "Ada Nkosi")
	token := app.getToken(t, usr)

	app.db.AddEnrollment(stu.ID, student.Enrollment{OfferingID: "off1", CourseID: "c1", Code: "CS101", Title: "Intro"})
	app.db.AddEnrollment(stu.ID, student.Enrollment{OfferingID: "off2", CourseID: "c2", Code: "CS102", Title: "Data Structures"})
	for i, sessionID := range []string{"s1", "s2", "s3", "s4"} {
		app.db.AddSession("off1", sessionID)
		if i < 3 {
			app.db.AddMark(sessionID, stu.ID, student.MarkPresent)
		} else {
			app.db.AddMark(sessionID, stu.ID, student.MarkAbsent)
		}
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/student/attendance", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var summaries []student.AttendanceSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	// 3/4 sits exactly on the threshold
	assert.Equal(t, 75, summaries[0].Percent)
	assert.Equal(t, student.AttendanceEligible, summaries[0].Status)
	// no sessions held yet
	assert.Equal(t, 0, summaries[1].Percent)
	assert.Equal(t, student.AttendanceWarning, summaries[1].Status)
}

func TestStudentFees(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	stu := app.createStudent(t, usr, "STU-0001", "Ada Nkosi")
	token := app.getToken(t, usr)

	app.db.SetFeeAccount(student.FeeAccount{
		ID:        "fa1",
		StudentID: stu.ID,
		Currency:  "USD",
		Charges:   []student.FeeCharge{{ID: "ch1", Label: "Tuition", Amount: 1000}},
		Payments:  []student.FeePayment{{ID: "p1", Amount: 400, PaidAt: time.Now()}},
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/student/fees", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var summary student.FeeSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, int64(600), summary.Due)
	assert.Equal(t, student.FeePartiallyPaid, summary.Status)

	// student without a fee account
	usr2 := app.createUser(t, "eve@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	app.createStudent(t, usr2, "STU-0002", "Eve Osei")
	req, rec = newAuthRequest(http.MethodGet, "/v1/student/fees", app.getToken(t, usr2))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentRequests(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	app.createStudent(t, usr, "STU-0001", "Ada Nkosi")
	token := app.getToken(t, usr)

	usr2 := app.createUser(t, "eve@uni.test", "LePass123!", auth.RoleStudent, "inst2", true)
	app.createStudent(t, usr2, "STU-0002", "Eve Osei")
	token2 := app.getToken(t, usr2)

	req, rec := newAuthRequest(http.MethodPost, "/v1/student/requests", token,
		[]byte(`{"title": "Transcript copy", "description": "For a scholarship"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created request.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, "REQ-0001", created.DisplayID)
	assert.Equal(t, request.StatusOpen, created.Status)

	// display ids keep counting across students
	req, rec = newAuthRequest(http.MethodPost, "/v1/student/requests", token2,
		[]byte(`{"title": "Bonafide certificate"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created2 request.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &created2); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, "REQ-0002", created2.DisplayID)

	// a student only sees their own requests
	req, rec = newAuthRequest(http.MethodGet, "/v1/student/requests", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var reqs []request.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &reqs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, "REQ-0001", reqs[0].DisplayID)
	}

	// invalid payload
	req, rec = newAuthRequest(http.MethodPost, "/v1/student/requests", token, []byte(`{"title": ""}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentSettings(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	app.createStudent(t, usr, "STU-0001", "Ada Nkosi")
	token := app.getToken(t, usr)

	// defaults before anything is stored
	req, rec := newAuthRequest(http.MethodGet, "/v1/student/settings", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var settings student.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, student.ThemeSystem, settings.Theme)
	assert.True(t, settings.NotificationsEnabled)

	// partial update keeps the rest
	req, rec = newAuthRequest(http.MethodPut, "/v1/student/settings", token, []byte(`{"theme": "DARK"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, student.ThemeDark, settings.Theme)
	assert.True(t, settings.NotificationsEnabled)

	// unknown theme is rejected
	req, rec = newAuthRequest(http.MethodPut, "/v1/student/settings", token, []byte(`{"theme": "NEON"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHome(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	stu := app.createStudent(t, usr, "STU-0001", "Ada Nkosi")
	app.db.AddProgram(student.Program{ID: "prog1", Name: "BSc Computer Science"})
	token := app.getToken(t, usr)

	app.db.AddLibraryIssue(stu.ID, student.LibraryIssue{
		ID: "i1", BookID: "b1", BookTitle: "The Go Programming Language",
		DueDate: time.Now().Add(7 * 24 * time.Hour), Status: student.LibraryIssueOpen,
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/student/home", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var home StudentHome
	if err := json.Unmarshal(rec.Body.Bytes(), &home); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, stu.ID, home.Profile.ID)
	assert.Nil(t, home.Fees) // no fee account yet
	assert.Len(t, home.LibraryIssues, 1)
	assert.Empty(t, home.RecentRequests)
}
