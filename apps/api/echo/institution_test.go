package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/request"
)

func (app *testApp) createRequestFor(t *testing.T, email, institutionID, title string) request.Request {
	t.Helper()

	usr := app.createUser(t, email, "LePass123!", auth.RoleStudent, institutionID, true)
	app.createStudent(t, usr, "STU-"+usr.ID, "Student "+email)
	token := app.getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/student/requests", token, []byte(`{"title": "`+title+`"}`))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createRequestFor() failed: status %d: %s", rec.Code, rec.Body.String())
	}
	var created request.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("createRequestFor() failed: %v", err)
	}
	return created
}

func TestInstitutionAPIRequiresInstitutionRole(t *testing.T) {
	app := newTestApp(t)
	stuUsr := app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/institution/overview", app.getToken(t, stuUsr))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newRequest(http.MethodGet, "/v1/institution/overview")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// both aliased institution roles pass
	for _, role := range []string{auth.RoleInstitution, auth.RoleInstitutionAdmin} {
		usr := app.createUser(t, role+"@uni.test", "LePass123!", role, "inst1", true)
		req, rec = newAuthRequest(http.MethodGet, "/v1/institution/overview", app.getToken(t, usr))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestInstitutionOverview(t *testing.T) {
	app := newTestApp(t)
	app.createRequestFor(t, "s1@uni.test", "inst1", "Transcript copy")
	app.createRequestFor(t, "s2@uni.test", "inst1", "Bonafide certificate")
	app.createRequestFor(t, "s3@other.test", "inst2", "Transcript copy")

	admin := app.createUser(t, "admin@uni.test", "LePass123!", auth.RoleInstitutionAdmin, "inst1", true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/institution/overview", app.getToken(t, admin))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var overview InstitutionOverview
	if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	// only inst1 rows count
	assert.Equal(t, 2, overview.Students)
	assert.Equal(t, 2, overview.OpenRequests)
	assert.Equal(t, 0, overview.InProgressRequests)
	assert.Equal(t, 0, overview.ClosedRequests)
}

func TestInstitutionStudents(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ada@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	app.createUser(t, "eve@uni.test", "LePass123!", auth.RoleStudent, "inst1", true)
	app.createUser(t, "sam@other.test", "LePass123!", auth.RoleStudent, "inst2", true)
	admin := app.createUser(t, "admin@uni.test", "LePass123!", auth.RoleInstitution, "inst1", true)
	token := app.getToken(t, admin)

	req, rec := newAuthRequest(http.MethodGet, "/v1/institution/students", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var students []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	// the other institution's student never shows up
	assert.Len(t, students, 2)
	for _, stu := range students {
		assert.NotEqual(t, "sam@other.test", stu["email"])
	}

	// search narrows by email
	req, rec = newAuthRequest(http.MethodGet, "/v1/institution/students?q=ada", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assert.Len(t, students, 1) {
		assert.Equal(t, "ada@uni.test", students[0]["email"])
	}
}

func TestInstitutionCreateStudent(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "admin@uni.test", "LePass123!", auth.RoleInstitutionAdmin, "inst1", true)
	token := app.getToken(t, admin)

	body := []byte(`{"email": "new@uni.test", "password": "LePass123!", "password_confirm": "LePass123!"}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/institution/students", token, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	// role and institution come from the caller, whatever the payload says
	assert.Equal(t, auth.RoleStudent, created["role"])
	assert.Equal(t, "inst1", created["institution_id"])

	// duplicate email
	req, rec = newAuthRequest(http.MethodPost, "/v1/institution/students", token, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// weak password
	req, rec = newAuthRequest(http.MethodPost, "/v1/institution/students", token,
		[]byte(`{"email": "other@uni.test", "password": "12345678", "password_confirm": "12345678"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInstitutionRequests(t *testing.T) {
	app := newTestApp(t)
	created := app.createRequestFor(t, "s1@uni.test", "inst1", "Transcript copy")
	foreign := app.createRequestFor(t, "s2@other.test", "inst2", "Bonafide certificate")

	admin := app.createUser(t, "admin@uni.test", "LePass123!", auth.RoleInstitutionAdmin, "inst1", true)
	token := app.getToken(t, admin)

	// a closed request should not show up in default listings
	closed := app.createRequestFor(t, "s3@uni.test", "inst1", "Fee receipt")
	req, rec := newAuthRequest(http.MethodPatch, "/v1/institution/requests/"+closed.ID+"/status", token,
		[]byte(`{"status": "CLOSED"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// no status filter defaults to OPEN
	req, rec = newAuthRequest(http.MethodGet, "/v1/institution/requests", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var reqs []request.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &reqs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, created.ID, reqs[0].ID)
	}

	// a legacy PENDING filter matches OPEN rows
	req, rec = newAuthRequest(http.MethodGet, "/v1/institution/requests?status=pending", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	if err := json.Unmarshal(rec.Body.Bytes(), &reqs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, created.ID, reqs[0].ID)
	}

	// an explicit status filter is honored
	req, rec = newAuthRequest(http.MethodGet, "/v1/institution/requests?status=closed", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	if err := json.Unmarshal(rec.Body.Bytes(), &reqs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, closed.ID, reqs[0].ID)
	}

	// detail honors the tenant scope
	req, rec = newAuthRequest(http.MethodGet, "/v1/institution/requests/"+created.ID, token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/institution/requests/"+foreign.ID, token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInstitutionUpdateRequestStatus(t *testing.T) {
	app := newTestApp(t)
	created := app.createRequestFor(t, "s1@uni.test", "inst1", "Transcript copy")
	foreign := app.createRequestFor(t, "s2@other.test", "inst2", "Bonafide certificate")

	admin := app.createUser(t, "admin@uni.test", "LePass123!", auth.RoleInstitutionAdmin, "inst1", true)
	token := app.getToken(t, admin)

	req, rec := newAuthRequest(http.MethodPatch, "/v1/institution/requests/"+created.ID+"/status", token,
		[]byte(`{"status": "IN_PROGRESS"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var updated request.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	assert.Equal(t, request.StatusInProgress, updated.Status)

	// unknown status is rejected
	req, rec = newAuthRequest(http.MethodPatch, "/v1/institution/requests/"+created.ID+"/status", token,
		[]byte(`{"status": "REJECTED"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// cannot touch another institution's request
	req, rec = newAuthRequest(http.MethodPatch, "/v1/institution/requests/"+foreign.ID+"/status", token,
		[]byte(`{"status": "CLOSED"}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
