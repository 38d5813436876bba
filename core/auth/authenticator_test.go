package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func testAuthenticator() *Authenticator {
	return NewAuthenticator("EduForge", []byte("secret"), 7*24*time.Hour)
}

func TestAuthenticator_VerifyHeader(t *testing.T) {
	authn := testAuthenticator()

	ident := Identity{
		ID:            "b7a8e2e6-3f51-4e64-8f06-6dc3a2e6e6d1",
		Email:         "jane@uni.test",
		Role:          RoleStudent,
		InstitutionID: null.StringFrom("inst-a"),
	}
	token, err := authn.GenerateToken(authn.NewClaims(ident))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	// a token signed with a different key
	otherAuthn := NewAuthenticator("EduForge", []byte("not-the-secret"), 7*24*time.Hour)
	foreignToken, err := otherAuthn.GenerateToken(otherAuthn.NewClaims(ident))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	// an expired token
	nowFunc = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expiredToken, err := authn.GenerateToken(authn.NewClaims(ident))
	nowFunc = time.Now // reset
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	// a valid signature over tampered content
	tamperedToken := token[:strings.LastIndex(token, ".")] + ".c2lnbmF0dXJl"

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "no header", wantErr: ErrMissingCredential},
		{name: "not bearer", header: "Basic dXNlcjpwd2Q=", wantErr: ErrMissingCredential},
		{name: "bearer no token", header: "Bearer ", wantErr: ErrMissingCredential},
		{name: "garbage token", header: "Bearer lmaooolol", wantErr: ErrInvalidCredential},
		{name: "foreign signature", header: "Bearer " + foreignToken, wantErr: ErrInvalidCredential},
		{name: "tampered signature", header: "Bearer " + tamperedToken, wantErr: ErrInvalidCredential},
		{name: "expired token", header: "Bearer " + expiredToken, wantErr: ErrInvalidCredential},
		{name: "valid token", header: "Bearer " + token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authn.VerifyHeader(tt.header)
			if err != tt.wantErr {
				t.Fatalf("VerifyHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != ident {
				t.Errorf("VerifyHeader() = %+v, want %+v", got, ident)
			}
		})
	}
}

func TestClaims_Identity(t *testing.T) {
	authn := testAuthenticator()

	legacy := authn.NewClaims(Identity{ID: "usr-1", Role: "student"})
	legacy.Subject = ""
	legacy.LegacyID = "usr-1"
	legacyToken, err := authn.GenerateToken(legacy)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	got, err := authn.Verify(legacyToken)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if got.ID != "usr-1" {
		t.Errorf("Verify() ID = %q, want %q (legacy `id` claim)", got.ID, "usr-1")
	}
	if got.Role != RoleStudent {
		t.Errorf("Verify() Role = %q, want normalized %q", got.Role, RoleStudent)
	}

	// empty subject after mapping is invalid
	empty := authn.NewClaims(Identity{ID: "usr-1"})
	empty.Subject = ""
	emptyToken, err := authn.GenerateToken(empty)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if _, err = authn.Verify(emptyToken); err != ErrInvalidCredential {
		t.Errorf("Verify() error = %v, want %v", err, ErrInvalidCredential)
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		roles   []string
		wantErr error
	}{
		{name: "no role", roles: []string{RoleStudent}, wantErr: ErrUnauthenticated},
		{name: "match", role: RoleStudent, roles: []string{RoleStudent}},
		{name: "match any", role: RoleInstitutionAdmin, roles: []string{RoleInstitution, RoleInstitutionAdmin}},
		{name: "case-insensitive", role: "student", roles: []string{RoleStudent}},
		{name: "no match", role: RoleStudent, roles: []string{RoleAdmin}, wantErr: ErrForbidden},
		{name: "empty required set", role: RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Authorize(Identity{Role: tt.role}, tt.roles...); err != tt.wantErr {
				t.Errorf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireInstitution(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		wantErr error
	}{
		{name: "no role", wantErr: ErrUnauthenticated},
		{name: "student", role: RoleStudent, wantErr: ErrForbidden},
		{name: "admin", role: RoleAdmin, wantErr: ErrForbidden},
		{name: "institution", role: RoleInstitution},
		{name: "institution admin", role: RoleInstitutionAdmin},
		{name: "institution lowercase", role: "institution_admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RequireInstitution(Identity{Role: tt.role}); err != tt.wantErr {
				t.Errorf("RequireInstitution() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
