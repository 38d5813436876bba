package user

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/auth"
)

type User struct {
	ID            string      `db:"id" json:"id"`
	Email         string      `db:"email" json:"email"`
	Phone         null.String `db:"phone" json:"phone"`
	Role          string      `db:"role" json:"role"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	PasswordHash  []byte      `db:"password_hash" json:"-"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"` // UTC
	LastLogin     null.Time   `db:"last_login" json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool {
	return auth.NormalizeRole(u.Role) == auth.RoleStudent
}

func (u *User) IsInstitution() bool {
	return auth.IsInstitutionRole(u.Role)
}

// Identity maps a stored account onto the request identity it authenticates as.
func (u *User) Identity() auth.Identity {
	return auth.Identity{
		ID:            u.ID,
		Email:         u.Email,
		Role:          auth.NormalizeRole(u.Role),
		InstitutionID: u.InstitutionID,
	}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=6,max=20"`
	Role            string `json:"role" validate:"required,knownrole"`
	InstitutionID   string `json:"institution_id"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, svc *Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Role = auth.NormalizeRole(nu.Role)
	nu.InstitutionID = core.CleanString(nu.InstitutionID)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Email)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

// QueryFilter narrows account listings. Search does a case-insensitive match
// on User.Email. Fields are AND-ed on top of the caller's tenant scope.
type QueryFilter struct {
	Search string `query:"q"`
	Limit  int    `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
