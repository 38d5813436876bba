package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/student"
	"github.com/philip-ks/eduforge/core/user"
)

var (
	contextIdentityKey = "identity"
	contextStudentKey  = "student"
)

// authMiddleware resolves the Authorization header to an Identity and stashes
// it in the request context. Requests without a verifiable credential stop here.
func authMiddleware(authn *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := authn.VerifyHeader(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			ctx.Set(contextIdentityKey, ident)
			return next(ctx)
		}
	}
}

// ContextIdentity returns the Identity resolved by authMiddleware.
func ContextIdentity(ctx echo.Context) (auth.Identity, error) {
	if ident, ok := ctx.Get(contextIdentityKey).(auth.Identity); ok {
		return ident, nil
	}
	return auth.Identity{}, auth.ErrUnauthenticated
}

// roleMiddleware allows only identities holding one of the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := ContextIdentity(ctx)
			if err != nil {
				return err
			}
			if err = auth.Authorize(ident, roles...); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// institutionMiddleware allows only the institution roles through.
func institutionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := ContextIdentity(ctx)
			if err != nil {
				return err
			}
			if err = auth.RequireInstitution(ident); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// contextStudent resolves (and caches) the student record behind the
// authenticated identity.
func contextStudent(ctx echo.Context, svc *student.Service) (student.Student, error) {
	if stu, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return stu, nil
	}
	ident, err := ContextIdentity(ctx)
	if err != nil {
		return student.Student{}, err
	}
	stu, err := svc.ByUserID(ctx.Request().Context(), ident.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by user id")
	}
	ctx.Set(contextStudentKey, stu)
	return stu, nil
}

// authenticate checks a login against the stored account.
func authenticate(ctx echo.Context, email, pwd string, svc *user.Service) (user.User, error) {
	usr, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	usr, err = svc.SetLastLogin(ctx.Request().Context(), usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}
