package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/tenant"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type Repository interface {
	CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// UpdateUser persists usr's mutable fields; the zero value of a field is
	// written as-is (callers load-modify-store).
	UpdateUser(ctx context.Context, usr User) (User, error)
	SetLastLogin(ctx context.Context, usr User, at time.Time) (User, error)
	// CountStudents counts student accounts visible under scope.
	CountStudents(ctx context.Context, scope tenant.Scope) (int, error)
	// QueryStudents lists student accounts visible under scope, newest first.
	// The filter is AND-ed with the scope.
	QueryStudents(ctx context.Context, scope tenant.Scope, filter QueryFilter) ([]User, error)
}

type Service struct {
	repo    Repository
	mailSvc core.EmailService
	conf    *core.Config
}

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	configureTokens(conf)
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nu.Phone != "" {
		usr.Phone.SetValid(nu.Phone)
	}
	if nu.InstitutionID != "" {
		usr.InstitutionID.SetValid(nu.InstitutionID)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr, time.Now().UTC())
}

func (svc *Service) CountStudents(ctx context.Context, scope tenant.Scope) (int, error) {
	return svc.repo.CountStudents(ctx, scope)
}

func (svc *Service) QueryStudents(ctx context.Context, scope tenant.Scope, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, scope, filter)
}

// RequestPasswordReset mails a reset link to the account with this email,
// if one exists.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *Service) sendPasswordResetMail(usr User) {
	link := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(usr), makeToken(usr))
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: usr.Email}},
		Subject: fmt.Sprintf("Password reset on %s", svc.conf.AppName),
		Body:    fmt.Sprintf("Use the link below to set a new password:\r\n\r\n%s", link),
	}
	svc.mailSvc.SendMessages(msg)
}

// ResetPassword sets a new password for the account referenced by a valid
// reset token.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return errInvalidToken
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = verifyToken(usr, data.Token); err != nil {
		return err
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
