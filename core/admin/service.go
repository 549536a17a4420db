package admin

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

var (
	// errors; texts are part of the API contract
	ErrNotFound    = errors.New("Admin not found")
	ErrEmailExists = errors.New("Email already exists")
)

type (
	// GetFilter selects a single Admin by ID or by normalized email.
	GetFilter struct {
		ID    string
		Email string
	}

	Repository interface {
		// CheckEmailUniqueness reports ErrEmailExists when another account
		// (excluding excludedAdmins) holds the given normalized email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...Admin) error
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
		GetAdmin(ctx context.Context, filter GetFilter) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		// UpdateAdmin only overwrites set (non-zero) fields.
		UpdateAdmin(ctx context.Context, adm Admin) (Admin, error)
		DeleteAdmin(ctx context.Context, id string) error
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...Admin) error
		Register(ctx context.Context, na NewAdmin) (Admin, error)
		GetByID(ctx context.Context, id string) (Admin, error)
		GetByEmail(ctx context.Context, email string) (Admin, error)
		QueryAll(ctx context.Context) ([]Admin, error)
		Update(ctx context.Context, id string, ua UpdateAdmin) (Admin, error)
		Delete(ctx context.Context, id string) error
		Dashboard(ctx context.Context, id string) (school.Counts, error)
	}

	service struct {
		repo      Repository
		schoolSvc *school.Service
		mailSvc   core.EmailService
		conf      *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schoolSvc *school.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:      repo,
		schoolSvc: schoolSvc,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string, excludedAdmins ...Admin) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedAdmins...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register persists a new account. Role is forced to RoleAdmin regardless of
// client input; the password is stored hashed only.
func (svc *service) Register(ctx context.Context, na NewAdmin) (Admin, error) {
	now := time.Now().UTC()
	adm := Admin{
		Name:       na.Name,
		Email:      na.Email,
		Role:       RoleAdmin,
		SchoolName: na.SchoolName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, err
	}

	adm, err := svc.repo.CreateAdmin(ctx, adm)
	if err != nil {
		return Admin{}, errors.Wrap(err, "creating admin")
	}

	svc.sendWelcomeMail(adm)
	return adm, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) QueryAll(ctx context.Context) ([]Admin, error) {
	return svc.repo.QueryAllAdmins(ctx)
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAdmin) (Admin, error) {
	adm := Admin{
		ID:        id,
		Name:      ua.Name,
		Email:     ua.Email,
		UpdatedAt: time.Now().UTC(),
	}
	if ua.Password != "" {
		if err := adm.SetPassword(ua.Password); err != nil {
			return Admin{}, err
		}
	}
	return svc.repo.UpdateAdmin(ctx, adm)
}

// Delete removes the account and every dependent record scoped to its school.
// The cascade runs first; the account record goes last so a failed cascade
// leaves the account in place and the whole call retryable.
func (svc *service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetAdmin(ctx, GetFilter{ID: id}); err != nil {
		return err
	}
	if err := svc.schoolSvc.DeleteAllForAdmin(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteAdmin(ctx, id)
}

func (svc *service) Dashboard(ctx context.Context, id string) (school.Counts, error) {
	if _, err := svc.repo.GetAdmin(ctx, GetFilter{ID: id}); err != nil {
		return school.Counts{}, err
	}
	return svc.schoolSvc.Counts(ctx, id)
}

func (svc *service) sendWelcomeMail(adm Admin) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: adm.Name, Address: adm.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour %s account for %s is ready. You can now sign in at %s and set up your school.",
			adm.Name, svc.conf.AppName, adm.SchoolName, svc.conf.FrontendBaseURL,
		),
	})
}
