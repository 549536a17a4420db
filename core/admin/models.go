package admin

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

// RoleAdmin is the only role an account can hold; it is forced server-side
// and never taken from client input.
const RoleAdmin = "Admin"

// hashCost is the bcrypt work factor applied to every stored password.
const hashCost = 10

// Admin is the administrative owner entity for one school. Dependent
// records (classes, students, teachers, subjects, notices, complaints)
// reference it by ID through their `school` field.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	SchoolName   string    `json:"schoolName"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// SetPassword hashes pwd with a per-call salt; two calls with the same
// plaintext produce different hashes.
func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// NewAdmin contains information needed to register a new Admin.
type NewAdmin struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	SchoolName string `json:"schoolName"`
}

func (na *NewAdmin) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.SchoolName = core.CleanString(na.SchoolName)

	if err := validate.Struct(na); err != nil {
		return translateError(err)
	}
	return svc.CheckEmailUniqueness(ctx, na.Email)
}

// UpdateAdmin defines what information may be provided to modify an existing
// Admin. Absent fields are left untouched.
type UpdateAdmin struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ua *UpdateAdmin) Validate(ctx context.Context, origAdm Admin, validate *validator.Validate, svc Service) error {
	ua.Name = core.CleanString(ua.Name)
	ua.Email = core.CleanString(ua.Email, true /* lower */)

	if err := validate.Struct(ua); err != nil {
		return translateError(err)
	}
	if ua.Email != "" {
		return svc.CheckEmailUniqueness(ctx, ua.Email, origAdm)
	}
	return nil
}
