package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Each record carries a School reference: the owning Account (Admin) ID.
// Apart from the cascade delete and dashboard counts, these are plain
// records forwarded to storage.
type (
	Class struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		School    string    `json:"school"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Student struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		RollNum   int       `json:"roll_num"`
		ClassID   string    `json:"class_id,omitempty"`
		School    string    `json:"school"`
		CreatedAt time.Time `json:"created_at"`
	}

	Teacher struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email,omitempty"`
		ClassID   string    `json:"class_id,omitempty"`
		School    string    `json:"school"`
		CreatedAt time.Time `json:"created_at"`
	}

	Subject struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Code      string    `json:"code"`
		Sessions  int       `json:"sessions,omitempty"`
		ClassID   string    `json:"class_id,omitempty"`
		School    string    `json:"school"`
		CreatedAt time.Time `json:"created_at"`
	}

	Notice struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Details   string    `json:"details"`
		Date      time.Time `json:"date"`
		School    string    `json:"school"`
		CreatedAt time.Time `json:"created_at"`
	}

	Complaint struct {
		ID        string    `json:"id"`
		User      string    `json:"user"`
		Complaint string    `json:"complaint"`
		Date      time.Time `json:"date"`
		School    string    `json:"school"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Counts holds the dashboard statistics for one school.
	Counts struct {
		Students int64 `json:"students"`
		Teachers int64 `json:"teachers"`
		Classes  int64 `json:"classes"`
		Subjects int64 `json:"subjects"`
	}
)

type (
	NewClass struct {
		Name string `json:"name" validate:"required,max=100,noscript"`
	}

	NewStudent struct {
		Name    string `json:"name" validate:"required,max=100,noscript"`
		RollNum int    `json:"roll_num" validate:"required,min=1"`
		ClassID string `json:"class_id"`
	}

	NewTeacher struct {
		Name    string `json:"name" validate:"required,max=100,noscript"`
		Email   string `json:"email" validate:"omitempty,max=255,emailfmt"`
		ClassID string `json:"class_id"`
	}

	NewSubject struct {
		Name     string `json:"name" validate:"required,max=100,noscript"`
		Code     string `json:"code" validate:"required,max=50"`
		Sessions int    `json:"sessions" validate:"omitempty,min=1"`
		ClassID  string `json:"class_id"`
	}

	NewNotice struct {
		Title   string `json:"title" validate:"required,max=255,noscript"`
		Details string `json:"details" validate:"required,noscript"`
	}

	NewComplaint struct {
		User      string `json:"user" validate:"required,max=100,noscript"`
		Complaint string `json:"complaint" validate:"required,noscript"`
	}
)

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	return validate.Struct(ns)
}

func (nn *NewNotice) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Details = core.CleanString(nn.Details)
	return validate.Struct(nn)
}

func (nc *NewComplaint) Validate(validate *validator.Validate) error {
	nc.User = core.CleanString(nc.User)
	nc.Complaint = core.CleanString(nc.Complaint)
	return validate.Struct(nc)
}
