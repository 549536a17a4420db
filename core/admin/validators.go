package admin

import (
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

const (
	nameMaxLen  = 100
	emailMaxLen = 255
	pwdMinLen   = 6
)

var (
	nameMaxTag   = "namemax"
	emailMaxTag  = "emailmax"
	emailFmtTag  = "emailfmt"
	noScriptTag  = "noscript"
	pwdMinLenTag = "pwdminlen"

	// per-field texts; these are part of the public API contract and must not
	// drift (clients match on them).
	messages = map[string]string{
		"name.required":        "Name is required",
		"email.required":       "Email is required",
		"password.required":    "Password is required",
		"schoolName.required":  "School name is required",
		"name." + nameMaxTag:   "Name is too long",
		"name." + noScriptTag:  "Invalid characters in name",
		"email." + emailMaxTag: "Email is too long",
		"email." + emailFmtTag: "Invalid email format",
		"password." + pwdMinLenTag: "Password must be at least 6 characters long",
	}
)

// InitValidators registers the Admin struct-level validations.
// Translations are not registered per tag here: the messages above are
// field-specific, so translateError resolves them directly.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(adminStructValidation, NewAdmin{})
	validate.RegisterStructValidation(adminStructValidation, UpdateAdmin{})
}

// adminStructValidation applies the registration/update rule sets in a fixed
// order and reports only the first failure; callers surface exactly one
// message per request.
func adminStructValidation(sl validator.StructLevel) {
	switch data := sl.Current().Interface().(type) {
	case NewAdmin:
		validateNewAdmin(data, sl)
	case UpdateAdmin:
		validateUpdateAdmin(data, sl)
	}
}

func validateNewAdmin(na NewAdmin, sl validator.StructLevel) {
	reportErr := func(val interface{}, jsonName, fieldName, tag string) {
		sl.ReportError(val, jsonName, fieldName, tag, "")
	}

	// required fields; inputs were cleaned before validation
	if na.Name == "" {
		reportErr(na.Name, "name", "Name", "required")
		return
	}
	if na.Email == "" {
		reportErr(na.Email, "email", "Email", "required")
		return
	}
	if core.CleanString(na.Password) == "" {
		reportErr(na.Password, "password", "Password", "required")
		return
	}
	if na.SchoolName == "" {
		reportErr(na.SchoolName, "schoolName", "SchoolName", "required")
		return
	}

	if tag, ok := checkName(na.Name); !ok {
		reportErr(na.Name, "name", "Name", tag)
		return
	}
	if tag, ok := checkEmail(na.Email); !ok {
		reportErr(na.Email, "email", "Email", tag)
		return
	}
	if !checkPassword(na.Password) {
		reportErr(na.Password, "password", "Password", pwdMinLenTag)
	}
}

func validateUpdateAdmin(ua UpdateAdmin, sl validator.StructLevel) {
	reportErr := func(val interface{}, jsonName, fieldName, tag string) {
		sl.ReportError(val, jsonName, fieldName, tag, "")
	}

	// partial update: only supplied fields are validated
	if ua.Name != "" {
		if tag, ok := checkName(ua.Name); !ok {
			reportErr(ua.Name, "name", "Name", tag)
			return
		}
	}
	if ua.Email != "" {
		if tag, ok := checkEmail(ua.Email); !ok {
			reportErr(ua.Email, "email", "Email", tag)
			return
		}
	}
	if ua.Password != "" && !checkPassword(ua.Password) {
		reportErr(ua.Password, "password", "Password", pwdMinLenTag)
	}
}

// length limits count characters, not bytes
func checkName(name string) (failedTag string, ok bool) {
	if utf8.RuneCountInString(name) > nameMaxLen {
		return nameMaxTag, false
	}
	if core.ContainsScript(name) {
		return noScriptTag, false
	}
	return "", true
}

func checkEmail(email string) (failedTag string, ok bool) {
	if utf8.RuneCountInString(email) > emailMaxLen {
		return emailMaxTag, false
	}
	if !core.IsEmailShaped(email) {
		return emailFmtTag, false
	}
	return "", true
}

func checkPassword(pwd string) bool {
	return utf8.RuneCountInString(core.CleanString(pwd)) >= pwdMinLen
}

// translateError converts the first validator failure into a
// core.ValidationError carrying its contractual message.
func translateError(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fe := vErrs[0]
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			return core.NewValidationError(errors.New(msg), core.FieldError{Field: fe.Field(), Error: msg})
		}
	}
	return err
}
