package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	emailFmtTag   = "emailfmt"
	emailFmtText  = "must be a valid email address"
	emailFmtRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	noScriptTag  = "noscript"
	noScriptText = "contains invalid characters"
	// a minimal denylist, not an HTML sanitizer; display layers must still escape.
	scriptPatterns = []string{"<script", "</script", "javascript:", "onerror=", "onload="}

	requiredTag  = "required"
	requiredText = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(emailFmtTag, emailFmtValidation)
	RegisterCustomTranslation(validate, translator, emailFmtTag, emailFmtText)

	_ = validate.RegisterValidation(noScriptTag, noScriptValidation)
	RegisterCustomTranslation(validate, translator, noScriptTag, noScriptText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// emailFmtValidation checks the single-@-sign, non-whitespace, dotted-domain shape.
func emailFmtValidation(fl validator.FieldLevel) bool {
	return emailFmtRegex.MatchString(fl.Field().String())
}

// noScriptValidation rejects strings containing known script/markup patterns.
func noScriptValidation(fl validator.FieldLevel) bool {
	return !ContainsScript(fl.Field().String())
}

// IsEmailShaped reports whether `s` has the accepted email shape.
func IsEmailShaped(s string) bool {
	return emailFmtRegex.MatchString(s)
}

// ContainsScript reports whether `s` matches the script/markup denylist.
func ContainsScript(s string) bool {
	ls := strings.ToLower(s)
	for _, pattern := range scriptPatterns {
		if strings.Contains(ls, pattern) {
			return true
		}
	}
	return false
}
