package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
)

// sentinel HTTP errors; texts are part of the API contract
var (
	errTokenMissing       = echo.NewHTTPError(http.StatusUnauthorized, "Authorization token is missing")
	errTokenFormat        = echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
	errTokenExpired       = echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	errTokenInvalid       = echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errMissingCredentials = echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
)

// appHTTPErrorHandler maps every error bubbling out of a handler to a
// {"message": <string>} body. Unexpected errors are logged and come back as a
// 500 with the root cause's text; a shutdown error additionally signals the
// server to stop.
func (s *Server) appHTTPErrorHandler(err error, ctx echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message string
	)

	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		code = origErr.Code
		if msg, ok := origErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case *core.ValidationError:
		code = http.StatusBadRequest
		message = origErr.Error()
	case validator.ValidationErrors:
		code = http.StatusBadRequest
		message = translateFirst(origErr, s.deps.Translator)
	default:
		if origErr == admin.ErrNotFound {
			code = http.StatusNotFound
			message = origErr.Error()
			break
		}
		message = origErr.Error()
		s.deps.Logger.Error(errors.Wrapf(err, "%s %s", ctx.Request().Method, ctx.Request().RequestURI).Error(), err)
	}

	if !ctx.Response().Committed {
		if resErr := ctx.JSON(code, echo.Map{"message": message}); resErr != nil {
			s.deps.Logger.Error("writing error response", resErr)
		}
	}

	if core.IsShutdown(err) {
		s.signalShutdown()
	}
}

func translateFirst(vErrs validator.ValidationErrors, trans ut.Translator) string {
	if len(vErrs) == 0 {
		return http.StatusText(http.StatusBadRequest)
	}
	return vErrs[0].Translate(trans)
}
