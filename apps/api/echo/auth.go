package echoapi

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
)

const contextClaimsKey = "adminClaims"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// GetAdminClaims builds the claims issued at login: subject is the account
// ID; expiry comes from the configured delta.
func GetAdminClaims(conf *core.Config, adm admin.Admin) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   adm.ID,
			ExpiresAt: now.Add(conf.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: adm.Email,
		Role:  adm.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// VerifyToken decodes and checks signature and expiry. Expired tokens map to
// errTokenExpired no matter how often they are re-verified; every other
// failure maps to errTokenInvalid. The underlying parse error is never
// surfaced to clients.
func VerifyToken(conf *core.Config, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return conf.SecretKey, nil
	})
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errTokenExpired
		}
		return nil, errTokenInvalid
	}
	if !token.Valid {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// jwtMiddleware guards protected routes. A missing header gets the "missing"
// 401; anything but exactly "Bearer <token>" (case-sensitive scheme, single
// space) gets the "format" 401; then VerifyToken classifies expiry vs anything
// else. On success the decoded claims are attached to the request context and
// the handler runs.
func jwtMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return errTokenMissing
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				return errTokenFormat
			}

			claims, err := VerifyToken(conf, parts[1])
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errTokenInvalid
}

// authenticate checks the credentials and returns the matching account.
// An unknown email propagates admin.ErrNotFound (the API deliberately keeps
// the not-found/bad-password distinction, matching the observed contract).
func authenticate(ctx echo.Context, email, pwd string, svc admin.Service) (admin.Admin, error) {
	adm, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return admin.Admin{}, err
		}
		return admin.Admin{}, errors.Wrap(err, "finding admin by email")
	}
	if err = adm.CheckPassword(pwd); err != nil {
		return admin.Admin{}, errInvalidCredentials
	}
	return adm, nil
}
