package echoapi

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/user"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	claimsContextKey = "userToken"
	userContextKey   = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role      user.Role `json:"role,omitempty"`
	TokenType string    `json:"type,omitempty"`
}

// jwtConfig returns the JWT auth middleware config.
func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
	}
}

func newClaims(conf *core.Config, usr user.User, tokenType string, delta time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(delta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:      usr.Role,
		TokenType: tokenType,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// GenerateTokenPair issues a short-lived access token and a long-lived
// refresh token for usr.
func GenerateTokenPair(conf *core.Config, usr user.User) (access, refresh string, err error) {
	if access, err = GenerateToken(conf, newClaims(conf, usr, tokenTypeAccess, conf.Server.JWTAccessExpirationDelta)); err != nil {
		return "", "", err
	}
	if refresh, err = GenerateToken(conf, newClaims(conf, usr, tokenTypeRefresh, conf.Server.JWTRefreshExpirationDelta)); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// parseRefreshToken verifies a refresh token string and returns its claims.
func parseRefreshToken(conf *core.Config, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidRefreshToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, errInvalidRefreshToken
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.Service) (user.User, error) {
	if usr, ok := ctx.Get(userContextKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(userContextKey, usr)
	return usr, nil
}

// accessOnlyMiddleware rejects valid JWTs that are not access tokens;
// a refresh token cannot be used to call the API.
func accessOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		if claims.TokenType != tokenTypeAccess {
			return errUnauthorized
		}
		return next(ctx)
	}
}

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		if claims.Role != user.RoleSuperAdmin {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// teacherMiddleware lets teachers and admins through; per-subject ownership
// is enforced by the services.
func teacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		switch claims.Role {
		case user.RoleSuperAdmin, user.RoleTeacher:
			return next(ctx)
		}
		return errHttpForbidden
	}
}
