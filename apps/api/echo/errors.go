package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/academic"
	"github.com/trezcool/tathmini/core/exam"
	"github.com/trezcool/tathmini/core/outcome"
	"github.com/trezcool/tathmini/core/question"
	"github.com/trezcool/tathmini/core/user"
)

var (
	errUnauthorized        = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidRefreshToken = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	errHttpForbidden       = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// notFoundErrs are core sentinels surfaced as 404s.
var notFoundErrs = []error{
	user.ErrNotFound,
	academic.ErrDeptNotFound,
	academic.ErrProgramNotFound,
	academic.ErrCourseNotFound,
	academic.ErrSubjectNotFound,
	outcome.ErrCONotFound,
	outcome.ErrPONotFound,
	outcome.ErrMappingNotFound,
	question.ErrNotFound,
	exam.ErrNotFound,
}

// badRequestErrs are core sentinels surfaced as 400s.
var badRequestErrs = []error{
	user.ErrInvalidCredentials,
	user.ErrAlreadyInitialized,
	user.ErrEmailExists,
}

func isNotFound(err error) bool {
	for _, sentinel := range notFoundErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isBadRequest(err error) bool {
	for _, sentinel := range badRequestErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(deps ServerDeps, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(deps.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case isNotFound(err):
				code = http.StatusNotFound
				message = origErr.Error()
			case errors.Is(err, core.ErrPermissionDenied):
				code = http.StatusForbidden
				message = origErr.Error()
			case isBadRequest(err):
				code = http.StatusBadRequest
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.Role = claims.Role
				}
				deps.Logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
