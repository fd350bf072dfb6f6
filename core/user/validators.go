package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdLetterDigitTag  = "pwdletterdigit"
	pwdLetterDigitText = "password must contain at least 1 letter and 1 digit"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// Custom Validators

// roleValidation checks that the provided role is one of AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	if role, ok := fl.Field().Interface().(Role); ok {
		return role.Valid()
	}
	return false
}

// newUserStructValidation does struct level validation on NewUser.
func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	validatePassword(sl, "password", nu.Password, nu.Name, nu.Email)
}

// setupStructValidation does struct level validation on SetupRequest.
func setupStructValidation(sl validator.StructLevel) {
	sr := sl.Current().Interface().(SetupRequest)
	validatePassword(sl, "admin_password", sr.AdminPassword, sr.AdminName, sr.AdminEmail)
}

// validatePassword applies the password policy to the provided password:
// - minLen: 8
// - no whitespace
// - at least 1 letter and 1 digit
// - no user attrs similarity
func validatePassword(sl validator.StructLevel, field, pwd, name, email string) {
	if pwd == "" {
		return // `required` covers it
	}
	reportErr := func(tag string) {
		sl.ReportError(pwd, field, "Password", tag, "")
	}

	if len(pwd) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}

	var hasLetter, hasDigit bool
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !(hasLetter && hasDigit) {
		reportErr(pwdLetterDigitTag)
		return
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
	}
}
