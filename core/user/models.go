package user

import (
	"context"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tathmini/core"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleTeacher    Role = "TEACHER"
	RoleStudent    Role = "STUDENT"
)

var AllRoles = []Role{RoleSuperAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	DeptID       string    `json:"dept_id,omitempty" db:"dept_id"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	LastLoginAt  time.Time `json:"last_login_at" db:"last_login_at"` // UTC; zero if never logged in
	CreatedAt    time.Time `json:"created_at" db:"created_at"`       // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`       // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// EmailAddr returns the user's address list for email delivery.
func (u User) EmailAddr() []mail.Address {
	return []mail.Address{{Name: u.Name, Address: u.Email}}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// CanTeach reports whether this user may own a Subject.
func (u User) CanTeach() bool {
	switch u.Role {
	case RoleSuperAdmin, RoleTeacher:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// Owns reports whether this user may mutate entities under the subject owned
// by teacherID: the subject's teacher or an admin.
func (u User) Owns(teacherID string) bool {
	return u.IsAdmin() || u.ID == teacherID
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role" validate:"required,role"`
	Phone    string `json:"phone"`
	DeptID   string `json:"dept_id"`
	Password string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// SetupRequest is the first-run bootstrap payload.
type SetupRequest struct {
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required"`
	AdminName     string `json:"admin_name" validate:"required,min=2"`
	InstituteName string `json:"institute_name" validate:"required,min=2"`
}

func (sr *SetupRequest) Validate(validate *validator.Validate) error {
	sr.AdminEmail = core.CleanString(sr.AdminEmail, true /* lower */)
	sr.AdminName = core.CleanString(sr.AdminName)
	sr.InstituteName = core.CleanString(sr.InstituteName)
	return validate.Struct(sr)
}

// SetupStatus is the singleton record gatekeeping the first-run bootstrap.
type SetupStatus struct {
	ID            string    `json:"id" db:"id"` // always SetupID
	IsComplete    bool      `json:"is_setup_complete" db:"is_complete"`
	SetupStep     int       `json:"setup_step" db:"setup_step"`
	AdminID       string    `json:"admin_id,omitempty" db:"admin_id"`
	InstituteName string    `json:"institute_name,omitempty" db:"institute_name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SetupID is the fixed primary key of the SetupStatus singleton; the unique
// index on it is what makes concurrent initialization safe.
const SetupID = "setup"

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	validate.RegisterStructValidation(setupStructValidation, SetupRequest{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdLetterDigitTag, pwdLetterDigitText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}
