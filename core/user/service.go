package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyInitialized = errors.New("platform is already initialized")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, usr User) error
		CountAdmins(ctx context.Context) (int, error)

		GetSetupStatus(ctx context.Context) (SetupStatus, error)
		// CreateSetupStatus inserts the setup singleton. The fixed primary key
		// makes concurrent inserts fail with ErrAlreadyInitialized for all but one caller.
		CreateSetupStatus(ctx context.Context, status SetupStatus) (SetupStatus, error)
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		Create(ctx context.Context, nu NewUser) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Authenticate(ctx context.Context, email, password string) (User, error)
		SetupStatus(ctx context.Context) (SetupStatus, error)
		Initialize(ctx context.Context, req SetupRequest) (User, SetupStatus, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		Phone:     nu.Phone,
		DeptID:    nu.DeptID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the provided credentials and records the login time.
// It fails with ErrInvalidCredentials without revealing which of the email or
// the password was wrong.
func (svc *service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	usr.LastLoginAt = time.Now().UTC()
	if err = svc.repo.SetLastLogin(ctx, usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *service) SetupStatus(ctx context.Context) (SetupStatus, error) {
	status, err := svc.repo.GetSetupStatus(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SetupStatus{ID: SetupID}, nil
		}
		return SetupStatus{}, err
	}
	return status, nil
}

// Initialize performs the first-run bootstrap: it creates the super admin and
// marks the platform as set up. It fails with ErrAlreadyInitialized once setup
// completed or when an admin account already exists.
func (svc *service) Initialize(ctx context.Context, req SetupRequest) (User, SetupStatus, error) {
	status, err := svc.SetupStatus(ctx)
	if err != nil {
		return User{}, SetupStatus{}, err
	}
	if status.IsComplete {
		return User{}, SetupStatus{}, ErrAlreadyInitialized
	}
	if count, err := svc.repo.CountAdmins(ctx); err != nil {
		return User{}, SetupStatus{}, err
	} else if count > 0 {
		return User{}, SetupStatus{}, ErrAlreadyInitialized
	}

	admin, err := svc.Create(ctx, NewUser{
		Name:     req.AdminName,
		Email:    req.AdminEmail,
		Role:     RoleSuperAdmin,
		Password: req.AdminPassword,
	})
	if err != nil {
		return User{}, SetupStatus{}, err
	}

	now := time.Now().UTC()
	status = SetupStatus{
		ID:            SetupID,
		IsComplete:    true,
		SetupStep:     1,
		AdminID:       admin.ID,
		InstituteName: req.InstituteName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	status, err = svc.repo.CreateSetupStatus(ctx, status)
	if err != nil {
		return User{}, SetupStatus{}, err
	}
	return admin, status, nil
}

func (svc *service) sendWelcomeMail(usr User) {
	msg := &core.EmailMessage{
		To:           usr.EmailAddr(),
		Subject:      svc.conf.AppName + " - Welcome!",
		TemplateName: "welcome",
		TemplateData: struct {
			Name    string
			AppName string
		}{usr.Name, svc.conf.AppName},
	}
	svc.mailSvc.SendMessages(msg)
}
