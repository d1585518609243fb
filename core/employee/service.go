package employee

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
)

var (
	// errors
	ErrNotFound       = errors.New("employee not found")
	ErrEmailExists    = errors.New("an employee with this email already exists")
	ErrUsernameExists = errors.New("an employee with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excluded []Employee, exec ...core.DBExecutor) error
		CreateEmployee(ctx context.Context, emp Employee, exec ...core.DBExecutor) (Employee, error)
		// QueryEmployees applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Username or Email.
		QueryEmployees(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Employee, error)
		GetEmployee(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Employee, error)
		UpdateEmployee(ctx context.Context, emp Employee, exec ...core.DBExecutor) (Employee, error)
		UpdateOrCreateEmployee(ctx context.Context, emp Employee, exec ...core.DBExecutor) (Employee, error)
		DeleteEmployeesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) CheckUniqueness(uname, email string, exclEmps ...Employee) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, exclEmps); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ne NewEmployee) (Employee, error) {
	now := time.Now().UTC()
	emp := Employee{
		Name:        ne.Name,
		Username:    ne.Username,
		Email:       ne.Email,
		Phone:       ne.Phone,
		Roles:       ne.Roles,
		Permissions: ne.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	emp.SetActive(true)
	if err := emp.SetPassword(ne.Password); err != nil {
		return Employee{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateEmployee(ctx, emp)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error) {
	return svc.repo.QueryEmployees(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Employee, error) {
	return svc.repo.GetEmployee(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (Employee, error) {
	uname = core.CleanString(uname, true /* lower */)
	return svc.repo.GetEmployee(ctx, GetFilter{UsernameOrEmail: []string{uname, uname}})
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEmployee) (Employee, error) {
	emp, err := svc.repo.GetEmployee(ctx, GetFilter{ID: id})
	if err != nil {
		return Employee{}, err
	}
	emp.Name = ue.Name
	emp.Username = ue.Username
	emp.Email = ue.Email
	if ue.Phone != "" {
		emp.Phone = ue.Phone
	}
	if ue.Roles != nil {
		emp.Roles = ue.Roles
	}
	if ue.Permissions != nil {
		emp.Permissions = ue.Permissions
	}
	if ue.IsActive != nil {
		emp.IsActive = ue.IsActive
	}
	if ue.Password != "" {
		if err := emp.SetPassword(ue.Password); err != nil {
			return Employee{}, errors.Wrap(err, "setting password")
		}
	}
	emp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEmployee(ctx, emp)
}

func (svc *Service) SetLastLogin(ctx context.Context, emp Employee) (Employee, error) {
	emp.LastLogin = time.Now().UTC()
	return svc.repo.UpdateEmployee(ctx, emp)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteEmployeesByID(ctx, ids)
	return err
}

// RequestPasswordReset emails a password reset link to the employee with the given email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	emp, err := svc.repo.GetEmployee(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if !emp.Active() {
		return ErrNotFound
	}

	token, err := MakeToken(emp)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: emp.Name, Address: emp.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name, UID, Token string
		}{emp.Name, EncodeUID(emp), token},
		BodyStr: "Follow this link to reset your password: " +
			core.Conf.FrontendBaseURL + "/password-reset/confirm?uid=" + EncodeUID(emp) + "&token=" + token,
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// ResetPassword sets a new password for the employee identified by a valid reset token.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetEmployeePassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	emp, err := svc.repo.GetEmployee(ctx, GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err := verifyToken(emp, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := emp.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	emp.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateEmployee(ctx, emp)
	return err
}
