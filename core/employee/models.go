package employee

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taleemhub/backoffice/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Supervisor (reviews daily stats, manages their team's targets)
	RoleSupervisor = "supervisor:"

	// Staff
	RoleStaff        = "staff:"
	RoleStaffSales   = "staff:sales"
	RoleStaffTrainer = "staff:trainer"
)

// Dashboard permission flags
const (
	PermCourses     = "courses"
	PermEnrollments = "enrollments"
	PermDailyStats  = "daily_stats"
	PermTargets     = "targets"
	PermAttendance  = "attendance"
	PermReports     = "reports"
)

var (
	AdminRoles      = []string{RoleAdmin, RoleAdminOwner}
	SupervisorRoles = []string{RoleSupervisor}
	StaffRoles      = []string{RoleStaff, RoleStaffSales, RoleStaffTrainer}
	AllRoles        = getAllRoles()

	AllPermissions = []string{PermCourses, PermEnrollments, PermDailyStats, PermTargets, PermAttendance, PermReports}

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Supervisors: 20 - 11
		RoleSupervisor: 11,

		// Staff: 10 - 1
		RoleStaffTrainer: 3,
		RoleStaffSales:   2,
		RoleStaff:        1,
	}

	Roles = []Role{
		{Name: "Staff", Value: RoleStaff},
		{Name: "Sales Staff", Value: RoleStaffSales},
		{Name: "Trainer", Value: RoleStaffTrainer},
		{Name: "Supervisor", Value: RoleSupervisor},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 6)
	all = append(all, AdminRoles...)
	all = append(all, SupervisorRoles...)
	all = append(all, StaffRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	IsActive     *bool     `json:"is_active"`
	Roles        []string  `json:"roles"`
	Permissions  []string  `json:"permissions"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (e *Employee) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = hash
	return nil
}

func (e *Employee) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(e.PasswordHash, []byte(pwd))
}

func (e *Employee) SetActive(active bool) {
	e.IsActive = &active
}

func (e *Employee) Active() bool {
	return e.IsActive != nil && *e.IsActive
}

func (e *Employee) RoleStartsWith(prefix string) bool {
	for _, role := range e.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (e *Employee) IsAdmin() bool {
	return e.RoleStartsWith(RoleAdmin)
}

func (e *Employee) IsSupervisor() bool {
	return e.RoleStartsWith(RoleSupervisor)
}

func (e *Employee) IsStaff() bool {
	return e.RoleStartsWith(RoleStaff)
}

// IsReviewer reports whether the employee may review daily stats.
func (e *Employee) IsReviewer() bool {
	return e.IsAdmin() || e.IsSupervisor()
}

func (e *Employee) HasPerm(perm string) bool {
	if e.IsAdmin() {
		return true
	}
	for _, p := range e.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// NewEmployee contains information needed to create a new Employee.
type NewEmployee struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone" validate:"omitempty,min=7"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Permissions     []string `json:"permissions" validate:"omitempty,allperms"`
}

func (ne *NewEmployee) Validate(svc *Service) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Username = core.CleanString(ne.Username, true /* lower */)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Phone = core.CleanString(ne.Phone)

	if err := core.Validate.Struct(ne); err != nil {
		return err
	}
	return svc.CheckUniqueness(ne.Username, ne.Email)
}

// UpdateEmployee defines what information may be provided to modify an existing Employee.
type UpdateEmployee struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone" validate:"omitempty,min=7"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Permissions     []string `json:"permissions" validate:"omitempty,allperms"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ue *UpdateEmployee) Validate(origEmp Employee, svc *Service) error {
	name := core.CleanString(ue.Name)
	if name != "" {
		ue.Name = name
	} else {
		ue.Name = origEmp.Name
	}

	uname := core.CleanString(ue.Username, true /* lower */)
	if uname != "" {
		ue.Username = uname
	} else {
		ue.Username = origEmp.Username
	}

	email := core.CleanString(ue.Email, true /* lower */)
	if email != "" {
		ue.Email = email
	} else {
		ue.Email = origEmp.Email
	}

	if err := core.Validate.Struct(ue); err != nil {
		return err
	}
	return svc.CheckUniqueness(ue.Username, ue.Email, origEmp)
}

type ResetEmployeePassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetEmployeePassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter filters a single-Employee lookup; the first set field wins.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string
}
