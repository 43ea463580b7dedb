package auth

const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleEmployee = "Employee"
)

// UserContext is the authenticated caller, decoded from the bearer token.
type UserContext struct {
	EmployeeID int64  `json:"employeeId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	RoleID     int64  `json:"roleId"`
	RoleName   string `json:"role"`
}

func (u UserContext) IsPrivileged() bool {
	return u.RoleName == RoleAdmin || u.RoleName == RoleHR
}

type Credential struct {
	EmployeeID   int64
	Name         string
	Email        string
	RoleID       int64
	RoleName     string
	PasswordHash string
}

type LoginResult struct {
	Token      string `json:"token"`
	Message    string `json:"message"`
	EmployeeID int64  `json:"employeeId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}
