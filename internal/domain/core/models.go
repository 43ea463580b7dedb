package core

import "time"

type Employee struct {
	ID               int64      `json:"id"`
	Code             string     `json:"employeeCode"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Mobile           string     `json:"mobileNumber,omitempty"`
	Gender           Gender     `json:"gender"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	ProfilePhotoPath string     `json:"profilePhotoPath,omitempty"`
	RoleID           int64      `json:"roleId"`
	RoleName         string     `json:"roleName,omitempty"`
	Active           bool       `json:"active"`
	Audit
}

// Audit holds the who/when columns shared by every table.
type Audit struct {
	CreatedBy int64      `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedBy *int64     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type NewEmployee struct {
	Code        string
	Name        string
	Email       string
	Mobile      string
	Gender      Gender
	DateOfBirth *time.Time
	RoleID      int64
}

type ProfileUpdate struct {
	Name        string
	Mobile      string
	Gender      Gender
	DateOfBirth *time.Time
	RoleID      int64
}

type EmployeeFilter struct {
	Search string
	RoleID int64
	Active *bool
	Limit  int
	Offset int
}

type Department struct {
	ID     int64  `json:"id"`
	Name   string `json:"departmentName"`
	Active bool   `json:"active"`
	Audit
}

type Role struct {
	ID     int64  `json:"id"`
	Name   string `json:"roleName"`
	Active bool   `json:"active"`
	Audit
}

type Assignment struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employeeId"`
	DepartmentID int64     `json:"departmentId"`
	Department   string    `json:"departmentName"`
	CreatedAt    time.Time `json:"createdAt"`
}
