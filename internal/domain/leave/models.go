package leave

import (
	"time"

	"ems/internal/domain/core"
)

type Type string

const (
	TypeSick      Type = "Sick"
	TypeCasual    Type = "Casual"
	TypeEarned    Type = "Earned"
	TypeMaternity Type = "Maternity"
	TypePaternity Type = "Paternity"
	TypeUnpaid    Type = "Unpaid"
)

var Types = []Type{TypeSick, TypeCasual, TypeEarned, TypeMaternity, TypePaternity, TypeUnpaid}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

type Leave struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employeeId"`
	Type           Type      `json:"leaveType"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Days           int       `json:"days"`
	MaxDaysPerYear int       `json:"maxDaysPerYear"`
	Reason         string    `json:"reason"`
	Status         Status    `json:"status"`
	Active         bool      `json:"active"`
	core.Audit
}

type Request struct {
	EmployeeID     int64
	Type           Type
	StartDate      time.Time
	EndDate        time.Time
	MaxDaysPerYear int
	Reason         string
}

type Filter struct {
	EmployeeID int64
	Status     Status
	Type       Type
	Limit      int
	Offset     int
}
