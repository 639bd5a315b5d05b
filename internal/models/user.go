package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleCoordinator       Role = "COORDINATOR"
	RoleDepartmentManager Role = "DEPARTMENT_MANAGER"
	RoleEmployee          Role = "EMPLOYEE"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleCoordinator, RoleDepartmentManager, RoleEmployee}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleDepartmentManager, RoleEmployee:
		return true
	}
	return false
}

type Department string

const (
	DepartmentArchitectural Department = "ARCHITECTURAL"
	DepartmentElectrical    Department = "ELECTRICAL"
	DepartmentCivil         Department = "CIVIL"
	DepartmentMechanical    Department = "MECHANICAL"
)

// Departments lists every department in display order.
var Departments = []Department{DepartmentArchitectural, DepartmentElectrical, DepartmentCivil, DepartmentMechanical}

func (d Department) Valid() bool {
	switch d {
	case DepartmentArchitectural, DepartmentElectrical, DepartmentCivil, DepartmentMechanical:
		return true
	}
	return false
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role           `gorm:"type:varchar(30);not null;default:'EMPLOYEE'" json:"role"`
	Department   *Department    `gorm:"type:varchar(30)" json:"department"`
	Avatar       *string        `gorm:"type:varchar(500)" json:"avatar,omitempty"`
	IsActive     bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
