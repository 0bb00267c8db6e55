package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EmployeeStatusActive   = "Active"
	EmployeeStatusInactive = "Inactive"
	EmployeeStatusOnLeave  = "On Leave"
)

// Employee represents a staff member who punches in and out.
type Employee struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	EmployeeCode string              `json:"employeeId" bson:"employeeId"`
	Name         string              `json:"name" bson:"name"`
	Email        string              `json:"email" bson:"email"`
	Phone        string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Department   *primitive.ObjectID `json:"department,omitempty" bson:"department,omitempty"`
	Position     *primitive.ObjectID `json:"position,omitempty" bson:"position,omitempty"`
	Status       string              `json:"status" bson:"status"`
	PasswordHash string              `json:"-" bson:"password"`
	JoinDate     *time.Time          `json:"joinDate,omitempty" bson:"joinDate,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// EmployeeProfile is an employee joined with department and position names.
type EmployeeProfile struct {
	ID           primitive.ObjectID  `json:"_id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	DepartmentID *primitive.ObjectID `json:"departmentId,omitempty"`
	Department   string              `json:"department"` // empty when unassigned
	Position     string              `json:"position"`
}

// Department and Position are reference data owned by the master module.
type Department struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}

type Position struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}
