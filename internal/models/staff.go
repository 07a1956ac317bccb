package models

import (
	"errors"
	"fmt"
	"strings"
)

// StaffRole discriminates the Staff variants.
type StaffRole string

const (
	RoleDriver StaffRole = "DRIVER"
	RoleHelper StaffRole = "HELPER"
)

// Valid reports whether r is a known staff role.
func (r StaffRole) Valid() bool {
	return r == RoleDriver || r == RoleHelper
}

// Staff represents a driver or helper. Role is the only discriminant;
// driver ids and helper ids are independent sequences.
type Staff struct {
	ID            int64
	Role          StaffRole
	Name          string
	Phone         string
	Salary        float64
	AssignedRoute string

	// VehicleDetails is the registration plate, required for drivers
	// and always empty for helpers.
	VehicleDetails string

	// Version is incremented by the store on every update.
	Version int64
}

// Validate checks the role-specific shape of s.
func (s Staff) Validate() error {
	if !s.Role.Valid() {
		return fmt.Errorf("unknown staff role %q", s.Role)
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return errors.New("phone is required")
	}
	if s.Salary < 0 {
		return errors.New("salary cannot be negative")
	}
	switch s.Role {
	case RoleDriver:
		if strings.TrimSpace(s.VehicleDetails) == "" {
			return errors.New("vehicle details are required for drivers")
		}
	case RoleHelper:
		if s.VehicleDetails != "" {
			return errors.New("helpers cannot carry vehicle details")
		}
	}
	return nil
}
