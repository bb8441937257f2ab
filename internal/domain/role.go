package domain

import "strings"

// Role is the closed set of staff roles. Unknown role names degrade to
// RoleStaff, which is read-only.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleStoreManager Role = "store_manager"
	RoleStaff        Role = "staff"
)

func ParseRole(name string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(name))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleStoreManager:
		return RoleStoreManager
	default:
		return RoleStaff
	}
}

// CanWrite reports whether a role may mutate the given resource. Staff
// accounts may read everything and operate their own cart and checkout, but
// catalog and staff management writes require admin or store_manager.
func CanWrite(role Role, resource string) bool {
	switch resource {
	case "cart", "checkout":
		return true
	case "staff", "staff_type":
		return role == RoleAdmin
	default:
		return role == RoleAdmin || role == RoleStoreManager
	}
}
