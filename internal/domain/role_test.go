package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"store_manager", RoleStoreManager},
		{" store_manager ", RoleStoreManager},
		{"staff", RoleStaff},
		{"cashier", RoleStaff},
		{"", RoleStaff},
	}
	for _, c := range cases {
		if got := ParseRole(c.in); got != c.want {
			t.Errorf("ParseRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanWrite(t *testing.T) {
	cases := []struct {
		role     Role
		resource string
		want     bool
	}{
		{RoleAdmin, "product", true},
		{RoleAdmin, "staff", true},
		{RoleStoreManager, "product", true},
		{RoleStoreManager, "category", true},
		{RoleStoreManager, "staff", false},
		{RoleStoreManager, "staff_type", false},
		{RoleStaff, "product", false},
		{RoleStaff, "category", false},
		{RoleStaff, "cart", true},
		{RoleStaff, "checkout", true},
		{RoleAdmin, "cart", true},
	}
	for _, c := range cases {
		if got := CanWrite(c.role, c.resource); got != c.want {
			t.Errorf("CanWrite(%q, %q) = %v, want %v", c.role, c.resource, got, c.want)
		}
	}
}
