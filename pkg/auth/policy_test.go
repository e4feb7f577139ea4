package auth

import (
	"testing"

	"facultyportal/pkg/domain"
)

func TestCanMutate(t *testing.T) {
	cases := []struct {
		role domain.Role
		want bool
	}{
		{domain.RoleAdmin, true},
		{domain.RoleFaculty, true},
		{domain.RoleStudent, false},
		{domain.Role(""), false},
		{domain.Role("Superuser"), false},
	}
	for _, tc := range cases {
		if got := CanMutate(tc.role); got != tc.want {
			t.Fatalf("CanMutate(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}
