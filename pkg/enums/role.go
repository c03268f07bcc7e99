package enums

import "fmt"

// Role is the custom claim assigned to accounts in the identity provider.
type Role string

const (
	RoleEstablishment Role = "establishment"
	RoleUser          Role = "user"
	RoleAdmin         Role = "admin"
)

var validRoles = []Role{
	RoleEstablishment,
	RoleUser,
	RoleAdmin,
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
