package enums

import "fmt"

// ActorRole identifies who is acting on an order.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleSeller   ActorRole = "seller"
	RoleAgent    ActorRole = "agent"
)

var validActorRoles = []ActorRole{
	RoleCustomer,
	RoleSeller,
	RoleAgent,
}

func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if r == candidate {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
