package users

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

// Capability names something a user may do; handlers check capabilities,
// not role strings, so role-to-permission mapping stays in one place.
type Capability string

const (
	CapManageStore Capability = "manage-store"
	CapSellGoods   Capability = "sell-goods"
)

var roleCaps = map[string][]Capability{
	RoleAdmin:  {CapManageStore, CapSellGoods},
	RoleVendor: {CapSellGoods},
}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        *string    `json:"phone,omitempty"`
	Role         string     `json:"role"`
	IsBlocked    bool       `json:"is_blocked"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

func (u *User) Can(c Capability) bool {
	for _, have := range roleCaps[u.Role] {
		if have == c {
			return true
		}
	}
	return false
}
