package domain

// Role identifies what kind of account a user holds. The numeric values are
// part of the stored schema: 1 is the administrator, 3 the customer.
type Role uint8

// Known roles
const (
	RoleAdmin    Role = 1 // Manages inventory, seasons and sales reports
	RoleCustomer Role = 3 // Browses, funds a wallet and purchases
)

// Permission is a capability a role may hold. Handlers gate on permissions,
// never on raw role values.
type Permission uint8

// Capabilities
const (
	PermManageInventory Permission = iota + 1 // Create/update/delete products
	PermManageSeasons                         // Activate/deactivate seasons
	PermPurchase                              // Run a checkout
	PermViewAllSales                          // Read every user's purchase history
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Can reports whether the role holds the given capability.
func (r Role) Can(p Permission) bool {
	switch r {
	case RoleAdmin:
		return p == PermManageInventory || p == PermManageSeasons || p == PermViewAllSales
	case RoleCustomer:
		return p == PermPurchase
	default:
		return false
	}
}
