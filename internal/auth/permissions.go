package auth

import "ledger-service/internal/models"

type Permission string

const (
	PermCatalog      Permission = "catalog"
	PermStock        Permission = "stock"
	PermSell         Permission = "sell"
	PermCancelSale   Permission = "cancel_sale"
	PermCustomers    Permission = "customers"
	PermDebts        Permission = "debts"
	PermDebtPayments Permission = "debt_payments"
	PermReports      Permission = "reports"
)

var rolePermissions = map[models.Role]map[Permission]bool{
	models.RoleManager: {
		PermCatalog:      true,
		PermStock:        true,
		PermCancelSale:   true,
		PermCustomers:    true,
		PermDebts:        true,
		PermDebtPayments: true,
		PermReports:      true,
	},
	models.RoleSeller: {
		PermSell:         true,
		PermCustomers:    true,
		PermDebtPayments: true,
	},
}

// Allowed reports whether role may use perm. Admins may do anything.
func Allowed(role models.Role, perm Permission) bool {
	if role == models.RoleAdmin {
		return true
	}
	return rolePermissions[role][perm]
}
