package entity

import "time"

// Roles válidos para User.
const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleCajera = "Cajera"
	RoleWaiter = "Camarero"
)

// User representa un usuario del sistema (pertenece a un Tenant y a un client/sucursal).
type User struct {
	ID           string
	TenantID     string
	ClientID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // Owner, Admin, Cajera, Camarero
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsManager Owner y Admin administran el tenant.
func IsManager(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}
