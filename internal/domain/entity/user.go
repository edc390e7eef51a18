package entity

import "time"

// Roles válidos para User.
const (
	RoleRequester = "requester" // solicitante
	RoleSupply    = "supply"    // oficina de suministros (primer nivel de aprobación)
	RoleApprover  = "approver"  // aprobador delegado
	RoleAdmin     = "admin"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleSupply, RoleApprover, RoleAdmin:
		return true
	}
	return false
}

// User representa un usuario del sistema (personal o custodio).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive el usuario puede recibir custodia.
func (u *User) IsActive() bool { return u != nil && u.Status == UserStatusActive }

// Actor identidad y rol de quien ejecuta un comando (resuelto en el borde HTTP).
type Actor struct {
	ID   string
	Role string
}
