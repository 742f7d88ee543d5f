package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// Role determines which terminal views and operations a user may use.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleWaiter  Role = "waiter"
	RoleChef    Role = "chef"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a logged-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the current role may not perform an operation.
	ErrForbidden = errors.New("operation not permitted for role")
	// ErrInvalidCredentials is returned for an empty username or PIN.
	ErrInvalidCredentials = errors.New("username and pin are required")
)

// User is the logged-in operator of the terminal.
type User struct {
	ID       string
	Username string
	Role     Role
}

// Authenticator verifies a username and PIN against the backend.
type Authenticator interface {
	Login(ctx context.Context, username, pin string) (*User, error)
}

// Permission names a guarded terminal operation.
type Permission string

const (
	PermTakeOrders    Permission = "take_orders"
	PermCompleteOrder Permission = "complete_order"
	PermMarkServed    Permission = "mark_served"
	PermCancelOrder   Permission = "cancel_order"
	PermKitchen       Permission = "kitchen"
	PermManageTables  Permission = "manage_tables"
	PermViewHistory   Permission = "view_history"
)

var grants = map[Permission][]Role{
	PermTakeOrders:    {RoleAdmin, RoleManager, RoleCashier, RoleWaiter},
	PermCompleteOrder: {RoleAdmin, RoleManager, RoleCashier},
	PermMarkServed:    {RoleAdmin, RoleManager, RoleWaiter},
	PermCancelOrder:   {RoleAdmin, RoleManager},
	PermKitchen:       {RoleChef},
	PermManageTables:  {RoleAdmin, RoleManager},
	PermViewHistory:   {RoleAdmin, RoleManager, RoleCashier},
}

// Can reports whether the role holds the permission.
func (r Role) Can(p Permission) bool {
	for _, granted := range grants[p] {
		if granted == r {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleWaiter, RoleChef:
		return true
	default:
		return false
	}
}

// HomeView is the view the terminal opens after login.
func (r Role) HomeView() string {
	if r == RoleChef {
		return "kitchen-display"
	}
	return "pos"
}

// Require returns ErrNotAuthenticated for a nil user, or ErrForbidden when
// the user's role lacks the permission.
func Require(u *User, p Permission) error {
	if u == nil {
		return ErrNotAuthenticated
	}
	if !u.Role.Can(p) {
		return errors.Wrapf(ErrForbidden, "%s cannot %s", u.Role, p)
	}
	return nil
}
