package clinic

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vetclinic/m/domain"
	"vetclinic/m/internal/store"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Operators manages the staff accounts that sign in to the clinic API.
type Operators struct {
	base
}

func NewOperators(gw *store.Gateway) *Operators {
	return &Operators{base: newBase(gw, nil)}
}

// Register creates an operator. The very first operator is always an
// admin, whatever role was requested.
func (s *Operators) Register(ctx context.Context, username, password, role string) (domain.Operator, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return domain.Operator{}, invalid("username", "Username and password are required.")
	}
	if role == "" {
		role = domain.RoleStaff
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return domain.Operator{}, invalid("role", "Role must be admin or staff.")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Operator{}, err
	}

	op := domain.Operator{Username: username, PasswordHash: string(hashed), Role: role}
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		n, err := tx.CountOperators(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			op.Role = domain.RoleAdmin
		}
		return tx.InsertOperator(ctx, &op)
	})
	if err != nil {
		return domain.Operator{}, err
	}
	return op, nil
}

func (s *Operators) Authenticate(ctx context.Context, username, password string) (domain.Operator, error) {
	var op domain.Operator
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		op, err = tx.OperatorByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Operator{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Operator{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return domain.Operator{}, ErrInvalidCredentials
	}
	return op, nil
}

func (s *Operators) ResetPassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return invalid("new_password", "New password is required.")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.gw.Scope(ctx, func(tx *store.Tx) error {
		return tx.UpdateOperatorPassword(ctx, id, string(hashed))
	})
}

// Bootstrapped reports whether any operator exists yet.
func (s *Operators) Bootstrapped(ctx context.Context) (bool, error) {
	var n int64
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		n, err = tx.CountOperators(ctx)
		return err
	})
	return n > 0, err
}
