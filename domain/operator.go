package domain

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type Operator struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
	CreatedAt    string `json:"created_at,omitempty" db:"created_at"`
}
