package store

import (
	"context"

	"vetclinic/m/domain"
)

func (t *Tx) InsertOperator(ctx context.Context, op *domain.Operator) error {
	id, err := t.insert(ctx, "insert operator",
		`INSERT INTO operators (username, password_hash, role) VALUES (?, ?, ?)`,
		op.Username, op.PasswordHash, op.Role)
	if err != nil {
		return err
	}
	op.ID = id
	return nil
}

func (t *Tx) OperatorByUsername(ctx context.Context, username string) (domain.Operator, error) {
	var op domain.Operator
	err := t.get(ctx, "operator by username", &op,
		`SELECT id, username, password_hash, role, created_at FROM operators WHERE username = ?`, username)
	return op, err
}

func (t *Tx) UpdateOperatorPassword(ctx context.Context, id int64, hash string) error {
	return t.exec(ctx, "update operator password", `UPDATE operators SET password_hash = ? WHERE id = ?`, hash, id)
}

func (t *Tx) CountOperators(ctx context.Context) (int64, error) {
	return t.count(ctx, "count operators", `SELECT COUNT(*) FROM operators`)
}
