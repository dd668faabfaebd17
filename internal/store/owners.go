package store

import (
	"context"
	"strings"

	"vetclinic/m/domain"
)

const ownerColumns = `id, name, phone_number, email, address`

func (t *Tx) InsertOwner(ctx context.Context, o *domain.Owner) error {
	id, err := t.insert(ctx, "insert owner",
		`INSERT INTO owners (name, phone_number, email, address) VALUES (?, ?, ?, ?)`,
		o.Name, o.PhoneNumber, o.Email, o.Address)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

// OwnerByPhone matches the phone number exactly.
func (t *Tx) OwnerByPhone(ctx context.Context, phone string) (domain.Owner, error) {
	var o domain.Owner
	err := t.get(ctx, "owner by phone", &o, `SELECT `+ownerColumns+` FROM owners WHERE phone_number = ?`, phone)
	return o, err
}

func (t *Tx) OwnerByID(ctx context.Context, id int64) (domain.Owner, error) {
	var o domain.Owner
	err := t.get(ctx, "owner by id", &o, `SELECT `+ownerColumns+` FROM owners WHERE id = ?`, id)
	return o, err
}

func (t *Tx) UpdateOwner(ctx context.Context, o domain.Owner) error {
	return t.exec(ctx, "update owner",
		`UPDATE owners SET name = ?, phone_number = ?, email = ?, address = ? WHERE id = ?`,
		o.Name, o.PhoneNumber, o.Email, o.Address, o.ID)
}

// DeleteOwner removes the owner; pets, their vaccines and the owner's
// appointments go with it through ON DELETE CASCADE.
func (t *Tx) DeleteOwner(ctx context.Context, id int64) error {
	return t.exec(ctx, "delete owner", `DELETE FROM owners WHERE id = ?`, id)
}

// SearchOwners matches owner name, phone or any pet name, ignoring case. An
// empty query lists every owner.
func (t *Tx) SearchOwners(ctx context.Context, query string) ([]domain.Owner, error) {
	owners := []domain.Owner{}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := t.list(ctx, "search owners", &owners,
		`SELECT DISTINCT o.id, o.name, o.phone_number, o.email, o.address
                FROM owners o
                LEFT JOIN pets p ON p.owner_id = o.id
                WHERE LOWER(o.name) LIKE ? OR o.phone_number LIKE ? OR LOWER(p.name) LIKE ?
                ORDER BY o.name, o.id`, pattern, pattern, pattern)
	return owners, err
}

func (t *Tx) CountOwners(ctx context.Context) (int64, error) {
	return t.count(ctx, "count owners", `SELECT COUNT(*) FROM owners`)
}
