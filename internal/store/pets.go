package store

import (
	"context"

	"vetclinic/m/domain"
)

const petColumns = `id, owner_id, name, species, gender, age_months, weight`

func (t *Tx) InsertPet(ctx context.Context, p *domain.Pet) error {
	id, err := t.insert(ctx, "insert pet",
		`INSERT INTO pets (owner_id, name, species, gender, age_months, weight) VALUES (?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.Name, p.Species, p.Gender, p.AgeMonths, p.Weight)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (t *Tx) PetByID(ctx context.Context, id int64) (domain.Pet, error) {
	var p domain.Pet
	err := t.get(ctx, "pet by id", &p, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id)
	return p, err
}

// PetByOwnerAndName compares names case-insensitively.
func (t *Tx) PetByOwnerAndName(ctx context.Context, ownerID int64, name string) (domain.Pet, error) {
	var p domain.Pet
	err := t.get(ctx, "pet by name", &p,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = ? AND LOWER(name) = LOWER(?)`, ownerID, name)
	return p, err
}

func (t *Tx) PetsByOwner(ctx context.Context, ownerID int64) ([]domain.Pet, error) {
	pets := []domain.Pet{}
	err := t.list(ctx, "pets by owner", &pets,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = ? ORDER BY id`, ownerID)
	return pets, err
}

func (t *Tx) UpdatePet(ctx context.Context, p domain.Pet) error {
	return t.exec(ctx, "update pet",
		`UPDATE pets SET name = ?, species = ?, gender = ?, age_months = ?, weight = ? WHERE id = ?`,
		p.Name, p.Species, p.Gender, p.AgeMonths, p.Weight, p.ID)
}

func (t *Tx) DeletePet(ctx context.Context, id int64) error {
	return t.exec(ctx, "delete pet", `DELETE FROM pets WHERE id = ?`, id)
}

const vaccineEntryQuery = `SELECT v.id, v.pet_id, v.vaccine_type, v.vaccine_date, v.next_vaccine_date,
                p.name AS pet_name, p.species, o.name AS owner_name, o.phone_number AS owner_phone
                FROM vaccines v
                JOIN pets p ON p.id = v.pet_id
                JOIN owners o ON o.id = p.owner_id`

func (t *Tx) InsertVaccine(ctx context.Context, v *domain.Vaccine) error {
	id, err := t.insert(ctx, "insert vaccine",
		`INSERT INTO vaccines (pet_id, vaccine_type, vaccine_date, next_vaccine_date) VALUES (?, ?, ?, ?)`,
		v.PetID, v.VaccineType, v.VaccineDate, v.NextVaccineDate)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

func (t *Tx) VaccinesByPet(ctx context.Context, petID int64) ([]domain.Vaccine, error) {
	vaccines := []domain.Vaccine{}
	err := t.list(ctx, "vaccines by pet", &vaccines,
		`SELECT id, pet_id, vaccine_type, vaccine_date, next_vaccine_date FROM vaccines
                WHERE pet_id = ? ORDER BY vaccine_date, id`, petID)
	return vaccines, err
}

func (t *Tx) DeleteVaccine(ctx context.Context, id int64) error {
	return t.exec(ctx, "delete vaccine", `DELETE FROM vaccines WHERE id = ?`, id)
}

// VaccinesDueOn returns vaccines whose next dose falls on day.
func (t *Tx) VaccinesDueOn(ctx context.Context, day domain.Date) ([]domain.VaccineEntry, error) {
	entries := []domain.VaccineEntry{}
	err := t.list(ctx, "vaccines due", &entries,
		vaccineEntryQuery+` WHERE v.next_vaccine_date = ? ORDER BY o.name, p.name`, day)
	return entries, err
}

// VaccineCalendar lists every administered vaccine, most recent first.
func (t *Tx) VaccineCalendar(ctx context.Context) ([]domain.VaccineEntry, error) {
	entries := []domain.VaccineEntry{}
	err := t.list(ctx, "vaccine calendar", &entries,
		vaccineEntryQuery+` ORDER BY v.vaccine_date DESC, v.id DESC`)
	return entries, err
}
