package store

import (
	"context"

	"vetclinic/m/domain"
)

const appointmentQuery = `SELECT a.id, a.owner_id, a.pet_id, a.scheduled_at, a.purpose, a.notes,
                o.name AS owner_name, o.phone_number AS owner_phone, p.name AS pet_name
                FROM appointments a
                JOIN owners o ON o.id = a.owner_id
                LEFT JOIN pets p ON p.id = a.pet_id`

func (t *Tx) InsertAppointment(ctx context.Context, a *domain.Appointment) error {
	id, err := t.insert(ctx, "insert appointment",
		`INSERT INTO appointments (owner_id, pet_id, scheduled_at, purpose, notes) VALUES (?, ?, ?, ?, ?)`,
		a.OwnerID, a.PetID, a.ScheduledAt, a.Purpose, a.Notes)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (t *Tx) AppointmentByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	err := t.get(ctx, "appointment by id", &a, appointmentQuery+` WHERE a.id = ?`, id)
	return a, err
}

// ListAppointments returns appointments in schedule order. Several may share
// the same time.
func (t *Tx) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	appointments := []domain.Appointment{}
	err := t.list(ctx, "list appointments", &appointments, appointmentQuery+` ORDER BY a.scheduled_at, a.id`)
	return appointments, err
}

func (t *Tx) UpdateAppointment(ctx context.Context, a domain.Appointment) error {
	return t.exec(ctx, "update appointment",
		`UPDATE appointments SET owner_id = ?, pet_id = ?, scheduled_at = ?, purpose = ?, notes = ? WHERE id = ?`,
		a.OwnerID, a.PetID, a.ScheduledAt, a.Purpose, a.Notes, a.ID)
}

func (t *Tx) DeleteAppointment(ctx context.Context, id int64) error {
	return t.exec(ctx, "delete appointment", `DELETE FROM appointments WHERE id = ?`, id)
}

func (t *Tx) CountAppointmentsFrom(ctx context.Context, from domain.DateTime) (int64, error) {
	return t.count(ctx, "count appointments", `SELECT COUNT(*) FROM appointments WHERE scheduled_at >= ?`, from)
}
