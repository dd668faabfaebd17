package clinic

import (
	"context"
	"strings"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

// AppointmentInput books a visit for the owner with OwnerPhone. PetName is
// optional; when given it must name one of that owner's pets.
type AppointmentInput struct {
	OwnerPhone  string          `json:"owner_phone"`
	PetName     string          `json:"pet_name"`
	ScheduledAt domain.DateTime `json:"scheduled_at"`
	Purpose     string          `json:"purpose"`
	Notes       string          `json:"notes"`
}

type Appointments struct {
	base
}

func NewAppointments(gw *store.Gateway, hub Notifier) *Appointments {
	return &Appointments{base: newBase(gw, hub)}
}

func validateAppointment(in AppointmentInput) (AppointmentInput, error) {
	in.OwnerPhone = strings.TrimSpace(in.OwnerPhone)
	in.PetName = strings.TrimSpace(in.PetName)
	in.Purpose = strings.TrimSpace(in.Purpose)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.OwnerPhone == "" {
		return in, invalid("owner_phone", "Owner phone is required.")
	}
	if in.ScheduledAt.IsZero() {
		return in, invalid("scheduled_at", "Appointment time is required.")
	}
	if in.Purpose == "" {
		return in, invalid("purpose", "Purpose is required.")
	}
	return in, nil
}

// resolve turns the form's phone and pet name into ids.
func resolve(ctx context.Context, tx *store.Tx, in AppointmentInput) (domain.Appointment, error) {
	owner, err := tx.OwnerByPhone(ctx, in.OwnerPhone)
	if err != nil {
		return domain.Appointment{}, err
	}
	a := domain.Appointment{
		OwnerID:     owner.ID,
		ScheduledAt: in.ScheduledAt,
		Purpose:     in.Purpose,
		Notes:       in.Notes,
	}
	if in.PetName != "" {
		pet, err := tx.PetByOwnerAndName(ctx, owner.ID, in.PetName)
		if err != nil {
			return domain.Appointment{}, err
		}
		a.PetID = &pet.ID
	}
	return a, nil
}

// Schedule books an appointment. Overlapping appointments are allowed.
func (s *Appointments) Schedule(ctx context.Context, in AppointmentInput) (domain.Appointment, error) {
	in, err := validateAppointment(in)
	if err != nil {
		return domain.Appointment{}, err
	}
	var out domain.Appointment
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		a, err := resolve(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := tx.InsertAppointment(ctx, &a); err != nil {
			return err
		}
		out, err = tx.AppointmentByID(ctx, a.ID)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	s.publish(ctx, notify.TopicAppointments)
	return out, nil
}

func (s *Appointments) Update(ctx context.Context, id int64, in AppointmentInput) (domain.Appointment, error) {
	in, err := validateAppointment(in)
	if err != nil {
		return domain.Appointment{}, err
	}
	var out domain.Appointment
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		a, err := resolve(ctx, tx, in)
		if err != nil {
			return err
		}
		a.ID = id
		if err := tx.UpdateAppointment(ctx, a); err != nil {
			return err
		}
		out, err = tx.AppointmentByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	s.publish(ctx, notify.TopicAppointments)
	return out, nil
}

func (s *Appointments) Delete(ctx context.Context, id int64) error {
	if err := s.gw.Scope(ctx, func(tx *store.Tx) error { return tx.DeleteAppointment(ctx, id) }); err != nil {
		return err
	}
	s.publish(ctx, notify.TopicAppointments)
	return nil
}

func (s *Appointments) Get(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		a, err = tx.AppointmentByID(ctx, id)
		return err
	})
	return a, err
}

func (s *Appointments) List(ctx context.Context) ([]domain.Appointment, error) {
	var list []domain.Appointment
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		list, err = tx.ListAppointments(ctx)
		return err
	})
	return list, err
}
