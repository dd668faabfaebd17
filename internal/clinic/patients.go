package clinic

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

var phonePattern = regexp.MustCompile(`^\+?\d{8,15}$`)

type OwnerInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

type PetInput struct {
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Gender    string  `json:"gender"`
	AgeMonths int     `json:"age_months"`
	Weight    float64 `json:"weight"`
}

// VaccineInput describes a dose being recorded. A zero VaccineDate means
// today; NextIn is one of the DueOffset codes or form labels.
type VaccineInput struct {
	VaccineType string      `json:"vaccine_type"`
	VaccineDate domain.Date `json:"vaccine_date"`
	NextIn      string      `json:"next_in"`
}

// Registration is the intake form: an owner found or created by phone, a new
// pet and its first vaccines.
type Registration struct {
	Owner    OwnerInput     `json:"owner"`
	Pet      PetInput       `json:"pet"`
	Vaccines []VaccineInput `json:"vaccines"`
}

// RecordUpdate overwrites the owner's contact details and the pet's fields
// and appends NewVaccines.
type RecordUpdate struct {
	Owner       OwnerInput     `json:"owner"`
	Pet         PetInput       `json:"pet"`
	NewVaccines []VaccineInput `json:"new_vaccines"`
}

type Patients struct {
	base
}

func NewPatients(gw *store.Gateway, hub Notifier) *Patients {
	return &Patients{base: newBase(gw, hub)}
}

func ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return "", invalid("phone_number", "Invalid phone number format.")
	}
	return phone, nil
}

func validatePet(in PetInput) (PetInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	in.Gender = strings.TrimSpace(in.Gender)
	if in.Name == "" {
		return in, invalid("pet.name", "Pet name is required.")
	}
	if in.AgeMonths < 0 {
		return in, invalid("pet.age_months", "Age must be a non-negative number of months.")
	}
	if in.Weight <= 0 {
		return in, invalid("pet.weight", "Weight must be a positive number.")
	}
	return in, nil
}

func (s *Patients) buildVaccines(inputs []VaccineInput) ([]domain.Vaccine, error) {
	out := make([]domain.Vaccine, 0, len(inputs))
	for i, in := range inputs {
		vt := strings.TrimSpace(in.VaccineType)
		if vt == "" {
			return nil, invalid(fmt.Sprintf("vaccines[%d].vaccine_type", i), "Vaccine type is required.")
		}
		offset, ok := ParseDueOffset(in.NextIn)
		if !ok {
			return nil, invalid(fmt.Sprintf("vaccines[%d].next_in", i), "Unknown next vaccine interval.")
		}
		day := in.VaccineDate
		if day.IsZero() {
			day = s.today()
		}
		out = append(out, domain.Vaccine{VaccineType: vt, VaccineDate: day, NextVaccineDate: NextDue(day, offset)})
	}
	return out, nil
}

// Register stores the owner (when new), the pet and its vaccines in one
// scope: either all of them are saved or none is.
func (s *Patients) Register(ctx context.Context, reg Registration) (domain.Owner, error) {
	phone, err := ValidatePhone(reg.Owner.PhoneNumber)
	if err != nil {
		return domain.Owner{}, err
	}
	petIn, err := validatePet(reg.Pet)
	if err != nil {
		return domain.Owner{}, err
	}
	vaccines, err := s.buildVaccines(reg.Vaccines)
	if err != nil {
		return domain.Owner{}, err
	}

	var owner domain.Owner
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		owner, err = tx.OwnerByPhone(ctx, phone)
		switch {
		case errors.Is(err, store.ErrNotFound):
			name := strings.TrimSpace(reg.Owner.Name)
			if name == "" {
				return invalid("owner.name", "Owner name is required for new owners.")
			}
			owner = domain.Owner{
				Name:        name,
				PhoneNumber: phone,
				Email:       strings.TrimSpace(reg.Owner.Email),
				Address:     strings.TrimSpace(reg.Owner.Address),
			}
			if err := tx.InsertOwner(ctx, &owner); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if _, err := tx.PetByOwnerAndName(ctx, owner.ID, petIn.Name); err == nil {
			return invalid("pet.name", "A pet with this name already exists for this owner.")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		pet := domain.Pet{
			OwnerID:   owner.ID,
			Name:      petIn.Name,
			Species:   petIn.Species,
			Gender:    petIn.Gender,
			AgeMonths: petIn.AgeMonths,
			Weight:    petIn.Weight,
		}
		if err := tx.InsertPet(ctx, &pet); err != nil {
			return err
		}
		for i := range vaccines {
			vaccines[i].PetID = pet.ID
			if err := tx.InsertVaccine(ctx, &vaccines[i]); err != nil {
				return err
			}
		}
		return s.loadPets(ctx, tx, &owner)
	})
	if err != nil {
		return domain.Owner{}, err
	}
	s.publish(ctx, notify.TopicPatients)
	return owner, nil
}

func (s *Patients) loadPets(ctx context.Context, tx *store.Tx, owner *domain.Owner) error {
	pets, err := tx.PetsByOwner(ctx, owner.ID)
	if err != nil {
		return err
	}
	for i := range pets {
		if pets[i].Vaccines, err = tx.VaccinesByPet(ctx, pets[i].ID); err != nil {
			return err
		}
	}
	owner.Pets = pets
	return nil
}

// OwnerByPhone looks the owner up by the exact phone string, with pets.
func (s *Patients) OwnerByPhone(ctx context.Context, phone string) (domain.Owner, error) {
	var owner domain.Owner
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		if owner, err = tx.OwnerByPhone(ctx, strings.TrimSpace(phone)); err != nil {
			return err
		}
		return s.loadPets(ctx, tx, &owner)
	})
	return owner, err
}

func (s *Patients) Owner(ctx context.Context, id int64) (domain.Owner, error) {
	var owner domain.Owner
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		if owner, err = tx.OwnerByID(ctx, id); err != nil {
			return err
		}
		return s.loadPets(ctx, tx, &owner)
	})
	return owner, err
}

// Search matches owner name, phone or pet name and returns owners with
// their pets and vaccines.
func (s *Patients) Search(ctx context.Context, query string) ([]domain.Owner, error) {
	var owners []domain.Owner
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		if owners, err = tx.SearchOwners(ctx, query); err != nil {
			return err
		}
		for i := range owners {
			if err := s.loadPets(ctx, tx, &owners[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return owners, err
}

func (s *Patients) UpdateOwner(ctx context.Context, id int64, in OwnerInput) (domain.Owner, error) {
	owner, err := s.ownerFromInput(in)
	if err != nil {
		return domain.Owner{}, err
	}
	owner.ID = id
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		if err := tx.UpdateOwner(ctx, owner); err != nil {
			return err
		}
		return s.loadPets(ctx, tx, &owner)
	})
	if err != nil {
		return domain.Owner{}, err
	}
	s.publish(ctx, notify.TopicPatients)
	return owner, nil
}

func (s *Patients) ownerFromInput(in OwnerInput) (domain.Owner, error) {
	phone, err := ValidatePhone(in.PhoneNumber)
	if err != nil {
		return domain.Owner{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Owner{}, invalid("owner.name", "Owner name is required.")
	}
	return domain.Owner{
		Name:        name,
		PhoneNumber: phone,
		Email:       strings.TrimSpace(in.Email),
		Address:     strings.TrimSpace(in.Address),
	}, nil
}

// UpdateRecord applies the modify form for one pet: its owner's details,
// the pet's fields and any newly administered vaccines, in one scope.
func (s *Patients) UpdateRecord(ctx context.Context, petID int64, upd RecordUpdate) (domain.Owner, error) {
	ownerIn, err := s.ownerFromInput(upd.Owner)
	if err != nil {
		return domain.Owner{}, err
	}
	petIn, err := validatePet(upd.Pet)
	if err != nil {
		return domain.Owner{}, err
	}
	vaccines, err := s.buildVaccines(upd.NewVaccines)
	if err != nil {
		return domain.Owner{}, err
	}

	var owner domain.Owner
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		pet, err := tx.PetByID(ctx, petID)
		if err != nil {
			return err
		}
		if other, err := tx.PetByOwnerAndName(ctx, pet.OwnerID, petIn.Name); err == nil && other.ID != pet.ID {
			return invalid("pet.name", "A pet with this name already exists for this owner.")
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		owner = ownerIn
		owner.ID = pet.OwnerID
		if err := tx.UpdateOwner(ctx, owner); err != nil {
			return err
		}
		pet.Name, pet.Species, pet.Gender = petIn.Name, petIn.Species, petIn.Gender
		pet.AgeMonths, pet.Weight = petIn.AgeMonths, petIn.Weight
		if err := tx.UpdatePet(ctx, pet); err != nil {
			return err
		}
		for i := range vaccines {
			vaccines[i].PetID = pet.ID
			if err := tx.InsertVaccine(ctx, &vaccines[i]); err != nil {
				return err
			}
		}
		return s.loadPets(ctx, tx, &owner)
	})
	if err != nil {
		return domain.Owner{}, err
	}
	s.publish(ctx, notify.TopicPatients)
	return owner, nil
}

func (s *Patients) AddVaccine(ctx context.Context, petID int64, in VaccineInput) (domain.Vaccine, error) {
	vaccines, err := s.buildVaccines([]VaccineInput{in})
	if err != nil {
		return domain.Vaccine{}, err
	}
	v := vaccines[0]
	v.PetID = petID
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		if _, err := tx.PetByID(ctx, petID); err != nil {
			return err
		}
		return tx.InsertVaccine(ctx, &v)
	})
	if err != nil {
		return domain.Vaccine{}, err
	}
	s.publish(ctx, notify.TopicPatients)
	return v, nil
}

// DeleteOwner removes the owner with all pets, vaccines and appointments.
func (s *Patients) DeleteOwner(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(tx *store.Tx) error { return tx.DeleteOwner(ctx, id) })
}

// DeletePet removes the pet and its vaccines.
func (s *Patients) DeletePet(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(tx *store.Tx) error { return tx.DeletePet(ctx, id) })
}

func (s *Patients) DeleteVaccine(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(tx *store.Tx) error { return tx.DeleteVaccine(ctx, id) })
}

func (s *Patients) mutate(ctx context.Context, fn func(tx *store.Tx) error) error {
	if err := s.gw.Scope(ctx, fn); err != nil {
		return err
	}
	s.publish(ctx, notify.TopicPatients)
	return nil
}

func (s *Patients) VaccineCalendar(ctx context.Context) ([]domain.VaccineEntry, error) {
	var entries []domain.VaccineEntry
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		entries, err = tx.VaccineCalendar(ctx)
		return err
	})
	return entries, err
}
