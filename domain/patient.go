package domain

type Owner struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
	Email       string `db:"email" json:"email,omitempty"`
	Address     string `db:"address" json:"address,omitempty"`
	Pets        []Pet  `db:"-" json:"pets,omitempty"`
}

type Pet struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Species   string    `db:"species" json:"species"`
	Gender    string    `db:"gender" json:"gender"`
	AgeMonths int       `db:"age_months" json:"age_months"`
	Weight    float64   `db:"weight" json:"weight"`
	Vaccines  []Vaccine `db:"-" json:"vaccines,omitempty"`
}

type Vaccine struct {
	ID              int64  `db:"id" json:"id"`
	PetID           int64  `db:"pet_id" json:"pet_id"`
	VaccineType     string `db:"vaccine_type" json:"vaccine_type"`
	VaccineDate     Date   `db:"vaccine_date" json:"vaccine_date"`
	NextVaccineDate *Date  `db:"next_vaccine_date" json:"next_vaccine_date,omitempty"`
}

// VaccineEntry is a vaccine row joined with the names needed to display it
// in calendars and reminders.
type VaccineEntry struct {
	Vaccine
	PetName    string `db:"pet_name" json:"pet_name"`
	Species    string `db:"species" json:"species"`
	OwnerName  string `db:"owner_name" json:"owner_name"`
	OwnerPhone string `db:"owner_phone" json:"owner_phone"`
}
