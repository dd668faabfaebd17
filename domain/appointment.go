package domain

type Appointment struct {
	ID          int64    `db:"id" json:"id"`
	OwnerID     int64    `db:"owner_id" json:"owner_id"`
	PetID       *int64   `db:"pet_id" json:"pet_id,omitempty"`
	ScheduledAt DateTime `db:"scheduled_at" json:"scheduled_at"`
	Purpose     string   `db:"purpose" json:"purpose"`
	Notes       string   `db:"notes" json:"notes,omitempty"`
	OwnerName   string   `db:"owner_name" json:"owner_name,omitempty"`
	OwnerPhone  string   `db:"owner_phone" json:"owner_phone,omitempty"`
	PetName     *string  `db:"pet_name" json:"pet_name,omitempty"`
}
