package domain

import (
	"time"

	"github.com/google/uuid"
)

type Passenger struct {
	ID             uuid.UUID
	Name           string
	Surname        string
	MiddleName     string
	DocumentNumber string
	IssuingCountry string
	BirthDate      time.Time
	Gender         string
	Phone          string
	Email          string
}

// SamePerson reports whether the personal fields of two passenger records agree.
// Contact details (phone, email) are not part of the identity.
func (p *Passenger) SamePerson(other *Passenger) bool {
	return p.Name == other.Name &&
		p.Surname == other.Surname &&
		p.MiddleName == other.MiddleName &&
		p.IssuingCountry == other.IssuingCountry &&
		p.Gender == other.Gender &&
		sameDay(p.BirthDate, other.BirthDate)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
