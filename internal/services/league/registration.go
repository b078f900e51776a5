package league

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/mcoot/apl-auction/internal/model"
)

// MinNameLength is the shortest accepted player name
const MinNameLength = 2

// PhoneDigits is the length of an accepted phone number
const PhoneDigits = 10

// Registration is the data a player submits to join the league
type Registration struct {
	Name     string
	Email    string
	Phone    string
	Mandal   string
	ImageURL string
	Ratings  model.Ratings
	Stats    model.Stats
}

// Normalize trims the free-text fields and reduces the phone number to digits
func (r Registration) Normalize() Registration {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Mandal = strings.TrimSpace(r.Mandal)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Phone = strings.Map(func(c rune) rune {
		switch c {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return c
	}, r.Phone)
	return r
}

// Validate checks a normalized registration. Failures wrap model.ErrInvalidPlayer.
func (r Registration) Validate() error {
	if len([]rune(r.Name)) < MinNameLength {
		return fmt.Errorf("%w: name must be at least %d characters", model.ErrInvalidPlayer, MinNameLength)
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return fmt.Errorf("%w: invalid email address %q", model.ErrInvalidPlayer, r.Email)
	}
	if len(r.Phone) != PhoneDigits || strings.IndexFunc(r.Phone, func(c rune) bool { return c < '0' || c > '9' }) >= 0 {
		return fmt.Errorf("%w: phone must be %d digits", model.ErrInvalidPlayer, PhoneDigits)
	}
	if !r.Ratings.Valid() {
		return fmt.Errorf("%w: ratings must be between %d and %d", model.ErrInvalidPlayer, model.MinRating, model.MaxRating)
	}
	st := r.Stats
	if st.Matches < 0 || st.Runs < 0 || st.StrikeRate < 0 || st.Wickets < 0 || st.Dismissals < 0 || st.Catches < 0 {
		return fmt.Errorf("%w: stats cannot be negative", model.ErrInvalidPlayer)
	}
	return nil
}
