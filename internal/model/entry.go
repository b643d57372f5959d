package model

import "time"

// Entry is one logged consumption event.
//
// THCmg is derived: computed from the dose inputs at create/update time and
// never accepted from a client. Amount and Puffs keep the raw wire text the
// client sent (existing clients send them as either numbers or strings), so
// the stored record round-trips exactly; the parsed values only feed the dose
// estimate. Timestamp is assembled from the user-supplied Date and Time and
// drives ordering and the 7-day stats window.
type Entry struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	THCmg     float64   `json:"thc_mg"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // HH:MM

	Method     string   `json:"method"`
	Amount     string   `json:"amount,omitempty"`      // edible/tincture dose, already in mg
	Puffs      string   `json:"puffs,omitempty"`       // vape/smoke puff count
	THCPercent *float64 `json:"thc_percent,omitempty"` // vape/smoke potency
	Strain     string   `json:"strain,omitempty"`

	// Subjective effect ratings on a 0-10 scale.
	Mood       int `json:"mood"`
	Energy     int `json:"energy"`
	Focus      int `json:"focus"`
	Creativity int `json:"creativity"`
	Anxiety    int `json:"anxiety"`

	Activities []string `json:"activities"`
	Notes      string   `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryUpdate is a partial update. Nil means "leave unchanged"; zero values
// are legitimate updates (mood 0, puffs "0"), so presence has to be explicit.
type EntryUpdate struct {
	Date       *string
	Time       *string
	Method     *string
	Amount     *string
	Puffs      *string
	THCPercent *string // raw wire text, same as Puffs and Amount
	Strain     *string
	Mood       *int
	Energy     *int
	Focus      *int
	Creativity *int
	Anxiety    *int
	Activities *[]string
	Notes      *string
}

// TouchesDose reports whether the update carries any dose-relevant field,
// i.e. whether the stored THCmg must be recomputed.
func (u *EntryUpdate) TouchesDose() bool {
	return u.Method != nil || u.Amount != nil || u.Puffs != nil || u.THCPercent != nil
}
