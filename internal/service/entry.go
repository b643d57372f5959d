// Package service contains the business logic layer.
//
// Handlers parse HTTP and shape responses; services validate and enforce the
// domain rules; repositories move rows. Services receive repository
// interfaces, never concrete stores, so the same logic runs against sqlite
// in production and the memory store in tests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/nadirh/cannalog/internal/apperror"
	"github.com/nadirh/cannalog/internal/dose"
	"github.com/nadirh/cannalog/internal/model"
	"github.com/nadirh/cannalog/internal/repository"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500

	// statsWindow is the trailing window the aggregate figures cover.
	statsWindow = 7 * 24 * time.Hour
)

// defaultRating is the assumed value for unrated positive effects;
// anxiety defaults to 0 instead.
const defaultRating = 5

// EntryService handles business logic for consumption entries.
type EntryService struct {
	repo   repository.EntryRepository
	logger *slog.Logger

	// now is swappable in tests so the stats window is deterministic.
	now func() time.Time
}

// NewEntryService creates an EntryService.
func NewEntryService(repo repository.EntryRepository, logger *slog.Logger) *EntryService {
	return &EntryService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// EntryInput carries the client-supplied fields for a new entry. Amount,
// Puffs and THCPercent are raw wire text (clients send numbers and strings
// interchangeably); empty string means "not provided". Nil ratings take the
// defaults. The derived thc_mg is never part of the input.
type EntryInput struct {
	Date       string
	Time       string
	Method     string
	Amount     string
	Puffs      string
	THCPercent string
	Strain     string
	Mood       *int
	Energy     *int
	Focus      *int
	Creativity *int
	Anxiety    *int
	Activities []string
	Notes      string
}

// Create validates the input, assembles the event timestamp, computes the
// dose estimate, and persists the entry.
func (s *EntryService) Create(ctx context.Context, userID int64, in EntryInput) (*model.Entry, error) {
	timestamp, err := parseTimestamp(in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = dose.MethodVape
	}

	thcPercent, err := parsePercent(in.THCPercent)
	if err != nil {
		return nil, err
	}

	thcMg, err := estimateDose(method, in.Puffs, in.Amount, thcPercent)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		UserID:     userID,
		THCmg:      thcMg,
		Timestamp:  timestamp,
		Date:       strings.TrimSpace(in.Date),
		Time:       strings.TrimSpace(in.Time),
		Method:     method,
		Amount:     strings.TrimSpace(in.Amount),
		Puffs:      strings.TrimSpace(in.Puffs),
		THCPercent: thcPercent,
		Strain:     strings.TrimSpace(in.Strain),
		Mood:       ratingOrDefault(in.Mood, defaultRating),
		Energy:     ratingOrDefault(in.Energy, defaultRating),
		Focus:      ratingOrDefault(in.Focus, defaultRating),
		Creativity: ratingOrDefault(in.Creativity, defaultRating),
		Anxiety:    ratingOrDefault(in.Anxiety, 0),
		Activities: in.Activities,
		Notes:      in.Notes,
	}
	if entry.Activities == nil {
		entry.Activities = []string{}
	}

	if err := validateRatings(entry); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		s.logger.Error("failed to create entry",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	s.logger.Info("entry created",
		slog.Int64("id", entry.ID),
		slog.Int64("userID", userID),
		slog.String("method", entry.Method),
		slog.Float64("thcMg", entry.THCmg),
	)

	return entry, nil
}

// Get retrieves one of the caller's entries.
func (s *EntryService) Get(ctx context.Context, userID, id int64) (*model.Entry, error) {
	return s.repo.GetEntry(ctx, id, userID)
}

// List returns the caller's entries newest-first. limit is clamped; skip
// below zero is treated as zero.
func (s *EntryService) List(ctx context.Context, userID int64, skip, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if skip < 0 {
		skip = 0
	}

	entries, err := s.repo.ListEntries(ctx, userID, repository.ListOptions{
		Limit:  limit,
		Offset: skip,
	})
	if err != nil {
		s.logger.Error("failed to list entries",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return entries, nil
}

// Update applies a partial update to one of the caller's entries.
//
// Presence, not truthiness, decides what changes: a field present in the update,
// even a zero value, is applied, an absent field is left alone. The stored
// thc_mg is recomputed only when a dose-relevant field (method, amount,
// puffs, thc_percent) is present, and the timestamp only when date or time
// is.
func (s *EntryService) Update(ctx context.Context, userID, id int64, upd model.EntryUpdate) (*model.Entry, error) {
	entry, err := s.repo.GetEntry(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if upd.Date != nil {
		entry.Date = strings.TrimSpace(*upd.Date)
	}
	if upd.Time != nil {
		entry.Time = strings.TrimSpace(*upd.Time)
	}
	if upd.Date != nil || upd.Time != nil {
		timestamp, err := parseTimestamp(entry.Date, entry.Time)
		if err != nil {
			return nil, err
		}
		entry.Timestamp = timestamp
	}

	if upd.Method != nil {
		method := strings.TrimSpace(*upd.Method)
		if method == "" {
			return nil, apperror.ValidationFailed("method", "method must not be empty")
		}
		entry.Method = method
	}
	if upd.Amount != nil {
		entry.Amount = strings.TrimSpace(*upd.Amount)
	}
	if upd.Puffs != nil {
		entry.Puffs = strings.TrimSpace(*upd.Puffs)
	}
	if upd.THCPercent != nil {
		thcPercent, err := parsePercent(*upd.THCPercent)
		if err != nil {
			return nil, err
		}
		entry.THCPercent = thcPercent
	}

	if upd.TouchesDose() {
		thcMg, err := estimateDose(entry.Method, entry.Puffs, entry.Amount, entry.THCPercent)
		if err != nil {
			return nil, err
		}
		entry.THCmg = thcMg
	}

	if upd.Strain != nil {
		entry.Strain = strings.TrimSpace(*upd.Strain)
	}
	if upd.Mood != nil {
		entry.Mood = *upd.Mood
	}
	if upd.Energy != nil {
		entry.Energy = *upd.Energy
	}
	if upd.Focus != nil {
		entry.Focus = *upd.Focus
	}
	if upd.Creativity != nil {
		entry.Creativity = *upd.Creativity
	}
	if upd.Anxiety != nil {
		entry.Anxiety = *upd.Anxiety
	}
	if upd.Activities != nil {
		entry.Activities = *upd.Activities
		if entry.Activities == nil {
			entry.Activities = []string{}
		}
	}
	if upd.Notes != nil {
		entry.Notes = *upd.Notes
	}

	if err := validateRatings(entry); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("entry updated",
		slog.Int64("id", entry.ID),
		slog.Int64("userID", userID),
	)

	return entry, nil
}

// Delete removes one of the caller's entries.
func (s *EntryService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteEntry(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("entry deleted",
		slog.Int64("id", id),
		slog.Int64("userID", userID),
	)
	return nil
}

// Stats summarizes the caller's entries over the trailing 7 days.
type Stats struct {
	WeeklyTotal   float64 `json:"weekly_total"`
	DailyAvg      float64 `json:"daily_avg"`
	AvgMood       float64 `json:"avg_mood"`
	TotalSessions int     `json:"total_sessions"`
}

// Stats computes the rolling summary figures.
//
// daily_avg is weekly_total / 7 by definition: a fixed-window average, not
// a per-active-day one, regardless of how many sessions fall in the window.
// An empty window yields all zeros. Figures are rounded to one decimal for
// display.
func (s *EntryService) Stats(ctx context.Context, userID int64) (*Stats, error) {
	since := s.now().UTC().Add(-statsWindow)

	entries, err := s.repo.ListEntriesSince(ctx, userID, since)
	if err != nil {
		s.logger.Error("failed to load entries for stats",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	if len(entries) == 0 {
		return &Stats{}, nil
	}

	var totalTHC, totalMood float64
	for _, e := range entries {
		totalTHC += e.THCmg
		totalMood += float64(e.Mood)
	}

	return &Stats{
		WeeklyTotal:   round1(totalTHC),
		DailyAvg:      round1(totalTHC / 7),
		AvgMood:       round1(totalMood / float64(len(entries))),
		TotalSessions: len(entries),
	}, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// estimateDose parses the raw dose inputs and runs the estimator.
// thcPercent nil means "not stated"; the assumed default potency applies.
func estimateDose(method, puffs, amount string, thcPercent *float64) (float64, error) {
	puffCount, err := dose.ParseQuantity(puffs)
	if err != nil {
		return 0, apperror.ValidationFailed("puffs", "puffs must be a non-negative number")
	}
	amountMg, err := dose.ParseQuantity(amount)
	if err != nil {
		return 0, apperror.ValidationFailed("amount", "amount must be a non-negative number")
	}

	pct := dose.DefaultTHCPercent
	if thcPercent != nil {
		pct = *thcPercent
	}

	return dose.Estimate(method, puffCount, pct, amountMg), nil
}

// parsePercent parses the raw thc_percent text. Empty means "not stated"
// and returns nil so the estimator default applies.
func parsePercent(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	pct, err := dose.ParseQuantity(raw)
	if err != nil {
		return nil, apperror.ValidationFailed("thc_percent", "thc_percent must be a non-negative number")
	}
	if pct > 100 {
		return nil, apperror.ValidationFailed("thc_percent", "thc_percent must not exceed 100")
	}
	return &pct, nil
}

// parseTimestamp combines the user-supplied date and local time into the
// event timestamp used for ordering and windowing.
func parseTimestamp(date, timeOfDay string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)

	if date == "" {
		return time.Time{}, apperror.ValidationFailed("date", "date is required")
	}
	if timeOfDay == "" {
		return time.Time{}, apperror.ValidationFailed("time", "time is required")
	}

	combined := date + " " + timeOfDay
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if ts, err := time.ParseInLocation(layout, combined, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, apperror.ValidationFailed("date",
		"date and time must be formatted as YYYY-MM-DD and HH:MM")
}

func ratingOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// validateRatings checks all effect ratings are on the 0-10 scale.
func validateRatings(e *model.Entry) error {
	ratings := map[string]int{
		"mood":       e.Mood,
		"energy":     e.Energy,
		"focus":      e.Focus,
		"creativity": e.Creativity,
		"anxiety":    e.Anxiety,
	}
	for field, v := range ratings {
		if v < 0 || v > 10 {
			return apperror.ValidationFailed(field, field+" must be between 0 and 10")
		}
	}
	return nil
}
