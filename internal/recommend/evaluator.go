// Package recommend decides which maintenance actions are due for a
// vehicle and how urgent they are. It is a pure computation: no clock,
// no storage, no logging. Callers supply the vehicle's service history,
// the rule table and the evaluation time, and get back fresh
// recommendation records.
package recommend

import (
	"fmt"
	"time"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

// daysPerMonth is the mean Gregorian month length, used to express a
// calendar span as fractional months.
const daysPerMonth = 30.44

// CategoryRule configures one tracked maintenance category. ServiceType
// keys the vehicle's history (matching Maintenance.ServiceType values);
// Component is the human-readable label carried onto recommendations.
// Both intervals must be strictly positive.
type CategoryRule struct {
	ServiceType        string
	Component          string
	MileageInterval    float64
	TimeIntervalMonths float64
}

// Validate rejects rules with non-positive intervals. Configuration
// loading calls this so bad rules never reach evaluation.
func (r CategoryRule) Validate() error {
	if r.MileageInterval <= 0 || r.TimeIntervalMonths <= 0 {
		return fmt.Errorf("rule %q: %w", r.ServiceType, ErrInvalidInterval)
	}
	return nil
}

// CategoryState is a vehicle's last known service event for one
// category. Nil fields mean the category was never serviced.
type CategoryState struct {
	LastServiceDate    *time.Time
	LastServiceMileage *float64
}

// VehicleState is the input to evaluation: one vehicle's odometer
// reading and per-category service history. A category absent from
// History is treated as never serviced.
type VehicleState struct {
	VehicleID      string
	CurrentMileage float64
	History        map[string]CategoryState // keyed by ServiceType
}

// RuleError records a category whose rule could not be evaluated.
// Evaluation reports these alongside the recommendations instead of
// aborting the batch.
type RuleError struct {
	ServiceType string
	Err         error
}

func (e RuleError) Error() string {
	return fmt.Sprintf("category %s skipped: %v", e.ServiceType, e.Err)
}

func (e RuleError) Unwrap() error { return e.Err }

// EvaluateCategory decides whether one category of one vehicle is due
// for service at time now, and if so produces a recommendation.
//
// A category is due when either axis has reached its interval: mileage
// since last service >= MileageInterval, or months since last service
// >= TimeIntervalMonths. The axes are independent; either alone
// triggers.
//
// Never-serviced policy: a nil LastServiceMileage counts the full
// odometer reading as elapsed mileage, and a nil LastServiceDate counts
// as past any time interval, so a vehicle with no history for a
// category is immediately due.
//
// Priority is always classified from the mileage axis, even when the
// time axis is what made the category due. This keeps the result
// deterministic when the axes disagree.
//
// Data-quality anomalies (last-service mileage above the odometer,
// last-service date in the future) normalize to zero elapsed rather
// than erroring. The only error returned is a non-positive interval in
// the rule.
func EvaluateCategory(state VehicleState, rule CategoryRule, now time.Time) (*models.Recommendation, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	hist := state.History[rule.ServiceType]

	mileageElapsed := state.CurrentMileage
	if hist.LastServiceMileage != nil {
		mileageElapsed = state.CurrentMileage - *hist.LastServiceMileage
	}
	if mileageElapsed < 0 {
		mileageElapsed = 0
	}

	dueByTime := true // never serviced
	if hist.LastServiceDate != nil {
		monthsElapsed := monthsBetween(*hist.LastServiceDate, now)
		dueByTime = monthsElapsed >= rule.TimeIntervalMonths
	}

	dueByMileage := mileageElapsed >= rule.MileageInterval

	if !dueByMileage && !dueByTime {
		return nil, nil
	}

	priority, err := ClassifyPriority(mileageElapsed, rule.MileageInterval)
	if err != nil {
		return nil, err
	}

	return &models.Recommendation{
		VehicleID:          state.VehicleID,
		Component:          rule.Component,
		Description:        fmt.Sprintf("%s service is due (%.0f of %.0f since last service)", rule.Component, mileageElapsed, rule.MileageInterval),
		RecommendedDate:    now,
		RecommendedMileage: state.CurrentMileage,
		Priority:           priority,
		CreatedAt:          now,
	}, nil
}

// GenerateRecommendations evaluates every rule against one vehicle's
// state and collects the due categories. Output order follows rule
// order; sorting for display is the caller's concern. Rules that fail
// validation are reported in the second return value without blocking
// the remaining categories. The recommendation slice is never nil.
//
// The function holds no state between calls: identical inputs yield
// identical output, and concurrent calls for different vehicles need no
// locking.
func GenerateRecommendations(state VehicleState, rules []CategoryRule, now time.Time) ([]models.Recommendation, []RuleError) {
	recs := make([]models.Recommendation, 0, len(rules))
	var skipped []RuleError

	for _, rule := range rules {
		rec, err := EvaluateCategory(state, rule, now)
		if err != nil {
			skipped = append(skipped, RuleError{ServiceType: rule.ServiceType, Err: err})
			continue
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}

	return recs, skipped
}

// monthsBetween returns the fractional months from from to to, negative
// when from is after to.
func monthsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerMonth
}
