// Package services provides the ledger business logic and its orchestration.
//
// This file implements the Strategy Pattern for bill reminders. A policy
// decides whether a bill dated on a given day is reported today.
package services

import (
	"fmt"
	"strings"
	"time"

	"pesa/internal/core"
)

// BillMarker selects bill expenses. Matching is case-sensitive.
const BillMarker = "Bill"

// DefaultReminderDays is the default look-ahead window.
const DefaultReminderDays = 7

// ReminderPolicy is the strategy interface for bill reminders.
type ReminderPolicy interface {
	// Includes reports whether a bill due on due is reported on today. Both
	// are calendar dates at midnight UTC.
	Includes(due, today time.Time) bool
}

// UpcomingWindow reports bills due from today through today+Days, both inclusive.
type UpcomingWindow struct {
	Days int
}

func (w UpcomingWindow) Includes(due, today time.Time) bool {
	return !due.Before(today) && !due.After(today.AddDate(0, 0, w.Days))
}

// OverdueOrUpcoming reports every bill due on or before today+Days, including past-due ones.
type OverdueOrUpcoming struct {
	Days int
}

func (w OverdueOrUpcoming) Includes(due, today time.Time) bool {
	return !due.After(today.AddDate(0, 0, w.Days))
}

// reminderPolicies maps configuration names to policy constructors.
var reminderPolicies = map[string]func(days int) ReminderPolicy{
	"upcoming": func(days int) ReminderPolicy { return UpcomingWindow{Days: days} },
	"overdue":  func(days int) ReminderPolicy { return OverdueOrUpcoming{Days: days} },
}

// GetReminderPolicy returns the named policy with the given window.
func GetReminderPolicy(name string, days int) (ReminderPolicy, error) {
	newPolicy, ok := reminderPolicies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bill reminder policy: %s", name)
	}
	return newPolicy(days), nil
}

// CheckBillReminders returns the bill expenses the policy reports for today,
// in list order. Expenses with unparseable dates are ignored. A nil policy
// means the inclusive seven-day upcoming window.
func CheckBillReminders(expenses []core.Transaction, today time.Time, policy ReminderPolicy) []core.Transaction {
	if policy == nil {
		policy = UpcomingWindow{Days: DefaultReminderDays}
	}
	day := calendarDay(today)

	var out []core.Transaction
	for _, e := range expenses {
		if !strings.Contains(e.Category, BillMarker) {
			continue
		}
		due, err := e.Time()
		if err != nil {
			continue
		}
		if policy.Includes(calendarDay(due), day) {
			out = append(out, e)
		}
	}
	return out
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
