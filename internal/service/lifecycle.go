package service

import (
	"time"

	"github.com/campus360/incident-service/internal/domain"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// lifecycleStates is the fixed state set in display order.
var lifecycleStates = []string{
	domain.StatePending,
	domain.StateAssigned,
	domain.StateInProgress,
	domain.StateResolved,
	domain.StateClosed,
	domain.StateCancelled,
}

// TransitionTable lists the allowed (from, to) state code pairs.
type TransitionTable struct {
	allowed map[string]map[string]bool
}

// NewTransitionTable builds a table from an adjacency list.
func NewTransitionTable(pairs map[string][]string) *TransitionTable {
	t := &TransitionTable{allowed: make(map[string]map[string]bool, len(pairs))}
	for from, targets := range pairs {
		set := make(map[string]bool, len(targets))
		for _, to := range targets {
			set[to] = true
		}
		t.allowed[from] = set
	}
	return t
}

// AllowAll permits every pair of lifecycle states, including leaving
// cerrada and cancelada.
func AllowAll() *TransitionTable {
	pairs := make(map[string][]string, len(lifecycleStates))
	for _, from := range lifecycleStates {
		pairs[from] = lifecycleStates
	}
	return NewTransitionTable(pairs)
}

// Allows reports whether from -> to is permitted.
func (t *TransitionTable) Allows(from, to string) bool {
	return t.allowed[from][to]
}

// applyTransition moves ticket from one state entry to another and keeps
// ResolvedAt in step: entering resuelta stamps it, any other target clears it.
func applyTransition(table *TransitionTable, ticket *domain.Ticket, from, to *domain.CatalogEntry, now time.Time) error {
	if !table.Allows(from.Code, to.Code) {
		return apperrors.NewInvalidTransition(from.Code, to.Code)
	}
	ticket.StateID = to.ID
	if to.Code == domain.StateResolved {
		ts := now
		ticket.ResolvedAt = &ts
	} else {
		ticket.ResolvedAt = nil
	}
	return nil
}

// assignResponsible sets the responsible principal and returns the previous one.
func assignResponsible(ticket *domain.Ticket, responsibleID string) *string {
	previous := ticket.ResponsibleID
	id := responsibleID
	ticket.ResponsibleID = &id
	return previous
}
