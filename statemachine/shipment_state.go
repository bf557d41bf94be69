package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"logitrack-api/models"
)

var (
	ErrUnknownStatus  = errors.New("unknown shipment status")
	ErrSameStatus     = errors.New("shipment already has this status")
	ErrTerminalStatus = errors.New("shipment is delivered")
)

// Transition defines a valid status change and who can perform it
type Transition struct {
	From  models.ShipmentStatus `json:"from"`
	To    models.ShipmentStatus `json:"to"`
	Actor models.UserRole       `json:"actor"`
}

// validTransitions is the authoritative shipment lifecycle for agents.
// Admins may move a shipment to any known status (override).
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusInTransit, Actor: models.RoleAgent},
	{From: models.StatusPending, To: models.StatusDelayed, Actor: models.RoleAgent},
	{From: models.StatusInTransit, To: models.StatusOutForDelivery, Actor: models.RoleAgent},
	{From: models.StatusInTransit, To: models.StatusDelayed, Actor: models.RoleAgent},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: models.RoleAgent},
	{From: models.StatusOutForDelivery, To: models.StatusDelayed, Actor: models.RoleAgent},
	{From: models.StatusDelayed, To: models.StatusInTransit, Actor: models.RoleAgent},
	{From: models.StatusDelayed, To: models.StatusOutForDelivery, Actor: models.RoleAgent},
}

type transitionKey struct {
	From  models.ShipmentStatus
	To    models.ShipmentStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all statuses an agent may move a shipment to
func ValidTransitionsFrom(status models.ShipmentStatus) []models.ShipmentStatus {
	var nexts []models.ShipmentStatus
	seen := map[models.ShipmentStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given role can move a shipment from one status to another
func CanTransition(from, to models.ShipmentStatus, actor models.UserRole) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return ErrSameStatus
	}
	if actor == models.RoleAdmin {
		return nil
	}
	if from == models.StatusDelivered {
		return ErrTerminalStatus
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for %s. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.ShipmentStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
