package services

import "cardapio/internal/models"

// transitionTable lists, per current status, the statuses a role may move an order to.
type transitionTable map[models.OrderStatus][]models.OrderStatus

// clientTransitions: a client can only close an order that is being processed.
var clientTransitions = transitionTable{
	models.StatusProcessing: {models.StatusDelivered, models.StatusCanceled},
}

// adminTransitions allows every edge between the known statuses.
var adminTransitions = func() transitionTable {
	t := make(transitionTable, len(models.OrderStatuses))
	for _, from := range models.OrderStatuses {
		t[from] = models.OrderStatuses
	}
	return t
}()

func transitionsFor(role models.Role) transitionTable {
	if role == models.RoleAdmin {
		return adminTransitions
	}
	return clientTransitions
}

// CanTransition reports whether role may move an order from one status to another.
func CanTransition(role models.Role, from, to models.OrderStatus) bool {
	for _, next := range transitionsFor(role)[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses role may move an order in from to.
func AllowedTransitions(role models.Role, from models.OrderStatus) []models.OrderStatus {
	next := transitionsFor(role)[from]
	out := make([]models.OrderStatus, 0, len(next))
	for _, s := range next {
		if s != from {
			out = append(out, s)
		}
	}
	return out
}
