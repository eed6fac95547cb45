// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package support

import "context"

// ListQuery is the storage predicate for the ticket queue. CreatedBy set
// means a creator-bound view.
type ListQuery struct {
	SchoolID  string
	CreatedBy string
	Status    Status
	Limit     int
	Offset    int
}

type Repository interface {
	ListTickets(ctx context.Context, q ListQuery) ([]*Ticket, int, error)
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	CreateTicket(ctx context.Context, t *Ticket) error
	UpdateTicket(ctx context.Context, t *Ticket) error
	DeleteTicket(ctx context.Context, id string) error
}
