package models

import (
	"time"

	"github.com/google/uuid"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

type StockMovement struct {
	MovementID uuid.UUID  `json:"movement_id"`
	ProductID  uuid.UUID  `json:"product_id"`
	Direction  Direction  `json:"direction"`
	Quantity   int        `json:"quantity"`
	Reason     string     `json:"reason"`
	ActorID    uuid.UUID  `json:"actor_id"`
	SaleID     *uuid.UUID `json:"sale_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Delta is the signed quantity change the movement recorded.
func (m StockMovement) Delta() int {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}
