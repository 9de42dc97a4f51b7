package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType discriminates the six kinds of trade events a run can produce.
type EventType string

const (
	PutSold     EventType = "PUT_SOLD"
	PutExpired  EventType = "PUT_EXPIRED"
	PutAssigned EventType = "PUT_ASSIGNED"
	CallSold    EventType = "CALL_SOLD"
	CallExpired EventType = "CALL_EXPIRED"
	CalledAway  EventType = "CALLED_AWAY"
)

// TradeEvent records a single state-machine outcome. Events are appended to
// an ordered log during a run and never mutated afterwards.
type TradeEvent struct {
	Date           time.Time        // Week the event occurred
	Type           EventType        // One of the six event kinds
	Strike         decimal.Decimal  // Strike of the contract involved
	Premium        decimal.Decimal  // Premium of the contract involved (per contract)
	StockPrice     decimal.Decimal  // Closing price the week of the event
	RealizedGain   *decimal.Decimal // Set on CALLED_AWAY, nil otherwise
	UnrealizedGain *decimal.Decimal // Set on CALL_EXPIRED, nil otherwise
}
