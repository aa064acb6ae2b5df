package amqp

import (
	"encoding/json"
	"time"
)

// CheckoutLine summarizes one cart line inside a checkout message.
type CheckoutLine struct {
	ProductID string  `json:"product_id"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CheckoutMessage is the summary published after a confirmed checkout.
// Delivery is fire-and-forget: a failed publish never rolls the sale back.
type CheckoutMessage struct {
	Document  string         `json:"document"`
	Payment   string         `json:"payment"`
	Customer  string         `json:"customer,omitempty"`
	Channel   string         `json:"channel"`
	Total     float64        `json:"total"`
	Lines     []CheckoutLine `json:"lines"`
	Timestamp time.Time      `json:"timestamp"`
}

func (m *CheckoutMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CheckoutMessageFromJSON(data []byte) (*CheckoutMessage, error) {
	var msg CheckoutMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
