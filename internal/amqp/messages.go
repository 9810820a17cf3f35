package amqp

import (
	"encoding/json"
	"time"

	"tagtrack/internal/core"
)

// SessionExpense is one merged category total inside a recorded session.
type SessionExpense struct {
	Category string `json:"category"`
	Amount   string `json:"amount"` // serialized Money, e.g. "€40.00"
}

// SessionRecordedMessage announces a finalized session after its cells were
// written to the spreadsheet. The archive worker mirrors it into SQLite.
type SessionRecordedMessage struct {
	Month     int              `json:"month"`
	Currency  string           `json:"currency"`
	Budget    string           `json:"budget"`
	Remainder string           `json:"remainder"`
	Overspent bool             `json:"overspent"`
	Expenses  []SessionExpense `json:"expenses"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewSessionRecordedMessage builds the message from a finalized budget state
// and the session's merged category totals in first-seen order.
func NewSessionRecordedMessage(state core.BudgetState, categories []core.Category, merged map[core.Category]core.Money) *SessionRecordedMessage {
	expenses := make([]SessionExpense, 0, len(categories))
	for _, cat := range categories {
		expenses = append(expenses, SessionExpense{
			Category: string(cat),
			Amount:   merged[cat].Round2().String(),
		})
	}
	return &SessionRecordedMessage{
		Month:     int(state.Month),
		Currency:  string(state.Currency),
		Budget:    state.Budget.Round2().String(),
		Remainder: state.Remainder.Round2().String(),
		Overspent: state.Remainder.IsNegative(),
		Expenses:  expenses,
		Timestamp: time.Now(),
	}
}

func (m *SessionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SessionRecordedMessageFromJSON(data []byte) (*SessionRecordedMessage, error) {
	var msg SessionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
