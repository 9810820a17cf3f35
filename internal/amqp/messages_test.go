package amqp

import (
	"testing"
	"time"

	"tagtrack/internal/core"
)

func TestNewSessionRecordedMessage(t *testing.T) {
	state := core.BudgetState{
		Month:     time.March,
		Currency:  core.EUR,
		Budget:    core.MoneyFromFloat(150, core.EUR),
		Remainder: core.MoneyFromFloat(-30, core.EUR),
	}
	merged := map[core.Category]core.Money{
		core.Rent:      core.MoneyFromFloat(40, core.EUR),
		core.Groceries: core.MoneyFromFloat(20, core.EUR),
	}

	msg := NewSessionRecordedMessage(state, []core.Category{core.Rent, core.Groceries}, merged)

	if msg.Month != 3 || msg.Currency != "EUR" {
		t.Fatalf("unexpected header: month=%d currency=%s", msg.Month, msg.Currency)
	}
	if msg.Budget != "€150.00" || msg.Remainder != "-€30.00" {
		t.Fatalf("unexpected amounts: budget=%s remainder=%s", msg.Budget, msg.Remainder)
	}
	if !msg.Overspent {
		t.Fatal("negative remainder must be flagged as overspent")
	}
	if len(msg.Expenses) != 2 || msg.Expenses[0].Category != "Rent" || msg.Expenses[0].Amount != "€40.00" {
		t.Fatalf("unexpected expenses: %+v", msg.Expenses)
	}

	// Messages survive the wire format.
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := SessionRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Remainder != msg.Remainder || len(back.Expenses) != 2 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
