package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const PiggyBankDepositMadeType EventType = "piggybank.deposit.made"

// PiggyBankDepositMade is published after a deposit has been stored.
type PiggyBankDepositMade struct {
	PiggyBankId int
	Name        string
	Amount      decimal.Decimal
	// BalanceSource names where the money came from; empty when the deposit is not tied to an account.
	BalanceSource string
	Date          time.Time
	Completed     bool
}
