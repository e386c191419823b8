package detail

import (
	"fmt"

	"github.com/Rshep3087/ahorrista/gateway"
)

const dateLayout = "2006-01-02"

type transactionItem struct {
	t gateway.Transaction
}

func (i transactionItem) Title() string {
	return displayDescription(i.t)
}

func (i transactionItem) Description() string {
	amount := "-"
	if i.t.Amount != nil {
		amount = i.t.Amount.Display()
	}

	if i.t.Date.IsZero() {
		return amount
	}
	return fmt.Sprintf("%s %s", i.t.Date.Format(dateLayout), amount)
}

func (i transactionItem) FilterValue() string {
	return i.t.Description
}

func displayDescription(t gateway.Transaction) string {
	if t.Description == "" {
		return "(no description)"
	}
	return t.Description
}
