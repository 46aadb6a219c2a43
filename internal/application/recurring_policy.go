package application

import (
	"strings"
	"time"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
)

// TransactionInput is a create or update payload. A nil field was not sent.
// On update, a blank string for a field that is required at create time
// (description, category, counterparty, frequency) counts as not sent.
type TransactionInput struct {
	Amount             *float64
	Date               *time.Time
	Description        *string
	Category           *string
	Counterparty       *string
	IsRecurring        *bool
	RecurringFrequency *string
	StartDate          *time.Time
}

// RecurringPolicy validates transaction payloads of one kind and keeps the
// recurring fields coherent with the IsRecurring flag.
type RecurringPolicy struct {
	Kind entity.Kind
}

const msgAmountPositive = "Amount must be greater than 0"

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func isFrequency(f string) bool {
	for _, v := range entity.RecurringFrequencies {
		if v == f {
			return true
		}
	}
	return false
}

// Build validates a create payload and returns the record to persist.
// Nothing is returned unless every rule passes.
func (p RecurringPolicy) Build(ownerID string, in TransactionInput, now time.Time) (*entity.Transaction, error) {
	var missing []string
	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	if blank(in.Description) {
		missing = append(missing, "description")
	}
	if blank(in.Category) {
		missing = append(missing, "category")
	}
	if blank(in.Counterparty) {
		missing = append(missing, p.Kind.CounterpartyField)
	}
	if len(missing) > 0 {
		return nil, BadRequest("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if *in.Amount <= 0 {
		return nil, BadRequest(msgAmountPositive)
	}

	recurring := in.IsRecurring != nil && *in.IsRecurring
	if err := p.checkRecurring(recurring, in.RecurringFrequency, in.StartDate); err != nil {
		return nil, err
	}
	if !p.Kind.HasCategory(*in.Category) {
		return nil, BadRequest("Invalid category: %s", *in.Category)
	}

	t := &entity.Transaction{
		OwnerID:      ownerID,
		Amount:       *in.Amount,
		Date:         now,
		Description:  *in.Description,
		Category:     *in.Category,
		Counterparty: *in.Counterparty,
		IsRecurring:  recurring,
	}
	if in.Date != nil && !in.Date.IsZero() {
		t.Date = *in.Date
	}
	if recurring {
		t.RecurringFrequency = *in.RecurringFrequency
		start := *in.StartDate
		t.StartDate = &start
	}
	return t, nil
}

// Apply validates an update payload against the stored record t and, only
// if it passes, writes the supplied fields into t. When the resulting record
// is not recurring its frequency and start date are cleared whatever the
// payload carried.
func (p RecurringPolicy) Apply(t *entity.Transaction, in TransactionInput) error {
	if in.Amount != nil && *in.Amount <= 0 {
		return BadRequest(msgAmountPositive)
	}

	recurring := t.IsRecurring
	if in.IsRecurring != nil {
		recurring = *in.IsRecurring
	}
	freq := in.RecurringFrequency
	if blank(freq) && t.RecurringFrequency != "" {
		freq = &t.RecurringFrequency
	}
	start := in.StartDate
	if start == nil && t.StartDate != nil {
		start = t.StartDate
	}
	if err := p.checkRecurring(recurring, freq, start); err != nil {
		return err
	}
	if !blank(in.Category) && !p.Kind.HasCategory(*in.Category) {
		return BadRequest("Invalid category: %s", *in.Category)
	}

	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Date != nil && !in.Date.IsZero() {
		t.Date = *in.Date
	}
	if !blank(in.Description) {
		t.Description = *in.Description
	}
	if !blank(in.Category) {
		t.Category = *in.Category
	}
	if !blank(in.Counterparty) {
		t.Counterparty = *in.Counterparty
	}
	t.IsRecurring = recurring
	if recurring {
		t.RecurringFrequency = *freq
		s := *start
		t.StartDate = &s
	} else {
		t.RecurringFrequency = ""
		t.StartDate = nil
	}
	return nil
}

// checkRecurring reports the first broken recurring rule. Frequency is
// checked before start date.
func (p RecurringPolicy) checkRecurring(recurring bool, freq *string, start *time.Time) error {
	if !recurring {
		return nil
	}
	if blank(freq) {
		return BadRequest("Recurring frequency is required for recurring %s", p.Kind.Name)
	}
	if start == nil || start.IsZero() {
		return BadRequest("Start date is required for recurring %s", p.Kind.Name)
	}
	if !isFrequency(*freq) {
		return BadRequest("Invalid recurring frequency: %s", *freq)
	}
	return nil
}
