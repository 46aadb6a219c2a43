package entity

import (
	"time"
)

// Recurring frequencies shared by incomes and expenses.
const (
	FrequencyWeekly    = "Weekly"
	FrequencyBiWeekly  = "Bi-weekly"
	FrequencyMonthly   = "Monthly"
	FrequencyQuarterly = "Quarterly"
	FrequencyYearly    = "Yearly"
)

var RecurringFrequencies = []string{
	FrequencyWeekly,
	FrequencyBiWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyYearly,
}

// Kind describes one flavour of recurring transaction. Incomes and expenses
// share every rule and differ only in the names below.
type Kind struct {
	Name              string // "expense", used in routes and messages
	Title             string // "Expense"
	Collection        string
	CounterpartyField string // "merchant" or "source"
	DateField         string // "dateSpent" or "dateEarned"
	CreatePath        string // "/addExpense"
	Categories        []string
	DefaultCategory   string
}

// HasCategory reports whether c is one of the kind's categories.
func (k Kind) HasCategory(c string) bool {
	for _, v := range k.Categories {
		if v == c {
			return true
		}
	}
	return false
}

var ExpenseKind = Kind{
	Name:              "expense",
	Title:             "Expense",
	Collection:        "expenses",
	CounterpartyField: "merchant",
	DateField:         "dateSpent",
	CreatePath:        "/addExpense",
	Categories: []string{
		"Housing", "Transportation", "Food", "Healthcare", "Entertainment",
		"Shopping", "Bills", "Education", "Travel", "Other",
	},
	DefaultCategory: "Other",
}

var IncomeKind = Kind{
	Name:              "income",
	Title:             "Income",
	Collection:        "incomes",
	CounterpartyField: "source",
	DateField:         "dateEarned",
	CreatePath:        "/addIncome",
	Categories: []string{
		"Salary", "Freelance", "Investment", "Business", "Gift", "Other",
	},
	DefaultCategory: "Other",
}

// Transaction is an income or expense record. Counterparty is the merchant
// for expenses and the source for incomes; Date is dateSpent/dateEarned.
//
// RecurringFrequency and StartDate are set if and only if IsRecurring.
type Transaction struct {
	ID                 string
	OwnerID            string
	Amount             float64
	Date               time.Time
	Description        string
	Category           string
	Counterparty       string
	IsRecurring        bool
	RecurringFrequency string
	StartDate          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Summary is the aggregate of an owner's transactions in a date window.
type Summary struct {
	TotalAmount float64 `json:"totalAmount"`
	Count       int64   `json:"count"`
}
