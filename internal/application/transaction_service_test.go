package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
)

type TransactionServiceSuite struct {
	suite.Suite
	ctx   context.Context
	repo  *memTransactions
	index *memIndex
	svc   *TransactionService
}

func (s *TransactionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = newMemTransactions()
	s.index = newMemIndex()
	s.svc = NewTransactionService(entity.ExpenseKind, s.repo, s.index, nil)
	s.svc.Now = func() time.Time { return fixedNow }
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) create(owner string, in TransactionInput) *entity.Transaction {
	tx, err := s.svc.Create(s.ctx, owner, in)
	s.Require().NoError(err)
	return tx
}

func (s *TransactionServiceSuite) TestCreateDefaultsAndIndexes() {
	tx := s.create("alice", validExpense())

	s.NotEmpty(tx.ID)
	s.Equal("alice", tx.OwnerID)
	s.False(tx.IsRecurring)
	s.Equal(fixedNow, tx.Date)

	stored, err := s.repo.GetByID(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.Empty(stored.RecurringFrequency)
	s.Nil(stored.StartDate)
	s.Contains(s.index.docs, tx.ID)
}

func (s *TransactionServiceSuite) TestCreateRejectedBeforePersisting() {
	cases := []TransactionInput{
		{Amount: ptr(-5.0), Description: ptr("x"), Category: ptr("Food"), Counterparty: ptr("y")},
		{Amount: ptr(10.0), Description: ptr("x"), Category: ptr("Food"), Counterparty: ptr("y"), IsRecurring: ptr(true)},
		{Amount: ptr(10.0), Description: ptr("x"), Category: ptr("Food"), Counterparty: ptr("y"), IsRecurring: ptr(true),
			RecurringFrequency: ptr(entity.FrequencyMonthly)},
	}
	for _, in := range cases {
		_, err := s.svc.Create(s.ctx, "alice", in)
		s.Equal(CodeBadRequest, CodeOf(err))
	}
	s.Zero(s.repo.count())
	s.Empty(s.index.docs)
}

func (s *TransactionServiceSuite) TestOwnership() {
	tx := s.create("alice", validExpense())

	_, err := s.svc.Get(s.ctx, "bob", tx.ID)
	s.Equal(CodeForbidden, CodeOf(err))
	s.Equal("Not authorized to view this expense", err.Error())

	_, err = s.svc.Update(s.ctx, "bob", tx.ID, TransactionInput{Amount: ptr(1.0)})
	s.Equal(CodeForbidden, CodeOf(err))
	s.Equal("Not authorized to update this expense", err.Error())

	err = s.svc.Delete(s.ctx, "bob", tx.ID)
	s.Equal(CodeForbidden, CodeOf(err))
	s.Equal("Not authorized to delete this expense", err.Error())

	stored, err := s.repo.GetByID(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(50.0, stored.Amount)

	got, err := s.svc.Get(s.ctx, "ALICE ", tx.ID)
	s.Require().NoError(err, "owner ids compare normalized")
	s.Equal(tx.ID, got.ID)
}

func (s *TransactionServiceSuite) TestNotFound() {
	_, err := s.svc.Get(s.ctx, "alice", "missing")
	s.Equal(CodeNotFound, CodeOf(err))
	s.Equal("Expense not found", err.Error())

	_, err = s.svc.Update(s.ctx, "alice", "missing", TransactionInput{})
	s.Equal(CodeNotFound, CodeOf(err))

	err = s.svc.Delete(s.ctx, "alice", "missing")
	s.Equal(CodeNotFound, CodeOf(err))
}

func (s *TransactionServiceSuite) TestUpdateTurnsOffRecurring() {
	in := validExpense()
	in.IsRecurring = ptr(true)
	in.RecurringFrequency = ptr(entity.FrequencyWeekly)
	in.StartDate = &startOfMay
	tx := s.create("alice", in)

	updated, err := s.svc.Update(s.ctx, "alice", tx.ID, TransactionInput{
		IsRecurring:        ptr(false),
		RecurringFrequency: ptr(entity.FrequencyMonthly),
	})
	s.Require().NoError(err)
	s.False(updated.IsRecurring)

	stored, err := s.repo.GetByID(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.False(stored.IsRecurring)
	s.Empty(stored.RecurringFrequency)
	s.Nil(stored.StartDate)
	s.Equal("alice", stored.OwnerID)
}

func (s *TransactionServiceSuite) TestDeleteRemovesFromIndex() {
	tx := s.create("alice", validExpense())

	s.Require().NoError(s.svc.Delete(s.ctx, "alice", tx.ID))
	s.Zero(s.repo.count())
	s.Equal([]string{tx.ID}, s.index.removed)
}

func (s *TransactionServiceSuite) TestListAndRecurring() {
	older := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	in := validExpense()
	in.Date = &older
	s.create("alice", in)

	rec := validExpense()
	rec.IsRecurring = ptr(true)
	rec.RecurringFrequency = ptr(entity.FrequencyMonthly)
	rec.StartDate = &startOfMay
	newest := s.create("alice", rec)
	s.create("bob", validExpense())

	list, err := s.svc.List(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newest.ID, list[0].ID, "newest date first")

	recurring, err := s.svc.ListRecurring(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(recurring, 1)
	s.Equal(newest.ID, recurring[0].ID)
}

func (s *TransactionServiceSuite) TestSummary() {
	s.create("alice", validExpense())
	in := validExpense()
	in.Amount = ptr(25.5)
	s.create("alice", in)
	s.create("bob", validExpense())

	sum, err := s.svc.Summary(s.ctx, "alice", startOfMay, fixedNow)
	s.Require().NoError(err)
	s.Equal(75.5, sum.TotalAmount)
	s.Equal(int64(2), sum.Count)

	_, err = s.svc.Summary(s.ctx, "alice", fixedNow, startOfMay)
	s.Equal(CodeBadRequest, CodeOf(err))
}

func (s *TransactionServiceSuite) TestSearchFiltersByOwner() {
	mine := s.create("alice", validExpense())
	theirs := s.create("bob", validExpense())
	s.index.hits = []string{mine.ID, theirs.ID, "gone"}

	got, err := s.svc.Search(s.ctx, "alice", "groceries", 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(mine.ID, got[0].ID)

	_, err = s.svc.Search(s.ctx, "alice", "   ", 10)
	s.Equal(CodeBadRequest, CodeOf(err))
}

func (s *TransactionServiceSuite) TestIndexFailureDoesNotFailRequest() {
	s.index.err = errors.New("es down")
	tx, err := s.svc.Create(s.ctx, "alice", validExpense())
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Delete(s.ctx, "alice", tx.ID))
}

func TestTransactionService_SearchUnavailable(t *testing.T) {
	svc := NewTransactionService(entity.IncomeKind, newMemTransactions(), nil, nil)
	_, err := svc.Search(context.Background(), "alice", "salary", 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestTransactionService_IncomeMessages(t *testing.T) {
	repo := newMemTransactions()
	svc := NewTransactionService(entity.IncomeKind, repo, nil, nil)
	ctx := context.Background()

	tx, err := svc.Create(ctx, "alice", TransactionInput{
		Amount: ptr(100.0), Description: ptr("Gig"), Category: ptr("Freelance"), Counterparty: ptr("Client"),
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "missing-owner", tx.ID)
	assert.EqualError(t, err, "Not authorized to view this income")
	_, err = svc.Get(ctx, "alice", "nope")
	assert.EqualError(t, err, "Income not found")
}
