package billing

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

type fakeCreditStore struct {
	balances map[string]int
	err      error
}

func (f *fakeCreditStore) DeductCredits(_ context.Context, userID string, amount int) (int, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	bal := f.balances[userID]
	if bal < amount {
		return bal, false, nil
	}
	f.balances[userID] = bal - amount
	return bal - amount, true, nil
}

func TestStoreLedger_Deduct(t *testing.T) {
	store := &fakeCreditStore{balances: map[string]int{"u1": 5}}
	ledger := NewStoreLedger(store, nil)

	res, err := ledger.Deduct(context.Background(), "u1", ActionContactSearch)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.NewBalance)
}

func TestStoreLedger_InsufficientBalance(t *testing.T) {
	store := &fakeCreditStore{balances: map[string]int{"u1": 1}}
	ledger := NewStoreLedger(store, nil)

	res, err := ledger.Deduct(context.Background(), "u1", ActionEmailSearch)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.NewBalance)
}

func TestStoreLedger_StoreError(t *testing.T) {
	ledger := NewStoreLedger(&fakeCreditStore{err: eris.New("db down")}, nil)

	_, err := ledger.Deduct(context.Background(), "u1", ActionCompanySearch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deduct company_search")
}

func TestStoreLedger_UnknownAction(t *testing.T) {
	ledger := NewStoreLedger(&fakeCreditStore{balances: map[string]int{}}, map[Action]int{ActionCompanySearch: 1})

	_, err := ledger.Deduct(context.Background(), "u1", Action("mystery"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestActionsForSearchType(t *testing.T) {
	assert.Equal(t, []Action{ActionCompanySearch}, ActionsForSearchType(model.SearchTypeCompanies))
	assert.Equal(t, []Action{ActionCompanySearch, ActionContactSearch}, ActionsForSearchType(model.SearchTypeContacts))
	assert.Equal(t, []Action{ActionCompanySearch, ActionEmailSearch}, ActionsForSearchType(model.SearchTypeEmails))
	assert.Equal(t, []Action{ActionContactSearch}, ActionsForSearchType(model.SearchTypeContactOnly))
	assert.Nil(t, ActionsForSearchType(model.SearchType("bogus")))
}
