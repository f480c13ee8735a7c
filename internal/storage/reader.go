package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage/category"
	"github.com/carson-networks/ledger-server/internal/storage/goal"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
	"github.com/carson-networks/ledger-server/internal/storage/wallet"
)

// Tables groups one accessor per ledger table, all bound to the same executor.
type Tables struct {
	Wallets      wallet.IWalletTable
	Categories   category.ICategoryTable
	Transactions transaction.ITransactionTable
	Goals        goal.IGoalTable
	Recurring    recurring.IRecurringTable
}

func NewTables(exec bob.Executor) *Tables {
	return &Tables{
		Wallets:      wallet.NewTable(exec),
		Categories:   category.NewTable(exec),
		Transactions: transaction.NewTable(exec),
		Goals:        goal.NewTable(exec),
		Recurring:    recurring.NewTable(exec),
	}
}
