package sync

import (
	"context"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/remote"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The methods below are the engine's write surface. Each one builds a
// Command whose Apply mutates local state and returns the remote writes
// mirroring it, then hands it to Execute. Validation failures surface as
// the returned error with local state untouched; remote failures never
// surface here, only through Status and the divergence callback.

// RecordTransaction appends a new transaction to the ledger. The
// timestamp identity is assigned here; whatever the caller set is
// ignored.
func (c *Coordinator) RecordTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	tx.Timestamp = c.store.Stamper.Next()
	err := c.Execute(ctx, Command{
		Name: "record_transaction",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Ledger.Append(tx); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionInsert, Collection: remote.CollectionHistory, Payload: remote.HistoryRow(tx)},
			}, nil
		},
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// EditTransaction replaces the transaction identified by timestamp.
func (c *Coordinator) EditTransaction(ctx context.Context, timestamp int64, tx domain.Transaction) error {
	return c.Execute(ctx, Command{
		Name: "edit_transaction",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Ledger.Replace(timestamp, tx); err != nil {
				return nil, err
			}
			tx.Timestamp = timestamp
			return []remote.Write{
				{Action: remote.ActionUpdate, Collection: remote.CollectionHistory, Payload: remote.HistoryRow(tx)},
			}, nil
		},
	})
}

// DeleteTransaction removes the transaction identified by timestamp.
func (c *Coordinator) DeleteTransaction(ctx context.Context, timestamp int64) error {
	return c.Execute(ctx, Command{
		Name: "delete_transaction",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Ledger.Remove(timestamp); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionDelete, Collection: remote.CollectionHistory, Payload: remote.DeleteByTimestamp{Timestamp: timestamp}},
			}, nil
		},
	})
}

// CreateObligation registers a new debt or subscription. A missing id is
// assigned here.
func (c *Coordinator) CreateObligation(ctx context.Context, o domain.PendingObligation) (domain.PendingObligation, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Timestamp == 0 {
		o.Timestamp = c.store.Stamper.Next()
	}
	err := c.Execute(ctx, Command{
		Name: "create_obligation",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Obligations.Create(o); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionInsert, Collection: remote.CollectionPending, Payload: remote.PendingRow(o)},
			}, nil
		},
	})
	if err != nil {
		return domain.PendingObligation{}, err
	}
	return o, nil
}

// UpdateObligation replaces the obligation identified by id.
func (c *Coordinator) UpdateObligation(ctx context.Context, id string, o domain.PendingObligation) error {
	return c.Execute(ctx, Command{
		Name: "update_obligation",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Obligations.Update(id, o); err != nil {
				return nil, err
			}
			o.ID = id
			return []remote.Write{
				{Action: remote.ActionUpdate, Collection: remote.CollectionPending, Payload: remote.PendingRow(o)},
			}, nil
		},
	})
}

// RemoveObligation deletes the obligation identified by id.
func (c *Coordinator) RemoveObligation(ctx context.Context, id string) error {
	return c.Execute(ctx, Command{
		Name: "remove_obligation",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Obligations.Remove(id); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionDelete, Collection: remote.CollectionPending, Payload: remote.DeleteByID{ID: id}},
			}, nil
		},
	})
}

// SettleObligation applies a payment to an obligation and mirrors the
// updated row remotely.
func (c *Coordinator) SettleObligation(ctx context.Context, id string, payment decimal.Decimal, kind domain.SettlementKind) (domain.PendingObligation, error) {
	var settled domain.PendingObligation
	err := c.Execute(ctx, Command{
		Name: "settle_obligation",
		Apply: func() ([]remote.Write, error) {
			o, err := c.store.Obligations.Settle(id, payment, kind)
			if err != nil {
				return nil, err
			}
			settled = o
			return []remote.Write{
				{Action: remote.ActionUpdate, Collection: remote.CollectionPending, Payload: remote.PendingRow(o)},
			}, nil
		},
	})
	if err != nil {
		return domain.PendingObligation{}, err
	}
	return settled, nil
}

// CreateGoal registers a new savings goal. A missing id is assigned here.
func (c *Coordinator) CreateGoal(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.Timestamp == 0 {
		g.Timestamp = c.store.Stamper.Next()
	}
	err := c.Execute(ctx, Command{
		Name: "create_goal",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Goals.Create(g); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionInsert, Collection: remote.CollectionGoals, Payload: remote.GoalRow(g)},
			}, nil
		},
	})
	if err != nil {
		return domain.Goal{}, err
	}
	return g, nil
}

// UpdateGoal replaces the goal identified by id. The saved amount is not
// editable; it derives from the ledger.
func (c *Coordinator) UpdateGoal(ctx context.Context, id string, g domain.Goal) error {
	return c.Execute(ctx, Command{
		Name: "update_goal",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Goals.Update(id, g); err != nil {
				return nil, err
			}
			updated, _ := c.store.Goals.Get(id)
			return []remote.Write{
				{Action: remote.ActionUpdate, Collection: remote.CollectionGoals, Payload: remote.GoalRow(updated)},
			}, nil
		},
	})
}

// DeleteGoal deletes an empty goal. Goals holding funds must go through
// DeleteGoalReleasingTo.
func (c *Coordinator) DeleteGoal(ctx context.Context, id string) error {
	return c.Execute(ctx, Command{
		Name: "delete_goal",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.Goals.Delete(id); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionDelete, Collection: remote.CollectionGoals, Payload: remote.DeleteByID{ID: id}},
			}, nil
		},
	})
}

// DeleteGoalReleasingTo empties a goal into the destination account and
// deletes it. Locally the two steps happen as one mutation, so the
// released funds are visible before the goal is gone; remotely the release
// entry is inserted before the goal row is deleted, in that order, within
// a single dispatch.
func (c *Coordinator) DeleteGoalReleasingTo(ctx context.Context, id, accountID string) error {
	return c.Execute(ctx, Command{
		Name: "delete_goal_with_release",
		Apply: func() ([]remote.Write, error) {
			releaseTx, err := c.store.Goals.ReleaseAndDelete(id, accountID)
			if err != nil {
				return nil, err
			}
			writes := make([]remote.Write, 0, 2)
			if releaseTx.Timestamp != 0 {
				writes = append(writes, remote.Write{
					Action: remote.ActionInsert, Collection: remote.CollectionHistory, Payload: remote.HistoryRow(releaseTx),
				})
			}
			writes = append(writes, remote.Write{
				Action: remote.ActionDelete, Collection: remote.CollectionGoals, Payload: remote.DeleteByID{ID: id},
			})
			return writes, nil
		},
	})
}

// Contribute moves money from an account into a goal envelope.
func (c *Coordinator) Contribute(ctx context.Context, goalID string, amount decimal.Decimal, accountID string) (domain.Transaction, error) {
	var entry domain.Transaction
	err := c.Execute(ctx, Command{
		Name: "contribute",
		Apply: func() ([]remote.Write, error) {
			tx, g, err := c.store.Goals.Contribute(goalID, amount, accountID)
			if err != nil {
				return nil, err
			}
			entry = tx
			return []remote.Write{
				{Action: remote.ActionInsert, Collection: remote.CollectionHistory, Payload: remote.HistoryRow(tx)},
				{Action: remote.ActionUpdate, Collection: remote.CollectionGoals, Payload: remote.GoalRow(g)},
			}, nil
		},
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return entry, nil
}

// Release breaks the envelope: it moves money from a goal back into an
// account.
func (c *Coordinator) Release(ctx context.Context, goalID string, amount decimal.Decimal, accountID string) (domain.Transaction, error) {
	var entry domain.Transaction
	err := c.Execute(ctx, Command{
		Name: "release",
		Apply: func() ([]remote.Write, error) {
			tx, g, err := c.store.Goals.Release(goalID, amount, accountID)
			if err != nil {
				return nil, err
			}
			entry = tx
			return []remote.Write{
				{Action: remote.ActionInsert, Collection: remote.CollectionHistory, Payload: remote.HistoryRow(tx)},
				{Action: remote.ActionUpdate, Collection: remote.CollectionGoals, Payload: remote.GoalRow(g)},
			}, nil
		},
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return entry, nil
}

// SaveProfile stores the profile locally and remotely.
func (c *Coordinator) SaveProfile(ctx context.Context, p domain.Profile) error {
	return c.Execute(ctx, Command{
		Name: "save_profile",
		Apply: func() ([]remote.Write, error) {
			c.store.SetProfile(p)
			return []remote.Write{
				{Action: remote.ActionSaveProfile, Collection: remote.CollectionProfile, Payload: remote.ProfileRow(p)},
			}, nil
		},
	})
}

// UpsertCard adds or edits a card account.
func (c *Coordinator) UpsertCard(ctx context.Context, acct domain.Account) error {
	action := remote.ActionInsert
	for _, existing := range c.store.Accounts() {
		if existing.ID == acct.ID {
			action = remote.ActionUpdate
			break
		}
	}
	return c.Execute(ctx, Command{
		Name: "upsert_card",
		Apply: func() ([]remote.Write, error) {
			if acct.Type != domain.AccountDebit && acct.Type != domain.AccountCredit {
				return nil, domain.ErrInvalidEntity
			}
			c.store.UpsertAccount(acct)
			return []remote.Write{
				{Action: action, Collection: remote.CollectionCards, Payload: remote.CardRow(acct)},
			}, nil
		},
	})
}

// RemoveCard deletes a card account from the catalog.
func (c *Coordinator) RemoveCard(ctx context.Context, id string) error {
	return c.Execute(ctx, Command{
		Name: "remove_card",
		Apply: func() ([]remote.Write, error) {
			if err := c.store.RemoveAccount(id); err != nil {
				return nil, err
			}
			return []remote.Write{
				{Action: remote.ActionDelete, Collection: remote.CollectionCards, Payload: remote.DeleteByID{ID: id}},
			}, nil
		},
	})
}
