package remote

import (
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Wire spellings of the enumerations. The sheet predates this codebase and
// speaks Spanish; the mapping lives here and nowhere else.
const (
	wireIncome       = "ingreso"
	wireExpense      = "gasto"
	wireContribution = "abono_meta"
	wireRelease      = "retiro_meta"

	wireCredit = "credito"
	wireDebit  = "debito"

	wirePending = "pendiente"
	wirePaid    = "pagado"

	wireDebt         = "deuda"
	wireSubscription = "suscripcion"

	wireGoalActive    = "activa"
	wireGoalCompleted = "completada"
)

func kindFromWire(s string) (domain.TransactionKind, bool) {
	switch s {
	case wireIncome:
		return domain.KindIncome, true
	case wireExpense:
		return domain.KindExpense, true
	case wireContribution:
		return domain.KindGoalContribution, true
	case wireRelease:
		return domain.KindGoalRelease, true
	}
	return "", false
}

func kindToWire(k domain.TransactionKind) string {
	switch k {
	case domain.KindIncome:
		return wireIncome
	case domain.KindExpense:
		return wireExpense
	case domain.KindGoalContribution:
		return wireContribution
	case domain.KindGoalRelease:
		return wireRelease
	}
	return wireExpense
}

// normalizeSnapshot converts one raw GET response into typed local state.
// Malformed rows are dropped with a warning rather than failing the fetch:
// a resync must always be able to rebuild state from whatever the server
// holds.
func normalizeSnapshot(raw rawSnapshot, log zerolog.Logger) domain.Snapshot {
	snap := domain.Snapshot{
		GasVersion:    raw.GasVersion,
		SchemaVersion: raw.SchemaVersion,
	}

	snap.Accounts = make([]domain.Account, 0, len(raw.Cards)+1)
	snap.Accounts = append(snap.Accounts, domain.Wallet())
	for _, c := range raw.Cards {
		if c.ID == "" {
			log.Warn().Str("card", c.Name).Msg("Dropping card row without id")
			continue
		}
		snap.Accounts = append(snap.Accounts, normalizeCard(c))
	}

	snap.Transactions = make([]domain.Transaction, 0, len(raw.History))
	for _, h := range raw.History {
		tx, ok := normalizeHistory(h)
		if !ok {
			log.Warn().Str("tipo", h.Type).Int64("timestamp", int64(h.Timestamp.Int())).Msg("Dropping history row with unknown kind")
			continue
		}
		snap.Transactions = append(snap.Transactions, tx)
	}

	snap.Obligations = make([]domain.PendingObligation, 0, len(raw.Pending))
	for _, p := range raw.Pending {
		if p.ID == "" {
			log.Warn().Str("descripcion", p.Description).Msg("Dropping pending row without id")
			continue
		}
		snap.Obligations = append(snap.Obligations, normalizePending(p))
	}

	snap.Goals = make([]domain.Goal, 0, len(raw.Goals))
	for _, g := range raw.Goals {
		if g.ID == "" {
			log.Warn().Str("nombre", g.Name).Msg("Dropping goal row without id")
			continue
		}
		snap.Goals = append(snap.Goals, normalizeGoal(g))
	}

	if raw.Profile != nil {
		snap.Profile = &domain.Profile{
			Name:     raw.Profile.Name,
			Avatar:   raw.Profile.Avatar,
			Currency: raw.Profile.Currency,
		}
	}
	if raw.NotificationConfig != nil {
		snap.NotificationConfig = &domain.NotificationConfig{
			Enabled:    raw.NotificationConfig.Enabled,
			DaysBefore: raw.NotificationConfig.DaysBefore.Int(),
		}
	}
	for _, c := range raw.CustomCategories {
		kind, ok := kindFromWire(c.Type)
		if !ok {
			kind = domain.KindExpense
		}
		snap.CustomCategories = append(snap.CustomCategories, domain.CustomCategory{
			Name: c.Name,
			Icon: c.Icon,
			Kind: kind,
		})
	}
	if raw.FamilyConfig != nil {
		snap.FamilyConfig = &domain.FamilyConfig{
			Enabled: raw.FamilyConfig.Enabled,
			Members: raw.FamilyConfig.Members,
		}
	}
	return snap
}

func normalizeCard(c rawCard) domain.Account {
	acctType := domain.AccountDebit
	if c.Type == wireCredit {
		acctType = domain.AccountCredit
	}
	return domain.Account{
		ID:            c.ID,
		Name:          c.Name,
		Bank:          c.Bank,
		Type:          acctType,
		OpeningAmount: c.OpeningAmount.Decimal(),
		Limit:         c.Limit.Decimal(),
	}
}

func normalizeHistory(h rawHistory) (domain.Transaction, bool) {
	kind, ok := kindFromWire(h.Type)
	if !ok {
		return domain.Transaction{}, false
	}
	account := h.Account
	if account == "" {
		account = domain.WalletID
	}
	return domain.Transaction{
		Timestamp:   int64(h.Timestamp.Decimal().IntPart()),
		Kind:        kind,
		Amount:      h.Amount.Decimal(),
		Account:     account,
		Category:    h.Category,
		Description: h.Description,
		Date:        parseDate(h.Date),
		GoalID:      h.GoalID,
	}, true
}

func normalizePending(p rawPending) domain.PendingObligation {
	obType := domain.ObligationDebt
	if p.Type == wireSubscription {
		obType = domain.ObligationSubscription
	}
	state := domain.ObligationPending
	if p.State == wirePaid {
		state = domain.ObligationPaid
	}

	o := domain.PendingObligation{
		ID:               p.ID,
		PurchaseDate:     parseDate(p.PurchaseDate),
		CardAccount:      p.Card,
		Category:         p.Category,
		Description:      p.Description,
		Notes:            p.Notes,
		TotalAmount:      p.Amount.Decimal(),
		InstallmentCount: p.InstallmentCount.Int(),
		ClosingDate:      parseDate(p.ClosingDate),
		DueDate:          parseDate(p.DueDate),
		State:            state,
		Type:             obType,
		Timestamp:        int64(p.Timestamp.Decimal().IntPart()),
	}
	if p.AmountPaid != nil {
		o.TotalAmountPaid = p.AmountPaid.Decimal()
	} else {
		// Rows written before the paid-amount column existed: rebuild the
		// counter from the installment count.
		o.TotalAmountPaid = o.InstallmentValue().Mul(decimal.NewFromInt(int64(p.InstallmentsPaid.Int())))
	}
	if o.TotalAmountPaid.Cmp(o.TotalAmount) > 0 {
		o.TotalAmountPaid = o.TotalAmount
	}
	return o
}

func normalizeGoal(g rawGoal) domain.Goal {
	state := domain.GoalActive
	if g.State == wireGoalCompleted {
		state = domain.GoalCompleted
	}
	saved := g.Saved.Decimal()
	if saved.Cmp(decimal.Zero) < 0 {
		saved = decimal.Zero
	}
	return domain.Goal{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: g.Target.Decimal(),
		SavedAmount:  saved,
		State:        state,
		Timestamp:    int64(g.Timestamp.Decimal().IntPart()),
	}
}

// HistoryRow builds the wire payload for one ledger transaction.
func HistoryRow(tx domain.Transaction) any {
	return rawHistory{
		Date:        formatDate(tx.Date),
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      flexFrom(tx.Amount),
		Type:        kindToWire(tx.Kind),
		Account:     tx.Account,
		GoalID:      tx.GoalID,
		Timestamp:   flexFrom(decimal.NewFromInt(tx.Timestamp)),
	}
}

// PendingRow builds the wire payload for one obligation. Both the exact
// paid counter and the derived installment count go out, so older readers
// of the sheet keep working.
func PendingRow(o domain.PendingObligation) any {
	obType := wireDebt
	if o.Type == domain.ObligationSubscription {
		obType = wireSubscription
	}
	state := wirePending
	if o.State == domain.ObligationPaid {
		state = wirePaid
	}
	paid := flexFrom(o.TotalAmountPaid)
	return rawPending{
		ID:               o.ID,
		PurchaseDate:     formatDate(o.PurchaseDate),
		Card:             o.CardAccount,
		Category:         o.Category,
		Description:      o.Description,
		Amount:           flexFrom(o.TotalAmount),
		ClosingDate:      formatDate(o.ClosingDate),
		DueDate:          formatDate(o.DueDate),
		State:            state,
		InstallmentCount: flexFrom(decimal.NewFromInt(int64(o.InstallmentCount))),
		InstallmentsPaid: flexFrom(decimal.NewFromInt(int64(o.InstallmentsPaid()))),
		AmountPaid:       &paid,
		Type:             obType,
		Notes:            o.Notes,
		Timestamp:        flexFrom(decimal.NewFromInt(o.Timestamp)),
	}
}

// GoalRow builds the wire payload for one goal.
func GoalRow(g domain.Goal) any {
	state := wireGoalActive
	if g.State == domain.GoalCompleted {
		state = wireGoalCompleted
	}
	return rawGoal{
		ID:        g.ID,
		Name:      g.Name,
		Target:    flexFrom(g.TargetAmount),
		Saved:     flexFrom(g.SavedAmount),
		State:     state,
		Timestamp: flexFrom(decimal.NewFromInt(g.Timestamp)),
	}
}

// CardRow builds the wire payload for one card account.
func CardRow(a domain.Account) any {
	t := wireDebit
	if a.Type == domain.AccountCredit {
		t = wireCredit
	}
	return rawCard{
		ID:            a.ID,
		Name:          a.Name,
		Bank:          a.Bank,
		Type:          t,
		Limit:         flexFrom(a.Limit),
		OpeningAmount: flexFrom(a.OpeningAmount),
	}
}

// ProfileRow builds the wire payload for the profile.
func ProfileRow(p domain.Profile) any {
	return rawProfile{Name: p.Name, Avatar: p.Avatar, Currency: p.Currency}
}

// DeleteByID is the payload of a delete write for id-keyed collections.
type DeleteByID struct {
	ID string `json:"id"`
}

// DeleteByTimestamp is the payload of a delete write for the history
// collection, whose rows are keyed by timestamp.
type DeleteByTimestamp struct {
	Timestamp int64 `json:"timestamp"`
}
