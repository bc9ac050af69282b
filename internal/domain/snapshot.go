package domain

// Profile is the user-facing identity stored alongside the financial data.
type Profile struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// CustomCategory is a user-defined spending or income category.
type CustomCategory struct {
	Name string          `json:"name"`
	Icon string          `json:"icon,omitempty"`
	Kind TransactionKind `json:"kind"`
}

// NotificationConfig controls due-date reminders.
type NotificationConfig struct {
	Enabled    bool `json:"enabled"`
	DaysBefore int  `json:"days_before"`
}

// FamilyConfig enables the shared-household mode.
type FamilyConfig struct {
	Enabled bool     `json:"enabled"`
	Members []string `json:"members,omitempty"`
}

// Snapshot is the complete local state: everything one remote GET returns,
// normalized. A resync replaces every field wholesale; local state must
// always be rebuildable from a single snapshot.
type Snapshot struct {
	Accounts           []Account           `json:"accounts"`
	Obligations        []PendingObligation `json:"obligations"`
	Transactions       []Transaction       `json:"transactions"`
	Goals              []Goal              `json:"goals"`
	Profile            *Profile            `json:"profile,omitempty"`
	NotificationConfig *NotificationConfig `json:"notification_config,omitempty"`
	CustomCategories   []CustomCategory    `json:"custom_categories,omitempty"`
	FamilyConfig       *FamilyConfig       `json:"family_config,omitempty"`
	GasVersion         string              `json:"gas_version,omitempty"`
	SchemaVersion      string              `json:"schema_version,omitempty"`
}
