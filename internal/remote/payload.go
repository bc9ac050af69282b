package remote

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The remote store is a spreadsheet behind a Google-Apps-Script endpoint.
// Its rows are loosely typed: numbers arrive as numbers, strings, empty
// strings or not at all. The raw types below mirror that wire exactly;
// nothing outside this package ever sees them.

// flexNumber decodes a JSON value that should be numeric but may be a
// quoted number, an empty string, null or garbage. Anything unparseable
// becomes zero. This is the one place the wire's sloppiness is absorbed.
type flexNumber struct {
	value decimal.Decimal
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.value = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			f.value = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			f.value = decimal.Zero
			return nil
		}
		f.value = d
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		f.value = decimal.Zero
		return nil
	}
	f.value = d
	return nil
}

func (f flexNumber) MarshalJSON() ([]byte, error) {
	return []byte(f.value.String()), nil
}

// Decimal returns the decoded value.
func (f flexNumber) Decimal() decimal.Decimal { return f.value }

// Int returns the decoded value truncated to an integer.
func (f flexNumber) Int() int { return int(f.value.IntPart()) }

func flexFrom(d decimal.Decimal) flexNumber { return flexNumber{value: d} }

// parseDate accepts the date spellings the sheet produces. An unparseable
// date becomes the zero time rather than failing the whole snapshot.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

type rawCard struct {
	ID            string     `json:"id"`
	Name          string     `json:"nombre"`
	Bank          string     `json:"banco,omitempty"`
	Type          string     `json:"tipo"`
	Limit         flexNumber `json:"limite"`
	OpeningAmount flexNumber `json:"monto_apertura"`
}

type rawPending struct {
	ID               string     `json:"id"`
	PurchaseDate     string     `json:"fecha_gasto"`
	Card             string     `json:"tarjeta"`
	Category         string     `json:"categoria"`
	Description      string     `json:"descripcion"`
	Amount           flexNumber `json:"monto"`
	ClosingDate      string     `json:"fecha_cierre"`
	DueDate          string     `json:"fecha_pago"`
	State            string     `json:"estado"`
	InstallmentCount flexNumber `json:"num_cuotas"`
	InstallmentsPaid flexNumber `json:"cuotas_pagadas"`
	// AmountPaid is the exact paid counter. Older sheet rows predate the
	// column; for those the counter is rebuilt from cuotas_pagadas.
	AmountPaid *flexNumber `json:"monto_pagado,omitempty"`
	Type       string      `json:"tipo"`
	Notes      string      `json:"notas,omitempty"`
	Timestamp  flexNumber  `json:"timestamp"`
}

type rawHistory struct {
	Date        string     `json:"fecha"`
	Category    string     `json:"categoria"`
	Description string     `json:"descripcion"`
	Amount      flexNumber `json:"monto"`
	Type        string     `json:"tipo"`
	Account     string     `json:"cuenta,omitempty"`
	GoalID      string     `json:"meta_id,omitempty"`
	Timestamp   flexNumber `json:"timestamp"`
}

type rawGoal struct {
	ID        string     `json:"id"`
	Name      string     `json:"nombre"`
	Target    flexNumber `json:"monto_objetivo"`
	Saved     flexNumber `json:"monto_ahorrado"`
	State     string     `json:"estado"`
	Timestamp flexNumber `json:"timestamp"`
}

type rawProfile struct {
	Name     string `json:"nombre"`
	Avatar   string `json:"avatar,omitempty"`
	Currency string `json:"moneda,omitempty"`
}

type rawNotification struct {
	Enabled    bool       `json:"activo"`
	DaysBefore flexNumber `json:"dias_antes"`
}

type rawCategory struct {
	Name string `json:"nombre"`
	Icon string `json:"icono,omitempty"`
	Type string `json:"tipo"`
}

type rawFamily struct {
	Enabled bool     `json:"activo"`
	Members []string `json:"miembros,omitempty"`
}

type rawSnapshot struct {
	Cards              []rawCard        `json:"cards"`
	Pending            []rawPending     `json:"pending"`
	History            []rawHistory     `json:"history"`
	Goals              []rawGoal        `json:"goals"`
	Profile            *rawProfile      `json:"profile,omitempty"`
	NotificationConfig *rawNotification `json:"notificationConfig,omitempty"`
	CustomCategories   []rawCategory    `json:"customCategories,omitempty"`
	FamilyConfig       *rawFamily       `json:"familyConfig,omitempty"`
	GasVersion         string           `json:"gasVersion,omitempty"`
	SchemaVersion      string           `json:"schemaVersion,omitempty"`
}
