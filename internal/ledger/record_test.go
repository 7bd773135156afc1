package ledger

import (
	"testing"
	"time"
)

func TestFilterMatch(t *testing.T) {
	r := sampleRecord()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"category any case", Filter{Category: "ventas"}, true},
		{"other category", Filter{Category: "Arriendo"}, false},
		{"flow", Filter{Flow: FlowIncome}, true},
		{"other flow", Filter{Flow: FlowExpense}, false},
		{"inclusive range", Filter{DateFrom: &from, DateTo: &to}, true},
		{"range before", Filter{DateTo: &before}, false},
		{"search", Filter{Search: "FACTURA"}, true},
		{"search miss", Filter{Search: "boleta"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(r); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
	if !(Filter{}).Empty() || (Filter{Search: "x"}).Empty() {
		t.Error("Empty misreports")
	}
}

func TestScopeKey(t *testing.T) {
	a := Scope{OwnerID: "1", CompanyID: "2", VaultID: "3"}
	b := Scope{OwnerID: "1", CompanyID: "23", VaultID: ""}
	if a.Key() == b.Key() {
		t.Error("distinct scopes must have distinct keys")
	}
}
