package availability

import (
	"testing"

	"github.com/nightowl-club/tablepass/internal/domain"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func i64Ptr(n int64) *int64   { return &n }

func TestEffective(t *testing.T) {
	table := domain.VenueTable{
		ID:            7,
		VenueID:       3,
		Zone:          "vip",
		Capacity:      8,
		MinimumSpend:  50000,
		DepositAmount: 5000,
		IsActive:      true,
	}

	tests := []struct {
		name         string
		override     *domain.TableOverride
		wantCapacity int
		wantSpend    int64
		wantDeposit  int64
		wantAvail    bool
	}{
		{
			name:         "no override row uses table defaults",
			override:     nil,
			wantCapacity: 8,
			wantSpend:    50000,
			wantDeposit:  5000,
			wantAvail:    true,
		},
		{
			name:         "empty override row changes nothing",
			override:     &domain.TableOverride{EventID: 1, TableID: 7},
			wantCapacity: 8,
			wantSpend:    50000,
			wantDeposit:  5000,
			wantAvail:    true,
		},
		{
			name: "override wins only where set",
			override: &domain.TableOverride{
				EventID:      1,
				TableID:      7,
				MinimumSpend: i64Ptr(80000),
			},
			wantCapacity: 8,
			wantSpend:    80000,
			wantDeposit:  5000,
			wantAvail:    true,
		},
		{
			name: "full override",
			override: &domain.TableOverride{
				EventID:       1,
				TableID:       7,
				Capacity:      intPtr(10),
				MinimumSpend:  i64Ptr(100000),
				DepositAmount: i64Ptr(20000),
			},
			wantCapacity: 10,
			wantSpend:    100000,
			wantDeposit:  20000,
			wantAvail:    true,
		},
		{
			name: "explicit zero deposit overrides table deposit",
			override: &domain.TableOverride{
				EventID:       1,
				TableID:       7,
				DepositAmount: i64Ptr(0),
			},
			wantCapacity: 8,
			wantSpend:    50000,
			wantDeposit:  0,
			wantAvail:    true,
		},
		{
			name: "is_available false disables the table",
			override: &domain.TableOverride{
				EventID:     1,
				TableID:     7,
				IsAvailable: boolPtr(false),
			},
			wantCapacity: 8,
			wantSpend:    50000,
			wantDeposit:  5000,
			wantAvail:    false,
		},
		{
			name: "is_available true is a no-op",
			override: &domain.TableOverride{
				EventID:     1,
				TableID:     7,
				IsAvailable: boolPtr(true),
			},
			wantCapacity: 8,
			wantSpend:    50000,
			wantDeposit:  5000,
			wantAvail:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			av := Effective(table, tt.override)

			if av.Capacity != tt.wantCapacity {
				t.Errorf("capacity = %d, want %d", av.Capacity, tt.wantCapacity)
			}
			if av.MinimumSpend != tt.wantSpend {
				t.Errorf("minimum spend = %d, want %d", av.MinimumSpend, tt.wantSpend)
			}
			if av.Deposit != tt.wantDeposit {
				t.Errorf("deposit = %d, want %d", av.Deposit, tt.wantDeposit)
			}
			if av.Available != tt.wantAvail {
				t.Errorf("available = %v, want %v", av.Available, tt.wantAvail)
			}
			if av.PartySize != av.Capacity {
				t.Errorf("party size = %d, must equal effective capacity %d", av.PartySize, av.Capacity)
			}
		})
	}
}
