package config

import "testing"

func TestParseInt64CSV(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int64
		wantErr bool
	}{
		{"один ID", "123456", []int64{123456}, false},
		{"несколько с пробелами", "1, 2 ,3", []int64{1, 2, 3}, false},
		{"пустая строка", "", nil, false},
		{"мусор", "1,abc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInt64CSV(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInt64CSV(%q) err = %v, wantErr = %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseInt64CSV(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseInt64CSV(%q)[%d] = %d, want %d", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMinWithdraw(t *testing.T) {
	cfg := Config{MinWithdrawCard: 150, MinWithdrawPhone: 100}
	if got := cfg.MinWithdraw(); got != 100 {
		t.Errorf("MinWithdraw() = %d, want 100", got)
	}
	cfg = Config{MinWithdrawCard: 50, MinWithdrawPhone: 100}
	if got := cfg.MinWithdraw(); got != 50 {
		t.Errorf("MinWithdraw() = %d, want 50", got)
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{AdminIDs: []int64{10, 20}}
	if !cfg.IsAdmin(10) {
		t.Error("IsAdmin(10) = false, want true")
	}
	if cfg.IsAdmin(30) {
		t.Error("IsAdmin(30) = true, want false")
	}
}
