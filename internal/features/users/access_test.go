package users

import (
	"errors"
	"testing"

	"github.com/rudeps/RudepsBot/internal/common"
)

func TestBlocked(t *testing.T) {
	tests := []struct {
		balance   int64
		threshold int64
		want      bool
	}{
		{0, 10, true},
		{9, 10, true},
		{10, 10, false},
		{11, 10, false},
	}
	for _, tt := range tests {
		if got := Blocked(tt.balance, tt.threshold); got != tt.want {
			t.Errorf("Blocked(%d, %d) = %v, want %v", tt.balance, tt.threshold, got, tt.want)
		}
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		balance   int64
		threshold int64
		want      int64
	}{
		{0, 10, 10},
		{7, 10, 3},
		{10, 10, 0},
		{15, 10, 0},
	}
	for _, tt := range tests {
		if got := Remaining(tt.balance, tt.threshold); got != tt.want {
			t.Errorf("Remaining(%d, %d) = %d, want %d", tt.balance, tt.threshold, got, tt.want)
		}
	}
}

func TestApplyDecay(t *testing.T) {
	tests := []struct {
		balance   int64
		decrement int64
		want      int64
	}{
		{25, 10, 15},
		{10, 10, 0},
		// Баланс не уходит в минус
		{3, 10, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := ApplyDecay(tt.balance, tt.decrement); got != tt.want {
			t.Errorf("ApplyDecay(%d, %d) = %d, want %d", tt.balance, tt.decrement, got, tt.want)
		}
	}
}

func TestNewlyBlocked(t *testing.T) {
	const threshold = 10
	tests := []struct {
		name     string
		oldBal   int64
		newBal   int64
		want     bool
	}{
		{"был открыт, стал закрыт", 12, 2, true},
		{"ровно на пороге, упал ниже", 10, 0, true},
		{"был закрыт и остался закрыт", 5, 0, false},
		{"остался открытым", 25, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewlyBlocked(tt.oldBal, tt.newBal, threshold); got != tt.want {
				t.Errorf("NewlyBlocked(%d, %d, %d) = %v, want %v", tt.oldBal, tt.newBal, threshold, got, tt.want)
			}
		})
	}
}

func TestParseAudience(t *testing.T) {
	for _, s := range []string{"all", "top_active", "top_inactive", "random", "blocked", "unblocked"} {
		if _, ok := ParseAudience(s); !ok {
			t.Errorf("ParseAudience(%q) не распознал валидную категорию", s)
		}
	}
	if _, ok := ParseAudience("everyone"); ok {
		t.Error("ParseAudience(\"everyone\") не должен проходить")
	}
}

func TestDisplayName(t *testing.T) {
	u := User{Username: "ivan", FirstName: "Иван"}
	if got := u.DisplayName(); got != "@ivan" {
		t.Errorf("DisplayName() = %q, want @ivan", got)
	}
	u = User{FirstName: "Иван", LastName: "Петров"}
	if got := u.DisplayName(); got != "Иван Петров" {
		t.Errorf("DisplayName() = %q, want Иван Петров", got)
	}
}

func TestGate(t *testing.T) {
	banned := &User{UserID: 1, IsPermanentlyBanned: true}
	if err := Gate(banned); !errors.Is(err, common.ErrPermanentlyBanned) {
		t.Errorf("Gate(забаненный) = %v, want ErrPermanentlyBanned", err)
	}

	ok := &User{UserID: 2, IsBlocked: true}
	if err := Gate(ok); err != nil {
		t.Errorf("Gate(заблокированный по балансу) = %v, want nil", err)
	}
}

func TestAudienceLimited(t *testing.T) {
	tests := []struct {
		audience Audience
		want     bool
	}{
		{AudienceAll, false},
		{AudienceTopActive, true},
		{AudienceTopInactive, true},
		{AudienceRandom, true},
		{AudienceBlocked, false},
		{AudienceUnblocked, false},
	}
	for _, tt := range tests {
		if got := AudienceLimited(tt.audience); got != tt.want {
			t.Errorf("AudienceLimited(%q) = %v, want %v", tt.audience, got, tt.want)
		}
	}
}
