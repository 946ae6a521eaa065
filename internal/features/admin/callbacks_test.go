package admin

import "testing"

func TestBalanceCallbackRoundTrip(t *testing.T) {
	tests := []struct {
		kind BalanceKind
		op   BalanceOp
		id   int64
		want string
	}{
		{KindComments, OpAdd, 42, "bal_comments_add_42"},
		{KindComments, OpSub, 42, "bal_comments_sub_42"},
		{KindMoney, OpAdd, 7, "bal_money_add_7"},
		{KindMoney, OpSub, 7, "bal_money_sub_7"},
	}
	for _, tt := range tests {
		data := BuildBalanceCallback(tt.kind, tt.op, tt.id)
		if data != tt.want {
			t.Errorf("BuildBalanceCallback(%s, %s, %d) = %q, want %q", tt.kind, tt.op, tt.id, data, tt.want)
		}
		kind, op, id, ok := ParseBalanceCallback(data)
		if !ok || kind != tt.kind || op != tt.op || id != tt.id {
			t.Errorf("ParseBalanceCallback(%q) = (%s, %s, %d, %v)", data, kind, op, id, ok)
		}
	}
}

func TestParseBalanceCallbackInvalid(t *testing.T) {
	for _, data := range []string{
		"bal_",
		"bal_comments_add",
		"bal_karma_add_1",
		"bal_comments_set_1",
		"bal_comments_add_x",
		"complete_1_50",
		"",
	} {
		if _, _, _, ok := ParseBalanceCallback(data); ok {
			t.Errorf("ParseBalanceCallback(%q) не должен проходить", data)
		}
	}
}
