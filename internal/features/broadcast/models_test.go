package broadcast

import "testing"

func TestCompleteCallbackRoundTrip(t *testing.T) {
	data := BuildCompleteCallback(42, 100)
	if data != "complete_42_100" {
		t.Errorf("BuildCompleteCallback(42, 100) = %q", data)
	}

	id, reward, ok := ParseCompleteCallback(data)
	if !ok {
		t.Fatal("ParseCompleteCallback не распознал собственный формат")
	}
	if id != 42 || reward != 100 {
		t.Errorf("ParseCompleteCallback = (%d, %d), want (42, 100)", id, reward)
	}
}

func TestParseCompleteCallbackInvalid(t *testing.T) {
	for _, data := range []string{
		"complete_",
		"complete_42",
		"complete_abc_100",
		"complete_42_xyz",
		"wd_approve_42",
		"",
	} {
		if _, _, ok := ParseCompleteCallback(data); ok {
			t.Errorf("ParseCompleteCallback(%q) не должен проходить", data)
		}
	}
}

func TestIsCompleteCallback(t *testing.T) {
	if !IsCompleteCallback("complete_1_50") {
		t.Error("IsCompleteCallback(complete_1_50) = false")
	}
	if IsCompleteCallback("wd_approve_1") {
		t.Error("IsCompleteCallback(wd_approve_1) = true")
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		valid bool
	}{
		{"50", 50, true},
		{" 10 ", 10, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"пятьдесят", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, valid := parseCount(tt.in)
		if got != tt.want || valid != tt.valid {
			t.Errorf("parseCount(%q) = (%d, %v), want (%d, %v)", tt.in, got, valid, tt.want, tt.valid)
		}
	}
}
