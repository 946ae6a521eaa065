package bot

import "testing"

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		name      string
		text      string
		wantCmd   string
		wantArgs  []string
		isCommand bool
	}{
		{"простая команда", "/start", "start", nil, true},
		{"с аргументом", "/ban 12345", "ban", []string{"12345"}, true},
		{"с упоминанием бота", "/start@RudepsBot", "start", nil, true},
		{"верхний регистр", "/BAN 1", "ban", []string{"1"}, true},
		{"пробелы вокруг", "  /menu  ", "menu", nil, true},
		{"не команда", "привет", "", nil, false},
		{"один слэш", "/", "", nil, false},
		{"пусто", "", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			if ok != tt.isCommand {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tt.text, ok, tt.isCommand)
			}
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestLockedButton(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{ButtonBalance, true},
		{ButtonWithdraw, true},
		{ButtonHelp, true},
		{ButtonSubmitPhoto, false},
		{ButtonCancel, false},
		{"просто текст", false},
	}
	for _, tt := range tests {
		if got := lockedButton(tt.text); got != tt.want {
			t.Errorf("lockedButton(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
