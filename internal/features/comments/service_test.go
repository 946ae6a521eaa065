package comments

import (
	"testing"
	"time"
)

func TestHashPhoto(t *testing.T) {
	a := HashPhoto([]byte("photo-bytes"))
	b := HashPhoto([]byte("photo-bytes"))
	c := HashPhoto([]byte("other-bytes"))

	if a != b {
		t.Error("одинаковое содержимое должно давать одинаковый хеш")
	}
	if a == c {
		t.Error("разное содержимое не должно давать одинаковый хеш")
	}
	// SHA-256 в hex — всегда 64 символа
	if len(a) != 64 {
		t.Errorf("len(hash) = %d, want 64", len(a))
	}
}

func TestHashPhotoEmpty(t *testing.T) {
	// Хеш пустого файла стабилен и не паникует
	got := HashPhoto(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("HashPhoto(nil) = %q, want %q", got, want)
	}
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		date      string
		wantWeek  int
		wantMonth int
	}{
		// 1 января 2026 — четверг первой ISO-недели года
		{"2026-01-01", 1, 1},
		// 31 августа 2026 — понедельник 36-й недели
		{"2026-08-31", 36, 8},
		// 31 декабря 2024 относится к первой ISO-неделе 2025 года
		{"2024-12-31", 1, 12},
	}
	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		week, month := PeriodOf(d)
		if week != tt.wantWeek || month != tt.wantMonth {
			t.Errorf("PeriodOf(%s) = (%d, %d), want (%d, %d)", tt.date, week, month, tt.wantWeek, tt.wantMonth)
		}
	}
}
