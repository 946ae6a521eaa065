package users

import (
	"strings"
	"testing"
)

func TestAudienceQuery(t *testing.T) {
	all := []Audience{
		AudienceAll, AudienceTopActive, AudienceTopInactive,
		AudienceRandom, AudienceBlocked, AudienceUnblocked,
	}
	for _, a := range all {
		query, limited, err := audienceQuery(a)
		if err != nil {
			t.Fatalf("audienceQuery(%q) вернул ошибку: %v", a, err)
		}
		if !strings.Contains(query, "is_permanently_banned = FALSE") {
			t.Errorf("audienceQuery(%q) не фильтрует вечно забаненных", a)
		}
		if !strings.Contains(query, "rules_accepted = TRUE") {
			t.Errorf("audienceQuery(%q) не фильтрует не принявших правила", a)
		}
		if limited != AudienceLimited(a) {
			t.Errorf("audienceQuery(%q): limited = %v, want %v", a, limited, AudienceLimited(a))
		}
		if limited && !strings.Contains(query, "LIMIT $1") {
			t.Errorf("audienceQuery(%q) не ограничивает число получателей", a)
		}
		if !limited && strings.Contains(query, "LIMIT") {
			t.Errorf("audienceQuery(%q) не должен содержать LIMIT", a)
		}
	}

	if _, _, err := audienceQuery(Audience("everyone")); err == nil {
		t.Error("audienceQuery с неизвестной категорией должен вернуть ошибку")
	}
}
