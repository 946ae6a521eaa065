package session

import (
	"sync"
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	const userID = int64(42)

	if s.InDialog(userID) {
		t.Fatal("новый пользователь не должен быть в диалоге")
	}
	if got := s.Step(userID); got != StepNone {
		t.Fatalf("Step() = %q, want StepNone", got)
	}

	s.Set(userID, StepWithdrawMethod)
	if !s.Is(userID, StepWithdrawMethod) {
		t.Error("после Set пользователь должен быть на шаге withdraw_method")
	}

	s.Put(userID, "method", "card")
	s.Advance(userID, StepWithdrawAmount)
	if !s.Is(userID, StepWithdrawAmount) {
		t.Error("Advance не переключил шаг")
	}
	// Advance сохраняет данные сценария
	if v, ok := s.Get(userID, "method"); !ok || v != "card" {
		t.Errorf("Get(method) = %q, %v; want \"card\", true", v, ok)
	}

	// Set сбрасывает данные
	s.Set(userID, StepBroadcastTarget)
	if _, ok := s.Get(userID, "method"); ok {
		t.Error("Set должен сбрасывать данные сценария")
	}

	s.Clear(userID)
	if s.InDialog(userID) {
		t.Error("после Clear диалог должен быть завершён")
	}
}

func TestStorePutWithoutDialog(t *testing.T) {
	s := NewStore()
	// Put без активного диалога не должен паниковать и не должен создавать состояние
	s.Put(1, "k", "v")
	if _, ok := s.Get(1, "k"); ok {
		t.Error("Put вне диалога не должен сохранять данные")
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Set(id, StepBalanceSearch)
			s.Put(id, "query", "test")
			s.Advance(id, StepBalanceAmount)
			_ = s.Step(id)
			s.Clear(id)
		}(int64(i))
	}
	wg.Wait()
}
