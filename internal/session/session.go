// Package session хранит состояние диалога каждого пользователя в памяти.
// Многошаговые сценарии (вывод средств, рассылка, управление балансом)
// двигаются по шагам: каждое следующее текстовое сообщение интерпретируется
// в контексте текущего шага.
//
// Состояние не переживает рестарт бота. Это осознанно: незавершённый диалог
// просто начинается заново, ничего в БД не ломается.
package session

import "sync"

// Step — шаг многошагового диалога.
type Step string

const (
	// StepNone — диалог не начат, обычный режим.
	StepNone Step = ""

	// Ожидание фото после нажатия кнопки «Отправить фото».
	// Фото без этого шага не засчитываются.
	StepWaitingPhoto Step = "waiting_photo"

	// Вывод средств
	StepWithdrawMethod  Step = "withdraw_method"
	StepWithdrawAmount  Step = "withdraw_amount"
	StepWithdrawDetails Step = "withdraw_details"

	// Рассылка (админ)
	StepBroadcastTarget Step = "broadcast_target"
	StepBroadcastCount  Step = "broadcast_count"
	StepBroadcastText   Step = "broadcast_text"
	StepBroadcastLink   Step = "broadcast_link"
	StepBroadcastReward Step = "broadcast_reward"

	// Управление балансом (админ)
	StepBalanceSearch Step = "balance_search"
	StepBalanceAmount Step = "balance_amount"

	// Отклонение заявки на вывод (админ): ожидание причины
	StepRejectReason Step = "reject_reason"
)

// State — состояние диалога одного пользователя.
type State struct {
	Step Step
	// Data — промежуточные данные сценария (выбранный способ вывода,
	// текст рассылки, ID найденного пользователя и т.п.)
	Data map[string]string
}

// Store — потокобезопасное хранилище состояний диалогов.
type Store struct {
	mu     sync.RWMutex
	states map[int64]*State
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		states: make(map[int64]*State),
	}
}

// Set переводит пользователя на указанный шаг, сбрасывая данные сценария.
func (s *Store) Set(userID int64, step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = &State{
		Step: step,
		Data: make(map[string]string),
	}
}

// Advance переводит пользователя на следующий шаг, сохраняя данные сценария.
func (s *Store) Advance(userID int64, step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		st = &State{Data: make(map[string]string)}
		s.states[userID] = st
	}
	st.Step = step
}

// Step возвращает текущий шаг пользователя (StepNone, если диалога нет).
func (s *Store) Step(userID int64) Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return StepNone
	}
	return st.Step
}

// Put сохраняет значение в данные текущего сценария.
func (s *Store) Put(userID int64, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		return
	}
	st.Data[key] = value
}

// Get возвращает сохранённое значение сценария.
func (s *Store) Get(userID int64, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return "", false
	}
	v, ok := st.Data[key]
	return v, ok
}

// Clear завершает диалог пользователя.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

// Is проверяет, находится ли пользователь на указанном шаге.
func (s *Store) Is(userID int64, step Step) bool {
	return s.Step(userID) == step
}

// InDialog сообщает, идёт ли у пользователя какой-либо диалог.
func (s *Store) InDialog(userID int64) bool {
	return s.Step(userID) != StepNone
}
