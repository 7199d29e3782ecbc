package scanner

import (
	"fmt"
	"sync"
)

// Состояния задачи опроса одной площадки в рамках одной возможности (§4.7).
const (
	StatePending     = "PENDING"
	StateFetching    = "FETCHING"
	StateRateLimited = "RATE_LIMITED"
	StateCompleted   = "COMPLETED"
	StateDropped     = "DROPPED"
)

// ValidTransitions определяет допустимые переходы между состояниями задачи.
var ValidTransitions = map[string][]string{
	StatePending:     {StateFetching},
	StateFetching:    {StateRateLimited, StateDropped, StateCompleted},
	StateRateLimited: {StatePending},
	StateCompleted:   {},
	StateDropped:     {},
}

// CanTransition проверяет допустимость перехода.
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, является ли состояние конечным (completed, dropped).
func IsTerminal(s string) bool {
	return s == StateCompleted || s == StateDropped
}

// StateInfo возвращает человекочитаемое описание состояния.
func StateInfo(s string) string {
	switch s {
	case StatePending:
		return "Ожидает диспетчеризации"
	case StateFetching:
		return "Запрос к площадке выполняется"
	case StateRateLimited:
		return "Площадка временно ограничила частоту запросов"
	case StateCompleted:
		return "Котировка получена"
	case StateDropped:
		return "Площадка исключена из этой возможности"
	default:
		return "Неизвестное состояние"
	}
}

// VenueTask - состояние опроса одной площадки в рамках одной возможности.
type VenueTask struct {
	mu    sync.Mutex
	Venue string
	state string
}

// NewVenueTask создаёт задачу в состоянии PENDING.
func NewVenueTask(venue string) *VenueTask {
	return &VenueTask{Venue: venue, state: StatePending}
}

// State возвращает текущее состояние задачи.
func (t *VenueTask) State() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StateTransitionError сообщает о попытке недопустимого перехода.
type StateTransitionError struct {
	Venue string
	From  string
	To    string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("venue %s: invalid transition %s -> %s", e.Venue, e.From, e.To)
}

// TryTransition атомарно переводит задачу в состояние to, если переход допустим.
// При недопустимом переходе состояние не меняется и возвращается *StateTransitionError.
func (t *VenueTask) TryTransition(to string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !CanTransition(t.state, to) {
		return &StateTransitionError{Venue: t.Venue, From: t.state, To: to}
	}
	t.state = to
	return nil
}

// ForceTransition принудительно устанавливает состояние, минуя проверку
// ValidTransitions. Используется только при отмене скана (cleanup на всех путях выхода).
func (t *VenueTask) ForceTransition(to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = to
}
