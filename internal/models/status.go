package models

import "strings"

// Status - этап жизненного цикла отчета
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {},
	StatusRejected:   {},
}

// ParseStatus разбирает статус. Пустое значение означает pending,
// написание через подчеркивание принимается наравне с дефисом.
func ParseStatus(value string) (Status, bool) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-"))
	if s == "" {
		return StatusPending, true
	}
	if _, ok := statusTransitions[s]; !ok {
		return "", false
	}
	return s, true
}

// Normalize приводит пустой статус к pending
func (s Status) Normalize() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// CanTransitionTo проверяет допустимость перехода
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s.Normalize()] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal - из статуса больше нет переходов
func (s Status) IsFinal() bool {
	return len(statusTransitions[s.Normalize()]) == 0
}

// StatusCounts - количество отчетов по статусам
type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
}

// Add учитывает отчет с указанным статусом
func (c *StatusCounts) Add(s Status, n int) {
	switch s.Normalize() {
	case StatusPending:
		c.Pending += n
	case StatusInProgress:
		c.InProgress += n
	case StatusResolved:
		c.Resolved += n
	case StatusRejected:
		c.Rejected += n
	}
}

// Total - сумма по всем статусам
func (c StatusCounts) Total() int {
	return c.Pending + c.InProgress + c.Resolved + c.Rejected
}
