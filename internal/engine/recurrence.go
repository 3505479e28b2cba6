package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eduquest/internal/catalog"
)

type Recurrence string

const (
	RecurOnce    Recurrence = "once"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurOnce, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	default:
		return false
	}
}

func ParseRecurrence(input string) (Recurrence, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return RecurOnce, nil
	}
	r := Recurrence(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid recurrence: %q", input)
	}
	return r, nil
}

// Next returns the occurrence after t.
func (r Recurrence) Next(t time.Time) (time.Time, error) {
	switch r {
	case RecurDaily:
		return t.AddDate(0, 0, 1), nil
	case RecurWeekly:
		return t.AddDate(0, 0, 7), nil
	case RecurMonthly:
		return t.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("recurrence %q has no next occurrence", r)
	}
}

const maxOccurrences = 52

// AddRecurringStudyBlocks schedules count study blocks starting at first and
// repeating every r. A once recurrence schedules a single block.
func (s *Service) AddRecurringStudyBlocks(ctx context.Context, title string, first time.Time, r Recurrence, count int) ([]CalendarEvent, error) {
	const op = "add study block"
	if r == RecurOnce {
		ev, err := s.AddStudyBlock(ctx, title, first)
		if err != nil {
			return nil, err
		}
		return []CalendarEvent{ev}, nil
	}

	s.lock()
	defer s.unlock()

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return nil, s.fail(invalid(op, "Study block title cannot be empty."))
	case first.IsZero():
		return nil, s.fail(invalid(op, "Study block needs a date."))
	case !r.IsValid():
		return nil, s.fail(invalid(op, "unknown recurrence %q", r))
	case count < 1 || count > maxOccurrences:
		return nil, s.fail(invalid(op, "repeat count must be between 1 and %d", maxOccurrences))
	}

	out := make([]CalendarEvent, 0, count)
	at := first.UTC()
	for i := 0; i < count; i++ {
		out = append(out, CalendarEvent{ID: uuid.NewString(), Title: title, Date: at, Type: catalog.QuestStudyBlock})
		// r is valid and not once here.
		at, _ = r.Next(at)
	}
	s.st.Calendar = append(s.st.Calendar, out...)
	s.touch(KeyCalendar)
	s.notify(SeveritySuccess, "%d %s study blocks %q scheduled from %s.", count, r, title, out[0].Date.Format("Jan 2"))
	s.commit(ctx)
	return out, nil
}
