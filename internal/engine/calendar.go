package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"eduquest/internal/catalog"
)

// AddStudyBlock schedules a study session on the calendar.
func (s *Service) AddStudyBlock(ctx context.Context, title string, date time.Time) (CalendarEvent, error) {
	const op = "add study block"
	s.lock()
	defer s.unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		return CalendarEvent{}, s.fail(invalid(op, "Study block title cannot be empty."))
	}
	if date.IsZero() {
		return CalendarEvent{}, s.fail(invalid(op, "Study block needs a date."))
	}
	ev := CalendarEvent{
		ID:    uuid.NewString(),
		Title: title,
		Date:  date.UTC(),
		Type:  catalog.QuestStudyBlock,
	}
	s.st.Calendar = append(s.st.Calendar, ev)
	s.touch(KeyCalendar)
	s.notify(SeveritySuccess, "Study block %q scheduled for %s.", title, ev.Date.Format("Jan 2"))
	s.commit(ctx)
	return ev, nil
}

func (s *Service) RemoveStudyBlock(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()

	for i, ev := range s.st.Calendar {
		if ev.ID != id {
			continue
		}
		s.st.Calendar = append(s.st.Calendar[:i], s.st.Calendar[i+1:]...)
		s.touch(KeyCalendar)
		s.notify(SeverityInfo, "Study block %q removed.", ev.Title)
		s.commit(ctx)
		return nil
	}
	return s.fail(notFound("remove study block", "Calendar event %q not found.", id))
}

// CalendarMonth returns the month's study blocks and quest due dates,
// ordered by date.
func (s *Service) CalendarMonth(year int, month time.Month) []CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	in := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	var out []CalendarEvent
	for _, ev := range s.st.Calendar {
		if in(ev.Date) {
			out = append(out, ev)
		}
	}
	for _, q := range s.st.Quests {
		if q.DueDate == nil || q.IsHidden || !in(q.DueDate.UTC()) {
			continue
		}
		out = append(out, CalendarEvent{
			ID:      "quest:" + q.ID,
			Title:   q.Title,
			Date:    q.DueDate.UTC(),
			Type:    q.Type,
			QuestID: q.ID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
