package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	apperrors "milan/internal/errors"
	"milan/internal/logger"
	"milan/internal/models"
)

// ErrInvalidDate возвращается для даты не в формате YYYY-MM-DD
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// festivalZone - часовой пояс расписания фестиваля (IST, UTC+5:30)
var festivalZone = time.FixedZone("IST", 5*3600+30*60)

const dateLayout = "2006-01-02"

type CatalogService struct {
	events   []models.Event
	bySlug   map[string]int
	searcher EventSearcher
}

// NewCatalogService сортирует каталог по времени начала; searcher может быть nil
func NewCatalogService(events []models.Event, searcher EventSearcher) *CatalogService {
	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	SortByStart(sorted)

	bySlug := make(map[string]int, len(sorted))
	for i, e := range sorted {
		bySlug[e.Slug] = i
	}

	return &CatalogService{
		events:   sorted,
		bySlug:   bySlug,
		searcher: searcher,
	}
}

// List возвращает мероприятия, query ищет по тексту, date фильтрует по дню
func (s *CatalogService) List(ctx context.Context, query, date string) ([]models.Event, error) {
	if date != "" {
		if _, err := time.ParseInLocation(dateLayout, date, festivalZone); err != nil {
			return nil, ErrInvalidDate
		}
	}

	query = strings.TrimSpace(query)
	if query != "" && s.searcher != nil {
		events, err := s.searcher.Search(ctx, query, date)
		if err == nil {
			SortByStart(events)
			return events, nil
		}
		logger.WithContext(ctx).Warn("Elasticsearch search failed, using in-memory filter", "error", err, "query", query)
	}

	return s.filter(query, date), nil
}

func (s *CatalogService) filter(query, date string) []models.Event {
	query = strings.ToLower(query)
	result := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		if date != "" && e.Date != date {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matches(e models.Event, query string) bool {
	for _, field := range []string{e.Title, e.Description, e.Category, e.Venue} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Calendar группирует мероприятия по дням
func (s *CatalogService) Calendar() []models.CalendarDay {
	days := []models.CalendarDay{}
	for _, e := range s.events {
		if n := len(days); n > 0 && days[n-1].Date == e.Date {
			days[n-1].Events = append(days[n-1].Events, e)
			continue
		}
		days = append(days, models.CalendarDay{Date: e.Date, Events: []models.Event{e}})
	}
	return days
}

func (s *CatalogService) Get(slug string) (*models.Event, error) {
	i, ok := s.bySlug[slug]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	event := s.events[i]
	return &event, nil
}

// All возвращает весь каталог для индексации
func (s *CatalogService) All() []models.Event {
	return s.events
}

// SortByStart sorts events by start time in festival time, then by title.
func SortByStart(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := StartTime(events[i]), StartTime(events[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return events[i].Title < events[j].Title
	})
}

// StartTime parses date and time in festival time. A missing time means
// midnight; an unparsable date sorts last.
func StartTime(e models.Event) time.Time {
	clock := e.Time
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation(dateLayout+" 15:04", e.Date+" "+clock, festivalZone)
	if err != nil {
		return time.Date(9999, 1, 1, 0, 0, 0, 0, festivalZone)
	}
	return t
}
