package booking

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PageSize is the number of reservations shown per calendar page.
const PageSize = 10

// Page is one window of an ordered reservation listing.
type Page struct {
	Items      []Reservation
	Index      int
	TotalPages int
	TotalItems int
}

// Calendar derives month groupings and paginates reservation listings for
// display. Pagination cursors live in a keyed store with TTL eviction; a
// missing entry is the "navigation expired" error path.
type Calendar struct {
	store  *Store
	loc    *time.Location
	now    func() time.Time
	ttl    time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	cursors map[string]*cursorEntry
}

type cursorEntry struct {
	items     []Reservation
	page      int
	expiresAt time.Time
}

// NewCalendar wires the calendar view over the reservation store.
func NewCalendar(store *Store, loc *time.Location, now func() time.Time, ttl time.Duration, logger *slog.Logger) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Calendar{
		store:   store,
		loc:     loc,
		now:     now,
		ttl:     ttl,
		logger:  defaultLogger(logger),
		cursors: make(map[string]*cursorEntry),
	}
}

// MonthOptions lists every MM/YYYY present in the collection, chronologically
// ascending. The current month is always included even when it holds no
// reservations.
func (c *Calendar) MonthOptions() []string {
	reservations := c.store.All()
	now := c.now().In(c.loc)
	current := fmt.Sprintf("%02d/%d", int(now.Month()), now.Year())

	seen := map[string]struct{}{current: {}}
	keys := []string{current}
	for _, r := range reservations {
		key := r.MonthYear()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sortMonthYears(keys)
	return keys
}

// ForMonth filters the collection to one MM/YYYY group, excluding cancelled
// reservations. When restrictToUser is non-empty only reservations the user
// organises or participates in are kept. Results are ordered by meeting
// start.
func (c *Calendar) ForMonth(monthYear, restrictToUser string) []Reservation {
	matches := c.store.Filter(func(r Reservation) bool {
		if r.Status == StatusCancelled || r.MonthYear() != monthYear {
			return false
		}
		if restrictToUser != "" && !r.Involves(restrictToUser) {
			return false
		}
		return true
	})
	c.sortByStart(matches)
	return matches
}

// OpenView materializes a pagination cursor over the month's reservations
// for the viewer and returns the opening page. The view opens on the last
// page, closest to the most distant reservations.
func (c *Calendar) OpenView(viewerID, monthYear string) Page {
	items := c.ForMonth(monthYear, "")
	if len(items) == 0 {
		c.dropCursor(viewerID)
		return Page{}
	}

	page := lastPage(len(items))
	c.putCursor(viewerID, &cursorEntry{items: items, page: page})
	return c.pageAt(items, page)
}

// Move shifts the viewer's cursor by delta pages, clamped to the valid
// range, and returns the resulting page.
func (c *Calendar) Move(viewerID string, delta int) (Page, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cursors[viewerID]
	if !ok || now.After(entry.expiresAt) {
		delete(c.cursors, viewerID)
		return Page{}, ErrNoCursor
	}

	page := entry.page + delta
	if page < 0 {
		page = 0
	}
	if max := lastPage(len(entry.items)); page > max {
		page = max
	}
	entry.page = page
	entry.expiresAt = now.Add(c.ttl)
	return c.pageAt(entry.items, page), nil
}

func (c *Calendar) pageAt(items []Reservation, page int) Page {
	start := page * PageSize
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	window := make([]Reservation, end-start)
	copy(window, items[start:end])
	return Page{
		Items:      window,
		Index:      page,
		TotalPages: lastPage(len(items)) + 1,
		TotalItems: len(items),
	}
}

func (c *Calendar) sortByStart(reservations []Reservation) {
	sort.SliceStable(reservations, func(i, j int) bool {
		a, okA := MeetingStart(reservations[i].Date, reservations[i].TimeRange, c.loc)
		b, okB := MeetingStart(reservations[j].Date, reservations[j].TimeRange, c.loc)
		if !okA || !okB {
			return okB
		}
		return a.Before(b)
	})
}

func (c *Calendar) putCursor(viewerID string, entry *cursorEntry) {
	now := c.now()
	entry.expiresAt = now.Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, cursor := range c.cursors {
		if now.After(cursor.expiresAt) {
			delete(c.cursors, key)
		}
	}
	c.cursors[viewerID] = entry
}

func (c *Calendar) dropCursor(viewerID string) {
	c.mu.Lock()
	delete(c.cursors, viewerID)
	c.mu.Unlock()
}

func lastPage(count int) int {
	if count <= 0 {
		return 0
	}
	return (count - 1) / PageSize
}

// monthYearKeys collects the distinct MM/YYYY groups of the reservations,
// chronologically ascending.
func monthYearKeys(reservations []Reservation, includeCancelled bool) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, r := range reservations {
		if !includeCancelled && r.Status == StatusCancelled {
			continue
		}
		key := r.MonthYear()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sortMonthYears(keys)
	return keys
}

func sortMonthYears(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		mi, yi := splitMonthYear(keys[i])
		mj, yj := splitMonthYear(keys[j])
		if yi != yj {
			return yi < yj
		}
		return mi < mj
	})
}

func splitMonthYear(key string) (month, year int) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	month, _ = strconv.Atoi(parts[0])
	year, _ = strconv.Atoi(parts[1])
	return month, year
}
