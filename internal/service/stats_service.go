package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const (
	dayFormat      = "2006-01-02"
	agentWindowLen = 7
)

// CategoryCount is one entry of the per-category breakdown.
type CategoryCount struct {
	Category domain.TicketCategory `json:"category"`
	Count    int                   `json:"count"`
}

// TimeSeriesPoint is one entry of the tickets-per-day series.
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TicketStats is the dashboard payload shared by the global and scoped
// views. StatusCounts always carries all four statuses, zero-filled.
type TicketStats struct {
	TotalTickets            int                         `json:"totalTickets"`
	StatusCounts            map[domain.TicketStatus]int `json:"statusCounts"`
	AvgResolutionTimeInDays float64                     `json:"avgResolutionTimeInDays"`
	CategoryCounts          []CategoryCount             `json:"categoryCounts"`
	TicketsOverTime         []TimeSeriesPoint           `json:"ticketsOverTime"`
}

// StatsService derives dashboard statistics from ticket rows, computed
// freshly on each call. No caching: volumes for an internal tool make
// recomputation cheap.
type StatsService struct {
	tickets repository.TicketRepository
	now     func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository) *StatsService {
	return &StatsService{tickets: tickets, now: time.Now}
}

// Global aggregates over every ticket in the system.
func (s *StatsService) Global(ctx context.Context) (*TicketStats, error) {
	return s.aggregate(ctx, repository.TicketFilter{}, false)
}

// ForEmployee aggregates over tickets the employee created.
func (s *StatsService) ForEmployee(ctx context.Context, userID string) (*TicketStats, error) {
	return s.aggregate(ctx, repository.TicketFilter{CreatedBy: &userID}, false)
}

// ForAgent aggregates over tickets assigned to the agent. Its time
// series is fixed to the trailing seven calendar days including today,
// zero-filled, so dashboards always chart exactly seven points.
func (s *StatsService) ForAgent(ctx context.Context, userID string) (*TicketStats, error) {
	return s.aggregate(ctx, repository.TicketFilter{AssignedTo: &userID}, true)
}

func (s *StatsService) aggregate(ctx context.Context, filter repository.TicketFilter, fixedWindow bool) (*TicketStats, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &TicketStats{
		TotalTickets: len(tickets),
		StatusCounts: make(map[domain.TicketStatus]int, len(domain.AllTicketStatuses)),
	}
	for _, status := range domain.AllTicketStatuses {
		stats.StatusCounts[status] = 0
	}

	categoryCounts := map[domain.TicketCategory]int{}
	perDay := map[string]int{}
	var resolvedDays []float64

	for i := range tickets {
		ticket := &tickets[i]
		if _, known := stats.StatusCounts[ticket.Status]; known {
			stats.StatusCounts[ticket.Status]++
		}
		categoryCounts[ticket.Category]++
		perDay[ticket.CreatedAt.UTC().Format(dayFormat)]++

		if ticket.Status == domain.TicketStatusResolved && ticket.ResolvedAt != nil {
			span := ticket.ResolvedAt.Sub(ticket.CreatedAt)
			resolvedDays = append(resolvedDays, float64(span.Milliseconds())/86_400_000.0)
		}
	}

	stats.AvgResolutionTimeInDays = roundOneDecimal(mean(resolvedDays))
	stats.CategoryCounts = sortedCategoryCounts(categoryCounts)
	if fixedWindow {
		stats.TicketsOverTime = s.trailingWeekSeries(perDay)
	} else {
		stats.TicketsOverTime = fullSeries(perDay)
	}
	return stats, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

func sortedCategoryCounts(counts map[domain.TicketCategory]int) []CategoryCount {
	result := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result
}

// fullSeries includes every date with at least one ticket, ascending.
func fullSeries(perDay map[string]int) []TimeSeriesPoint {
	result := make([]TimeSeriesPoint, 0, len(perDay))
	for date, count := range perDay {
		result = append(result, TimeSeriesPoint{Date: date, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

// trailingWeekSeries always yields seven points, one per calendar day
// ending today, zero-filled where no tickets were created.
func (s *StatsService) trailingWeekSeries(perDay map[string]int) []TimeSeriesPoint {
	today := s.now().UTC()
	result := make([]TimeSeriesPoint, 0, agentWindowLen)
	for i := agentWindowLen - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dayFormat)
		result = append(result, TimeSeriesPoint{Date: date, Count: perDay[date]})
	}
	return result
}
