package service

import (
	"context"
	"math"
	"time"

	"nuoitoi/internal/models"
	"nuoitoi/internal/repository"

	"go.uber.org/zap"
)

type DonationView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type DonationList struct {
	Donations []DonationView `json:"donations"`
	Total     int            `json:"total"`
	IsMock    bool           `json:"isMock,omitempty"`
}

// ListRecent returns the newest donations. A store failure yields the sample feed.
func (s *DonationService) ListRecent(ctx context.Context, limit int) *DonationList {
	if limit <= 0 {
		limit = s.cfg.Donation.RecentLimit
	}
	now := s.now()
	rows, err := s.donations.ListRecent(ctx, limit)
	isMock := false
	if err != nil {
		s.log.Warn("list donations, serving sample feed", zap.Error(err))
		rows, isMock = sampleDonations(now), true
	}
	views := make([]DonationView, 0, len(rows))
	for i := range rows {
		views = append(views, DonationView{
			ID:      rows[i].ID,
			Name:    rows[i].Name,
			Amount:  rows[i].Amount,
			Message: rows[i].MessageText(),
			Time:    TimeAgo(rows[i].CreatedAt, now),
		})
	}
	return &DonationList{Donations: views, Total: len(views), IsMock: isMock}
}

type Stats struct {
	TotalAmount        int64     `json:"totalAmount"`
	DonationCount      int64     `json:"donationCount"`
	MonthlyGoal        int64     `json:"monthlyGoal"`
	WeeklyDonors       int64     `json:"weeklyDonors"`
	AverageDonation    int64     `json:"averageDonation"`
	ProgressPercentage float64   `json:"progressPercentage"`
	FormattedTotal     string    `json:"formattedTotal"`
	FormattedGoal      string    `json:"formattedGoal"`
	LastUpdated        time.Time `json:"lastUpdated"`
	IsMock             bool      `json:"isMock,omitempty"`
}

var sampleAggregate = repository.DonationAggregate{TotalAmount: 2450000, DonationCount: 47, WeeklyDonorCount: 12}

// Stats aggregates the ledger on demand. A store failure yields the sample figures.
func (s *DonationService) Stats(ctx context.Context) *Stats {
	now := s.now()
	agg, err := s.donations.AggregateStats(ctx, now.Add(-7*24*time.Hour))
	isMock := false
	if err != nil {
		s.log.Warn("aggregate stats, serving sample figures", zap.Error(err))
		sample := sampleAggregate
		agg, isMock = &sample, true
	}
	goal := s.cfg.Donation.MonthlyGoal
	out := &Stats{
		TotalAmount:    agg.TotalAmount,
		DonationCount:  agg.DonationCount,
		MonthlyGoal:    goal,
		WeeklyDonors:   agg.WeeklyDonorCount,
		FormattedTotal: FormatVND(agg.TotalAmount),
		FormattedGoal:  FormatVND(goal),
		LastUpdated:    now.UTC(),
		IsMock:         isMock,
	}
	if agg.DonationCount > 0 {
		out.AverageDonation = int64(math.Round(float64(agg.TotalAmount) / float64(agg.DonationCount)))
	}
	if goal > 0 {
		out.ProgressPercentage = round1(math.Min(float64(agg.TotalAmount)/float64(goal)*100, 100))
	}
	return out
}

type ExpenseView struct {
	ID          string  `json:"id"`
	Percentage  float64 `json:"percentage"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	ChartColor  string  `json:"chartColor"`
	Spent       int64   `json:"spent"`
	Budget      int64   `json:"budget"`
}

type ExpenseReport struct {
	Categories           []ExpenseView `json:"categories"`
	Month                string        `json:"month"`
	LastUpdated          time.Time     `json:"lastUpdated"`
	TotalSpent           int64         `json:"totalSpent"`
	TotalBudget          int64         `json:"totalBudget"`
	FormattedTotalSpent  string        `json:"formattedTotalSpent"`
	FormattedTotalBudget string        `json:"formattedTotalBudget"`
	SpendingPercentage   float64       `json:"spendingPercentage"`
	IsMock               bool          `json:"isMock,omitempty"`
}

// Expenses reports the current month's breakdown, or the default budget when none is stored.
func (s *DonationService) Expenses(ctx context.Context) *ExpenseReport {
	now := s.now()
	month := MonthLabel(now)
	rows, err := s.expenses.ListByMonth(ctx, month)
	if err != nil {
		s.log.Warn("list expenses, serving defaults", zap.Error(err))
	}
	report := &ExpenseReport{Month: month, LastUpdated: now.UTC()}
	if err != nil || len(rows) == 0 {
		report.Categories = defaultExpenses()
		report.IsMock = true
	} else {
		var latest time.Time
		report.Categories = make([]ExpenseView, 0, len(rows))
		for _, e := range rows {
			report.Categories = append(report.Categories, expenseView(e))
			if e.UpdatedAt.After(latest) {
				latest = e.UpdatedAt
			}
		}
		if !latest.IsZero() {
			report.LastUpdated = latest.UTC()
		}
	}
	for _, c := range report.Categories {
		report.TotalSpent += c.Spent
		report.TotalBudget += c.Budget
	}
	report.FormattedTotalSpent = FormatVND(report.TotalSpent)
	report.FormattedTotalBudget = FormatVND(report.TotalBudget)
	if report.TotalBudget > 0 {
		report.SpendingPercentage = round1(float64(report.TotalSpent) / float64(report.TotalBudget) * 100)
	}
	return report
}

func expenseView(e models.Expense) ExpenseView {
	return ExpenseView{
		ID:          e.Category,
		Percentage:  e.Percentage,
		Label:       e.Label,
		Description: deref(e.Description),
		Color:       deref(e.Color),
		ChartColor:  deref(e.ChartColor),
		Spent:       e.Spent,
		Budget:      e.Budget,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
