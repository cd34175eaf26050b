package services

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/dmitrijs2005/boostmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boostmanager/internal/timex"
)

// Card is one dashboard tile.
type Card struct {
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Subtitle string  `json:"subtitle,omitempty"`
}

// Cards holds the four tenant dashboard tiles.
type Cards struct {
	Revenue     Card    `json:"revenue"`
	RevenueUSD  float64 `json:"revenue_usd"`
	DollarRate  float64 `json:"dollar_rate"`
	Orders      Card    `json:"orders"`
	InProgress  Card    `json:"in_progress"`
	PayrollOwed Card    `json:"payroll_boosters"`
}

// ActiveOrder is an in-progress order with its running time.
type ActiveOrder struct {
	*models.Order
	Elapsed string `json:"elapsed"`
}

// DollarRater supplies the USD-BRL rate.
type DollarRater interface {
	DollarRate(ctx context.Context) float64
}

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	rates       DollarRater
	now         func() time.Time
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, rates DollarRater) *DashboardService {
	return &DashboardService{db: db, repomanager: m, rates: rates, now: time.Now}
}

func (s *DashboardService) Cards(ctx context.Context, tenantID string) (*Cards, error) {
	stats, err := s.repomanager.Orders(s.db).Stats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pending, err := s.repomanager.Payrolls(s.db).CountByStatus(ctx, tenantID, models.PayrollPending)
	if err != nil {
		return nil, err
	}

	rate := s.rates.DollarRate(ctx)
	usd := 0.0
	if rate > 0 {
		usd = stats.Revenue / rate
	}

	return &Cards{
		Revenue:     Card{Title: "Revenue", Value: stats.Revenue},
		RevenueUSD:  usd,
		DollarRate:  rate,
		Orders:      Card{Title: "Orders", Value: float64(stats.Count)},
		InProgress:  Card{Title: "Orders", Value: float64(stats.InProgress), Subtitle: "in progress"},
		PayrollOwed: Card{Title: "Payroll Boosters", Value: float64(pending), Subtitle: "Payment pending"},
	}, nil
}

// ActiveOrders lists in-progress orders, oldest start first.
func (s *DashboardService) ActiveOrders(ctx context.Context, tenantID string) ([]*ActiveOrder, error) {
	list, err := s.repomanager.Orders(s.db).ListByStatus(ctx, tenantID, common.OrderStatusInProgress)
	if err != nil {
		return nil, err
	}
	now := s.now()
	res := make([]*ActiveOrder, 0, len(list))
	for _, o := range list {
		res = append(res, &ActiveOrder{Order: o, Elapsed: timex.Elapsed(o.StartDate, now)})
	}
	return res, nil
}

// Payroll lists booster payouts. status "all" or "" disables the filter;
// search matches name, email or value.
func (s *DashboardService) Payroll(ctx context.Context, tenantID, status, search string) ([]*models.Payroll, error) {
	if strings.EqualFold(status, "all") {
		status = ""
	}
	list, err := s.repomanager.Payrolls(s.db).List(ctx, tenantID, status)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return list, nil
	}
	res := make([]*models.Payroll, 0, len(list))
	for _, p := range list {
		if payrollMatches(p, term) {
			res = append(res, p)
		}
	}
	return res, nil
}

func payrollMatches(p *models.Payroll, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Email), term) ||
		strings.Contains(strconv.FormatFloat(p.Value, 'f', -1, 64), term)
}
