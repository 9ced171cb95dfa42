package global

import (
	"context"
	"fmt"
	"log"
	"time"

	"MarketRadar/internal/fetcher"
	"MarketRadar/internal/model"
	"MarketRadar/internal/sanitize"
)

// Display window around each event, in days relative to its start date.
const (
	windowPastDays   = 30
	windowFutureDays = 180
	imminentDays     = 14
)

// Updater assembles one GlobalSnapshot per run.
type Updater struct {
	quotes *fetcher.YahooQuotes
	now    func() time.Time
}

// NewUpdater creates the global-intelligence updater.
func NewUpdater(quotes *fetcher.YahooQuotes) *Updater {
	return &Updater{quotes: quotes, now: time.Now}
}

// Build filters the calendar to the display window, batch-fetches every
// referenced price, and enriches each event's supply chains with prices and
// sympathy signals. An empty window is still a valid snapshot.
func (u *Updater) Build(ctx context.Context) (*model.GlobalSnapshot, error) {
	today := dateOnly(u.now())

	var visible []model.TechEvent
	tickerSet := make(map[string]struct{})
	for _, evt := range eventCalendar {
		start, err := time.Parse("2006-01-02", evt.Date)
		if err != nil {
			return nil, fmt.Errorf("calendar entry %q: bad date %q", evt.Event, evt.Date)
		}
		days := int(start.Sub(today).Hours() / 24)
		if days <= -windowPastDays || days >= windowFutureDays {
			continue
		}
		visible = append(visible, evt)
		for _, group := range evt.SupplyChain {
			tickerSet[group.USSymbol] = struct{}{}
			for _, tw := range group.TWTickers {
				tickerSet[tw] = struct{}{}
			}
		}
	}

	tickers := make([]string, 0, len(tickerSet))
	for t := range tickerSet {
		tickers = append(tickers, t)
	}
	prices := u.quotes.FetchDaySnapshots(ctx, tickers, nil)
	log.Printf("[INFO] global intel: %d events in window, %d of %d prices resolved", len(visible), len(prices), len(tickers))

	snap := &model.GlobalSnapshot{
		LastUpdated: u.now().Format("2006-01-02 15:04"),
		Events:      make([]model.EnrichedEvent, 0, len(visible)),
	}
	for _, evt := range visible {
		snap.Events = append(snap.Events, enrichEvent(evt, today, prices))
	}
	return snap, nil
}

func enrichEvent(evt model.TechEvent, today time.Time, prices map[string]fetcher.DaySnapshot) model.EnrichedEvent {
	start, _ := time.Parse("2006-01-02", evt.Date)
	days := int(start.Sub(today).Hours() / 24)

	out := model.EnrichedEvent{
		Event:       evt.Event,
		Date:        evt.Date,
		EndDate:     evt.EndDate,
		Theme:       evt.Theme,
		Description: evt.Description,
		Status:      eventStatus(evt, today, days),
		DaysToGo:    days,
		Chains:      make([]model.EnrichedChain, 0, len(evt.SupplyChain)),
	}

	for _, group := range evt.SupplyChain {
		us := prices[group.USSymbol]
		chain := model.EnrichedChain{
			USStock: model.USStock{
				Symbol: group.USSymbol,
				Name:   group.USName,
				Price:  sanitize.Round(us.Price, 2),
				Change: sanitize.Round(us.ChangePct, 2),
			},
			TWSector: group.TWSector,
			TWStocks: make([]model.TWStockSignal, 0, len(group.TWTickers)),
		}
		for _, tw := range group.TWTickers {
			day := prices[tw]
			chain.TWStocks = append(chain.TWStocks, model.TWStockSignal{
				Ticker: tw,
				Price:  sanitize.Round(day.Price, 2),
				Change: sanitize.Round(day.ChangePct, 2),
				Signal: sympathySignal(us.ChangePct, day.ChangePct),
			})
		}
		out.Chains = append(out.Chains, chain)
	}
	return out
}

func eventStatus(evt model.TechEvent, today time.Time, daysToStart int) string {
	end, err := time.Parse("2006-01-02", evt.EndDate)
	if err != nil {
		end, _ = time.Parse("2006-01-02", evt.Date)
	}
	switch {
	case daysToStart <= 0 && !today.After(end):
		return "Ongoing"
	case daysToStart < 0:
		return "Finished"
	case daysToStart <= imminentDays:
		return "Imminent"
	default:
		return "Upcoming"
	}
}

// sympathySignal compares the US anchor's day move with the Taiwan ticker's.
// A strong US move the local name has not followed yet reads as a laggard;
// both moving reads as sympathy; a US selloff is a risk flag either way.
func sympathySignal(usChange, twChange float64) string {
	switch {
	case usChange > 2.0 && twChange < 1.0:
		return "Lagging (Buy?)"
	case usChange > 2.0 && twChange > 2.0:
		return "Sympathy Rally"
	case usChange < -2.0:
		return "Risk Alert"
	default:
		return "Neutral"
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
