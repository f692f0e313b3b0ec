package dashboard

import "github.com/shopspring/decimal"

// Summary holds the four headline scalars shown in the summary cards.
type Summary struct {
	TotalRevenue       float64 `json:"total_revenue"`
	AvgActiveUsers     float64 `json:"avg_active_users"`
	TotalSessions      int     `json:"total_sessions"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
}

// Summarize derives the summary cards from the filtered activity plus the engagement
// and product collections.
func Summarize(activity []ActivityRecord, engagement []EngagementRecord, products []ProductRecord) Summary {
	var out Summary
	for _, p := range products {
		out.TotalRevenue += p.Revenue
	}
	if len(activity) > 0 {
		users := 0
		for _, day := range activity {
			users += day.ActiveUsers
			out.TotalSessions += day.Sessions
		}
		out.AvgActiveUsers = float64(users) / float64(len(activity))
	}
	if len(engagement) > 0 {
		total := 0.0
		for _, e := range engagement {
			total += e.AvgSessionDuration
		}
		out.AvgSessionDuration = roundOne(total / float64(len(engagement)))
	}
	return out
}

// BounceRateClass maps a bounce rate percentage onto a badge style.
func BounceRateClass(rate float64) string {
	switch {
	case rate >= 60:
		return "bg-danger-subtle text-danger"
	case rate >= 40:
		return "bg-warning-subtle text-warning"
	default:
		return "bg-success-subtle text-success"
	}
}

func roundOne(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
