package dashboard

// SaleRecord is a monthly sales aggregate.
type SaleRecord struct {
	Month   string  `json:"month" yaml:"month"`
	Revenue float64 `json:"revenue" yaml:"revenue"`
	Orders  int     `json:"orders" yaml:"orders"`
	Returns int     `json:"returns" yaml:"returns"`
}

// ActivityRecord is a daily user activity sample. Date uses yyyy-mm-dd.
type ActivityRecord struct {
	Date        string `json:"date" yaml:"date"`
	ActiveUsers int    `json:"activeUsers" yaml:"activeUsers"`
	NewUsers    int    `json:"newUsers" yaml:"newUsers"`
	Sessions    int    `json:"sessions" yaml:"sessions"`
}

// EngagementRecord aggregates engagement per platform.
type EngagementRecord struct {
	Platform           string  `json:"platform" yaml:"platform"`
	PageViews          int     `json:"pageViews" yaml:"pageViews"`
	AvgSessionDuration float64 `json:"avgSessionDuration" yaml:"avgSessionDuration"`
	BounceRate         float64 `json:"bounceRate" yaml:"bounceRate"`
}

// ProductRecord aggregates sales per product.
type ProductRecord struct {
	Product string  `json:"product" yaml:"product"`
	Sales   int     `json:"sales" yaml:"sales"`
	Revenue float64 `json:"revenue" yaml:"revenue"`
}

// Snapshot is the immutable bundle returned by a DataProvider.
type Snapshot struct {
	Sales        []SaleRecord       `json:"sales" yaml:"sales"`
	UserActivity []ActivityRecord   `json:"userActivity" yaml:"userActivity"`
	Engagement   []EngagementRecord `json:"engagement" yaml:"engagement"`
	TopProducts  []ProductRecord    `json:"topProducts" yaml:"topProducts"`
}

// Empty reports whether the snapshot carries no records at all.
func (s Snapshot) Empty() bool {
	return len(s.Sales) == 0 &&
		len(s.UserActivity) == 0 &&
		len(s.Engagement) == 0 &&
		len(s.TopProducts) == 0
}

// Clone returns a deep copy so callers never share backing arrays with the provider.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Sales:        append([]SaleRecord(nil), s.Sales...),
		UserActivity: append([]ActivityRecord(nil), s.UserActivity...),
		Engagement:   append([]EngagementRecord(nil), s.Engagement...),
		TopProducts:  append([]ProductRecord(nil), s.TopProducts...),
	}
}
