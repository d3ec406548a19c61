// Package learn serves the learning content of the app: the course catalogue
// shown on the learn and home views, and a reading list pulled from
// personal-finance RSS feeds.
package learn

// Module is a course on the learn view. Quickstart modules report lessons
// done out of Total; deep-dive modules report their length in Weeks.
type Module struct {
	Title      string `json:"title"`
	Icon       string `json:"icon"`
	Progress   int    `json:"progress,omitempty"`
	Total      int    `json:"total,omitempty"`
	Weeks      int    `json:"weeks,omitempty"`
	Completion int    `json:"completion"`
}

// Topic is a micro-learning shortcut on the home view. Badge counts new
// lessons; zero hides it.
type Topic struct {
	Label string `json:"label"`
	Badge int    `json:"badge,omitempty"`
}

// Policy is a suggested insurance product.
type Policy struct {
	Name           string  `json:"name"`
	Coverage       string  `json:"coverage"`
	MonthlyPremium float64 `json:"monthly_premium"`
	Badge          string  `json:"badge,omitempty"`
}

// Tool is a calculator shortcut on the home view.
type Tool struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Hint  string `json:"hint"`
}

// Catalog is everything the learn and home views list.
type Catalog struct {
	Quickstart []Module `json:"quickstart"`
	DeepDive   []Module `json:"deep_dive"`
	Topics     []Topic  `json:"topics"`
	Insurance  []Policy `json:"insurance"`
	Tools      []Tool   `json:"tools"`
}

// DefaultCatalog returns the built-in catalogue. Each call returns fresh
// slices, so callers may modify the result.
func DefaultCatalog() Catalog {
	return Catalog{
		Quickstart: []Module{
			{Title: "Budgeting Basics", Icon: "💰", Progress: 75, Total: 82, Completion: 18},
			{Title: "Saving Strategies", Icon: "💎", Progress: 23, Total: 28, Completion: 19},
		},
		DeepDive: []Module{
			{Title: "Investing in Stocks & Mutual Funds", Icon: "💹", Weeks: 30, Completion: 25},
			{Title: "Understanding Estate Planning", Icon: "📋", Weeks: 72, Completion: 0},
			{Title: "Investing & Entrepreneurship", Icon: "💼", Weeks: 17, Completion: 39},
		},
		Topics: []Topic{
			{Label: "Savings"},
			{Label: "Investing", Badge: 5},
			{Label: "Debt Management"},
			{Label: "Taxes", Badge: 2},
			{Label: "Insurance", Badge: 1},
		},
		Insurance: []Policy{
			{Name: "Women Care Shield", Coverage: "₹25L Health & Maternity", MonthlyPremium: 899, Badge: "Popular"},
			{Name: "Secure Start Plan", Coverage: "₹50L Term Cover", MonthlyPremium: 1499, Badge: "Tax Saver"},
			{Name: "Sakhi Gold Guard", Coverage: "₹15L Jewellery Protection", MonthlyPremium: 399},
		},
		Tools: []Tool{
			{Key: "emi", Label: "EMI Calculator", Hint: "Plan monthly payouts"},
			{Key: "savings", Label: "Current Savings", Hint: "Track your goals"},
			{Key: "nse", Label: "Live NSE Pulse", Hint: "Nifty 50 tracker"},
			{Key: "gold", Label: "Gold Price Chart", Hint: "10g daily trend"},
			{Key: "tax", Label: "Tax Calculator", Hint: "Estimate FY taxes"},
			{Key: "insurance", Label: "Insurance Picks", Hint: "Best policy matches"},
		},
	}
}

// Modules returns quickstart and deep-dive modules in display order.
func (c Catalog) Modules() []Module {
	out := make([]Module, 0, len(c.Quickstart)+len(c.DeepDive))
	out = append(out, c.Quickstart...)
	return append(out, c.DeepDive...)
}

// OverallCompletion is the mean completion across all modules, rounded down.
func (c Catalog) OverallCompletion() int {
	mods := c.Modules()
	if len(mods) == 0 {
		return 0
	}
	sum := 0
	for _, m := range mods {
		sum += m.Completion
	}
	return sum / len(mods)
}
