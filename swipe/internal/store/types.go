package store

// Metrics are the denormalized engagement counters of an idea.
type Metrics struct {
	Likes  int64 `json:"likes"`
	Passes int64 `json:"passes"`
	Shares int64 `json:"shares"`
}

// Idea is a submitted startup concept. Optional scalars are nil when unset;
// list fields are never nil once read from the store.
type Idea struct {
	ID                    string   `json:"id"`
	AuthorEmail           string   `json:"author_email"`
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	MarketSize            *string  `json:"market_size"`
	MarketPotential       *string  `json:"market_potential"`
	TechnicalRequirements []string `json:"technical_requirements"`
	FinancialRequirement  *string  `json:"financial_requirement"`
	Timeline              *string  `json:"timeline"`
	Category              *string  `json:"category"`
	Challenges            []string `json:"challenges"`
	Metrics               Metrics  `json:"metrics"`
	CreatedAt             int64    `json:"created_at"`
	UpdatedAt             int64    `json:"updated_at"`
}

// Swipe actions.
const (
	ActionLeft  = "left"
	ActionRight = "right"
)

// ViewRecord logs that a user swiped an idea.
type ViewRecord struct {
	IdeaID    string `json:"idea_id"`
	UserEmail string `json:"user_email"`
	Action    string `json:"action"`
	CreatedAt int64  `json:"created_at"`
}

// Like is a user's deduplicated endorsement of an idea.
type Like struct {
	IdeaID    string `json:"idea_id"`
	UserEmail string `json:"user_email"`
	CreatedAt int64  `json:"created_at"`
}

// Comment is a free-text note on an idea.
type Comment struct {
	ID        string `json:"id"`
	IdeaID    string `json:"idea_id"`
	UserEmail string `json:"user_email"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}
