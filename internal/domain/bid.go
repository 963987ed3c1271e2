package domain

// Bid is one tender listing row under evaluation. Description, Organization
// and Email are empty until the detail page has been fetched.
type Bid struct {
	Title        string
	URL          string
	ClosingDate  string // raw listing text, parsed by the date gate
	Description  string
	Organization string
	Email        string
}

type BidDetails struct {
	Description  string
	Organization string
	Email        string
}

// Verdict is the structured output of the qualification stage.
type Verdict struct {
	Relevance   bool   `json:"relevance"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SheetRow is what gets appended to the workbook for an accepted bid.
// Column order matches the worksheet layout.
type SheetRow struct {
	Title        string
	URL          string
	Description  string
	Organization string
	ClosingDate  string
	Email        string
}

const (
	CategoryLow    = "low"
	CategoryMedium = "medium"
	CategoryHigh   = "high"
)
