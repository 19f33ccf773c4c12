package models

// Category is the conversational intent assigned to a query
type Category string

const (
	CategoryGreeting   Category = "greeting"
	CategoryFarewell   Category = "farewell"
	CategoryIdentity   Category = "identity"
	CategoryCapability Category = "capability"
	CategoryComparison Category = "comparison"
	CategoryLegal      Category = "legal"
	CategoryNonLegal   Category = "unclassified_nonlegal"
)

// IsConversational reports whether the category is answered without retrieval
func (c Category) IsConversational() bool {
	switch c {
	case CategoryGreeting, CategoryFarewell, CategoryIdentity, CategoryCapability, CategoryComparison:
		return true
	}
	return false
}

// String returns the category label used in logs and metrics
func (c Category) String() string {
	return string(c)
}
