package types

const ContextUserKey = "user"

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// DefaultListTitles are created, in order, with every new board.
var DefaultListTitles = []string{"To Do", "In Progress", "Done"}

// Default allowed origins for development
var DefaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}
