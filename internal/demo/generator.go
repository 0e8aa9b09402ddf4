package demo

import (
	"fmt"

	"github.com/google/uuid"
)

// userRequest is the body of POST /api/users.
type userRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	CorrelationKey string `json:"correlation_key"`
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald", "Frances", "Ken"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth", "Allen", "Thompson"}
)

// generateUsers returns n users whose email and correlation key are unique
// within the run. runID keeps repeated runs against one server apart.
func generateUsers(n int, runID uuid.UUID) []userRequest {
	tag := runID.String()[:8]
	// 0..999 from the run id spreads keys of different runs over the area number.
	area := int(runID[0])<<2 | int(runID[1])>>6
	out := make([]userRequest, n)
	for i := range out {
		out[i] = userRequest{
			FirstName:      firstNames[i%len(firstNames)],
			LastName:       lastNames[(i/len(firstNames))%len(lastNames)],
			Email:          fmt.Sprintf("demo+%s-%d@example.com", tag, i),
			CorrelationKey: fmt.Sprintf("%03d-%02d-%04d", area%1000, (i/10000)%100, i%10000),
		}
	}
	return out
}
