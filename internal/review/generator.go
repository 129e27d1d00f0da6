package review

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	id "dupguard/pkg/domain"
)

// demo review templates; author and comment are picked independently so the
// output doesn't repeat in lockstep.
var (
	demoAuthors = []string{
		"Ayu P.", "Budi S.", "Citra L.", "Dewi R.", "Eko W.", "Fitri N.",
	}
	demoComments = []string{
		"Great session, very professional.",
		"On time and well prepared. Would book again.",
		"Relaxing atmosphere, highly recommended.",
		"Good technique, slightly late to arrive.",
		"Exactly what I needed after a long week.",
	}
)

// Generator produces template-based demo reviews.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds a private random source; nothing here touches the
// global rand state.
func NewGenerator() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Generate builds one demo review for the given provider.
func (g *Generator) Generate(accountID id.AccountID) *Review {
	g.mu.Lock()
	author := demoAuthors[g.rng.Intn(len(demoAuthors))]
	comment := demoComments[g.rng.Intn(len(demoComments))]
	rating := 3 + g.rng.Intn(3) // demo reviews skew positive: 3..5
	g.mu.Unlock()

	return &Review{
		ID:        uuid.New(),
		AccountID: accountID,
		Author:    author,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: g.now(),
	}
}
