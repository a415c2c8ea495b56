package stores

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultReplies is the canned seller reply set.
var DefaultReplies = []string{
	"Thanks for reaching out! The item is in stock and ready to ship.",
	"Hi! Yes, it's still available. Let me know if you have any questions.",
	"Thank you for your message. I'll get back to you with details shortly.",
	"Great question! Everything is handmade locally, so each piece is unique.",
	"We can arrange pickup from the community market this weekend if you like.",
}

// ErrNoReplies is returned by LoadReplies when the file yields an empty set.
var ErrNoReplies = errors.New("reply set is empty")

// RandomSource picks an index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// PickReply selects one reply uniformly at random. replies must not be empty.
func PickReply(rnd RandomSource, replies []string) string {
	return replies[rnd.Intn(len(replies))]
}

// lockedRand makes a *rand.Rand safe to share between goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a goroutine-safe source seeded with seed.
func NewRandomSource(seed int64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func defaultRandom() RandomSource { return NewRandomSource(time.Now().UnixNano()) }

// LoadReplies reads the reply set from a TOML file with a top-level
// "replies" array. An empty path returns DefaultReplies. Blank entries are
// dropped.
//
//	replies = ["Still available!", "Ships tomorrow."]
func LoadReplies(path string) ([]string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"replies": DefaultReplies,
	}, "."), nil); err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load replies %s: %w", path, err)
		}
	}

	var out []string
	for _, r := range k.Strings("replies") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoReplies
	}
	return out, nil
}
