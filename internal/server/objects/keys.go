package objects

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
)

// KeyGenerator issues text keys "text-<unix millis>.txt". Keys from one
// generator are strictly increasing even within the same millisecond.
type KeyGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{now: time.Now}
}

func (g *KeyGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s%d.txt", common.TextKeyPrefix, ms)
}
