package board

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Schedule starts a cron job that rescores the board on spec, e.g.
// "@every 15m" or "*/10 * * * *". Stop the returned scheduler to end it.
func (b *Board) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := b.Rescore(b.now()); n > 0 {
			log.Printf("rescore: %d reports updated", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling rescore %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
