package cfg

import (
	"fmt"
	"io"
	"sync"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
)

// consoleBroadcaster prints job and batch events for foreground commands.
type consoleBroadcaster struct {
	mu   sync.Mutex
	out  io.Writer
	last map[string]int
}

func newConsoleBroadcaster(out io.Writer) *consoleBroadcaster {
	return &consoleBroadcaster{out: out, last: make(map[string]int)}
}

// Broadcast prints ev. Progress lines are printed once per whole percent.
func (c *consoleBroadcaster) Broadcast(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch p := ev.Payload.(type) {
	case *models.Job:
		switch ev.Type {
		case consts.EventProgress:
			pct := int(p.ProgressPercent)
			if prev, ok := c.last[p.ID]; ok && prev == pct {
				return
			}
			c.last[p.ID] = pct
			fmt.Fprintf(c.out, "[%s] %s %3d%% %s\n", shortID(p.ID), p.Status, pct, p.Title)
		case consts.EventComplete:
			delete(c.last, p.ID)
			fmt.Fprintf(c.out, "[%s] completed: %s\n", shortID(p.ID), p.ArtifactPath)
		case consts.EventError:
			delete(c.last, p.ID)
			fmt.Fprintf(c.out, "[%s] failed: %s\n", shortID(p.ID), p.ErrorReason)
		}
	case *models.BatchJob:
		fmt.Fprintf(c.out, "[batch %s] %d/%d items (%d failed) %.0f%%\n",
			shortID(p.ID), p.CompletedItems, p.TotalItems, p.FailedItems, p.ProgressPercent)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
