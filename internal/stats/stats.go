// Package stats publishes engine state from the frame loop to concurrent readers.
package stats

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of a counting session
type Snapshot struct {
	SessionID       string    `json:"session_id"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Count           uint64    `json:"count"`
	ActiveTracks    int       `json:"active_tracks"`
	LineY           float64   `json:"line_y"`
	FrameWidth      int       `json:"frame_width"`
	FrameHeight     int       `json:"frame_height"`
	FramesProcessed uint64    `json:"frames_processed"`
	FramesSkipped   uint64    `json:"frames_skipped"`
	RejectedRects   uint64    `json:"rejected_rects"`
	EvictedTracks   uint64    `json:"evicted_tracks"`
	Running         bool      `json:"running"`
}

// Publisher holds the latest snapshot. Safe for concurrent use.
type Publisher struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewPublisher creates publisher for a session
func NewPublisher(sessionID string, startedAt time.Time) *Publisher {
	return &Publisher{
		snapshot: Snapshot{
			SessionID: sessionID,
			StartedAt: startedAt,
			UpdatedAt: startedAt,
		},
	}
}

// Update applies fn to the current snapshot under the write lock
func (p *Publisher) Update(fn func(s *Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.snapshot)
}

// Snapshot returns copy of the latest snapshot
func (p *Publisher) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}
