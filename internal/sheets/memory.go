package sheets

import (
	"context"
	"sync"
)

// Memory is an in-process Appender used by the `memory` driver and tests.
// A failure set with SetFail is returned by every Append instead of
// storing the row.
type Memory struct {
	mu   sync.Mutex
	rows map[string][][]any
	fail error
}

// NewMemory returns an empty Memory sheet.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string][][]any)}
}

// Append stores a copy of cells under rng.
func (m *Memory) Append(ctx context.Context, rng string, cells []any) error {
	if err := ctx.Err(); err != nil {
		return &UpstreamError{Op: "append", Range: rng, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return &UpstreamError{Op: "append", Range: rng, Err: m.fail}
	}
	row := make([]any, len(cells))
	copy(row, cells)
	m.rows[rng] = append(m.rows[rng], row)
	return nil
}

// SetFail makes subsequent appends fail with err.  nil restores normal
// behaviour.
func (m *Memory) SetFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Rows returns a snapshot of everything appended to rng.
func (m *Memory) Rows(rng string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.rows[rng]))
	copy(out, m.rows[rng])
	return out
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
