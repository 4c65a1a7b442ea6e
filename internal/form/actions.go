// internal/form/actions.go
//
// Post-validation actions: stamp, append, mirror.
//
// Context
//   Once a payload is accepted, Recorder.Record turns it into a lead.Row with
//   the server clock, appends the row to the sheet range chosen by the
//   variant's destination, and, when configured, copies it to the SQL
//   mirror.
//
//   The sheet append is the only action whose failure reaches the caller.
//   A mirror failure is logged and counted but the visitor still sees
//   success, because the row already exists in the source of truth.
//
//   There is no dedup key.  A client that retries after a lost response
//   produces a second row.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"fmt"
	"time"

	"github.com/easybac/landing/internal/lead"
	"github.com/easybac/landing/internal/logger"
	"github.com/easybac/landing/internal/metrics"
	"github.com/easybac/landing/internal/sheets"
)

// Ranges maps each destination to an A1 range.
type Ranges struct {
	Students   string
	Teachers   string
	Newsletter string
}

// For returns the range for d.
func (r Ranges) For(d lead.Destination) (string, error) {
	switch d {
	case lead.Students:
		return r.Students, nil
	case lead.Teachers:
		return r.Teachers, nil
	case lead.Newsletter:
		return r.Newsletter, nil
	default:
		return "", fmt.Errorf("no range for destination %v", d)
	}
}

// RowMirror receives a copy of every appended row.  *database.Mirror
// satisfies it.
type RowMirror interface {
	Record(ctx context.Context, row lead.Row) error
}

// Recorder executes the actions for an accepted submission.
type Recorder struct {
	sheet  sheets.Appender
	ranges Ranges
	mirror RowMirror // optional
	now    func() time.Time
}

// NewRecorder wires a Recorder.  mirror may be nil.
func NewRecorder(sheet sheets.Appender, ranges Ranges, mirror RowMirror) *Recorder {
	return &Recorder{sheet: sheet, ranges: ranges, mirror: mirror, now: time.Now}
}

// Record appends exactly one row for s and returns it.  Errors from the
// sheet are *sheets.UpstreamError.
func (rc *Recorder) Record(ctx context.Context, s lead.Submission) (lead.Row, error) {
	row := lead.NewRow(s, rc.now())

	rng, err := rc.ranges.For(row.Destination)
	if err != nil {
		return row, err
	}

	start := time.Now()
	err = rc.sheet.Append(ctx, rng, row.Cells())
	metrics.AppendDuration.WithLabelValues(row.Destination.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		return row, err
	}

	if rc.mirror != nil {
		if merr := rc.mirror.Record(ctx, row); merr != nil {
			metrics.MirrorErrorsTotal.Inc()
			logger.FromContext(ctx).Warnw("lead mirror failed",
				"destination", row.Destination.String(), "error", merr.Error())
		}
	}
	return row, nil
}
