package universe

import (
	"time"

	"github.com/pkg/errors"
)

//Snapshot is the complete state of one session
//it is written and read as one unit
type Snapshot struct {
	Grid       Grid
	Rows       int
	Cols       int
	Generation int
	Interval   time.Duration
}

//Validate checks that the snapshot can be restored
func (s Snapshot) Validate() error {
	if err := s.Grid.Check(); err != nil {
		return errors.Wrap(err, "[Snapshot.Validate] grid")
	}
	if s.Grid.Rows != s.Rows || s.Grid.Cols != s.Cols {
		return errors.Wrapf(ErrShapeMismatch, "[Snapshot.Validate] grid is %dx%d, declared %dx%d",
			s.Grid.Rows, s.Grid.Cols, s.Rows, s.Cols)
	}
	if s.Generation < 0 {
		return errors.Errorf("[Snapshot.Validate] negative generation %d", s.Generation)
	}
	if err := CheckInterval(s.Interval); err != nil {
		return errors.Wrap(err, "[Snapshot.Validate]")
	}
	return nil
}

//CheckInterval accepts the positive whole number of milliseconds
func CheckInterval(d time.Duration) error {
	if d < time.Millisecond || d%time.Millisecond != 0 {
		return errors.Wrapf(ErrInvalidInterval, "%v", d)
	}
	return nil
}
