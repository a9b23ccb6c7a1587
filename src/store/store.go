//Package store persists the session snapshots of the universe
package store

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"lifeboard/src/universe"
)

//the storage keys of one snapshot
const (
	KeyStates     = "states"
	KeyRows       = "numRows"
	KeyCols       = "numCols"
	KeyGeneration = "generation"
	KeySpeed      = "speed"
)

var Keys = []string{KeyStates, KeyRows, KeyCols, KeyGeneration, KeySpeed}

//ErrNoSnapshot means there is no usable saved session
var ErrNoSnapshot = errors.New("no saved session")

//Store saves and loads the snapshots
type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

//Save writes all the snapshot values in one batch
func (s *Store) Save(snap universe.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return errors.Wrap(err, "[Save] invalid snapshot")
	}
	states, err := json.Marshal(snap.Grid.Cells)
	if err != nil {
		return errors.Wrap(err, "[Save] failed to marshal states")
	}
	err = s.kv.SetAll(map[string]string{
		KeyStates:     string(states),
		KeyRows:       strconv.Itoa(snap.Rows),
		KeyCols:       strconv.Itoa(snap.Cols),
		KeyGeneration: strconv.Itoa(snap.Generation),
		KeySpeed:      strconv.FormatInt(snap.Interval.Milliseconds(), 10),
	})
	return errors.Wrap(err, "[Save] failed to store snapshot")
}

//Has reports whether the saved session exists
func (s *Store) Has() bool {
	_, ok, err := s.kv.Get(KeyStates)
	return err == nil && ok
}

//Load reads the saved session
//the absent or corrupt data is reported as ErrNoSnapshot
func (s *Store) Load() (universe.Snapshot, error) {
	var snap universe.Snapshot
	states, err := s.get(KeyStates)
	if err != nil {
		return snap, err
	}
	var cells [][]universe.Cell
	if err = json.Unmarshal([]byte(states), &cells); err != nil {
		return snap, errors.Wrapf(ErrNoSnapshot, "[Load] corrupt %s: %v", KeyStates, err)
	}
	if snap.Grid, err = universe.FromCells(cells); err != nil {
		return snap, errors.Wrapf(ErrNoSnapshot, "[Load] corrupt %s: %v", KeyStates, err)
	}
	if snap.Rows, err = s.getInt(KeyRows); err != nil {
		return snap, err
	}
	if snap.Cols, err = s.getInt(KeyCols); err != nil {
		return snap, err
	}
	if snap.Generation, err = s.getInt(KeyGeneration); err != nil {
		return snap, err
	}
	speed, err := s.getInt(KeySpeed)
	if err != nil {
		return snap, err
	}
	snap.Interval = time.Duration(speed) * time.Millisecond
	if err = snap.Validate(); err != nil {
		return snap, errors.Wrapf(ErrNoSnapshot, "[Load] %v", err)
	}
	return snap, nil
}

//Discard deletes all the snapshot values
func (s *Store) Discard() error {
	return errors.Wrap(s.kv.Delete(Keys...), "[Discard] failed to delete snapshot")
}

//Resume asks confirm when the saved session exists
//confirmed session is loaded, declined one is discarded
//ok is false when there is nothing to restore, the corrupt session is discarded and reported by err
func (s *Store) Resume(confirm func() bool) (snap universe.Snapshot, ok bool, err error) {
	if !s.Has() {
		return snap, false, nil
	}
	if !confirm() {
		return snap, false, s.Discard()
	}
	snap, err = s.Load()
	if err != nil {
		if dErr := s.Discard(); dErr != nil {
			return snap, false, errors.Wrapf(err, "[Resume] %v", dErr)
		}
		return snap, false, errors.Wrap(err, "[Resume]")
	}
	return snap, true, nil
}

func (s *Store) get(key string) (string, error) {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		return "", errors.Wrapf(ErrNoSnapshot, "[Load] %s: %v", key, err)
	}
	if !ok {
		return "", errors.Wrapf(ErrNoSnapshot, "[Load] %s is missing", key)
	}
	return v, nil
}

func (s *Store) getInt(key string) (int, error) {
	v, err := s.get(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(ErrNoSnapshot, "[Load] corrupt %s: %v", key, err)
	}
	return n, nil
}
