package ledger

import (
	"context"
)

type StubSnapshotRepo struct {
	data      map[string][]byte
	saveCount int
	failSaves bool
}

func NewStubSnapshotRepo() *StubSnapshotRepo {
	return &StubSnapshotRepo{data: map[string][]byte{}}
}

func (s *StubSnapshotRepo) Load(ctx context.Context, ledgerId string) (Snapshot, bool, error) {
	data, ok := s.data[ledgerId]
	if !ok {
		return Snapshot{}, false, nil
	}
	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *StubSnapshotRepo) Save(ctx context.Context, ledgerId string, snapshot Snapshot) error {
	if s.failSaves {
		return context.DeadlineExceeded
	}
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.data[ledgerId] = data
	s.saveCount++
	return nil
}

func (s *StubSnapshotRepo) Clear(ctx context.Context, ledgerId string) error {
	delete(s.data, ledgerId)
	return nil
}

func (s *StubSnapshotRepo) SaveCount() int {
	return s.saveCount
}

func (s *StubSnapshotRepo) FailSaves(fail bool) {
	s.failSaves = fail
}

func (s *StubSnapshotRepo) Cleanup() {
	s.data = map[string][]byte{}
	s.saveCount = 0
	s.failSaves = false
}
