package simulation

import (
	"time"

	"github.com/google/uuid"
)

// recordingScene keeps the set of live entity ids
type recordingScene struct {
	live    map[uuid.UUID]Entity
	adds    int
	removes int
}

func newRecordingScene() *recordingScene {
	return &recordingScene{live: make(map[uuid.UUID]Entity)}
}

func (r *recordingScene) Add(e Entity) {
	r.adds++
	r.live[e.EntityID()] = e
}

func (r *recordingScene) Remove(e Entity) {
	r.removes++
	delete(r.live, e.EntityID())
}

func (r *recordingScene) has(e Entity) bool {
	_, ok := r.live[e.EntityID()]
	return ok
}

func newFakeTime() *ManualTime {
	return NewManualTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func newTestState(scene Scene, clock TimeSource) *State {
	return NewState(Options{RandSeed: 42, Scene: scene, Time: clock})
}
