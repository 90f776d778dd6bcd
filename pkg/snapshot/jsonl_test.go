package snapshot

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oxygene76/orrery/internal/types"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

func frame(seq uint64) *types.Frame {
	return &types.Frame{
		Seq:       seq,
		ElapsedMS: float64(seq) * 16,
		Entities: []types.EntityView{
			{ID: "planet-0", UUID: "u", Kind: "planet", Name: "Mercury", Position: astromath.Vector3{X: float64(seq)}},
		},
	}
}

func TestRecorderCadence(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(NewJSONLStream(&buf), 3)

	if err := rec.Start(10); err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < 10; i++ {
		if err := rec.Record(frame(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Finish(160); err != nil {
		t.Fatal(err)
	}

	frames, err := ReadFrames(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{0, 3, 6, 9}
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i, seq := range want {
		if frames[i].Seq != seq {
			t.Errorf("frame %d: expected seq %d, got %d", i, seq, frames[i].Seq)
		}
	}
	if frames[1].Entities[0].Position.X != 3 {
		t.Errorf("entity not preserved: %+v", frames[1].Entities[0])
	}
}

func TestJSONLWriterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	w, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecorder(w, 0)
	rec.Record(frame(1))
	rec.Record(frame(2))
	if err := rec.Finish(32); err != nil {
		t.Fatal(err)
	}

	frames, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[1].Seq != 2 {
		t.Errorf("unexpected frames %+v", frames)
	}
}

func TestReadFramesRejectsGarbage(t *testing.T) {
	in := strings.NewReader("{\"seq\":1}\n\nnot json\n")
	frames, err := ReadFrames(in)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected a line 3 error, got %v", err)
	}
	if len(frames) != 1 {
		t.Errorf("expected the frame before the error, got %d", len(frames))
	}
}
