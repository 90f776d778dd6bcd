package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/oxygene76/orrery/internal/types"
)

// Sink receives recorded frames
type Sink interface {
	OnStart(totalFrames int, every int) error
	OnFrame(frame *types.Frame) error
	OnEnd(elapsedMS float64) error
	Close() error
}

// JSONLWriter writes one frame per line
type JSONLWriter struct {
	f  *os.File
	bw *bufio.Writer
}

// NewJSONLWriter creates (or truncates) path
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	return &JSONLWriter{f: f, bw: bufio.NewWriter(f)}, nil
}

// NewJSONLStream writes to w. Close flushes but does not close w.
func NewJSONLStream(w io.Writer) *JSONLWriter {
	return &JSONLWriter{bw: bufio.NewWriter(w)}
}

func (j *JSONLWriter) OnStart(totalFrames int, every int) error { return nil }

func (j *JSONLWriter) OnFrame(frame *types.Frame) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := j.bw.Write(b); err != nil {
		return err
	}
	return j.bw.WriteByte('\n')
}

func (j *JSONLWriter) OnEnd(elapsedMS float64) error { return j.bw.Flush() }

func (j *JSONLWriter) Close() error {
	if j.bw != nil {
		_ = j.bw.Flush()
	}
	if j.f != nil {
		return j.f.Close()
	}
	return nil
}

// ReadFrames decodes a JSONL stream written by JSONLWriter
func ReadFrames(r io.Reader) ([]types.Frame, error) {
	var frames []types.Frame
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var f types.Frame
		if err := json.Unmarshal(sc.Bytes(), &f); err != nil {
			return frames, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	return frames, sc.Err()
}

// ReadFile is ReadFrames on a file path
func ReadFile(path string) ([]types.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrames(f)
}

// Recorder forwards every n-th frame to a Sink
type Recorder struct {
	sink  Sink
	every int
	seen  int
}

// NewRecorder records one frame out of every; values below 1 record all
func NewRecorder(sink Sink, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{sink: sink, every: every}
}

// Start announces the run to the sink
func (r *Recorder) Start(totalFrames int) error {
	return r.sink.OnStart(totalFrames, r.every)
}

// Record passes frame on if it falls on the cadence
func (r *Recorder) Record(frame *types.Frame) error {
	r.seen++
	if (r.seen-1)%r.every != 0 {
		return nil
	}
	return r.sink.OnFrame(frame)
}

// Finish flushes and closes the sink
func (r *Recorder) Finish(elapsedMS float64) error {
	if err := r.sink.OnEnd(elapsedMS); err != nil {
		_ = r.sink.Close()
		return err
	}
	return r.sink.Close()
}
