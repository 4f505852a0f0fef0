package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Count      int                `json:"count"`
	AnglesDeg  [2]float64         `json:"angles_deg"`
	Velocity   float64            `json:"velocity"`
	Mass       float64            `json:"mass"`
	Length     float64            `json:"length"`
	Gravity    float64            `json:"gravity"`
	Dt         float64            `json:"dt"`
	Damping    bool               `json:"damping"`
	Integrator string             `json:"integrator"`
	Ticks      int                `json:"ticks"`
	Metrics    map[string]float64 `json:"metrics"`
}

// MetadataFor fills the pool-derived fields of a run.
func MetadataFor(p *sim.Pool, integrator string) *RunMetadata {
	d := p.Defaults()
	return &RunMetadata{
		Timestamp:  time.Now(),
		Count:      p.Len(),
		AnglesDeg:  d.AnglesDeg,
		Velocity:   d.Velocity,
		Mass:       d.Masses[0],
		Length:     d.Lengths[0],
		Gravity:    d.Gravity,
		Dt:         d.Dt,
		Damping:    d.Damping,
		Integrator: integrator,
	}
}

// FrameRecord is one pendulum at one tick. X and Y are the lower bob.
type FrameRecord struct {
	Tick   int     `csv:"tick"`
	Index  int     `csv:"index"`
	Theta1 float64 `csv:"theta1"`
	Theta2 float64 `csv:"theta2"`
	Omega1 float64 `csv:"omega1"`
	Omega2 float64 `csv:"omega2"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
}

// Snapshot captures every pendulum of p as frame records for tick.
func Snapshot(tick int, p *sim.Pool, origin physics.Vec2) []FrameRecord {
	out := make([]FrameRecord, 0, p.Len())
	for i, e := range p.All() {
		pos := e.Position(origin)
		out = append(out, FrameRecord{
			Tick:   tick,
			Index:  i,
			Theta1: e.Angles[0],
			Theta2: e.Angles[1],
			Omega1: e.Velocities[0],
			Omega2: e.Velocities[1],
			X:      pos.X,
			Y:      pos.Y,
		})
	}
	return out
}

// Recorder streams frames of one run to disk. Metadata is written on Close
// so it can carry the final metrics.
type Recorder struct {
	dir           string
	meta          *RunMetadata
	frames        *os.File
	headerWritten bool
}

// Create opens a new run directory. An empty meta.ID is generated from
// the timestamp.
func (s *Store) Create(meta *RunMetadata) (*Recorder, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("fan_%d", meta.Timestamp.UnixNano())
	}

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", framesFile, err)
	}

	return &Recorder{dir: dir, meta: meta, frames: f}, nil
}

// Write appends frames to frames.csv.
func (r *Recorder) Write(frames []FrameRecord) error {
	if len(frames) == 0 {
		return nil
	}
	if !r.headerWritten {
		if err := gocsv.Marshal(frames, r.frames); err != nil {
			return fmt.Errorf("writing frames: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(frames, r.frames); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	return nil
}

func (r *Recorder) ID() string { return r.meta.ID }

// Close writes metadata.json and closes the frame file.
func (r *Recorder) Close() error {
	ferr := r.frames.Close()

	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", metadataFile, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return ferr
}

// Save writes a whole run at once.
func (s *Store) Save(meta *RunMetadata, frames []FrameRecord) (string, error) {
	rec, err := s.Create(meta)
	if err != nil {
		return "", err
	}
	if err := rec.Write(frames); err != nil {
		rec.Close()
		return "", err
	}
	if err := rec.Close(); err != nil {
		return "", err
	}
	return rec.ID(), nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata of %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []FrameRecord{}, nil
	}

	var frames []FrameRecord
	if err := gocsv.UnmarshalFile(f, &frames); err != nil {
		return nil, fmt.Errorf("reading frames of %s: %w", runID, err)
	}
	return frames, nil
}

// Series returns the frames of pendulum index in tick order.
func Series(frames []FrameRecord, index int) []FrameRecord {
	out := make([]FrameRecord, 0)
	for _, f := range frames {
		if f.Index == index {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out
}
