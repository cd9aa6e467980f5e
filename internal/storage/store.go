package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/armkin/internal/jog"
)

// Store persists jog runs under a data directory, one subdirectory per
// run holding metadata.json and trajectory.csv.
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
	ID          string             `json:"id"`
	Robot       string             `json:"robot"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	DOF         int                `json:"dof"`
	Metrics     map[string]float64 `json:"metrics"`
	SolveErrors []string           `json:"solve_errors,omitempty"`
}

func (s *Store) Save(robot string, cfg jog.Config, result *jog.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", robot, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	dof := 0
	if len(result.Positions) > 0 {
		dof = len(result.Positions[0])
	}
	meta := RunMetadata{
		ID:        runID,
		Robot:     robot,
		Timestamp: time.Now(),
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		DOF:       dof,
		Metrics:   result.Metrics,
	}
	for _, err := range result.SolveErrors {
		meta.SolveErrors = append(meta.SolveErrors, err.Error())
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeTrajectory(csvFile, result, dof); err != nil {
		return "", err
	}
	return runID, nil
}

func writeTrajectory(out io.Writer, result *jog.Result, dof int) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{"time"}
	for i := 0; i < dof; i++ {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	for i := 0; i < dof; i++ {
		header = append(header, fmt.Sprintf("qd%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.Positions {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, v := range result.Positions[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if i < len(result.Velocities) {
			for _, v := range result.Velocities[i] {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
		} else {
			for j := 0; j < dof; j++ {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads back the recorded times, positions, and
// velocities of a run.
func (s *Store) LoadTrajectory(runID string) (times []float64, positions, velocities [][]float64, err error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, [][]float64{}, nil
	}

	dof := meta.DOF
	for _, record := range records[1:] {
		if len(record) != 1+2*dof {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		q := make([]float64, dof)
		qd := make([]float64, dof)
		ok := true
		for j := 0; j < dof; j++ {
			if q[j], err = strconv.ParseFloat(record[1+j], 64); err != nil {
				ok = false
				break
			}
			if qd[j], err = strconv.ParseFloat(record[1+dof+j], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		times = append(times, t)
		positions = append(positions, q)
		velocities = append(velocities, qd)
	}
	return times, positions, velocities, nil
}
