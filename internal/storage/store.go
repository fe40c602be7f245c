package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/stabkit/stabsel/internal/stabsel"
)

// Store persists analysis runs, one directory each: metadata.json plus
// curve.csv, convergence.csv and frequencies.csv.
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
	ID           string    `json:"id"`
	Dataset      string    `json:"dataset"`
	Timestamp    time.Time `json:"timestamp"`
	Samples      int       `json:"samples"`
	Predictors   int       `json:"predictors"`
	Seed         int64     `json:"seed"`
	Replicates   int       `json:"replicates"`
	Folds        int       `json:"folds"`
	Alpha        float64   `json:"alpha"`
	Threshold    float64   `json:"threshold"`
	LambdaMin    float64   `json:"lambda_min"`
	Lambda1SE    float64   `json:"lambda_1se"`
	LambdaStable float64   `json:"lambda_stable"`
	Rule         string    `json:"rule"`
}

func (s *Store) Save(dataset string, n, p int, cfg stabsel.Config, reg *stabsel.RegularizationCurve, conv *stabsel.ConvergenceCurve) (string, error) {
	runID := fmt.Sprintf("%s_%d", dataset, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Dataset:      dataset,
		Timestamp:    time.Now(),
		Samples:      n,
		Predictors:   p,
		Seed:         cfg.Seed,
		Replicates:   cfg.Replicates,
		Folds:        cfg.Folds,
		Alpha:        cfg.Alpha,
		Threshold:    cfg.Threshold,
		LambdaMin:    reg.LambdaMin,
		Lambda1SE:    reg.Lambda1SE,
		LambdaStable: reg.LambdaStable,
		Rule:         string(reg.Rule),
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

	curveRows := make([][]string, 0, len(reg.Points)+1)
	curveRows = append(curveRows, []string{"lambda", "stability", "lower", "upper"})
	for _, pt := range reg.Points {
		curveRows = append(curveRows, []string{
			formatFloat(pt.Lambda),
			formatFloat(pt.Stability),
			formatFloat(pt.Lower),
			formatFloat(pt.Upper),
		})
	}
	if err := writeCSV(filepath.Join(runDir, "curve.csv"), curveRows); err != nil {
		return "", err
	}

	convRows := make([][]string, 0, len(conv.Trajectory)+1)
	convRows = append(convRows, []string{"replicates", "stability", "lower", "upper"})
	for _, pt := range conv.Trajectory {
		convRows = append(convRows, []string{
			strconv.Itoa(pt.Replicates),
			formatFloat(pt.Stability),
			formatFloat(pt.Lower),
			formatFloat(pt.Upper),
		})
	}
	if err := writeCSV(filepath.Join(runDir, "convergence.csv"), convRows); err != nil {
		return "", err
	}

	freqRows := make([][]string, 0, len(conv.Selected)+1)
	freqRows = append(freqRows, []string{"predictor", "frequency"})
	for _, f := range conv.Selected {
		freqRows = append(freqRows, []string{f.Predictor, formatFloat(f.Value)})
	}
	if err := writeCSV(filepath.Join(runDir, "frequencies.csv"), freqRows); err != nil {
		return "", err
	}

	return runID, nil
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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
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

// LoadCurve reads curve.csv back into curve points. A stored NaN
// stability marks a degenerate penalty and restores the flag.
func (s *Store) LoadCurve(runID string) ([]stabsel.CurvePoint, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "curve.csv"))
	if err != nil {
		return nil, err
	}

	points := make([]stabsel.CurvePoint, 0, len(records))
	for _, rec := range records {
		if len(rec) < 4 {
			continue
		}
		pt := stabsel.CurvePoint{
			Lambda:    parseFloat(rec[0]),
			Stability: parseFloat(rec[1]),
			Lower:     parseFloat(rec[2]),
			Upper:     parseFloat(rec[3]),
		}
		pt.Degenerate = math.IsNaN(pt.Stability)
		points = append(points, pt)
	}
	return points, nil
}

func (s *Store) LoadConvergence(runID string) ([]stabsel.TrajectoryPoint, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "convergence.csv"))
	if err != nil {
		return nil, err
	}

	points := make([]stabsel.TrajectoryPoint, 0, len(records))
	for _, rec := range records {
		if len(rec) < 4 {
			continue
		}
		k, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		points = append(points, stabsel.TrajectoryPoint{
			Replicates: k,
			Stability:  parseFloat(rec[1]),
			Lower:      parseFloat(rec[2]),
			Upper:      parseFloat(rec[3]),
		})
	}
	return points, nil
}

func (s *Store) LoadFrequencies(runID string) ([]stabsel.Frequency, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "frequencies.csv"))
	if err != nil {
		return nil, err
	}

	freqs := make([]stabsel.Frequency, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		freqs = append(freqs, stabsel.Frequency{
			Predictor: rec[0],
			Value:     parseFloat(rec[1]),
		})
	}
	return freqs, nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readCSV returns the data rows, skipping the header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseFloat maps unreadable cells to NaN rather than failing the row;
// NaN is already the marker for an undefined score.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
