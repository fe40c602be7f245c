package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
)

// nullableFloat marshals NaN as JSON null; encoding/json rejects NaN
// outright.
type nullableFloat float64

func (f nullableFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

type curveJSON struct {
	Lambda     nullableFloat `json:"lambda"`
	Stability  nullableFloat `json:"stability"`
	Lower      nullableFloat `json:"lower"`
	Upper      nullableFloat `json:"upper"`
	Degenerate bool          `json:"degenerate,omitempty"`
}

type trajectoryJSON struct {
	Replicates int           `json:"replicates"`
	Stability  nullableFloat `json:"stability"`
	Lower      nullableFloat `json:"lower"`
	Upper      nullableFloat `json:"upper"`
}

type frequencyJSON struct {
	Predictor string        `json:"predictor"`
	Frequency nullableFloat `json:"frequency"`
}

// ExportData is the full JSON rendition of a stored run.
type ExportData struct {
	Meta        RunMetadata      `json:"meta"`
	Curve       []curveJSON      `json:"curve"`
	Convergence []trajectoryJSON `json:"convergence"`
	Frequencies []frequencyJSON  `json:"frequencies"`
}

func (s *Store) export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	curve, err := s.LoadCurve(runID)
	if err != nil {
		return nil, err
	}
	conv, err := s.LoadConvergence(runID)
	if err != nil {
		return nil, err
	}
	freqs, err := s.LoadFrequencies(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Meta: *meta}
	for _, pt := range curve {
		data.Curve = append(data.Curve, curveJSON{
			Lambda:     nullableFloat(pt.Lambda),
			Stability:  nullableFloat(pt.Stability),
			Lower:      nullableFloat(pt.Lower),
			Upper:      nullableFloat(pt.Upper),
			Degenerate: pt.Degenerate,
		})
	}
	for _, pt := range conv {
		data.Convergence = append(data.Convergence, trajectoryJSON{
			Replicates: pt.Replicates,
			Stability:  nullableFloat(pt.Stability),
			Lower:      nullableFloat(pt.Lower),
			Upper:      nullableFloat(pt.Upper),
		})
	}
	for _, f := range freqs {
		data.Frequencies = append(data.Frequencies, frequencyJSON{
			Predictor: f.Predictor,
			Frequency: nullableFloat(f.Value),
		})
	}
	return data, nil
}

func (s *Store) exportTo(w io.Writer, runID string) error {
	data, err := s.export(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSON writes a stored run to path as indented JSON.
func (s *Store) ExportJSON(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.exportTo(file, runID)
}

// ExportJSONStdout writes a stored run to standard output.
func (s *Store) ExportJSONStdout(runID string) error {
	return s.exportTo(os.Stdout, runID)
}
