package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultReplicates = 100
	DefaultFolds      = 10
	DefaultAlpha      = 0.05
	DefaultThreshold  = 0.5
	DefaultWorkers    = 4
	DefaultN          = 100
	DefaultP          = 10
	DefaultInform     = 3
	DefaultSNR        = 5.0
)

// Config describes one stability analysis: sampling effort, inference
// parameters, and where the data comes from.
type Config struct {
	Replicates int        `yaml:"replicates"`
	Folds      int        `yaml:"folds"`
	Alpha      float64    `yaml:"alpha"`
	Threshold  float64    `yaml:"threshold"`
	Seed       int64      `yaml:"seed"`
	Workers    int        `yaml:"workers"`
	Data       DataConfig `yaml:"data"`
	Fit        FitConfig  `yaml:"fit"`
}

// DataConfig selects the data source. A CSV path takes precedence;
// otherwise the synthetic generator runs with the block below.
type DataConfig struct {
	CSV       string          `yaml:"csv"`
	Target    string          `yaml:"target"`
	Synthetic SyntheticConfig `yaml:"synthetic"`
}

type SyntheticConfig struct {
	N           int     `yaml:"n"`
	P           int     `yaml:"p"`
	Informative int     `yaml:"informative"`
	SNR         float64 `yaml:"snr"`
}

// FitConfig tunes the penalized fitter.
type FitConfig struct {
	MaxIter        int     `yaml:"max_iter"`
	Tol            float64 `yaml:"tol"`
	NLambda        int     `yaml:"n_lambda"`
	LambdaMinRatio float64 `yaml:"lambda_min_ratio"`
}

func DefaultConfig() *Config {
	return &Config{
		Replicates: DefaultReplicates,
		Folds:      DefaultFolds,
		Alpha:      DefaultAlpha,
		Threshold:  DefaultThreshold,
		Seed:       1,
		Workers:    DefaultWorkers,
		Data: DataConfig{
			Synthetic: SyntheticConfig{
				N:           DefaultN,
				P:           DefaultP,
				Informative: DefaultInform,
				SNR:         DefaultSNR,
			},
		},
		Fit: FitConfig{
			MaxIter: 1000,
			Tol:     1e-4,
			NLambda: 100,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate applies the same fail-fast rules the analysis itself would,
// so a bad file is rejected before any fitting starts.
func (c *Config) Validate() error {
	if c.Replicates < 2 {
		return errors.New("config: replicates must be at least 2")
	}
	if c.Folds < 2 {
		return errors.New("config: folds must be at least 2")
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return errors.New("config: alpha must lie in (0, 1)")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.New("config: threshold must lie in [0, 1]")
	}
	if c.Workers < 1 {
		return errors.New("config: workers must be at least 1")
	}
	if c.Data.CSV == "" {
		s := c.Data.Synthetic
		if s.N < 4 || s.P < 1 {
			return fmt.Errorf("config: synthetic dataset %dx%d too small", s.N, s.P)
		}
		if s.Informative < 0 || s.Informative > s.P {
			return errors.New("config: informative count outside [0, p]")
		}
	} else if c.Data.Target == "" {
		return errors.New("config: csv source requires a target column")
	}
	return nil
}
