package config

// Presets trade subsampling effort against runtime. "quick" is for a
// first look at a dataset, "thorough" for a final report.
var Presets = map[string]*Config{
	"quick": {
		Replicates: 30, Folds: 5, Alpha: 0.05, Threshold: 0.5,
		Seed: 1, Workers: DefaultWorkers,
		Data: DataConfig{Synthetic: SyntheticConfig{
			N: DefaultN, P: DefaultP, Informative: DefaultInform, SNR: DefaultSNR,
		}},
		Fit: FitConfig{MaxIter: 500, Tol: 1e-3, NLambda: 50},
	},
	"standard": {
		Replicates: DefaultReplicates, Folds: DefaultFolds,
		Alpha: DefaultAlpha, Threshold: DefaultThreshold,
		Seed: 1, Workers: DefaultWorkers,
		Data: DataConfig{Synthetic: SyntheticConfig{
			N: DefaultN, P: DefaultP, Informative: DefaultInform, SNR: DefaultSNR,
		}},
		Fit: FitConfig{MaxIter: 1000, Tol: 1e-4, NLambda: 100},
	},
	"thorough": {
		Replicates: 500, Folds: DefaultFolds,
		Alpha: 0.01, Threshold: DefaultThreshold,
		Seed: 1, Workers: 8,
		Data: DataConfig{Synthetic: SyntheticConfig{
			N: DefaultN, P: DefaultP, Informative: DefaultInform, SNR: DefaultSNR,
		}},
		Fit: FitConfig{MaxIter: 5000, Tol: 1e-5, NLambda: 100},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
