// Package stabsel quantifies how reliably a penalized regression
// procedure selects the same predictors under perturbation of the data.
//
// For every candidate penalty produced by a cross-validated fit, the
// package draws half-sample subsamples, refits at the fixed penalty,
// and records the selected support as one row of a binary matrix. The
// matrices feed the stability estimator of Nogueira, Sechidis and
// Brown (JMLR 2018), which scores agreement between rows against a
// random selector of the same average support size:
//
//   - [Build]: one selection matrix per candidate penalty
//   - [Estimate]: stability score with an asymptotic confidence interval
//   - [NewRegularizationCurve]: stability across the candidate set
//   - [NewConvergenceCurve]: stability as subsamples accumulate
//   - [ReferencePenalty]: shared rule picking the "stable" penalty
//
// # Example
//
//	fit := lasso.New(lasso.DefaultConfig())
//	res, _ := stabsel.Build(ctx, fit, X, y, names, cfg)
//	reg, _ := stabsel.NewRegularizationCurve(res, cfg.Alpha)
//	conv, _ := stabsel.NewConvergenceCurve(res, cfg.Alpha, cfg.Threshold)
//
// # Reuse
//
// Matrices are built once per [Build] call and shared by both curves.
// Nothing is cached across calls; a fixed seed reproduces the full
// analysis regardless of worker count.
package stabsel
