// Package plaqueassay computes IC50-like neutralization potency values from
// plaque-reduction assay plate data, together with well- and plate-level
// quality control checks.
//
// Raw per-well measurements are grouped into Plates (one dilution's worth of
// wells) and Samples (one physical specimen across all dilutions and
// replicates). Each Plate normalizes its own background and infection rate;
// each Sample is pushed through a layered potency pipeline: cheap heuristics
// on the averaged raw values, then a bounded 4-parameter dose-response fit,
// then heuristics on the fitted curve, and finally a curve/threshold
// intersection that yields the IC50. Samples that cannot produce a numeric
// IC50 resolve to one of four categorical outcomes instead.
package plaqueassay
