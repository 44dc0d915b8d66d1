package plaqueassay

// Sample holds one physical specimen's full dilution series across all
// tested concentrations and replicates (cutting across plates), its potency
// result, and any sample-level QC failures.
type Sample struct {
	Name    string
	Variant string
	Data    DilutionSeries
	Result  Result

	IsPositiveControl bool
	Failures          []WellFailure
}

// NewSample runs the potency pipeline over a specimen's dilution series and
// evaluates the sample-level QC rules against the outcome. The series is
// not mutated afterward; re-analysis constructs a fresh Sample.
func NewSample(name, variant string, data DilutionSeries, ladder DilutionLadder, criteria Criteria) *Sample {
	s := &Sample{
		Name:              name,
		Variant:           variant,
		Data:              data.Clean(),
		IsPositiveControl: IsPositiveControl(name),
	}
	s.Result = FitSample(name, s.Data, ladder, criteria.Threshold, criteria.WeakThreshold)

	// The discordance and model-fit-failure rules are deliberately
	// independent and can both fire for one well.
	s.Failures = appendWellFailures(s.Failures, CheckPositiveControl(s, criteria)...)
	s.Failures = appendWellFailures(s.Failures, CheckReplicateDiscordance(s, criteria)...)
	s.Failures = appendWellFailures(s.Failures, CheckModelFitFailure(s)...)
	s.Failures = appendWellFailures(s.Failures, CheckHighMSE(s, criteria)...)

	return s
}
