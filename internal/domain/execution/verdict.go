package execution

// Result is the pass/fail outcome of a test run.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
)

// Mismatch pairs an expected output line with the line actually emitted at
// the same position.
type Mismatch struct {
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual" yaml:"actual"`
}

// Verdict is the immutable outcome of running one fixture.
type Verdict struct {
	Result         Result     `json:"result"`
	OutputMismatch []Mismatch `json:"outputMismatch"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
}

// Passed reports whether the verdict is a success.
func (v Verdict) Passed() bool {
	return v.Result == ResultSuccess
}

// CompareOutputs zips expected against actual up to the shorter length and
// returns a mismatch for every differing pair, in position order. Unpaired
// trailing lines on either side are not reported.
func CompareOutputs(expected, actual []string) []Mismatch {
	n := len(expected)
	if len(actual) < n {
		n = len(actual)
	}
	mismatches := make([]Mismatch, 0)
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			mismatches = append(mismatches, Mismatch{Expected: expected[i], Actual: actual[i]})
		}
	}
	return mismatches
}

// NewVerdict builds the verdict for a completed run from its outputs.
func NewVerdict(expected, actual []string) Verdict {
	mismatches := CompareOutputs(expected, actual)
	result := ResultSuccess
	if len(mismatches) > 0 {
		result = ResultFailure
	}
	return Verdict{Result: result, OutputMismatch: mismatches}
}

// FailedVerdict builds the verdict for a run that raised before comparison.
func FailedVerdict(err error) Verdict {
	message := MessageOf(err)
	if message == "" {
		message = "execution failed"
	}
	return Verdict{
		Result:         ResultFailure,
		OutputMismatch: []Mismatch{},
		ErrorMessage:   message,
	}
}
