package execution

import "time"

// Program is a stored program's source as returned by the program store.
type Program struct {
	ID     string
	Source string
}

// TestCase is a stored program together with the inputs it is fed and the
// outputs it is expected to emit, in order.
type TestCase struct {
	ID      string   `yaml:"id"`
	Source  string   `yaml:"program"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
}

// TestReport records one verdict for downstream consumers.
type TestReport struct {
	TestID      string
	Verdict     Verdict
	Outputs     []string
	Duration    time.Duration
	CompletedAt time.Time
}
