package domain

// Failure is a FAILED or ERROR result flattened for the failure viewer.
type Failure struct {
	Combination string `json:"combination"` // canonical key
	Status      Status `json:"status"`
	Detail      string `json:"detail,omitempty"`
	Worker      int    `json:"worker,omitempty"`
	Resolved    bool   `json:"resolved,omitempty"` // toggled in the viewer
}

// Failures extracts the failing results of a suite in result order.
func Failures(s *TestSuite) []Failure {
	if s == nil {
		return nil
	}
	var out []Failure
	for _, r := range s.Results {
		if !r.Status.IsFailure() {
			continue
		}
		out = append(out, Failure{
			Combination: r.Combination.Key(),
			Status:      r.Status,
			Detail:      r.ErrorDetail,
			Worker:      r.Worker,
		})
	}
	return out
}
