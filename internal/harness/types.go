package harness

// Outcome is what one step produced on one backend.
type Outcome struct {
	Step        string `json:"step"`
	Keys        []any  `json:"keys"`
	HasNext     bool   `json:"has_next"`
	HasPrevious bool   `json:"has_previous"`
	Total       int64  `json:"total"`
	Number      int    `json:"number"`
	NextToken   bool   `json:"next_token"`
	PrevToken   bool   `json:"prev_token"`
	Error       string `json:"error,omitempty"`
}

func (o Outcome) canonical() map[string]any {
	keys := o.Keys
	if keys == nil {
		keys = []any{}
	}
	m := map[string]any{
		"step":         o.Step,
		"keys":         keys,
		"has_next":     o.HasNext,
		"has_previous": o.HasPrevious,
		"total":        o.Total,
		"number":       o.Number,
		"next_token":   o.NextToken,
		"prev_token":   o.PrevToken,
	}
	if o.Error != "" {
		m["error"] = o.Error
	}
	return m
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause matched on every backend and
	// all backends agreed.
	Pass bool `json:"pass"`

	// Backends lists the backends the scenario ran on, in run order.
	Backends []string `json:"backends"`

	// Outcomes are the step outcomes of the first backend.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
