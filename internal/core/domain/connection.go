package domain

// ConnectionReport is the result of probing the upstream store.
type ConnectionReport struct {
	// Backend identifies the probed source.
	Backend SourceBackend `json:"backend"`

	// Target is the database or file that was probed.
	Target string `json:"target"`

	// Title is the upstream database title, when it has one.
	Title string `json:"title,omitempty"`

	// Records is the number of rows found by the probe.
	Records int `json:"records"`

	// Properties lists the fields of the first row with their upstream types.
	Properties []PropertyInfo `json:"properties,omitempty"`
}

// PropertyInfo describes a single upstream field.
type PropertyInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
