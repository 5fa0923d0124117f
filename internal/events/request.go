package events

import "strings"

// Request is the inbound request as delivered by the invocation harness.
// Header names are lower-cased.
type Request struct {
	Headers         map[string]string
	Body            string
	IsBase64Encoded bool
	RawQueryString  string
}

// Header returns the named header and whether it was present.
func (r Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// Response is the uniform outbound shape: a status code and a
// newline-terminated body.
type Response struct {
	StatusCode int
	Body       string
}

// Record is a stored event. TsDay is the partition key and Ts the sort key
// within the day.
type Record struct {
	TsDay int64  `json:"ts_day"`
	Ts    int64  `json:"ts"`
	Type  string `json:"type"`
	Src   string `json:"src"`
	Data  any    `json:"data"`
}

// Submission is a parsed and schema-checked submission body.
type Submission struct {
	Type string
	Src  string
	Data any
}
