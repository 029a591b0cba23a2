package xmltree

import "strings"

// ErrorNumberParse is the error number reported when a response body could
// not be parsed at all.
const ErrorNumberParse = 100

// Envelope is the Result/ErrorNumber/Message wrapper every RRService response
// carries. Payload is the ResultInfo node (or the document root when there is
// no ResultInfo) and is never nil.
type Envelope struct {
	Success     bool           `json:"success"`
	ErrorNumber int            `json:"error_number"`
	Message     string         `json:"message"`
	Payload     map[string]any `json:"-"`
	Raw         []byte         `json:"-"`
}

// Normalize parses a response body into an Envelope. It never fails: a body
// that is not XML produces an unsuccessful envelope whose message carries the
// parse error.
func Normalize(raw []byte) Envelope {
	env := Envelope{Raw: raw, Payload: map[string]any{}}

	root, err := Parse(raw)
	if err != nil {
		env.ErrorNumber = ErrorNumberParse
		env.Message = err.Error()
		return env
	}

	ri := AsMap(root["ResultInfo"])
	if ri == nil {
		ri = root
	}
	env.Payload = ri

	env.Success = strings.EqualFold(strings.TrimSpace(TextOf(ri["Result"])), "success")
	env.ErrorNumber = Int(ri["ErrorNumber"])
	env.Message = TextOf(ri["Message"])
	return env
}

// Selections returns the payload container the backend nests records under,
// trying the documented key first and then the variants seen in the wild.
// An absent or empty container yields an empty map.
func (e Envelope) Selections() map[string]any {
	return SelectionsOf(e.Payload)
}

// SelectionsOf is Selections for a bare tree.
func SelectionsOf(tree map[string]any) map[string]any {
	for _, path := range [][]string{
		{"Selections"},
		{"selections"},
		{"ResultInfo", "Selections"},
	} {
		if m := AsMap(Get(tree, path...)); m != nil {
			return m
		}
	}
	return map[string]any{}
}
