package devtool

import "encoding/json"

// request is the wire shape of one outbound command. The id correlates the
// eventual reply back to the sender.
type request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// reply is the wire shape of one inbound message that answers a request.
// Protocol events carry no id and unmarshal with ID zero.
type reply struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
}

// evaluateParams parameterizes a Runtime.evaluate command. returnByValue
// forces the host to serialize the script's value instead of handing back an
// object reference, and awaitPromise resolves async scripts before replying.
type evaluateParams struct {
	Expression    string `json:"expression"`
	ReturnByValue bool   `json:"returnByValue"`
	AwaitPromise  bool   `json:"awaitPromise"`
}

// evaluateResult is the host's answer to Runtime.evaluate. ExceptionDetails
// is present exactly when the script threw.
type evaluateResult struct {
	Result struct {
		Value json.RawMessage `json:"value"`
	} `json:"result"`
	ExceptionDetails *exceptionDetails `json:"exceptionDetails"`
}

type exceptionDetails struct {
	Text      string `json:"text"`
	Exception *struct {
		Value       json.RawMessage `json:"value"`
		Description string          `json:"description"`
	} `json:"exception"`
}

// message picks the most specific description the host offered: the thrown
// value itself when it was a string, then the exception description, then
// the outer text, then a generic fallback.
func (d *exceptionDetails) message() string {
	if d.Exception != nil {
		if len(d.Exception.Value) > 0 && string(d.Exception.Value) != "null" {
			var s string
			if err := json.Unmarshal(d.Exception.Value, &s); err == nil && s != "" {
				return s
			}
			return string(d.Exception.Value)
		}
		if d.Exception.Description != "" {
			return d.Exception.Description
		}
	}
	if d.Text != "" {
		return d.Text
	}
	return "Evaluation error"
}
