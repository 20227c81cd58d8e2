package lifecycle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/core"
)

// classify turns the exchange into a result or exactly one error.
func (c *Component[T]) classify(resp *core.Response, sendErr error, host string) (T, *apierr.Error) {
	var zero T

	if sendErr != nil {
		return zero, apierr.FromTransport(sendErr, host)
	}

	status := resp.Status().Code()
	if !resp.Status().IsSuccess() {
		body := resp.Body().Bytes()
		if c.hooks.ClassifyStatus != nil {
			if e := c.hooks.ClassifyStatus(status, body); e != nil {
				if e.Status() == 0 {
					e = e.WithStatus(status)
				}
				return zero, e
			}
		}
		if status == 404 && c.hooks.NotFoundMessage != "" {
			return zero, apierr.NotFound(c.hooks.NotFoundMessage)
		}
		return zero, apierr.FromResponse(status, body)
	}

	raw, aerr := checkShape(resp.Body().Bytes(), c.hooks.Expect, c.hooks.Required)
	if aerr != nil {
		return zero, aerr
	}

	if c.hooks.Decode == nil {
		return zero, nil
	}
	result, err := c.hooks.Decode(raw)
	if err != nil {
		return zero, apierr.Wrap(apierr.KindOutput, apierr.SeverityCritical, apierr.CodeInvalidJSON,
			"The response could not be read.", err)
	}
	return result, nil
}

// checkShape verifies a successful body against the expected shape and
// returns it for decoding.
func checkShape(body []byte, expect Shape, required []string) (json.RawMessage, *apierr.Error) {
	if expect == ShapeNone {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apierr.Output(apierr.CodeEmptyResponse,
			"The request replied an empty answer, but there was content expected.")
	}
	if !json.Valid(trimmed) {
		return nil, apierr.Output(apierr.CodeInvalidJSON,
			"The response is not valid JSON.")
	}

	switch expect {
	case ShapeArray:
		if trimmed[0] != '[' {
			return nil, apierr.Output(apierr.CodeUnexpectedShape,
				"It was expected that the request returns a JSON array, but it returned something else.")
		}
	case ShapeObject:
		if trimmed[0] != '{' {
			return nil, apierr.Output(apierr.CodeUnexpectedShape,
				"It was expected that the request returns a JSON object, but it returned something else.")
		}
		if len(required) > 0 {
			var members map[string]json.RawMessage
			if err := json.Unmarshal(trimmed, &members); err != nil {
				return nil, apierr.Wrap(apierr.KindOutput, apierr.SeverityCritical, apierr.CodeInvalidJSON,
					"The response is not valid JSON.", err)
			}
			for _, name := range required {
				if _, ok := members[name]; !ok {
					return nil, apierr.Output(apierr.CodeMissingMember,
						fmt.Sprintf("The response is missing the %q member.", name))
				}
			}
		}
	}

	return json.RawMessage(trimmed), nil
}
