package llm

import "encoding/json"

// finishResponse applies the checks every provider shares once the raw
// output is in hand: truncated structured output is an error, and
// structured output must satisfy the schema.
func finishResponse(req Request, resp *Response) (*Response, error) {
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := checkContent(req, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// checkContent validates raw against the request schema and then runs the
// request's Decode hook.
func checkContent(req Request, raw json.RawMessage) error {
	if err := validateResponse(req.Schema, raw); err != nil {
		return err
	}
	if req.Decode == nil {
		return nil
	}
	if err := req.Decode(raw); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}

// resolveModel maps a friendly model name to a provider model ID.
// Unknown names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
