package dataset

// Validate normalizes a request and rejects it before any disk activity
// occurs. String fields are trimmed and sanitized; empty-after-trim is
// treated as absent. Training requests must carry a speaker and a
// category; recognition requests never carry a speaker.
func Validate(req Request) (Request, error) {
	req.Speaker = SanitizeName(req.Speaker, maxComponentLen)
	req.Category = SanitizeName(req.Category, maxComponentLen)
	req.OriginalName = SanitizeName(req.OriginalName, maxComponentLen)

	switch req.Mode {
	case ModeTraining:
		if req.Speaker == "" {
			return req, &ValidationError{Kind: MissingField, Field: "speaker"}
		}
		if req.Category == "" {
			return req, &ValidationError{Kind: MissingField, Field: "category"}
		}
		req.OriginalName = ""
	case ModeRecognition:
		req.Speaker = ""
	default:
		return req, &ValidationError{Kind: MissingField, Field: "mode"}
	}

	if req.Payload == nil || req.SizeHint == 0 {
		return req, &ValidationError{Kind: EmptyPayload, Field: "payload"}
	}
	return req, nil
}
