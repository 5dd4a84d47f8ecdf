package generation

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Envelope is the decoded JSON body returned by the provider.
type Envelope []byte

// Extract pulls the lesson document out of a provider envelope.
//
// A top-level error field is terminal (KindUpstream), as is missing or blank
// content (KindEmptyContent). Content that is not a non-empty JSON object is
// reported as KindMalformedContent, which the orchestrator retries.
func Extract(env Envelope) (*Document, error) {
	if !gjson.ValidBytes(env) {
		return nil, NewFailure(KindTransport, "provider response is not valid JSON")
	}

	root := gjson.ParseBytes(env)
	if msg, ok := upstreamError(root.Get("error")); ok {
		return nil, NewFailure(KindUpstream, msg)
	}

	content := root.Get("choices.0.message.content")
	text := strings.TrimSpace(content.String())
	if !content.Exists() || text == "" {
		return nil, NewFailure(KindEmptyContent, MsgEmptyResponse)
	}

	if !gjson.Valid(text) {
		return nil, NewFailure(KindMalformedContent, MsgInvalidJSON)
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() || len(doc.Map()) == 0 {
		return nil, NewFailure(KindMalformedContent, MsgInvalidJSON)
	}

	out := &Document{
		Lesson: doc.Get("lesson").String(),
		Raw:    json.RawMessage(text),
	}
	if quiz := doc.Get("quiz"); quiz.Exists() {
		out.Quiz = json.RawMessage(quiz.Raw)
	}
	return out, nil
}

// upstreamError reports the message of a present error field. Null, false,
// blank strings and empty containers count as absent.
func upstreamError(v gjson.Result) (string, bool) {
	if !v.Exists() {
		return "", false
	}

	switch v.Type {
	case gjson.Null, gjson.False:
		return "", false
	case gjson.String:
		msg := strings.TrimSpace(v.String())
		return msg, msg != ""
	case gjson.JSON:
		if v.IsArray() && len(v.Array()) == 0 {
			return "", false
		}
		if v.IsObject() {
			if len(v.Map()) == 0 {
				return "", false
			}
			if msg := strings.TrimSpace(v.Get("message").String()); msg != "" {
				return msg, true
			}
		}
		return v.Raw, true
	default:
		return v.Raw, true
	}
}
