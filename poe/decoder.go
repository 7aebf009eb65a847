package poe

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poekit/poekit/protocol"
	"github.com/poekit/poekit/xmltool"
)

// eventType is the SSE event name currently in effect for data lines.
type eventType int

const (
	eventNone eventType = iota
	eventText
	eventReplaceResponse
	eventJSON
	eventFile
	eventDone
	eventError
)

// decoder turns raw SSE chunks into protocol events. All state lives here:
// the pending-line buffer, the active event type, the awaiting-data flag, the
// tool-call accumulator, and the optional XML interceptor. One decoder serves
// exactly one stream and is driven by a single goroutine.
//
// A payload that fails to decode as JSON sets the awaiting-data flag; the
// next non-directive line is then retried as if it were the complete payload.
// This resolves payloads split across SSE lines only when the following line
// is itself valid JSON, which upstream framing is expected to guarantee.
type decoder struct {
	logger      *slog.Logger
	interceptor *xmltool.Interceptor

	pending  string
	current  eventType
	awaiting bool
	acc      toolCallAccumulator
}

func newDecoder(logger *slog.Logger, interceptor *xmltool.Interceptor) *decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &decoder{logger: logger, interceptor: interceptor}
}

// Feed appends one transport chunk and returns every event decodable so far,
// in order. Incomplete trailing data stays buffered for the next chunk, so
// feeding a stream in arbitrary splits yields the same event sequence as
// feeding it whole.
func (d *decoder) Feed(chunk []byte) []protocol.Event {
	d.pending += string(chunk)

	var events []protocol.Event
	for {
		nl := strings.IndexByte(d.pending, '\n')
		if nl < 0 {
			break
		}
		line := strings.TrimSpace(d.pending[:nl])
		d.pending = d.pending[nl+1:]
		events = append(events, d.processLine(line)...)
	}

	// Completion can arrive without a further line in the same chunk; flush
	// accumulated tool calls once the chunk is fully processed.
	if d.acc.complete && len(d.acc.partials) > 0 {
		if calls := d.acc.drainComplete(); len(calls) > 0 {
			events = append(events, protocol.ToolCallsEvent{Calls: calls})
		}
	}
	return events
}

func (d *decoder) processLine(line string) []protocol.Event {
	switch {
	case line == "":
		// Record boundary.
		d.current = eventNone
		d.awaiting = false
		return nil

	case line == ": ping":
		return nil

	case strings.HasPrefix(line, "event: "):
		d.classify(strings.TrimSpace(strings.TrimPrefix(line, "event: ")))
		return nil

	case strings.HasPrefix(line, "data: "):
		return d.handleData(strings.TrimSpace(strings.TrimPrefix(line, "data: ")), false)

	default:
		if d.awaiting {
			return d.handleData(line, true)
		}
		return nil
	}
}

func (d *decoder) classify(name string) {
	d.awaiting = false
	switch name {
	case "text":
		d.current = eventText
	case "replace_response":
		d.current = eventReplaceResponse
	case "json":
		d.current = eventJSON
	case "file":
		d.current = eventFile
	case "done":
		d.current = eventDone
	case "error":
		d.current = eventError
	default:
		d.logger.Warn("unknown SSE event name", "event", name)
		d.current = eventNone
	}
}

func (d *decoder) handleData(payload string, retry bool) []protocol.Event {
	switch d.current {
	case eventText, eventReplaceResponse:
		return d.handleText(payload, retry)
	case eventJSON:
		return d.handleJSON(payload, retry)
	case eventFile:
		return d.handleFile(payload, retry)
	case eventDone:
		return d.handleDone()
	case eventError:
		return d.handleError(payload)
	default:
		d.logger.Debug("data line without active event type, dropped")
		return nil
	}
}

func (d *decoder) handleText(payload string, retry bool) []protocol.Event {
	var body struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		d.awaiting = true
		return nil
	}
	if body.Text == nil {
		return nil
	}
	replace := d.current == eventReplaceResponse
	if retry {
		d.awaiting = false
		d.current = eventNone
	}
	return d.emitText(*body.Text, replace)
}

// emitText routes a decoded text fragment through the XML interceptor when
// one is attached, otherwise emits it directly.
func (d *decoder) emitText(text string, replace bool) []protocol.Event {
	if d.interceptor == nil {
		return []protocol.Event{textEvent(text, replace)}
	}

	res := d.interceptor.Feed(text)
	var events []protocol.Event
	if len(res.Calls) > 0 {
		events = append(events, protocol.ToolCallsEvent{Calls: res.Calls})
	}
	if res.Text != "" {
		events = append(events, textEvent(res.Text, replace))
	}
	return events
}

func textEvent(text string, replace bool) protocol.Event {
	if replace {
		return protocol.ReplaceResponseEvent{Text: text}
	}
	return protocol.TextEvent{Text: text}
}

func (d *decoder) handleFile(payload string, retry bool) []protocol.Event {
	var file protocol.FileData
	if err := json.Unmarshal([]byte(payload), &file); err != nil || file.URL == "" {
		d.awaiting = true
		return nil
	}
	if retry {
		d.awaiting = false
		d.current = eventNone
	}
	return []protocol.Event{protocol.FileEvent{File: file}}
}

func (d *decoder) handleJSON(payload string, retry bool) []protocol.Event {
	var body struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Delta        struct {
				ToolCalls []toolCallDelta `json:"tool_calls"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		d.awaiting = true
		return nil
	}
	if retry {
		d.awaiting = false
		d.current = eventNone
	}

	var deltas []toolCallDelta
	if len(body.Choices) > 0 {
		if body.Choices[0].FinishReason == "tool_calls" {
			d.acc.complete = true
		}
		deltas = body.Choices[0].Delta.ToolCalls
	}

	if deltas != nil {
		for _, delta := range deltas {
			d.acc.apply(delta)
		}
		// Nothing is emitted per delta line; completed calls are flushed at
		// the end of the chunk.
		return nil
	}

	if !d.acc.complete {
		// Non-tool JSON deltas pass through raw.
		return []protocol.Event{protocol.TextEvent{Text: payload}}
	}
	return nil
}

func (d *decoder) handleDone() []protocol.Event {
	var events []protocol.Event
	if d.interceptor != nil {
		res := d.interceptor.Flush()
		if len(res.Calls) > 0 {
			events = append(events, protocol.ToolCallsEvent{Calls: res.Calls})
		}
		if res.Text != "" {
			events = append(events, protocol.TextEvent{Text: res.Text})
		}
	}
	events = append(events, protocol.DoneEvent{})
	// The transport may carry another turn; only per-turn state resets.
	d.current = eventNone
	return events
}

func (d *decoder) handleError(payload string) []protocol.Event {
	var body struct {
		Text       *string `json:"text"`
		AllowRetry bool    `json:"allow_retry"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		// Malformed out-of-band error payloads must not kill the stream.
		d.logger.Warn("dropping malformed error payload", "payload", payload)
		d.current = eventNone
		return nil
	}
	text := "Unknown error"
	if body.Text != nil {
		text = *body.Text
	}
	d.current = eventNone
	return []protocol.Event{protocol.ErrorEvent{Text: text, AllowRetry: body.AllowRetry}}
}
