package poe

import (
	"io"
	"iter"

	"github.com/poekit/poekit/protocol"
)

// Stream is the event sequence of one streaming query. It is pull-based:
// each Next call reads transport chunks until at least one event is decoded.
// A Stream must be consumed by a single goroutine; separate streams are
// independent and may run concurrently.
//
// Example:
//
//	stream, err := client.StreamRequest(ctx, req)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    switch ev := stream.Current().(type) {
//	    case protocol.TextEvent:
//	        fmt.Print(ev.Text)
//	    case protocol.DoneEvent:
//	        return nil
//	    }
//	}
//	return stream.Err()
type Stream struct {
	body io.ReadCloser
	dec  *decoder
	buf  []byte

	pending      []protocol.Event
	current      protocol.Event
	transportErr error
	err          error
	closed       bool
}

func newStream(body io.ReadCloser, dec *decoder) *Stream {
	return &Stream{
		body: body,
		dec:  dec,
		buf:  make([]byte, 4096),
	}
}

// Next advances to the next event. It returns false when the stream ends,
// either cleanly or with an error; check Err afterwards. Events decoded from
// a chunk are always yielded before a transport error from the same read is
// surfaced.
func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}

	for len(s.pending) == 0 {
		if s.transportErr != nil {
			if s.transportErr != io.EOF {
				s.err = s.transportErr
			}
			return false
		}
		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.pending = append(s.pending, s.dec.Feed(s.buf[:n])...)
		}
		if err != nil {
			s.transportErr = err
		}
	}

	s.current = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// Current returns the event Next advanced to.
func (s *Stream) Current() protocol.Event {
	return s.current
}

// Err returns the terminal error, or nil after a clean end of stream.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying transport. Dropping a stream early must go
// through Close so the HTTP response body is returned to the pool.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// Events returns the stream as a range-over-func sequence. A terminal error
// is yielded as the final element with a nil event.
//
// Example:
//
//	for ev, err := range stream.Events() {
//	    if err != nil {
//	        return err
//	    }
//	    handle(ev)
//	}
func (s *Stream) Events() iter.Seq2[protocol.Event, error] {
	return func(yield func(protocol.Event, error) bool) {
		for s.Next() {
			if !yield(s.current, nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}
