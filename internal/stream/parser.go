// Package stream consumes the recipe-generation event streams: an
// incremental parser for the newline-delimited "data: {...}" frame format,
// and the session state machine that applies frames to a recipe under
// construction.
package stream

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
)

// Frame is one parsed event from a generation response. Either Error is
// set, or Status tags which partial fields Recipe carries.
type Frame struct {
	Status string      `json:"status"`
	Error  string      `json:"error"`
	Recipe RecipePatch `json:"recipe"`
}

// RecipePatch carries the partial recipe fields of one frame. Only the
// field named by the frame's status tag is meaningful.
type RecipePatch struct {
	Name        string   `json:"recipe_name"`
	Description string   `json:"recipe_description"`
	Ingredients []string `json:"ingredients"`
	Directions  []string `json:"directions"`
}

// Parser reassembles frames from raw transport chunks. Frames may arrive
// split across chunks; the trailing partial record is retained between
// Feed calls. A record that fails to parse is logged and skipped — it
// never aborts the stream.
type Parser struct {
	log     zerolog.Logger
	buf     []byte
	skipped int
}

// NewParser creates an empty parser.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// Feed appends chunk to the buffer and returns every frame completed by
// it, in arrival order.
func (p *Parser) Feed(chunk []byte) []Frame {
	p.buf = append(p.buf, chunk...)

	var frames []Frame
	for {
		i := bytes.Index(p.buf, []byte("\n\n"))
		if i < 0 {
			break
		}
		record := p.buf[:i]
		p.buf = p.buf[i+2:]

		record = bytes.TrimLeft(record, "\r\n")
		payload, ok := bytes.CutPrefix(record, []byte("data: "))
		if !ok {
			if len(bytes.TrimSpace(record)) > 0 {
				p.skipped++
				p.log.Warn().Str("record", string(record)).Msg("skipping record without data prefix")
			}
			continue
		}

		var f Frame
		if err := json.Unmarshal(payload, &f); err != nil {
			p.skipped++
			p.log.Warn().Err(err).Str("payload", string(payload)).Msg("skipping malformed frame")
			continue
		}
		frames = append(frames, f)
	}
	return frames
}

// Buffered returns the size of the retained partial record.
func (p *Parser) Buffered() int { return len(p.buf) }

// Skipped returns how many records were discarded as malformed.
func (p *Parser) Skipped() int { return p.skipped }

// Scanner adapts a Parser to an io.Reader, yielding the stream's frames
// one at a time. The sequence is finite: Next returns io.EOF once the
// underlying stream closes. A Scanner is not restartable.
type Scanner struct {
	r       io.Reader
	p       *Parser
	pending []Frame
	err     error
	chunk   []byte
}

// NewScanner wraps r, typically a streaming HTTP response body.
func NewScanner(r io.Reader, log zerolog.Logger) *Scanner {
	return &Scanner{r: r, p: NewParser(log), chunk: make([]byte, 4096)}
}

// Next returns the next frame, reading more of the stream as needed.
// Frames completed before a read error are delivered before the error.
func (s *Scanner) Next() (Frame, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return Frame{}, s.err
		}
		n, err := s.r.Read(s.chunk)
		if n > 0 {
			s.pending = s.p.Feed(s.chunk[:n])
		}
		if err != nil {
			s.err = err
		}
	}

	f := s.pending[0]
	s.pending = s.pending[1:]
	return f, nil
}
