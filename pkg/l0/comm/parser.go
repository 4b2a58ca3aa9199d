package comm

// Parser assembles frames from bytes received in arbitrary chunks.
type Parser struct {
	Codec Codec

	buf []byte
}

// ParseResult indicates the result after parsing a chunk.
type ParseResult struct {
	// Frames are the complete frames, in stream order.
	Frames []*Frame
	// Errors are the framing errors recovered from, in stream order.
	// A run of discarded bytes yields one error.
	Errors []error
	// Discarded is the number of bytes dropped for resync.
	Discarded int
}

// Corrupted indicates resync happened.
func (r ParseResult) Corrupted() bool {
	return len(r.Errors) > 0
}

func (r *ParseResult) merge(o ParseResult) {
	r.Frames = append(r.Frames, o.Frames...)
	r.Errors = append(r.Errors, o.Errors...)
	r.Discarded += o.Discarded
}

// Buffered returns the number of bytes of an incomplete frame.
func (p *Parser) Buffered() int {
	return len(p.buf)
}

// Reset drops buffered bytes.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
}

// Parse consumes a chunk of bytes.
func (p *Parser) Parse(data []byte) (pr ParseResult) {
	p.buf = append(p.buf, data...)
	p.scan(&pr, false)
	return
}

// Timeout notifies no more bytes arrived within the frame window.
// Bytes of an incomplete frame are stale: they are discarded one at a time
// while looking for complete frames in the remainder.
func (p *Parser) Timeout() (pr ParseResult) {
	if len(p.buf) > 0 {
		pr.Errors = append(pr.Errors, ErrFrameTimeout)
		p.scan(&pr, true)
	}
	return
}

// scan reports one error per run of slid bytes, a run ends when a frame
// decodes or more bytes are needed. On flush the timeout error opens the run.
func (p *Parser) scan(pr *ParseResult, flush bool) {
	start := 0
	resync := flush
	for start < len(p.buf) {
		f, n, err := p.Codec.Decode(p.buf[start:])
		if err == nil {
			pr.Frames = append(pr.Frames, &f)
			start += n
			resync = false
			continue
		}
		if err == ErrNeedMore && !flush {
			break
		}
		if err != ErrNeedMore && !resync {
			pr.Errors = append(pr.Errors, err)
		}
		resync = true
		// slide to the next plausible length field.
		start++
		pr.Discarded++
	}
	p.buf = append(p.buf[:0], p.buf[start:]...)
}
