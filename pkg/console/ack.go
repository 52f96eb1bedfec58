package console

import (
	"io"
	"regexp"
	"strconv"
)

// Ack is an acknowledgement sent back after a submitted line.
type Ack struct {
	OK bool
	// Selector and Count are set on success.
	Selector uint32
	Count    uint32
	// Code is set on failure.
	Code ErrorCode
}

// SuccessAck creates the acknowledgement of a dispatched command.
func SuccessAck(selector uint32, count int) Ack {
	return Ack{OK: true, Selector: selector, Count: uint32(count)}
}

// FailureAck creates the acknowledgement of a failed line.
func FailureAck(code ErrorCode) Ack {
	return Ack{Code: code}
}

const ackDelim = "\n\r"

// String returns the ack body without line breaks, e.g. " S7 U2".
func (a Ack) String() string {
	if a.OK {
		return " S" + strconv.FormatUint(uint64(a.Selector), 10) +
			" U" + strconv.FormatUint(uint64(a.Count), 10)
	}
	return " E" + strconv.FormatUint(uint64(a.Code), 10)
}

// Bytes returns encoded bytes for sending.
func (a Ack) Bytes() []byte {
	return []byte(ackDelim + a.String() + ackDelim)
}

// WriteTo implements io.WriterTo.
func (a Ack) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.Bytes())
	return int64(n), err
}

// Err returns the ErrorCode of a failure ack, nil on success.
func (a Ack) Err() error {
	if a.OK {
		return nil
	}
	return a.Code
}

var (
	successBody = regexp.MustCompile(`^ S(\d+) U(\d+)$`)
	failureBody = regexp.MustCompile(`^ E(\d+)$`)
)

// maxAckBody bounds the segment kept by AckDecoder.
const maxAckBody = 32

// AckDecoder recovers acknowledgements from console output, which also
// carries echoed input, prompts and menu text.
type AckDecoder struct {
	seg      []byte
	overflow bool
	prev     byte
}

// Feed consumes one byte and returns an Ack when b completes one.
func (d *AckDecoder) Feed(b byte) *Ack {
	prev := d.prev
	d.prev = b
	if prev == ackDelim[0] && b == ackDelim[1] {
		// drop the '\n' already buffered.
		seg, overflow := d.seg, d.overflow
		if n := len(seg); n > 0 {
			seg = seg[:n-1]
		}
		d.seg, d.overflow = d.seg[:0], false
		if overflow {
			return nil
		}
		return decodeAckBody(seg)
	}
	if len(d.seg) >= maxAckBody {
		d.overflow = true
		return nil
	}
	d.seg = append(d.seg, b)
	return nil
}

// Reset drops buffered state.
func (d *AckDecoder) Reset() {
	d.seg, d.overflow, d.prev = d.seg[:0], false, 0
}

func decodeAckBody(body []byte) *Ack {
	if m := successBody.FindSubmatch(body); m != nil {
		sel, err1 := strconv.ParseUint(string(m[1]), 10, 32)
		cnt, err2 := strconv.ParseUint(string(m[2]), 10, 32)
		if err1 != nil || err2 != nil {
			return nil
		}
		return &Ack{OK: true, Selector: uint32(sel), Count: uint32(cnt)}
	}
	if m := failureBody.FindSubmatch(body); m != nil {
		code, err := strconv.ParseUint(string(m[1]), 10, 32)
		if err != nil {
			return nil
		}
		return &Ack{Code: ErrorCode(code)}
	}
	return nil
}
