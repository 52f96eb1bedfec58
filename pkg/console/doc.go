// Package console implements the serial debug console protocol.
package console

// The console runs over a raw, unbuffered byte link (usually a UART).
// Bytes are echoed and accumulated until the end-of-line byte, then the
// line is split on spaces into tagged parameters:
//
//	S<uint>  selector, mandatory and only legal as the first parameter
//	U<uint>  unsigned 32-bit integer
//	I<int>   signed 32-bit integer
//	F<float> 32-bit float
//	L / H    boolean false / true
//	T<text>  verbatim text
//
// Tags are case insensitive. A parsed line is acknowledged with
// "\n\r S<selector> U<count>\n\r" and handed to the active menu; any error
// is reported as "\n\r E<code>\n\r" followed by a new prompt.
//
// ESC redraws the active menu. Submitting empty lines three times in a row
// reinitializes the console and shows the program information.
//
// Console is polled: Poll never blocks and must be called from a single
// goroutine.
