package sinowealth

// FlashReader streams flash bytes through CODESCAN while hiding the one-scan
// lag between address and data: construction selects the register and runs
// two priming scans (the first one's garbage byte is dropped), so Byte always
// holds valid data.
type FlashReader struct {
	t    *Target
	addr uint16
	data uint8
}

// NewFlashReader positions a cursor at addr. Costs two priming scans.
func NewFlashReader(t *Target, addr uint16) *FlashReader {
	r := &FlashReader{t: t, addr: addr}
	r.t.tap.IRScan(InstrCodescan)
	r.advance()
	r.advance()
	return r
}

// Byte returns the flash byte at Address without touching the wire.
func (r *FlashReader) Byte() uint8 { return r.data }

// Address is the flash address of the byte Byte returns.
func (r *FlashReader) Address() uint16 { return r.addr - 2 }

// Next advances one byte and returns it.
func (r *FlashReader) Next() uint8 {
	r.advance()
	return r.data
}

// Read fills buf starting at the cursor, leaving the cursor past the last
// byte read.
func (r *FlashReader) Read(buf []byte) {
	for i := range buf {
		buf[i] = r.data
		r.advance()
	}
}

func (r *FlashReader) advance() {
	r.data = r.t.codescan(r.addr)
	r.addr++
}
