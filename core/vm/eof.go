package vm

import "encoding/binary"

// EOF v1 container constants (EIP-3540/4750/5450/7480).
const (
	eofMagic        = 0xEF00
	eofVersion1     = 0x01
	kindTypes       = 0x01
	kindCode        = 0x02
	kindContainer   = 0x03
	kindData        = 0x04
	eofTerminator   = 0x00
	maxCodeSections = 1024
	maxStackHeight  = 1023
)

// codeSection describes one function's bytecode plus the inputs, outputs
// and max stack height declared for it in the types section.
type codeSection struct {
	code           []byte
	inputs         uint8
	outputs        uint8
	maxStackHeight uint16
}

// eofContainer is the parsed form of an EOF v1 container: legacy
// (non-EOF) code never has one attached to its Frame.
type eofContainer struct {
	version      byte
	codeSections []codeSection
	subcontainers [][]byte
	data         []byte
	dataSize     uint16 // declared size, may exceed len(data) for a truncated data section
}

// isEOF reports whether code begins with the EOF magic bytes.
func isEOF(code []byte) bool {
	return len(code) >= 2 && code[0] == 0xEF && code[1] == 0x00
}

// parseEOF validates and decodes an EOF v1 container per EIP-3540's
// section-header format: a sequence of (kind, size) header entries
// terminated by a 0x00 kind byte, followed by the concatenated section
// bodies in header order.
func parseEOF(code []byte) (*eofContainer, error) {
	if !isEOF(code) {
		return nil, ErrInvalidEOFMagic
	}
	if len(code) < 4 || code[2] != eofVersion1 {
		return nil, ErrInvalidEOFVersion
	}
	pos := 3
	var typesSize, dataSize int
	var codeSizes []int
	var containerSizes []int

	for pos < len(code) {
		kind := code[pos]
		pos++
		if kind == eofTerminator {
			break
		}
		switch kind {
		case kindTypes:
			if pos+2 > len(code) {
				return nil, ErrEOFTruncatedImmediate
			}
			typesSize = int(binary.BigEndian.Uint16(code[pos:]))
			pos += 2
		case kindCode:
			if pos+2 > len(code) {
				return nil, ErrEOFTruncatedImmediate
			}
			n := int(binary.BigEndian.Uint16(code[pos:]))
			pos += 2
			if n == 0 || n > maxCodeSections {
				return nil, ErrInvalidEOFContainer
			}
			for i := 0; i < n; i++ {
				if pos+2 > len(code) {
					return nil, ErrEOFTruncatedImmediate
				}
				codeSizes = append(codeSizes, int(binary.BigEndian.Uint16(code[pos:])))
				pos += 2
			}
		case kindContainer:
			if pos+2 > len(code) {
				return nil, ErrEOFTruncatedImmediate
			}
			n := int(binary.BigEndian.Uint16(code[pos:]))
			pos += 2
			for i := 0; i < n; i++ {
				if pos+2 > len(code) {
					return nil, ErrEOFTruncatedImmediate
				}
				containerSizes = append(containerSizes, int(binary.BigEndian.Uint16(code[pos:])))
				pos += 2
			}
		case kindData:
			if pos+2 > len(code) {
				return nil, ErrEOFTruncatedImmediate
			}
			dataSize = int(binary.BigEndian.Uint16(code[pos:]))
			pos += 2
		default:
			return nil, ErrInvalidEOFContainer
		}
	}

	if typesSize == 0 || typesSize%4 != 0 || len(codeSizes) != typesSize/4 {
		return nil, ErrInvalidEOFContainer
	}

	c := &eofContainer{version: eofVersion1, dataSize: uint16(dataSize)}

	typesStart := pos
	pos += typesSize
	if pos > len(code) {
		return nil, ErrEOFTruncatedImmediate
	}
	typesBody := code[typesStart:pos]

	for i, size := range codeSizes {
		if pos+size > len(code) {
			return nil, ErrEOFTruncatedImmediate
		}
		cs := codeSection{code: code[pos : pos+size]}
		if i*4+3 < len(typesBody) {
			cs.inputs = typesBody[i*4]
			cs.outputs = typesBody[i*4+1]
			cs.maxStackHeight = binary.BigEndian.Uint16(typesBody[i*4+2:])
		}
		c.codeSections = append(c.codeSections, cs)
		pos += size
	}

	for _, size := range containerSizes {
		if pos+size > len(code) {
			return nil, ErrEOFTruncatedImmediate
		}
		c.subcontainers = append(c.subcontainers, code[pos:pos+size])
		pos += size
	}

	remaining := len(code) - pos
	if remaining > dataSize {
		remaining = dataSize
	}
	c.data = code[pos : pos+remaining]

	return c, nil
}
