package stegtext

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zedseven/binmani"
)

// FramedBits returns the number of bits Frame produces for a payload of payloadLen bytes.
func FramedBits(payloadLen int) int64 {
	return headerBits + int64(payloadLen)*int64(bitsPerByte)
}

// Frame prefixes payload with its length as a 32-bit big-endian header and
// returns the whole frame as bits, most-significant bit first per byte.
// The payload is treated as opaque bytes.
func Frame(payload []byte) (BitStream, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, &CapacityExceededError{RequiredBits: FramedBits(len(payload)),
			InnerError: fmt.Errorf("payload of %d bytes does not fit the 32-bit length header", len(payload))}
	}

	b := make([]byte, headerBytes, headerBytes+len(payload))
	binary.BigEndian.PutUint32(b, uint32(len(payload)))
	b = append(b, payload...)

	return BitStream(*binmani.BytesToBits(&b)), nil
}

// Unframe reads the length header from bits and returns the payload that follows it.
// Bits beyond the end of the frame are ignored.
func Unframe(bits BitStream) ([]byte, error) {
	if len(bits) < headerBits {
		return nil, &MalformedStreamError{Reason: fmt.Sprintf(
			"Only %d bits are available, but the length header needs %d.", len(bits), headerBits)}
	}

	header := []uint8(bits[:headerBits])
	length := binary.BigEndian.Uint32(*binmani.BitsToBytes(&header))

	remaining := int64(len(bits) - headerBits)
	if need := int64(length) * int64(bitsPerByte); need > remaining {
		return nil, &MalformedStreamError{Reason: fmt.Sprintf(
			"The header claims %d bytes (%d bits), but only %d bits follow it.", length, need, remaining)}
	}

	body := []uint8(bits[headerBits : headerBits+int(length)*int(bitsPerByte)])
	return *binmani.BitsToBytes(&body), nil
}
