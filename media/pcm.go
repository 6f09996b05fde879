package media

import (
	"encoding/binary"

	"github.com/opd-ai/audiosocket/limits"
)

// BytesToSamples decodes little-endian signed 16-bit samples. A trailing odd
// byte is ignored.
func BytesToSamples(b []byte) []int16 {
	out := make([]int16, len(b)/limits.BytesPerSample)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

// SamplesToBytes encodes samples as little-endian signed 16-bit PCM.
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*limits.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Silence returns n bytes of slin16 silence.
func Silence(n int) []byte {
	return make([]byte, n)
}
