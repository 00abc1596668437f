package bell

import (
	"encoding/binary"

	"github.com/gopxl/beep"
)

// Render drains s into interleaved stereo s16le bytes
// A streamer that yields nothing is treated as drained
func Render(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		if n > 0 {
			out = appendFrames(out, buf[:n])
		}
		if !ok || n == 0 {
			return out
		}
	}
}

func appendFrames(out []byte, frames [][2]float64) []byte {
	var frame [bytesPerFrame]byte
	for _, f := range frames {
		binary.LittleEndian.PutUint16(frame[0:], uint16(toInt16(f[0])))
		binary.LittleEndian.PutUint16(frame[2:], uint16(toInt16(f[1])))
		out = append(out, frame[:]...)
	}
	return out
}

// toInt16 soft-limits above 0.8 then hard clips
func toInt16(v float64) int16 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}
	v = min(max(v, -1.0), 1.0)
	return int16(v * 32767)
}
