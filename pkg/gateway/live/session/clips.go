package session

import "math"

// Filler audio shape: 24kHz mono s16le hums with a 30ms sine taper on both
// ends so clips never click.
const (
	fillerSampleRate  = 24000
	fillerTaperMillis = 30
)

func synthesizeFillerClip(durationMillis int, frequency, amplitude float64) []byte {
	totalSamples := fillerSampleRate * durationMillis / 1000
	if totalSamples < 1 {
		totalSamples = 1
	}
	taperSamples := fillerSampleRate * fillerTaperMillis / 1000
	if taperSamples < 1 {
		taperSamples = 1
	}
	if taperSamples > totalSamples/2 {
		taperSamples = totalSamples / 2
	}

	buf := make([]byte, 0, totalSamples*2)
	for i := 0; i < totalSamples; i++ {
		env := 1.0
		if taperSamples > 0 {
			if i < taperSamples {
				env *= float64(i) / float64(taperSamples)
			}
			if i > totalSamples-taperSamples {
				env *= float64(totalSamples-i) / float64(taperSamples)
			}
		}
		sample := math.Sin(2 * math.Pi * frequency * float64(i) / fillerSampleRate)
		value := int(sample * amplitude * env * 32767)
		if value > 32767 {
			value = 32767
		}
		if value < -32767 {
			value = -32767
		}
		buf = append(buf, byte(value), byte(value>>8))
	}
	return buf
}

// BuildFillerClips precomputes the hums sent while tools run. Three short
// clips at slightly different pitches so consecutive fillers don't sound
// identical.
func BuildFillerClips() [][]byte {
	return [][]byte{
		synthesizeFillerClip(320, 190.0, 0.12),
		synthesizeFillerClip(420, 150.0, 0.10),
		synthesizeFillerClip(260, 230.0, 0.09),
	}
}
