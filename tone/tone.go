// Package tone provides a sine wave producer.
package tone

import (
	"math"

	"pipelined.dev/audiostream"
	"pipelined.dev/audiostream/signal"
)

// Generator renders sine wave into every channel. Phase is kept between
// blocks, so the signal is continuous.
type Generator struct {
	step      float64
	amplitude float64
	phase     float64
}

// New returns generator of frequency in Hz with amplitude in [0, 1].
func New(sampleRate int, frequency, amplitude float64) *Generator {
	return &Generator{
		step:      2 * math.Pi * frequency / float64(sampleRate),
		amplitude: math.Abs(signal.Clamp(amplitude)),
	}
}

// Render is an audiostream.RenderFunc.
func (g *Generator) Render(buf audiostream.Buffer, format audiostream.SampleFormat, numChannels, numFrames int, _ interface{}) {
	int16s, float32s := buf.Int16(), buf.Float32()
	for i := 0; i < numFrames; i++ {
		v := g.amplitude * math.Sin(g.phase)
		g.phase += g.step
		if g.phase >= 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
		for c := 0; c < numChannels; c++ {
			switch format {
			case audiostream.Int16:
				int16s[i*numChannels+c] = signal.Int16(v)
			case audiostream.Float32:
				float32s[i*numChannels+c] = float32(v)
			}
		}
	}
}
