package audio

import (
	"math"
	"math/rand"
)

const sampleRate = 44100

// Waveform types
const (
	waveSine = iota
	waveSquare
	waveSaw
	waveNoise
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// oscillator generates raw waveform samples
func oscillator(waveType int, freq float64, samples int) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	phaseInc := freq / float64(sampleRate)

	for i := 0; i < samples; i++ {
		switch waveType {
		case waveSine:
			buf[i] = math.Sin(2 * math.Pi * phase)
		case waveSquare:
			if phase < 0.5 {
				buf[i] = 1.0
			} else {
				buf[i] = -1.0
			}
		case waveSaw:
			buf[i] = 2.0 * (phase - 0.5)
		case waveNoise:
			buf[i] = rand.Float64()*2 - 1
		}

		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}

// sweep generates a sine whose frequency glides from f0 to f1
func sweep(f0, f1 float64, samples int) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples)
		freq := f0 + (f1-f0)*t
		buf[i] = math.Sin(2 * math.Pi * phase)
		phase += freq / float64(sampleRate)
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}

// applyEnvelope applies attack/release envelope in place
func applyEnvelope(buf floatBuffer, attackSec, releaseSec float64) {
	total := len(buf)
	attackSamples := int(attackSec * sampleRate)
	releaseSamples := int(releaseSec * sampleRate)

	releaseStart := total - releaseSamples
	if releaseStart < attackSamples {
		releaseStart = attackSamples
	}

	for i := 0; i < total; i++ {
		vol := 1.0
		if i < attackSamples && attackSamples > 0 {
			vol = float64(i) / float64(attackSamples)
		} else if i >= releaseStart && releaseSamples > 0 {
			vol = float64(total-i) / float64(releaseSamples)
		}
		buf[i] *= vol
	}
}

// mixFloatBuffers adds b into a (in place), extending a if needed
func mixFloatBuffers(a, b floatBuffer, bScale float64) floatBuffer {
	if len(b) > len(a) {
		extended := make(floatBuffer, len(b))
		copy(extended, a)
		a = extended
	}
	for i := range b {
		a[i] += b[i] * bScale
	}
	return a
}

// durationToSamples converts seconds to sample count
func durationToSamples(d float64) int {
	return int(d * sampleRate)
}

// --- Cue generators (unity gain) ---

// generateImpactCue is a short noise-plus-thump burst for a landed hit
func generateImpactCue() floatBuffer {
	samples := durationToSamples(0.12)
	noise := oscillator(waveNoise, 0, samples)
	applyEnvelope(noise, 0.002, 0.1)
	thump := oscillator(waveSine, 90.0, samples)
	applyEnvelope(thump, 0.002, 0.11)
	return mixFloatBuffers(noise, thump, 1.4)
}

// generateWhooshCue marks an attack winding up
func generateWhooshCue() floatBuffer {
	samples := durationToSamples(0.2)
	buf := oscillator(waveNoise, 0, samples)
	applyEnvelope(buf, 0.08, 0.1)
	return buf
}

// generateBoostCue is a rising two-tone chime
func generateBoostCue() floatBuffer {
	samples := durationToSamples(0.3)
	buf := sweep(660.0, 990.0, samples)
	applyEnvelope(buf, 0.01, 0.2)
	over := oscillator(waveSine, 1320.0, samples)
	applyEnvelope(over, 0.01, 0.25)
	return mixFloatBuffers(buf, over, 0.3)
}

// generateUnboostCue mirrors the boost chime, falling
func generateUnboostCue() floatBuffer {
	samples := durationToSamples(0.3)
	buf := sweep(660.0, 440.0, samples)
	applyEnvelope(buf, 0.01, 0.2)
	return buf
}

// generateFaintCue is a long descending saw
func generateFaintCue() floatBuffer {
	samples := durationToSamples(0.6)
	buf := sweep(330.0, 82.0, samples)
	applyEnvelope(buf, 0.01, 0.45)
	saw := oscillator(waveSaw, 110.0, samples)
	applyEnvelope(saw, 0.01, 0.5)
	return mixFloatBuffers(buf, saw, 0.25)
}

// generateHealCue is a soft ascending sine
func generateHealCue() floatBuffer {
	samples := durationToSamples(0.25)
	buf := sweep(523.25, 783.99, samples)
	applyEnvelope(buf, 0.03, 0.15)
	return buf
}

// generateCue dispatches to a specific generator
func generateCue(c Cue) floatBuffer {
	switch c {
	case CueImpact:
		return generateImpactCue()
	case CueWhoosh:
		return generateWhooshCue()
	case CueBoost:
		return generateBoostCue()
	case CueUnboost:
		return generateUnboostCue()
	case CueFaint:
		return generateFaintCue()
	case CueHeal:
		return generateHealCue()
	default:
		return nil
	}
}
