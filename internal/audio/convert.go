package audio

import "math"

// toInt16 copies the samples into out and zero-pads the remainder of out.
func toInt16(samples []int, out []int16) {
	for i := range out {
		if i < len(samples) {
			out[i] = int16(samples[i])
		} else {
			out[i] = 0
		}
	}
}

func resampledFrames(frames, fromRate, toRate int) int {
	if fromRate <= 0 || toRate <= 0 || fromRate == toRate {
		return frames
	}

	return int(math.Round(float64(frames) * float64(toRate) / float64(fromRate)))
}

// resampleInt16 linearly interpolates the interleaved input frames into all frames of out.
func resampleInt16(in []int16, channels int, out []int16) {
	if channels < 1 {
		channels = 1
	}

	inFrames := len(in) / channels
	outFrames := len(out) / channels

	if inFrames == 0 || outFrames == 0 {
		return
	}

	if inFrames == outFrames {
		copy(out, in)
		return
	}

	step := float64(inFrames) / float64(outFrames)

	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)

		for c := 0; c < channels; c++ {
			a := float64(in[j*channels+c])
			b := a
			if j+1 < inFrames {
				b = float64(in[(j+1)*channels+c])
			}

			out[i*channels+c] = int16(math.Round(a + (b-a)*frac))
		}
	}
}
