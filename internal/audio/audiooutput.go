package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// framesPerChunk is the number of frames decoded per write to the output stream.
const framesPerChunk = 512 * 9

// Output plays WAV audio on a portaudio device.
// portaudio must be initialized by the caller.
type Output struct {
	Device string
}

// Play plays the given WAV data and returns once playback completed or ctx is cancelled.
func (o *Output) Play(ctx context.Context, wavData []byte) error {
	device, err := outputDevice(o.Device)
	if err != nil {
		return err
	}

	return playAudio(ctx, bytes.NewReader(wavData), device)
}

// playAudio opens an audio output device and plays the given audio data.
func playAudio(ctx context.Context, wavFile io.ReadSeeker, device *portaudio.DeviceInfo) error {
	decoder := wav.NewDecoder(wavFile)
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return fmt.Errorf("read wave file headers: %w", err)
	}

	if !decoder.IsValidFile() {
		return fmt.Errorf("invalid wave file")
	}

	if decoder.SampleBitDepth() != 16 {
		return fmt.Errorf("wave data with unsupported bit depth of %d provided, expected 16", decoder.SampleBitDepth())
	}

	audioDuration, err := decoder.Duration()
	if err != nil {
		return fmt.Errorf("get audio duration: %w", err)
	}

	channels := int(decoder.NumChans)
	inputBufferSize := framesPerChunk * channels
	buffer := audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  int(decoder.SampleRate),
			NumChannels: channels,
		},
		SourceBitDepth: int(decoder.SampleBitDepth()),
		Data:           make([]int, inputBufferSize),
	}
	in := make([]int16, inputBufferSize)

	outputFrames := resampledFrames(framesPerChunk, int(decoder.SampleRate), int(device.DefaultSampleRate))
	out := make([]int16, outputFrames*channels)

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      device.DefaultSampleRate,
		FramesPerBuffer: outputFrames,
	}, &out)
	if err != nil {
		return fmt.Errorf("open audio output stream: %w", err)
	}
	defer stream.Close()

	err = stream.Start()
	if err != nil {
		return fmt.Errorf("start audio output stream: %w", err)
	}
	defer stream.Stop()

	startTime := time.Now()

	for {
		n, err := decoder.PCMBuffer(&buffer)
		if n == 0 {
			break // EOF
		}

		if err != nil {
			return fmt.Errorf("read chunk from audio stream: %w", err)
		}

		toInt16(buffer.Data[:n], in)
		resampleInt16(in, channels, out)

		err = stream.Write()
		if err != nil {
			// Output underflows occur occasionally without audible impact.
			slog.Warn(fmt.Sprintf("play audio: write chunk: %s", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	// Wait for the audio to complete playing
	select {
	case <-time.After(audioDuration - time.Since(startTime)):
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
