// Package shutter plays the camera shutter sound after a capture.
package shutter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/youpy/go-wav"
)

// Output format of the audio context.
const (
	SampleRate   = 44100
	ChannelCount = 2
)

// PCM is signed 16-bit little-endian interleaved audio.
type PCM struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Decode reads a WAV or MP3 file by extension and converts it to the
// output format.
func Decode(filename string, fileData []byte) (PCM, error) {
	var pcm PCM
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		wavReader := wav.NewReader(bytes.NewReader(fileData))
		format, err := wavReader.Format()
		if err != nil {
			return PCM{}, fmt.Errorf("failed to get wav format: %w", err)
		}
		if format.BitsPerSample != 16 {
			return PCM{}, fmt.Errorf("unsupported wav sample size %d bits", format.BitsPerSample)
		}
		wavReader = wav.NewReader(bytes.NewReader(fileData))
		data, err := io.ReadAll(wavReader)
		if err != nil {
			return PCM{}, fmt.Errorf("failed to decode wav data: %w", err)
		}
		pcm = PCM{Data: data, SampleRate: int(format.SampleRate), Channels: int(format.NumChannels)}

	case ".mp3":
		decoder, err := mp3.NewDecoder(bytes.NewReader(fileData))
		if err != nil {
			return PCM{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
		}
		data, err := io.ReadAll(decoder)
		if err != nil {
			return PCM{}, fmt.Errorf("failed to decode mp3 data: %w", err)
		}
		// go-mp3 always decodes to 16-bit stereo.
		pcm = PCM{Data: data, SampleRate: decoder.SampleRate(), Channels: 2}

	default:
		return PCM{}, fmt.Errorf("unsupported sound file %q", filename)
	}
	return pcm.Convert(SampleRate, ChannelCount), nil
}

// Convert resamples with linear interpolation and widens mono to stereo.
// Other channel layouts pass through unchanged.
func (p PCM) Convert(toRate, toChannels int) PCM {
	if p.SampleRate == toRate && p.Channels == toChannels {
		return p
	}
	samples := toSamples(p.Data)

	channels := p.Channels
	if p.Channels == 1 && toChannels == 2 {
		stereo := make([]int16, len(samples)*2)
		for i, s := range samples {
			stereo[i*2] = s
			stereo[i*2+1] = s
		}
		samples = stereo
		channels = 2
	}

	if p.SampleRate != toRate && len(samples) > 0 {
		samples = resample(samples, channels, p.SampleRate, toRate)
	}
	return PCM{Data: fromSamples(samples), SampleRate: toRate, Channels: channels}
}

// resample interpolates per channel so left and right never mix.
func resample(samples []int16, channels, fromRate, toRate int) []int16 {
	frames := len(samples) / channels
	ratio := float64(toRate) / float64(fromRate)
	outFrames := int(float64(frames) * ratio)
	out := make([]int16, outFrames*channels)

	for i := 0; i < outFrames; i++ {
		srcPos := float64(i) / ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)
		for c := 0; c < channels; c++ {
			if srcIdx >= frames-1 {
				out[i*channels+c] = samples[(frames-1)*channels+c]
				continue
			}
			s1 := float64(samples[srcIdx*channels+c])
			s2 := float64(samples[(srcIdx+1)*channels+c])
			out[i*channels+c] = int16(s1 + (s2-s1)*frac)
		}
	}
	return out
}

// Duration returns the playback length in seconds.
func (p PCM) Duration() float64 {
	if p.SampleRate == 0 || p.Channels == 0 {
		return 0
	}
	return float64(len(p.Data)/2/p.Channels) / float64(p.SampleRate)
}

// Click synthesizes a short decaying noise burst used when no sound file is
// configured.
func Click() PCM {
	const length = 0.06 // seconds
	frames := int(length * SampleRate)
	rng := rand.New(rand.NewSource(1))
	samples := make([]int16, frames*ChannelCount)
	for i := 0; i < frames; i++ {
		env := math.Exp(-float64(i) / (SampleRate * 0.008))
		v := int16((rng.Float64()*2 - 1) * env * 12000)
		samples[i*2] = v
		samples[i*2+1] = v
	}
	return PCM{Data: fromSamples(samples), SampleRate: SampleRate, Channels: ChannelCount}
}

func toSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}

func fromSamples(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:i*2+2], uint16(s))
	}
	return data
}
