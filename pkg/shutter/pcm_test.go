package shutter

import (
	"encoding/binary"
	"testing"
)

// monoWAV builds a 16-bit mono PCM WAV file.
func monoWAV(rate uint32, samples ...int16) []byte {
	dataSize := uint32(len(samples) * 2)
	b := make([]byte, 0, 44+dataSize)
	b = append(b, "RIFF"...)
	b = binary.LittleEndian.AppendUint32(b, 36+dataSize)
	b = append(b, "WAVE"...)
	b = append(b, "fmt "...)
	b = binary.LittleEndian.AppendUint32(b, 16)
	b = binary.LittleEndian.AppendUint16(b, 1) // PCM
	b = binary.LittleEndian.AppendUint16(b, 1) // mono
	b = binary.LittleEndian.AppendUint32(b, rate)
	b = binary.LittleEndian.AppendUint32(b, rate*2)
	b = binary.LittleEndian.AppendUint16(b, 2)
	b = binary.LittleEndian.AppendUint16(b, 16)
	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, dataSize)
	for _, s := range samples {
		b = binary.LittleEndian.AppendUint16(b, uint16(s))
	}
	return b
}

func TestDecodeWAVWidensToStereo(t *testing.T) {
	pcm, err := Decode("click.wav", monoWAV(44100, 100, -200))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pcm.SampleRate != SampleRate || pcm.Channels != ChannelCount {
		t.Fatalf("unexpected format %d Hz / %d ch", pcm.SampleRate, pcm.Channels)
	}
	got := toSamples(pcm.Data)
	want := []int16{100, 100, -200, -200}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestConvertResamplesPerChannel(t *testing.T) {
	in := PCM{
		Data:       fromSamples([]int16{0, 1000, 100, 1000}),
		SampleRate: 22050,
		Channels:   2,
	}
	out := in.Convert(44100, 2)
	got := toSamples(out.Data)
	// Two frames become four; the right channel must stay constant.
	if len(got) != 8 {
		t.Fatalf("expected 8 samples, got %v", got)
	}
	for i := 1; i < len(got); i += 2 {
		if got[i] != 1000 {
			t.Errorf("right channel leaked left samples: %v", got)
			break
		}
	}
	if got[2] != 50 {
		t.Errorf("interpolated left sample = %d, want 50", got[2])
	}
}

func TestDecodeRejectsUnknownFormats(t *testing.T) {
	if _, err := Decode("click.ogg", []byte("OggS")); err == nil {
		t.Error("expected error for .ogg")
	}
	if _, err := Decode("broken.wav", []byte("nope")); err == nil {
		t.Error("expected error for broken wav")
	}
}

func TestClick(t *testing.T) {
	c := Click()
	if d := c.Duration(); d < 0.05 || d > 0.07 {
		t.Errorf("unexpected click duration %v", d)
	}
	if _, err := New(c, nil); err != nil {
		t.Errorf("click must be playable: %v", err)
	}
	if _, err := New(PCM{SampleRate: 22050, Channels: 1}, nil); err == nil {
		t.Error("expected format error")
	}
}
