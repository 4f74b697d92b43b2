package audio

import (
	"bytes"
	"errors"
	"testing"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
)

func fakeOgg() []byte {
	return append([]byte("OggS"), bytes.Repeat([]byte{0x42}, 64)...)
}

func TestTranscodeOggOpusIsIdentity(t *testing.T) {
	tr := NewTranscoder()
	raw := fakeOgg()
	out, err := tr.Transcode(raw, model.FormatOggOpus)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if out.Format != model.FormatOggOpus {
		t.Errorf("format = %s, want oggopus", out.Format)
	}
	if !bytes.Equal(out.Bytes, raw) {
		t.Error("oggopus payload must pass through byte-identical")
	}
}

func TestTranscodeCanonicalLPCMIsIdentity(t *testing.T) {
	tr := NewTranscoder()
	raw := bytes.Repeat([]byte{0x01, 0x02}, 160)
	out, err := tr.Transcode(raw, model.FormatLPCM)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if out.Format != model.FormatLPCM || out.SampleRate != CanonicalSampleRate {
		t.Errorf("got %s@%d, want lpcm@%d", out.Format, out.SampleRate, CanonicalSampleRate)
	}
	if !bytes.Equal(out.Bytes, raw) {
		t.Error("canonical lpcm must pass through byte-identical")
	}
}

func TestTranscodeWAVResamplesToCanonical(t *testing.T) {
	samples := make([]int16, 48000) // one second at 48k
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	wav, err := EncodeWAV(samples, 48000)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	tr := NewTranscoder()
	out, err := tr.Transcode(wav, model.FormatWAV)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if out.Format != model.FormatLPCM {
		t.Errorf("format = %s, want lpcm", out.Format)
	}
	if out.SampleRate != CanonicalSampleRate {
		t.Errorf("sample rate = %d, want %d", out.SampleRate, CanonicalSampleRate)
	}
	// one second of audio at 16k, 2 bytes per sample
	if got, want := len(out.Bytes), CanonicalSampleRate*2; got != want {
		t.Errorf("payload size = %d, want %d", got, want)
	}
}

func TestTranscodeSniffsFormatWhenUnspecified(t *testing.T) {
	tr := NewTranscoder()
	out, err := tr.Transcode(fakeOgg(), "")
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if out.Format != model.FormatOggOpus {
		t.Errorf("sniffed format = %s, want oggopus", out.Format)
	}
}

func TestTranscodeUnknownFormatFails(t *testing.T) {
	tr := NewTranscoder()
	_, err := tr.Transcode([]byte("ID3\x04rubbish"), "")
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestTranscodeCorruptWAVFails(t *testing.T) {
	tr := NewTranscoder()
	_, err := tr.Transcode([]byte("RIFFgarbage"), model.FormatWAV)
	if !errors.Is(err, domain.ErrTranscodeFailure) {
		t.Fatalf("err = %v, want ErrTranscodeFailure", err)
	}
}

func TestDownmixStereo(t *testing.T) {
	got := downmix([]int16{100, 200, -100, 100}, 2)
	want := []int16{150, 0}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("downmix = %v, want %v", got, want)
	}
}
