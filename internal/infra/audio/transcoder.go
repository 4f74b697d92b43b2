package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
)

// CanonicalSampleRate is the LPCM rate the recognizer expects.
const CanonicalSampleRate = 16000

var oggMagic = []byte("OggS")
var riffMagic = []byte("RIFF")

// Transcoder normalizes raw audio into a recognizer-acceptable profile.
// OggOpus (Telegram's native voice container) and canonical-rate LPCM pass
// through untouched; WAV is decoded, downmixed to mono and resampled.
// Stateless, safe for concurrent use.
type Transcoder struct{}

var _ adapter.AudioTranscoder = (*Transcoder)(nil)

func NewTranscoder() *Transcoder { return &Transcoder{} }

func (t *Transcoder) Transcode(raw []byte, source model.AudioFormat) (model.TranscodedAudio, error) {
	if len(raw) == 0 {
		return model.TranscodedAudio{}, fmt.Errorf("%w: empty payload", domain.ErrTranscodeFailure)
	}
	if source == "" {
		source = sniffFormat(raw)
	}

	switch source {
	case model.FormatOggOpus:
		if !bytes.HasPrefix(raw, oggMagic) {
			return model.TranscodedAudio{}, fmt.Errorf("%w: payload does not look like an Ogg container", domain.ErrTranscodeFailure)
		}
		// The recognizer accepts OggOpus natively; transcode is the identity.
		return model.TranscodedAudio{Format: model.FormatOggOpus, SampleRate: 48000, Bytes: raw}, nil

	case model.FormatLPCM:
		return model.TranscodedAudio{Format: model.FormatLPCM, SampleRate: CanonicalSampleRate, Bytes: raw}, nil

	case model.FormatWAV:
		samples, channels, rate, err := DecodeWAV(raw)
		if err != nil {
			return model.TranscodedAudio{}, fmt.Errorf("%w: %v", domain.ErrTranscodeFailure, err)
		}
		mono := downmix(samples, channels)
		mono = resample(mono, rate, CanonicalSampleRate)
		return model.TranscodedAudio{
			Format:     model.FormatLPCM,
			SampleRate: CanonicalSampleRate,
			Bytes:      pcmBytes(mono),
		}, nil

	default:
		return model.TranscodedAudio{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, source)
	}
}

func sniffFormat(raw []byte) model.AudioFormat {
	switch {
	case bytes.HasPrefix(raw, oggMagic):
		return model.FormatOggOpus
	case bytes.HasPrefix(raw, riffMagic):
		return model.FormatWAV
	}
	return model.AudioFormat("unknown")
}

// downmix averages interleaved stereo into mono. Mono passes through.
func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	out := make([]int16, len(samples)/channels)
	for i := range out {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(samples[i*channels+c])
		}
		out[i] = int16(sum / int32(channels))
	}
	return out
}

// resample performs linear interpolation between sample rates. Good enough
// for speech; the recognizer is tolerant of interpolation artifacts.
func resample(samples []int16, from, to int) []int16 {
	if from == to || len(samples) == 0 {
		return samples
	}
	outLen := int(int64(len(samples)) * int64(to) / int64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]int16, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		a, b := float64(samples[idx]), float64(samples[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}

func pcmBytes(samples []int16) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(samples)*2))
	_ = binary.Write(buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
