package model

import "time"

type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindVoice    MessageKind = "voice"
	MessageKindDocument MessageKind = "document"
)

// InboundMessage is what the transport adapter constructs from one Telegram
// update. Immutable once built.
type InboundMessage struct {
	ChatID     int64
	UserID     int64
	MessageID  int
	Kind       MessageKind
	Text       string // text messages; caption for voice/document
	PayloadRef string // Telegram file_id for voice/document payloads
	FileName   string // original document name, empty otherwise
	FileSize   int64
	TargetLang string // resolved target language, may be empty (default applies)
	ReceivedAt time.Time
}

// AudioFormat names the container/encoding of an audio payload.
type AudioFormat string

const (
	FormatOggOpus AudioFormat = "oggopus"
	FormatWAV     AudioFormat = "wav"
	FormatLPCM    AudioFormat = "lpcm"
	FormatMP3     AudioFormat = "mp3"
)

// TranscodedAudio is the recognizer-ready payload produced by the transcoder.
type TranscodedAudio struct {
	Format     AudioFormat
	SampleRate int
	Bytes      []byte
}

// RecognitionResult is the speech backend's answer for one payload.
type RecognitionResult struct {
	Text       string
	Confidence float64
	Language   string
}

// PipelineStats is a point-in-time snapshot of dispatcher load plus
// lifetime outcome counters.
type PipelineStats struct {
	ActiveChats int   `json:"active_chats"`
	QueuedJobs  int   `json:"queued_jobs"`
	InFlight    int   `json:"in_flight"`
	Done        int64 `json:"done"`
	Failed      int64 `json:"failed"`
	Abandoned   int64 `json:"abandoned"`
}

// Reply is the terminal artifact delivered back to the chat. A reply is a
// text message unless Voice is set, in which case Caption annotates it.
type Reply struct {
	ChatID    int64
	Text      string
	Voice     []byte // synthesized audio, mp3
	VoiceName string
	Document  []byte // translated document payload
	FileName  string
	Caption   string
	InReplyTo int
}
