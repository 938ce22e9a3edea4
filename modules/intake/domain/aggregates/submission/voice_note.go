package submission

import (
	"encoding/base64"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// VoiceNote is a decoded, validated audio attachment.
type VoiceNote struct {
	MIME    string
	Data    []byte
	Seconds int
}

type VoiceNoteLimits struct {
	MaxBytes     int64
	MaxSeconds   int
	AllowedTypes []string
}

// ParseVoiceNote decodes a data-URL audio payload and enforces the size,
// duration and format limits. The declared MIME type from the data URL is
// advisory only; the sniffed type decides.
func ParseVoiceNote(dataURL string, declaredSeconds int, limits VoiceNoteLimits) (*VoiceNote, error) {
	payload := dataURL
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, ErrUnsupportedAudio
		}
		header := payload[len("data:"):comma]
		if !strings.Contains(header, "base64") {
			return nil, ErrUnsupportedAudio
		}
		payload = payload[comma+1:]
	}

	// Base64 inflates by 4/3, so the encoded length bounds the decoded size
	// without decoding first.
	if int64(len(payload))/4*3 > limits.MaxBytes {
		return nil, ErrFileTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrUnsupportedAudio
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrUnsupportedAudio
	}
	if declaredSeconds > limits.MaxSeconds {
		return nil, ErrVoiceNoteTooLong
	}

	detected := mimetype.Detect(data)
	mime := normalizeAudioMIME(detected.String())
	if !slices.Contains(limits.AllowedTypes, mime) {
		return nil, ErrUnsupportedAudio
	}

	return &VoiceNote{MIME: mime, Data: data, Seconds: declaredSeconds}, nil
}

// normalizeAudioMIME collapses sniffer aliases onto the whitelist entries.
func normalizeAudioMIME(mime string) string {
	mime = strings.ToLower(mime)
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	switch mime {
	case "video/webm":
		// Browsers label audio-only MediaRecorder output as video/webm.
		return "audio/webm"
	case "audio/x-wav", "audio/wave":
		return "audio/wav"
	case "audio/mp3":
		return "audio/mpeg"
	}
	return mime
}
