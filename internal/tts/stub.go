package tts

import (
	"context"
	"encoding/binary"

	"podcastit/internal/wav"
)

// Stub clip format: 24kHz mono 16-bit PCM, matching the real provider's
// WAV output closely enough for the merge pipeline.
const (
	stubSampleRate = 24000
	stubChannels   = 1
	stubBitDepth   = 16
)

// StubClient simulates speech synthesis for development runs. Every line
// becomes a short block of silence wrapped in a valid WAV container, so the
// full merge-and-store pipeline still runs end to end.
type StubClient struct{}

// NewStubClient constructs StubClient.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Synthesize returns a silent WAV clip sized proportionally to the text.
func (s *StubClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	// Roughly 50ms of silence per character, minimum one second.
	samples := len(text) * stubSampleRate / 20
	if samples < stubSampleRate {
		samples = stubSampleRate
	}
	payload := make([]byte, samples*stubBitDepth/8)

	header := make([]byte, wav.HeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(payload)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], stubChannels)
	binary.LittleEndian.PutUint32(header[24:28], stubSampleRate)
	binary.LittleEndian.PutUint32(header[28:32], stubSampleRate*stubChannels*stubBitDepth/8)
	binary.LittleEndian.PutUint16(header[32:34], stubChannels*stubBitDepth/8)
	binary.LittleEndian.PutUint16(header[34:36], stubBitDepth)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(payload)))

	return append(header, payload...), nil
}
