// Package wav merges same-format PCM WAV clips into a single container.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of a standard PCM WAV header in bytes.
const HeaderSize = 44

// riffOverhead is the part of the RIFF chunk-size field covering the fixed
// sub-chunk headers, i.e. HeaderSize minus the initial 8-byte tag+size.
const riffOverhead = 36

var (
	// ErrMalformedClip signals a clip shorter than a WAV header.
	ErrMalformedClip = errors.New("malformed audio clip")

	// ErrEmptyClips signals that there is no clip to take a header from.
	ErrEmptyClips = errors.New("empty clip sequence")
)

// Split separates a clip into its 44-byte header and PCM payload.
func Split(clip []byte) (header, data []byte, err error) {
	if len(clip) < HeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedClip, len(clip), HeaderSize)
	}
	return clip[:HeaderSize], clip[HeaderSize:], nil
}

// mergeHeader copies template and rewrites the two RIFF length fields to
// describe a payload of totalLen bytes. The format fields are untouched.
func mergeHeader(template []byte, totalLen uint32) []byte {
	header := make([]byte, HeaderSize)
	copy(header, template)
	binary.LittleEndian.PutUint32(header[4:8], riffOverhead+totalLen)
	binary.LittleEndian.PutUint32(header[40:44], totalLen)
	return header
}

// Assemble concatenates the clips' payloads in order under one header taken
// from the first clip, with the chunk-size and data-size fields corrected.
// All clips are assumed to share sample rate, channel count, and bit depth;
// mismatched formats are not detected here.
func Assemble(clips [][]byte) ([]byte, error) {
	if len(clips) == 0 {
		return nil, ErrEmptyClips
	}

	payloads := make([][]byte, 0, len(clips))
	var total int
	var template []byte
	for i, clip := range clips {
		header, data, err := Split(clip)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		if template == nil {
			template = header
		}
		payloads = append(payloads, data)
		total += len(data)
	}

	merged := make([]byte, 0, HeaderSize+total)
	merged = append(merged, mergeHeader(template, uint32(total))...)
	for _, data := range payloads {
		merged = append(merged, data...)
	}
	return merged, nil
}
