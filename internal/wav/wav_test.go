package wav

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// testClip builds a minimal PCM WAV clip with the given payload.
func testClip(t *testing.T, payload []byte) []byte {
	t.Helper()

	header := make([]byte, HeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(payload)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1)  // mono
	binary.LittleEndian.PutUint32(header[24:28], 24000)
	binary.LittleEndian.PutUint32(header[28:32], 48000)
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(payload)))

	return append(header, payload...)
}

func bytesSeq(n int, offset byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = offset + byte(i)
	}
	return data
}

func TestSplitRoundTrip(t *testing.T) {
	clip := testClip(t, bytesSeq(20, 0))

	header, data, err := Split(clip)
	require.NoError(t, err)
	require.Len(t, header, HeaderSize)
	require.Equal(t, bytesSeq(20, 0), data)
	require.Equal(t, clip, append(append([]byte{}, header...), data...))
}

func TestSplitRejectsShortClip(t *testing.T) {
	_, _, err := Split(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrMalformedClip)
}

func TestAssembleEmpty(t *testing.T) {
	_, err := Assemble(nil)
	require.ErrorIs(t, err, ErrEmptyClips)
}

func TestAssembleSingleClip(t *testing.T) {
	payload := bytesSeq(32, 0)
	merged, err := Assemble([][]byte{testClip(t, payload)})
	require.NoError(t, err)

	require.Len(t, merged, HeaderSize+len(payload))
	require.Equal(t, uint32(36+len(payload)), binary.LittleEndian.Uint32(merged[4:8]))
	require.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(merged[40:44]))
	require.Equal(t, payload, merged[HeaderSize:])
}

func TestAssembleConcatenatesInOrder(t *testing.T) {
	first := bytesSeq(10, 0)
	second := bytesSeq(25, 100)
	third := bytesSeq(7, 200)
	total := len(first) + len(second) + len(third)

	merged, err := Assemble([][]byte{
		testClip(t, first),
		testClip(t, second),
		testClip(t, third),
	})
	require.NoError(t, err)

	require.Len(t, merged, HeaderSize+total)
	require.Equal(t, uint32(36+total), binary.LittleEndian.Uint32(merged[4:8]))
	require.Equal(t, uint32(total), binary.LittleEndian.Uint32(merged[40:44]))

	want := append(append(append([]byte{}, first...), second...), third...)
	require.Equal(t, want, merged[HeaderSize:])

	// Format fields come from the first clip's header, untouched.
	require.Equal(t, []byte("RIFF"), merged[0:4])
	require.Equal(t, []byte("WAVE"), merged[8:12])
	require.Equal(t, uint32(24000), binary.LittleEndian.Uint32(merged[24:28]))
}

func TestAssembleRejectsMalformedClip(t *testing.T) {
	_, err := Assemble([][]byte{
		testClip(t, bytesSeq(10, 0)),
		[]byte("too short"),
	})
	require.ErrorIs(t, err, ErrMalformedClip)
}

func TestAssembleZeroLengthPayloads(t *testing.T) {
	merged, err := Assemble([][]byte{testClip(t, nil), testClip(t, nil)})
	require.NoError(t, err)
	require.Len(t, merged, HeaderSize)
	require.Equal(t, uint32(36), binary.LittleEndian.Uint32(merged[4:8]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(merged[40:44]))
}
