package audio

import (
	"encoding/binary"

	"wingman/internal/domain"
)

// MIMETypeWAV tags every finalized clip. The transcription service accepts a
// single fixed encoding, so no negotiation happens here.
const MIMETypeWAV = "audio/wav"

const wavHeaderSize = 44

// FinalizeWAV wraps captured 16-bit PCM in a WAV container. The payload keeps
// the exact byte order the chunks arrived in.
func FinalizeWAV(pcm []byte, sampleRate, channels int) domain.AudioClip {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}

	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(wavHeaderSize-8+len(pcm)))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	return domain.AudioClip{
		Data:     append(header, pcm...),
		MIMEType: MIMETypeWAV,
	}
}
