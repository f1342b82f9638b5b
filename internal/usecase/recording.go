package usecase

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"wingman/internal/domain"
	"wingman/internal/ports"
)

// recordedChunks is the append-only audio buffer for one recording pass.
// Chunks are kept in arrival order until the recording is finalized.
type recordedChunks struct {
	mu     sync.Mutex
	chunks [][]byte
}

func newRecordedChunks() *recordedChunks {
	return &recordedChunks{}
}

func (b *recordedChunks) append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	copied := append([]byte(nil), chunk...)

	b.mu.Lock()
	b.chunks = append(b.chunks, copied)
	b.mu.Unlock()
}

// take concatenates all chunks in arrival order and releases ownership of the
// buffer.
func (b *recordedChunks) take() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, chunk := range b.chunks {
		total += len(chunk)
	}

	data := make([]byte, 0, total)
	for _, chunk := range b.chunks {
		data = append(data, chunk...)
	}
	b.chunks = nil
	return data
}

type activeRecording struct {
	session ports.AudioSession
	chunks  *recordedChunks
	done    chan struct{}
}

// captureAudioChunks drains the device session into the buffer until the
// stream ends. done closes once no further chunk can arrive.
func captureAudioChunks(
	session ports.AudioSession,
	buffer *recordedChunks,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := session.Read(buf)
		if n > 0 {
			buffer.append(buf[:n])
		}
		if err != nil {
			// A pipe closed during Stop reads as fs.ErrClosed, not EOF.
			if !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}
