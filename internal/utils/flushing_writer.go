package utils

import (
	"io"
	"sync"
)

type errorFlusher interface {
	Flush() error
}

type plainFlusher interface {
	Flush()
}

// FlushingWriter serializes rendered results onto one stream and flushes buffered destinations after every write.
type FlushingWriter struct {
	mutex       sync.Mutex
	destination io.Writer
}

// NewFlushingWriter wraps destination once. A nil destination yields nil.
func NewFlushingWriter(destination io.Writer) io.Writer {
	switch typedDestination := destination.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return typedDestination
	default:
		return &FlushingWriter{destination: destination}
	}
}

// Write forwards data and then flushes the destination when it buffers output.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return 0, nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	writtenCount, writeError := writer.destination.Write(data)
	if writeError != nil {
		return writtenCount, writeError
	}

	switch flusher := writer.destination.(type) {
	case errorFlusher:
		return writtenCount, flusher.Flush()
	case plainFlusher:
		flusher.Flush()
	}
	return writtenCount, nil
}
