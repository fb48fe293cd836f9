package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/plastic-deck/internal/utils"
)

const testRenderedServerConstant = "acme@cloud\n"

type countingFlusher struct {
	bytes.Buffer
	flushCount int
}

func (flusher *countingFlusher) Flush() {
	flusher.flushCount++
}

func TestFlushingWriterFlushesBufferedWriters(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedWriter := bufio.NewWriter(destination)

	flushingWriter := utils.NewFlushingWriter(bufferedWriter)
	writtenCount, writeError := flushingWriter.Write([]byte(testRenderedServerConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(testRenderedServerConstant), writtenCount)
	require.Equal(testInstance, testRenderedServerConstant, destination.String())
}

func TestFlushingWriterFlushesWritersWithoutFlushError(testInstance *testing.T) {
	destination := &countingFlusher{}

	flushingWriter := utils.NewFlushingWriter(destination)
	_, firstWriteError := flushingWriter.Write([]byte("[\n"))
	require.NoError(testInstance, firstWriteError)
	_, secondWriteError := flushingWriter.Write([]byte("]\n"))
	require.NoError(testInstance, secondWriteError)

	require.Equal(testInstance, 2, destination.flushCount)
	require.Equal(testInstance, "[\n]\n", destination.String())
}

func TestNewFlushingWriterWrapsOnce(testInstance *testing.T) {
	flushingWriter := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
