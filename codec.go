package redcanvas

import (
	"fmt"

	"github.com/gogpu/redcanvas/wire"
)

// CodecSource feeds compressed payload bytes to a codec engine and
// receives its advisory messages. The canvas implements it over the
// wire chunk chain; engines never see addresses or chunk headers.
//
// An engine that needs more input than MoreSpace can supply must fail
// its decode with an explicit incomplete-stream error; running out of
// chunks mid-image is corruption, never silent truncation.
type CodecSource interface {
	// MoreSpace returns the next run of compressed bytes, or (nil, nil)
	// at the end of the stream. rowsCompleted reports how many output
	// rows the engine has produced so far.
	MoreSpace(rowsCompleted int) ([]byte, error)

	// Warn reports a non-fatal engine condition; decoding continues.
	Warn(msg string)

	// Info reports advisory engine information; decoding continues.
	Info(msg string)
}

// chunkSource adapts a wire chunk chain to the CodecSource surface.
// unit is the engine's consumption unit in bytes; every chunk payload
// must divide evenly into it.
type chunkSource struct {
	codec string
	r     *wire.ChunkReader
	unit  int
}

func newChunkSource(t *wire.Translator, addr wire.Address, unit int, codec string) *chunkSource {
	return &chunkSource{codec: codec, r: t.Chunks(addr), unit: unit}
}

func (s *chunkSource) MoreSpace(rowsCompleted int) ([]byte, error) {
	data, err := s.r.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %s input: %v", ErrCorruptData, s.codec, err)
	}
	if data == nil {
		return nil, nil
	}
	if s.unit > 1 && len(data)%s.unit != 0 {
		return nil, fmt.Errorf("%w: %s chunk size %d not a multiple of %d",
			ErrCorruptData, s.codec, len(data), s.unit)
	}
	return data, nil
}

func (s *chunkSource) Warn(msg string) {
	Logger().Warn("codec warning", "codec", s.codec, "msg", msg)
}

func (s *chunkSource) Info(msg string) {
	Logger().Debug("codec info", "codec", s.codec, "msg", msg)
}
