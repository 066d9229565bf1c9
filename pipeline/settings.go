package pipeline

import (
	"sync/atomic"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/logger"
)

type settings struct {
	lookupCapacity  int
	mergeReadyQueue int
	bufferSize      int
	chunkSize       int
}

var defaults = settings{
	lookupCapacity:  collections.DefaultCapacity,
	mergeReadyQueue: 8,
	bufferSize:      16,
	chunkSize:       64,
}

var current atomic.Pointer[settings]

// Configure applies process-wide defaults for lookup sizing, Buffer and
// Chunk. Zero fields keep the built-in defaults.
func Configure(cfg config.PipelineConfig) {
	s := defaults
	if cfg.LookupCapacity > 0 {
		s.lookupCapacity = cfg.LookupCapacity
	}
	if cfg.MergeReadyQueue > 0 {
		s.mergeReadyQueue = cfg.MergeReadyQueue
	}
	if cfg.BufferSize > 0 {
		s.bufferSize = cfg.BufferSize
	}
	if cfg.ChunkSize > 0 {
		s.chunkSize = cfg.ChunkSize
	}
	current.Store(&s)
	log().Debug("pipeline configured", logger.Fields(
		"lookup_capacity", s.lookupCapacity,
		"merge_ready_queue", s.mergeReadyQueue,
		"buffer_size", s.bufferSize,
		"chunk_size", s.chunkSize,
	))
}

func active() settings {
	if s := current.Load(); s != nil {
		return *s
	}
	return defaults
}

func log() *logger.Logger { return logger.Get("pipeline") }
