package save

import (
	"errors"
	"fmt"
)

// Container errors
var (
	ErrTooShort         = errors.New("save: input too short")
	ErrChecksumMismatch = errors.New("save: checksum mismatch")
	ErrBadMagic         = errors.New("save: invalid magic tag")
	ErrInvalidSize      = errors.New("save: invalid declared size")
	ErrFileTooLarge     = errors.New("save: file too large")
	ErrMalformedRecord  = errors.New("save: malformed record")
)

// Stage identifies the pipeline step a LoadError came from.
type Stage int

const (
	StageRead Stage = iota + 1
	StageValidate
	StageBlockDecompress
	StageHeader
	StageHuffman
	StageParse
)

func (s Stage) String() string {
	switch s {
	case StageRead:
		return "read"
	case StageValidate:
		return "validate"
	case StageBlockDecompress:
		return "block-decompress"
	case StageHeader:
		return "header"
	case StageHuffman:
		return "huffman"
	case StageParse:
		return "parse"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// LoadError reports the stage at which decoding a container stopped.
// Err is the underlying cause and can be matched with errors.Is against
// the sentinels of this package, compression and bitstream.
type LoadError struct {
	Path  string // empty for in-memory input
	Stage Stage
	Err   error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func stageError(stage Stage, err error) error {
	return &LoadError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, or 0 if err is not a LoadError.
func StageOf(err error) Stage {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Stage
	}
	return 0
}
