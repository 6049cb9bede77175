package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// Source produces a decoded clip for a path
// Implementations must be safe for concurrent use; every worker shares one Source
type Source interface {
	Load(path string) (*beep.Buffer, error)
}

// FileSource decodes clips from disk, selecting the decoder by file extension
// Clips are short, so the whole stream is decoded into memory and the file closed
type FileSource struct{}

// Load opens and fully decodes path
// Every failure wraps ErrDecodeFailure
func (FileSource) Load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	defer f.Close()

	streamer, format, err := decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}
	return buf, nil
}

// decode dispatches on the lowercase extension
func decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported format %q", ext)
	}
}

// SupportedExt reports whether FileSource has a decoder for path's extension
func SupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3", ".ogg", ".oga", ".flac":
		return true
	}
	return false
}
