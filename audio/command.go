package audio

import "github.com/google/uuid"

// CommandKind tags a PlaybackCommand
type CommandKind uint8

const (
	CmdPlay CommandKind = iota
	CmdStopAll
)

func (k CommandKind) String() string {
	switch k {
	case CmdPlay:
		return "play"
	case CmdStopAll:
		return "stop_all"
	default:
		return "unknown"
	}
}

// PlaybackCommand is an immutable message on a worker's private queue
// Path is empty for CmdStopAll
type PlaybackCommand struct {
	Kind CommandKind
	ID   uuid.UUID
	Clip string
	Path string
}

// Outcome is the dispatcher's routing decision for one play request
type Outcome struct {
	ID      uuid.UUID
	Worker  int  // -1 when dropped
	Dropped bool // no idle worker; request discarded
}

// request is a message on the dispatcher's inbound queue
// reply is nil for fire-and-forget plays and for stop requests
type request struct {
	cmd   PlaybackCommand
	reply chan<- Outcome
}

func playRequest(clip, path string, reply chan<- Outcome) request {
	return request{
		cmd: PlaybackCommand{
			Kind: CmdPlay,
			ID:   uuid.New(),
			Clip: clip,
			Path: path,
		},
		reply: reply,
	}
}

func stopAllRequest() request {
	return request{
		cmd: PlaybackCommand{
			Kind: CmdStopAll,
			ID:   uuid.New(),
		},
	}
}
