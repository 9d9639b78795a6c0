package common

import (
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
)

// FolderState tracks a folder's position in the discovered -> mapped ->
// zipping -> unzipping -> complete lifecycle described in spec section 3.
var EFolderState = FolderState(0)

type FolderState uint8

func (FolderState) Discovered() FolderState { return FolderState(0) }
func (FolderState) Mapped() FolderState     { return FolderState(1) }
func (FolderState) Zipping() FolderState    { return FolderState(2) }
func (FolderState) Unzipping() FolderState  { return FolderState(3) }
func (FolderState) Complete() FolderState   { return FolderState(4) }

func (f FolderState) String() string {
	return enum.StringInt(f, reflect.TypeOf(f))
}

// WorkState is the state a single unit of work (an archive part, a split, a
// large file copy) is in, as rendered by the status monitor.
var EWorkState = WorkState(0)

type WorkState uint8

func (WorkState) Queued() WorkState       { return WorkState(0) }
func (WorkState) Downloading() WorkState  { return WorkState(1) }
func (WorkState) Zipping() WorkState      { return WorkState(2) }
func (WorkState) Uploading() WorkState    { return WorkState(3) }
func (WorkState) Extracting() WorkState   { return WorkState(4) }
func (WorkState) Skipped() WorkState      { return WorkState(5) }
func (WorkState) Resumed() WorkState      { return WorkState(6) }
func (WorkState) Completed() WorkState    { return WorkState(7) }
func (WorkState) Error() WorkState        { return WorkState(8) }
func (WorkState) Backpressure() WorkState { return WorkState(9) }

func (w WorkState) String() string {
	return enum.StringInt(w, reflect.TypeOf(w))
}

// LogLevel mirrors the teacher's small closed set of severities rather than
// pulling in zap's full level type at every call site.
var ELogLevel = LogLevel(0)

type LogLevel uint8

func (LogLevel) Debug() LogLevel { return LogLevel(0) }
func (LogLevel) Info() LogLevel  { return LogLevel(1) }
func (LogLevel) Warn() LogLevel  { return LogLevel(2) }
func (LogLevel) Error() LogLevel { return LogLevel(3) }

func (l LogLevel) String() string {
	return enum.StringInt(l, reflect.TypeOf(l))
}
