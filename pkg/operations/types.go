package operations

import "fmt"

// Kind identifies what an operation does
type Kind int

const (
	CreateDirectory Kind = iota
	CopyFile
	RecordedForceInclude
	RecordedIgnore
)

func (k Kind) String() string {
	switch k {
	case CreateDirectory:
		return "create-directory"
	case CopyFile:
		return "copy-file"
	case RecordedForceInclude:
		return "force-include"
	case RecordedIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FileOperation is a single planned action. Operations are produced by
// the planner and consumed once by the executor.
type FileOperation struct {
	Kind        Kind
	Rel         string // slash-separated path relative to the source root
	Source      string
	Destination string
	Pattern     string // matched rule, set for the Recorded kinds
}

func (op FileOperation) String() string {
	if op.Pattern != "" {
		return fmt.Sprintf("%s %s (%s)", op.Kind, op.Rel, op.Pattern)
	}
	return fmt.Sprintf("%s %s", op.Kind, op.Rel)
}

// CountByKind tallies a plan
func CountByKind(ops []FileOperation) map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, op := range ops {
		counts[op.Kind]++
	}
	return counts
}
