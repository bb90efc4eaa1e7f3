package build

import "fmt"

// Stage is a step of the build pipeline. Stages advance strictly in
// declaration order; any failure moves the pipeline to StageFailed.
type Stage int

const (
	StageIdle Stage = iota
	StageMetadataLoaded
	StageVersionStamped
	StageMetadataReloaded
	StageRulesLoaded
	StagePlanned
	StageExecuted
	StagePackaged
	StageSigningAttempted
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:             "idle",
	StageMetadataLoaded:   "metadata-loaded",
	StageVersionStamped:   "version-stamped",
	StageMetadataReloaded: "metadata-reloaded",
	StageRulesLoaded:      "rules-loaded",
	StagePlanned:          "planned",
	StageExecuted:         "executed",
	StagePackaged:         "packaged",
	StageSigningAttempted: "signing-attempted",
	StageDone:             "done",
	StageFailed:           "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Terminal reports whether no further transition is possible
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
