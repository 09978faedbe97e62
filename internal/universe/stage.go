package universe

// Stage names a point in the patch lifecycle at which a test log was captured.
type Stage string

const (
	StageBase   Stage = "base"
	StageBefore Stage = "before"
	StageAfter  Stage = "after"
	// StageAgent is the log captured after the agent's patch was applied.
	StageAgent Stage = "agent"
)

// Stages lists every stage in lifecycle order.
var Stages = []Stage{StageBase, StageBefore, StageAfter, StageAgent}

// Required reports whether an analysis cannot run without the stage's log.
func (s Stage) Required() bool {
	return s != StageAgent
}
