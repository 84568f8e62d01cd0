package riotwave

// Stage is a phase of a frame. Loops run in stage order:
// PreUpdate → Update → PostUpdate. Timers run after PostUpdate.
type Stage int

const (
	// PreUpdate runs first. Perception and overlap detection live here so
	// that the rest of the frame sees fresh flags.
	PreUpdate Stage = iota

	// Update runs the gameplay proper: movement, attacks, physics.
	Update

	// PostUpdate runs last. HUD updates and marker effects.
	PostUpdate

	stageCount
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	default:
		return "Unknown"
	}
}
