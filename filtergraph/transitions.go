package filtergraph

// transitionSet holds the xfade effect names rotated through at special
// junctions. Order matters: selection is by index, so the sequence of
// effects is reproducible for a given asset count.
var transitionSet = []string{
	"fade",
	"wipeleft",
	"wiperight",
	"slideleft",
	"slideright",
	"smoothleft",
	"smoothright",
	"circleopen",
	"circleclose",
}

// TransitionFor picks the transition effect for the junction where
// asset number junction (1-based among assetCount assets) enters the
// chain. Most junctions use a plain fade; every third one rotates
// through the effect set for variety, except the final junction, which
// always fades so the video ends calmly.
func TransitionFor(junction, assetCount int) string {
	if junction%3 == 0 && junction < assetCount-1 {
		return transitionSet[junction%len(transitionSet)]
	}
	return "fade"
}

// Transitions returns a copy of the rotation set.
func Transitions() []string {
	out := make([]string, len(transitionSet))
	copy(out, transitionSet)
	return out
}
