package filtergraph

// Side-chain compression settings that pull music down under speech.
const (
	duckThreshold = 0.02
	duckRatio     = 4
	duckAttack    = 50
	duckRelease   = 200
)

// MixOptions configure the music bed under a narration track. The
// narration itself passes through at full volume; only the music is
// shaped.
type MixOptions struct {
	MusicVolume float64
	FadeIn      float64 // seconds from start
	FadeOut     float64 // seconds, ending exactly at Duration
	SampleRate  int
}

// DefaultMixOptions returns the gentle bed used for learning videos.
func DefaultMixOptions() MixOptions {
	return MixOptions{
		MusicVolume: 0.15,
		FadeIn:      2.0,
		FadeOut:     3.0,
		SampleRate:  48000,
	}
}

// DuckedMix builds the audio graph that loops the music input under the
// narration with side-chain compression, so music recedes whenever the
// voice is present. Input 0 is music, input 1 is narration; the mixed
// stream lands on the "out" pad.
func DuckedMix(duration float64, opts MixOptions) *Graph {
	graph := &Graph{}
	graph.Add(musicBed(duration, opts))
	graph.Add(Chain{
		Inputs: []string{"music", "1:a"},
		Filters: []Filter{
			Filterf("sidechaincompress", "threshold=%s:ratio=%d:attack=%d:release=%d",
				ff(duckThreshold), duckRatio, duckAttack, duckRelease),
		},
		Outputs: []string{"out"},
	})
	return graph
}

// SimpleMix builds the audio graph that blends looped music with the
// narration at a fixed level, without ducking.
func SimpleMix(duration float64, opts MixOptions) *Graph {
	graph := &Graph{}
	graph.Add(musicBed(duration, opts))
	graph.Add(Chain{
		Inputs: []string{"music", "1:a"},
		Filters: []Filter{
			{Name: "amix", Args: "inputs=2:duration=first:dropout_transition=2"},
		},
		Outputs: []string{"out"},
	})
	return graph
}

// musicBed loops the music input to cover the narration, sets its
// level, and fades it in at the start and out at the very end.
func musicBed(duration float64, opts MixOptions) Chain {
	return Chain{
		Inputs: []string{"0:a"},
		Filters: []Filter{
			// aloop counts samples, so the loop size is duration at
			// the output sample rate.
			Filterf("aloop", "loop=-1:size=%d", int(duration*float64(opts.SampleRate))),
			Filterf("volume", "%s", ff(opts.MusicVolume)),
			Filterf("afade", "t=in:st=0:d=%s", ff(opts.FadeIn)),
			Filterf("afade", "t=out:st=%s:d=%s", ff(duration-opts.FadeOut), ff(opts.FadeOut)),
		},
		Outputs: []string{"music"},
	}
}
