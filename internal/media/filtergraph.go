package media

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Typed filter graph
//
// Stages never build filter_complex strings by hand. They assemble a Graph of
// typed Filter nodes with named input/output pads; the graph is serialized to
// ffmpeg's syntax only at the invocation boundary, with all value escaping in
// one place. This removes the path-escaping and syntax-injection bugs that
// come with interpolated filter strings.
// ---------------------------------------------------------------------------

// Arg is one ordered key=value argument of a filter. Order matters to ffmpeg
// for positional shorthand, so args are a slice, not a map.
type Arg struct {
	Key   string
	Value string
}

// Filter is one node: a filter name, its args, and named pads.
type Filter struct {
	Name    string
	Args    []Arg
	Inputs  []string
	Outputs []string
}

// Graph is an ordered chain of filter nodes.
type Graph struct {
	filters []Filter
}

// Add appends a filter node to the graph and returns the graph for chaining.
func (g *Graph) Add(f Filter) *Graph {
	g.filters = append(g.filters, f)
	return g
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool {
	return len(g.filters) == 0
}

// String serializes the graph to filter_complex syntax:
//
//	[in1][in2]name=k1=v1:k2=v2[out];...
func (g *Graph) String() string {
	parts := make([]string, 0, len(g.filters))
	for _, f := range g.filters {
		var sb strings.Builder
		for _, in := range f.Inputs {
			sb.WriteString("[" + in + "]")
		}
		sb.WriteString(f.Name)
		for i, arg := range f.Args {
			if i == 0 {
				sb.WriteString("=")
			} else {
				sb.WriteString(":")
			}
			if arg.Key != "" {
				sb.WriteString(arg.Key + "=")
			}
			sb.WriteString(arg.Value)
		}
		for _, out := range f.Outputs {
			sb.WriteString("[" + out + "]")
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, ";")
}

// ---------------------------------------------------------------------------
// Node constructors — the closed set of filters the pipeline uses.
// ---------------------------------------------------------------------------

// XFade blends two video streams over `duration` seconds starting at `offset`
// seconds into the first stream.
func XFade(in1, in2, out, transition string, duration, offset float64) Filter {
	return Filter{
		Name: "xfade",
		Args: []Arg{
			{"transition", transition},
			{"duration", formatFloat(duration)},
			{"offset", formatFloat(offset)},
		},
		Inputs:  []string{in1, in2},
		Outputs: []string{out},
	}
}

// Volume scales one audio stream.
func Volume(in, out string, volume float64) Filter {
	return Filter{
		Name:    "volume",
		Args:    []Arg{{"", formatFloat(volume)}},
		Inputs:  []string{in},
		Outputs: []string{out},
	}
}

// AMix combines two audio streams. duration=first follows the first input,
// which is how narration stays authoritative over background music.
func AMix(in1, in2, out string, dropoutTransition float64) Filter {
	return Filter{
		Name: "amix",
		Args: []Arg{
			{"inputs", "2"},
			{"duration", "first"},
			{"dropout_transition", formatFloat(dropoutTransition)},
		},
		Inputs:  []string{in1, in2},
		Outputs: []string{out},
	}
}

// Scale resizes to fit within w×h preserving aspect ratio.
func Scale(in, out string, w, h int) Filter {
	return Filter{
		Name: "scale",
		Args: []Arg{
			{"w", strconv.Itoa(w)},
			{"h", strconv.Itoa(h)},
			{"force_original_aspect_ratio", "decrease"},
			{"flags", "lanczos"},
		},
		Inputs:  []string{in},
		Outputs: []string{out},
	}
}

// Pad letterboxes/pillarboxes to exactly w×h with centered content.
func Pad(in, out string, w, h int) Filter {
	return Filter{
		Name: "pad",
		Args: []Arg{
			{"w", strconv.Itoa(w)},
			{"h", strconv.Itoa(h)},
			{"x", "(ow-iw)/2"},
			{"y", "(oh-ih)/2"},
			{"color", "black"},
		},
		Inputs:  []string{in},
		Outputs: []string{out},
	}
}

// SetSAR forces square pixels after scale+pad.
func SetSAR(in, out string) Filter {
	return Filter{
		Name:    "setsar",
		Args:    []Arg{{"", "1"}},
		Inputs:  []string{in},
		Outputs: []string{out},
	}
}

// FPS resamples the frame rate.
func FPS(in, out string, fps int) Filter {
	return Filter{
		Name:    "fps",
		Args:    []Arg{{"", strconv.Itoa(fps)}},
		Inputs:  []string{in},
		Outputs: []string{out},
	}
}

// Subtitles burns a caption file into the video stream with an explicit
// ASS style override.
func Subtitles(in, out, path, forceStyle string) Filter {
	return Filter{
		Name: "subtitles",
		Args: []Arg{
			{"filename", "'" + EscapeFilterPath(path) + "'"},
			{"force_style", "'" + forceStyle + "'"},
		},
		Inputs:  []string{in},
		Outputs: []string{out},
	}
}

// EscapeFilterPath escapes special characters in file paths for ffmpeg filter
// syntax. Filter strings treat colons, backslashes, and single quotes
// specially.
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
