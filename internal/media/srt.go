package media

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Cue is one parsed subtitle entry: sequential index, a start→end window in
// seconds, and the caption text.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ParseSRTFile parses a SubRip caption file. The pipeline validates captions
// before handing the file to the encoder so a malformed file fails with a
// useful message instead of an opaque filter error.
func ParseSRTFile(path string) ([]Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(KindSubtitleRender, err, "cannot open subtitle file %s", path)
	}
	defer f.Close()

	var cues []Cue
	scanner := bufio.NewScanner(f)
	lineNo := 0

	for {
		// Skip blank lines between cues
		var line string
		ok := false
		for scanner.Scan() {
			lineNo++
			line = strings.TrimSpace(scanner.Text())
			if line != "" {
				ok = true
				break
			}
		}
		if !ok {
			break
		}

		// Index line (UTF-8 BOM tolerated on the first cue)
		line = strings.TrimPrefix(line, "\uFEFF")
		index, err := strconv.Atoi(line)
		if err != nil {
			return nil, newError(KindSubtitleRender, "line %d: expected cue index, got %q", lineNo, line)
		}

		// Timing line
		if !scanner.Scan() {
			return nil, newError(KindSubtitleRender, "cue %d: missing timing line", index)
		}
		lineNo++
		start, end, err := parseSRTTiming(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, newError(KindSubtitleRender, "cue %d: %v", index, err)
		}

		// Text lines until blank or EOF
		var text []string
		for scanner.Scan() {
			lineNo++
			t := strings.TrimSpace(scanner.Text())
			if t == "" {
				break
			}
			text = append(text, t)
		}
		if len(text) == 0 {
			return nil, newError(KindSubtitleRender, "cue %d: empty text", index)
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(text, "\n"),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, wrapError(KindSubtitleRender, err, "error reading subtitle file %s", path)
	}
	if len(cues) == 0 {
		return nil, newError(KindSubtitleRender, "no cues in subtitle file %s", path)
	}

	return cues, nil
}

// parseSRTTiming parses "HH:MM:SS,mmm --> HH:MM:SS,mmm".
func parseSRTTiming(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad timing line %q", line)
	}

	start, err := parseSRTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseSRTTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("cue ends (%g) before it starts (%g)", end, start)
	}

	return start, end, nil
}

// parseSRTTimestamp parses "HH:MM:SS,mmm" into seconds. A period is accepted
// in place of the comma — both appear in the wild.
func parseSRTTimestamp(ts string) (float64, error) {
	ts = strings.ReplaceAll(ts, ".", ",")
	commaIdx := strings.IndexByte(ts, ',')
	millis := 0
	if commaIdx >= 0 {
		var err error
		millis, err = strconv.Atoi(ts[commaIdx+1:])
		if err != nil {
			return 0, fmt.Errorf("bad milliseconds in timestamp %q", ts)
		}
		ts = ts[:commaIdx]
	}

	fields := strings.Split(ts, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}

	h, err1 := strconv.Atoi(fields[0])
	m, err2 := strconv.Atoi(fields[1])
	s, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}

	return float64(h*3600+m*60+s) + float64(millis)/1000, nil
}
