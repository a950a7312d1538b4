package cli

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoClipboardTool is returned when none of the known copy commands is
// installed.
var ErrNoClipboardTool = errors.New("no clipboard tool found")

// clipboardTools are tried in order; the first one on PATH wins.
var clipboardTools = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"clip.exe"},
}

// SystemClipboard copies text through the platform clipboard command.
type SystemClipboard struct {
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// WriteText implements zonemap.Clipboard.
func (c SystemClipboard) WriteText(text string) error {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	for _, tool := range clipboardTools {
		path, err := lookPath(tool[0])
		if err != nil {
			continue
		}
		cmd := exec.Command(path, tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s failed: %w: %s", tool[0], err, strings.TrimSpace(string(out)))
		}
		return nil
	}
	return ErrNoClipboardTool
}
