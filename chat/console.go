package chat

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	bannerFresh  = "Let's have a chat. (Enter `pause` to pause and `quit` to exit)"
	bannerResume = "Welcome back! (Remember, enter `pause` to pause and `quit` to exit)"
	promptMarker = "> "

	commandQuit  = "quit"
	commandPause = "pause"
)

// console renders the interactive loop. Styles only apply when the writer is
// a color terminal; otherwise text is written unchanged.
type console struct {
	out    io.Writer
	errOut io.Writer

	banner  lipgloss.Style
	trailer lipgloss.Style
	failed  lipgloss.Style
}

func newConsole(out, errOut io.Writer) *console {
	r := lipgloss.NewRenderer(out)
	e := lipgloss.NewRenderer(errOut)

	return &console{
		out:     out,
		errOut:  errOut,
		banner:  r.NewStyle().Bold(true),
		trailer: r.NewStyle().Faint(true),
		failed:  e.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (c *console) greet(resumed bool) {
	text := bannerFresh
	if resumed {
		text = bannerResume
	}
	fmt.Fprintln(c.out, c.banner.Render(text))
}

func (c *console) prompt() {
	fmt.Fprint(c.out, promptMarker)
}

func (c *console) fragment(s string) {
	io.WriteString(c.out, s)
}

func (c *console) cost(spent float64) {
	fmt.Fprint(c.out, "\n", c.trailer.Render(fmt.Sprintf("(spent %.6f credits)", spent)))
}

func (c *console) provider(name string) {
	fmt.Fprint(c.out, "\n", c.trailer.Render(fmt.Sprintf("(provider: %s)", name)))
}

func (c *console) endTurn() {
	fmt.Fprint(c.out, "\n")
}

func (c *console) failure(err error) {
	fmt.Fprintln(c.errOut, c.failed.Render("error: "+err.Error()))
}

func (c *console) warn(format string, args ...any) {
	fmt.Fprintln(c.errOut, "warning: "+fmt.Sprintf(format, args...))
}

func (c *console) pausedHint() {
	fmt.Fprintln(c.out, c.trailer.Render("(paused, press Enter to resume)"))
}
