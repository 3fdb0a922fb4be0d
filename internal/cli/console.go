package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

const providerName = "Oracle Code Assist"

// Console reports sign-in progress on a terminal. In quiet mode only
// warnings and the authorization URL are printed.
type Console struct {
	out   io.Writer
	quiet bool

	mu sync.Mutex
}

// NewConsole creates a Console writing to out, or stdout when out is nil.
func NewConsole(out io.Writer, quiet bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, quiet: quiet}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// AuthURL prints the authorization URL so the user can open it manually.
func (c *Console) AuthURL(mode, authURL string) {
	if !c.quiet {
		c.printf("\nOpening browser for %s authentication (%s mode)...\n", providerName, mode)
	}
	c.printf("If the browser does not open, visit:\n  %s\n\n", text.FgCyan.Sprint(authURL))
}

// WaitingForBrowser shows a spinner until the returned func is called.
func (c *Console) WaitingForBrowser(timeout time.Duration) func() {
	if c.quiet {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.out))
	s.Suffix = fmt.Sprintf(" Waiting for you to complete authentication in your browser (timeout: %s)...", timeout)
	s.Start()

	var once sync.Once
	return func() {
		once.Do(s.Stop)
	}
}

// SignedIn confirms a completed sign-in.
func (c *Console) SignedIn(mode string) {
	if c.quiet {
		return
	}
	c.printf("%s\n", FormatSuccess(fmt.Sprintf("You are signed in to %s (%s mode)", providerName, mode)))
}

// SignedOut confirms a sign-out.
func (c *Console) SignedOut() {
	if c.quiet {
		return
	}
	c.printf("%s\n", FormatSuccess(fmt.Sprintf("You have been signed out of %s", providerName)))
}

// ModelSelected confirms the active model.
func (c *Console) ModelSelected(modelID string) {
	if c.quiet {
		return
	}
	c.printf("%s\n", FormatSuccess("Using model "+modelID))
}

// Warning prints a warning.
func (c *Console) Warning(format string, args ...any) {
	c.printf("%s\n", FormatWarning(fmt.Sprintf(format, args...)))
}
