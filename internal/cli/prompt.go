package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

const maxPromptAttempts = 3

// ErrPromptCancelled is returned when the user interrupts a prompt.
var ErrPromptCancelled = errors.New("cancelled")

// lineReader is the part of *readline.Instance the prompter needs.
type lineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// Prompter asks the interactive sign-in questions on a terminal.
type Prompter struct {
	rl  lineReader
	out io.Writer
}

// NewPrompter opens a readline session on the terminal. Close releases it.
func NewPrompter() (*Prompter, *readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &Prompter{rl: rl, out: rl.Stdout()}, rl, nil
}

func (p *Prompter) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrPromptCancelled
	}
	if err != nil {
		return "", fmt.Errorf("readline error: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// choose shows a numbered list and returns the picked option. An empty
// answer picks def when def is non-empty.
func (p *Prompter) choose(ctx context.Context, title string, options, labels []string, def string) (string, error) {
	fmt.Fprintln(p.out, title)
	for i, label := range labels {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, label)
	}

	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		answer, err := p.readLine(ctx, "> ")
		if err != nil {
			return "", err
		}
		if answer == "" && def != "" {
			return def, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if strings.EqualFold(answer, opt) {
				return opt, nil
			}
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
	}
	return "", fmt.Errorf("no valid choice after %d attempts", maxPromptAttempts)
}

// SelectMode asks which deployment to sign in to.
func (p *Prompter) SelectMode(ctx context.Context) (string, error) {
	return p.choose(ctx, "Select Oracle Code Assist mode:",
		[]string{"internal", "external"},
		[]string{"Internal (Oracle internal users)", "External (Oracle Cloud customers)"},
		"")
}

// BaseURL asks for an optional base URL override. Empty keeps the default.
func (p *Prompter) BaseURL(ctx context.Context, mode string) (string, error) {
	prompt := "Base URL (optional, press Enter to use the default): "
	if mode == "internal" {
		prompt = "Internal base URL (press Enter for the default internal endpoint): "
	}

	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		answer, err := p.readLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", nil
		}
		if u, err := url.Parse(answer); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, "Please enter an http or https URL, or leave it empty.")
	}
	return "", fmt.Errorf("no valid base URL after %d attempts", maxPromptAttempts)
}

// ConfirmSignOut asks whether a signed-in user wants to sign out.
func (p *Prompter) ConfirmSignOut(ctx context.Context) (bool, error) {
	fmt.Fprintf(p.out, "You are already signed in to %s.\n", providerName)
	answer, err := p.readLine(ctx, "Would you like to sign out? [y/N]: ")
	if errors.Is(err, ErrPromptCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// SelectModel asks for one of ids. Enter keeps current.
func (p *Prompter) SelectModel(ctx context.Context, ids []string, current string) (string, error) {
	if len(ids) == 0 {
		return "", errors.New("no models to choose from")
	}
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = id
		if id == current {
			labels[i] = id + " (current)"
		}
	}
	return p.choose(ctx, fmt.Sprintf("Select a %s model:", providerName), ids, labels, current)
}
