package output

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh/spinner"
)

// PauseWithSpinner blocks for d, showing title next to a spinner when
// stdout is a terminal. It returns the context error if ctx ends first.
func PauseWithSpinner(ctx context.Context, title string, d time.Duration) error {
	wait := func() error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}

	if d <= 0 || !IsTTY() {
		return wait()
	}

	var err error
	s := spinner.New().
		Title(fmt.Sprintf("%s (%s)", title, d)).
		Action(func() { err = wait() })
	if serr := s.Run(); serr != nil {
		return fmt.Errorf("spinner: %w", serr)
	}
	return err
}
