package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// startBlinkingPrompt redraws prompt with a blinking block cursor on the
// current line so it is obvious input is expected. The returned function
// stops the blinking and clears the line.
func startBlinkingPrompt(prompt string, interval time.Duration) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		visible := true
		for {
			cursor := "█"
			if !visible {
				cursor = " "
			}
			fmt.Fprintf(os.Stdout, "\r%s%s", prompt, cursor)

			select {
			case <-done:
				fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(prompt)+1))
				return
			case <-ticker.C:
				visible = !visible
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// waitForEnter blocks until the user presses Enter or ctx is cancelled.
func waitForEnter(ctx context.Context) error {
	input := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		input <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-input:
		return err
	}
}
