package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/opencivic/sahayak/internal/presentation/receipt"
	"github.com/opencivic/sahayak/pkg/domain"
)

// RunChat starts an interactive dialogue on Stdin/Stdout.
func RunChat(opts RunOptions) error {
	logger := NewLogger(opts.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := NewEngine(ctx, opts, logger)
	if err != nil {
		return err
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	p := termenv.ColorProfile()
	render := receiptRenderer(interactive)

	if interactive {
		printBanner(p)
		fmt.Printf("Session %s. Type 'restart' to begin, 'exit' to leave.\n\n", sessionID)
	}

	// Open the dialogue with a turn of our own so the first prompt comes
	// from the engine, not from us. A fresh session restarts; a resumed
	// one reports where it stands.
	opening := "restart"
	if opts.SessionID != "" {
		opening = "track_status"
	}
	result, err := engine.HandleInput(ctx, sessionID, opening)
	if err != nil {
		return fmt.Errorf("turn failed: %w", err)
	}
	printTurn(p, render, result, interactive)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print(termenv.String("> ").Foreground(p.Color("#818cf8")))
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		result, err = engine.HandleInput(ctx, sessionID, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
			continue
		}
		printTurn(p, render, result, interactive)

		if result.IsTerminal && !result.RequiresInput && result.CurrentState == string(domain.StateCompleted) {
			return nil
		}
	}
}

func printTurn(p termenv.Profile, render func(string) string, result *domain.TurnResult, interactive bool) {
	if interactive {
		fmt.Println(termenv.String(result.Response).Foreground(p.Color("#a78bfa")))
	} else {
		fmt.Println(result.Response)
	}

	if r, err := domain.ReceiptFromResult(result); err == nil && r != nil {
		fmt.Println(render(receipt.Markdown(r)))
	}
}

// receiptRenderer picks glamour for terminals and plain passthrough
// otherwise, so piped output stays grep-able.
func receiptRenderer(interactive bool) func(string) string {
	if !interactive {
		return func(md string) string { return md }
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return func(md string) string { return md }
	}
	return func(md string) string {
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return out
	}
}

func printBanner(p termenv.Profile) {
	lines := []string{
		"             _                     _    ",
		"  ___  __ _ | |__   __ _ _   _  __ _| | __",
		" / __|/ _` || '_ \\ / _` | | | |/ _` | |/ /",
		" \\__ \\ (_| || | | | (_| | |_| | (_| |   < ",
		" |___/\\__,_||_| |_|\\__,_|\\__, |\\__,_|_|\\_\\",
		"                         |___/            ",
	}
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Println()
}
