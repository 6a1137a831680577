// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pdiddy/neurosynth-explorer/internal/controller"
	"github.com/pdiddy/neurosynth-explorer/internal/render"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

// Run starts the explorer on the terminal and blocks until the user quits
// or ctx ends.
func Run(ctx context.Context, src controller.Source, cfg types.ExplorerConfig, logger *zap.Logger) error {
	out := NewOutbox()
	ctl := controller.New(src, out, cfg, logger)
	defer ctl.Close()

	p := tea.NewProgram(New(ctl, render.DefaultStyles()),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	fwdCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		out.Run(fwdCtx, p.Send)
	}()

	_, err := p.Run()
	stop()
	<-done
	if err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
