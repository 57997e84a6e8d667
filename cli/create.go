package cli

// This file contains the create command for starting a new test run.

import (
	"fmt"

	"github.com/flinketl/etldash/model"
	"github.com/urfave/cli/v2"
)

func (a *App) create(ctx *cli.Context) error {
	req := model.CreateTestRequest{
		ImageTag:         ctx.String("image"),
		TestName:         ctx.String("name"),
		NumberOfMessages: ctx.Int("messages"),
	}

	// Validate before anything is sent
	if err := req.Validate(); err != nil {
		return fmt.Errorf("please fill in required fields: %w", err)
	}

	if ctx.Bool("dry-run") {
		fmt.Fprintln(a.out, a.client.CurlCommand(req))
		return nil
	}

	a.logger.Info().Str("image", req.ImageTag).Str("url", a.client.BaseURL()).Msg("Starting test")

	run, err := a.service.Create(ctx.Context, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Test with ID %q has been started successfully\n", run.ID)
	fmt.Fprintf(a.out, "Follow it with: %s view %s\n", AppName, run.ID)
	return nil
}
