package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/storevoice/pkg/cli/config"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"github.com/secmon-lab/storevoice/pkg/widget"
	"github.com/urfave/cli/v3"
)

func cmdTalk() *cli.Command {
	var serverURL string
	var agentID string
	var stateDir string
	var handsFree bool
	var sampleAudio string
	var appCfg config.App

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "server-url",
			Usage:       "Base URL of the storevoice server",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("STOREVOICE_SERVER_URL"),
			Destination: &serverURL,
		},
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Agent (store) to talk to",
			Sources:     cli.EnvVars("STOREVOICE_AGENT_ID"),
			Destination: &agentID,
		},
		&cli.StringFlag{
			Name:        "state-dir",
			Usage:       "Directory keeping the local memory mirror, consent and user id. Nothing is kept when unset",
			Sources:     cli.EnvVars("STOREVOICE_STATE_DIR"),
			Destination: &stateDir,
		},
		&cli.BoolFlag{
			Name:        "hands-free",
			Usage:       "Listen again automatically after each reply",
			Sources:     cli.EnvVars("STOREVOICE_HANDS_FREE"),
			Destination: &handsFree,
		},
		&cli.StringFlag{
			Name:        "sample-audio",
			Usage:       "Audio file uploaded as the recording of each consented turn",
			Sources:     cli.EnvVars("STOREVOICE_SAMPLE_AUDIO"),
			Destination: &sampleAudio,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "talk",
		Aliases: []string{"t"},
		Usage:   "Talk to a store assistant from the console",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			cfg, err := app.Widget.MachineConfig()
			if err != nil {
				return err
			}
			cfg.HandsFree = cfg.HandsFree || handsFree

			var store widget.LocalStore = widget.NewMemoryStore()
			if stateDir != "" {
				fs, err := widget.NewFileStore(stateDir)
				if err != nil {
					return err
				}
				store = fs
			}

			client := widget.NewHTTPClient(serverURL)
			speed := 1.0
			storeName := "the store"

			id := types.AgentID(agentID)
			if id != "" {
				settings, err := client.Settings(ctx, id)
				if err != nil {
					return goerr.Wrap(err, "failed to load agent settings", goerr.V("agent_id", id))
				}
				client.SetUploadToken(settings.VoiceUploadToken)
				cfg.RecordingEnabled = settings.VoiceRecordingEnabled
				speed = settings.VoiceSettings.Speed
				storeName = settings.StoreName
			}

			out := color.Output
			recognizer := widget.NewConsoleRecognizer()
			presenter := widget.NewConsolePresenter(out)

			opts := []widget.ControllerOption{
				widget.WithAgentID(id),
				widget.WithPresenter(presenter),
			}
			if sampleAudio != "" {
				opts = append(opts, widget.WithRecording(widget.NewSampleRecorder(sampleAudio), client))
			}

			ctrl, err := widget.NewController(ctx, cfg, recognizer, widget.NewConsoleSynthesizer(out, speed), client, store, opts...)
			if err != nil {
				return err
			}

			logger.Debug("Starting console widget", "server_url", serverURL, "agent_id", id, "hands_free", cfg.HandsFree)
			color.New(color.Bold).Fprintf(out, "Talking to %s. Type to speak, empty line to tap the microphone, Ctrl-D to quit.\n", storeName)

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			runCtx, cancel := context.WithCancel(sigCtx)
			defer cancel()

			eg, egCtx := errgroup.WithContext(runCtx)
			eg.Go(func() error {
				return ctrl.Run(egCtx)
			})
			eg.Go(func() error {
				defer cancel()
				return widget.RunConsole(egCtx, ctrl, os.Stdin, recognizer, presenter)
			})
			return eg.Wait()
		},
	}
}
