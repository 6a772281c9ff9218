// EchoSoul — an emotion-aware conversational companion.
//
// Usage:
//
//	echosoul [-verbose] [-quiet] [-mic]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/echosoul/echosoul/internal/api"
	"github.com/echosoul/echosoul/internal/auth"
	"github.com/echosoul/echosoul/internal/config"
	"github.com/echosoul/echosoul/internal/conversation"
	"github.com/echosoul/echosoul/internal/display"
	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
	"github.com/echosoul/echosoul/internal/speech"
	"github.com/echosoul/echosoul/internal/storage"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	diskCache := flag.Bool("disk-cache", true, "persist TTS audio cache to disk (reads from disk even when false)")
	mic := flag.Bool("mic", false, "enable voice input via local Whisper STT")
	whisperBin := flag.String("whisper-bin", "whisper-cli", "path to the whisper-cpp CLI binary")
	whisperModel := flag.String("whisper-model", "bin/ggml-small.bin", "path to the Whisper GGML model file")
	pinVoice := flag.String("voice", "", "pin a TTS voice instead of picking from the catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureStateDir(); err != nil {
		fmt.Fprintf(os.Stderr, "error: state dir: %v\n", err)
		os.Exit(1)
	}

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	path := *logFile
	if path == "" {
		path = cfg.LogPath()
	}
	var logOut io.Writer = os.Stderr
	if path != "stderr" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs like
	// the whisper transcriber) to the same output.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	creds := storage.NewFileStore(cfg.UserStatePath(), log)
	identity := auth.NewIdentityClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, log)
	session := auth.NewStore(identity, creds, log)
	backend := api.NewClient(cfg.APIBaseURL, log)
	parser := conversation.NewKeywordParser(log)

	app := &cliApp{
		backend: backend,
		session: session,
		parser:  parser,
		log:     log,
	}

	ui := display.NewUI(app.status)
	app.ui = ui
	notifier := conversation.NewCLINotifier(log, ui.Printf)
	app.notifier = notifier

	// Speech output: Azure TTS when credentials exist, otherwise a
	// no-op speaker so completion callbacks still fire.
	var speaker domain.Speaker = speech.NoopSpeaker{}
	if cfg.AzureSpeechKey != "" && cfg.AzureSpeechRegion != "" && !*noSpeech {
		opts := []speech.SynthOption{}
		if *pinVoice != "" {
			opts = append(opts, speech.WithVoice(*pinVoice))
		}
		synth := speech.NewAzureSynthesizer(cfg.AzureSpeechKey, cfg.AzureSpeechRegion, log, opts...)
		if *pinVoice == "" {
			synth.ResolveVoice(ctx)
		}

		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech output disabled: %v", err)
		} else {
			sp := speech.NewSpeaker(synth, player, log,
				speech.WithCacheDir(cfg.CacheDir()),
				speech.WithDiskWrite(*diskCache),
			)
			sp.Start(ctx)
			speaker = sp
			log.Info("TTS enabled (voice=%s, region=%s)", synth.Voice(), cfg.AzureSpeechRegion)
		}
	} else if !*noSpeech {
		log.Info("TTS disabled: set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION env vars to enable")
	}
	app.speaker = speaker

	// Voice input: local whisper STT when requested. A failed engine
	// init still builds the recognizer so the disable notice and state
	// behave the same as a mid-session loss of the capability.
	var engine speech.CaptureEngine
	if *mic {
		eng, err := speech.NewWhisperEngine(*whisperBin, *whisperModel, filepath.Join(cfg.StateDir, "stt"), log)
		if err != nil {
			log.Error("voice input unavailable: %v", err)
		} else {
			engine = eng
			log.Info("voice input enabled (bin=%s, model=%s)", *whisperBin, *whisperModel)
		}
	}
	app.recognizer = speech.NewRecognizer(engine, notifier, log)

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine; Bubble Tea owns the
	// terminal and blocks until quit.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}
