package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/bhoomipatni/TheHandStand/internal/capture"
	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/client"
	"github.com/bhoomipatni/TheHandStand/internal/config"
	"github.com/bhoomipatni/TheHandStand/internal/detector"
	"github.com/bhoomipatni/TheHandStand/internal/pipeline"
	"github.com/bhoomipatni/TheHandStand/internal/server"
	"github.com/bhoomipatni/TheHandStand/internal/speech"
	"github.com/bhoomipatni/TheHandStand/internal/store"
	"github.com/bhoomipatni/TheHandStand/internal/translate"
	"github.com/bhoomipatni/TheHandStand/internal/tray"
)

func main() {
	modelPath := flag.String("model", "", "Path to the trained classifier model (default: models/static_classifier.json)")
	webDir := flag.String("web", "", "Directory of static UI files (default: auto-detect)")
	spelling := flag.Bool("spelling", false, "Enable continuous finger-spelling mode")
	withTray := flag.Bool("tray", false, "Show a system tray menu")
	withClient := flag.Bool("client", false, "Capture frames from the local camera and feed the server")
	flag.Parse()

	fmt.Println("The HandStand - ASL Translator")

	cfg := config.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".handstand")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "handstand.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	model, err := classifier.LoadModel(findModel(*modelPath, dataDir))
	if err != nil {
		log.Fatalf("Failed to load classifier model: %v", err)
	}

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to start hand detector: %v", err)
	}
	defer det.Close()

	opts := []pipeline.Option{
		pipeline.WithTranslator(translate.NewGeminiTranslator(cfg.GeminiAPIKey)),
		pipeline.WithSpeaker(speech.NewSynthesizer(cfg.ElevenLabsAPIKey, speech.WithVoice(cfg.ElevenLabsVoiceID))),
		pipeline.WithDetectionStore(st.Detections()),
	}
	if *spelling {
		opts = append(opts, pipeline.WithSpellingMode())
	}

	// The tray mirrors pipeline state no matter where a change came
	// from, including detection started from the web UI.
	var trayUI *tray.Tray
	if *withTray {
		trayUI = tray.New()
		opts = append(opts,
			pipeline.WithOnConfirmed(trayUI.SetLastSign),
			pipeline.WithOnActiveChange(trayUI.SetActive),
		)
	}

	p := pipeline.New(det, classifier.New(model), cfg.Prediction, opts...)
	defer p.Close()

	staticDir := *webDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Pipeline:  p,
		Store:     st,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("Starting server on %s\n", addr)

	if *withClient {
		go runClient(cfg)
	}

	if *withTray {
		go func() {
			if err := srv.ListenAndServe(addr); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		}()
		runTray(trayUI, p, cfg.Port)
		return
	}

	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runTray blocks on the system tray loop. systray requires the main
// goroutine on macOS, so the HTTP server runs in the background.
func runTray(t *tray.Tray, p *pipeline.Pipeline, port int) {
	t.OnToggle(func(active bool) {
		if active {
			p.StartDetection()
		} else {
			p.StopDetection()
		}
	})
	t.OnOpenUI(func() {
		if err := openBrowser(fmt.Sprintf("http://localhost:%d", port)); err != nil {
			log.Printf("open browser: %v", err)
		}
	})
	t.OnQuit(func() {
		p.StopDetection()
	})
	t.Run()
}

// runClient drives the server from the local camera, for running
// without the browser UI.
func runClient(cfg config.Config) {
	// Give the server a moment to bind before the first frame.
	time.Sleep(500 * time.Millisecond)

	camera := capture.NewCamera(cfg.CameraID)
	source, err := client.NewCameraSource(camera)
	if err != nil {
		log.Printf("open camera: %v", err)
		return
	}
	defer source.Close()

	session := client.NewSession(source, client.SessionConfig{
		BaseURL: fmt.Sprintf("http://localhost:%d", cfg.Port),
	})
	session.Start()
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}

// findModel resolves the classifier model path. An explicit flag wins;
// otherwise the working directory is tried before ~/.handstand.
func findModel(explicit, dataDir string) string {
	if explicit != "" {
		return explicit
	}

	local := filepath.Join("models", "static_classifier.json")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return filepath.Join(dataDir, "models", "static_classifier.json")
}

// findWebDir searches for the web directory in common locations.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handstand", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
