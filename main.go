package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/lexsync/internal/config"
	"github.com/example/lexsync/internal/database"
	"github.com/example/lexsync/internal/excel"
	"github.com/example/lexsync/internal/scheduler"
	syncer "github.com/example/lexsync/internal/sync"
)

func main() {
	exportPath := flag.String("export-report", "", "write an .xlsx progress report to the given path and exit")
	syncNow := flag.Bool("sync-now", false, "force one sync pass and exit")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg.DBType, cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store, err := database.NewProgressStore(db, cfg.UserID)
	if err != nil {
		log.Fatalf("Failed to load progress store: %v", err)
	}

	if *exportPath != "" {
		result, err := excel.ExportReport(store, excel.DefaultExportConfig(*exportPath))
		if err != nil {
			log.Fatalf("Failed to export report: %v", err)
		}
		log.Printf("Report written to %s (%d words, %d exercises)", *exportPath, result.VocabularyRows, result.ExerciseRows)
		return
	}

	if cfg.RemoteURL == "" {
		log.Fatal("REMOTE_URL environment variable is not set")
	}

	remote := syncer.NewHTTPAuthority(cfg.RemoteURL, cfg.RemoteToken)
	orchestrator := syncer.New(store, remote, cfg.UserID)
	defer orchestrator.Close()

	orchestrator.SetProgressFunc(func(percent int) {
		log.Printf("Sync progress: %d%%", percent)
	})

	if *syncNow {
		result := orchestrator.Sync(context.Background(), true)
		if result.Err != nil {
			log.Fatalf("Sync failed: %v", result.Err)
		}
		if len(result.Conflicts) > 0 {
			log.Printf("Sync finished with %d unresolved conflicts", len(result.Conflicts))
			return
		}
		log.Printf("Sync finished: %d items", result.SyncedItems)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Assume connectivity until told otherwise; a connectivity watcher or
	// the embedding application flips this via SetOnline.
	orchestrator.SetOnline(true)

	periodic := scheduler.New(orchestrator, cfg.SyncInterval)
	periodic.Start()
	defer periodic.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("lexsync started. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
	case <-ctx.Done():
	}

	// Final attempt to push anything pending before shutdown
	if store.PendingSync() {
		result := orchestrator.Sync(context.Background(), true)
		if result.Err != nil {
			log.Printf("Final sync failed, changes kept locally: %v", result.Err)
		}
	}
	log.Println("lexsync stopped")
}
