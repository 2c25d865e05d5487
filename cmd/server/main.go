package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/skipyas0/cookenv-benchmark/internal/persistence/indexdb"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/level"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/tuning"
	"github.com/skipyas0/cookenv-benchmark/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		levelsDir  = flag.String("levels", "./levels", "levels directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: ./configs/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join("configs", "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	levels, order, err := loadLevels(*levelsDir, logger)
	if err != nil {
		logger.Fatalf("load levels: %v", err)
	}
	if len(order) == 0 {
		logger.Fatalf("no levels found in %s", *levelsDir)
	}
	defaultLevel := tune.DefaultLevel
	if defaultLevel == "" {
		defaultLevel = order[0]
	}
	if _, ok := levels[defaultLevel]; !ok {
		logger.Fatalf("default level %q not found", defaultLevel)
	}
	logger.Printf("loaded %d levels, default %s", len(order), defaultLevel)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	srv := ws.NewServer(levels, defaultLevel, tune, logger, idx, filepath.Join(*dataDir, "runs"))

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/levels", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(order)
	})
	mux.HandleFunc("/v1/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		if idx == nil {
			http.Error(w, "index disabled", http.StatusServiceUnavailable)
			return
		}
		rows, err := idx.Scoreboard()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Printf("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
}

// loadLevels reads every subdirectory of dir that parses as a level.
// Folders that fail to load are skipped with a log line, matching the
// tolerant posture of the level parser itself.
func loadLevels(dir string, logger *log.Logger) (map[string]*level.Level, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	levels := map[string]*level.Level{}
	var order []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		lvl, err := level.Load(filepath.Join(dir, e.Name()), logger)
		if err != nil {
			logger.Printf("skipping level %s: %v", e.Name(), err)
			continue
		}
		levels[e.Name()] = lvl
		order = append(order, e.Name())
	}
	sort.Strings(order)
	return levels, order, nil
}
