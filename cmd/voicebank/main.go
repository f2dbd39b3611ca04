package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pitabwire/frame"
	frameconfig "github.com/pitabwire/frame/config"
	"github.com/pitabwire/frame/workerpool"

	vbconfig "github.com/voicebank/voicebank/config"
	"github.com/voicebank/voicebank/internal/httputil"
	"github.com/voicebank/voicebank/internal/recording"
	recordingapi "github.com/voicebank/voicebank/internal/recording/api"
	"github.com/voicebank/voicebank/internal/recording/store"
	"github.com/voicebank/voicebank/internal/speech/registry"
	"github.com/voicebank/voicebank/internal/voice"
	voiceapi "github.com/voicebank/voicebank/internal/voice/api"
	"github.com/voicebank/voicebank/pkg/cache"
	"github.com/voicebank/voicebank/pkg/events"

	// Register speech backends via init().
	_ "github.com/voicebank/voicebank/internal/speech/backends/elevenlabs"
)

func main() {
	ctx := context.Background()

	// Local development convenience, a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := frameconfig.LoadWithOIDC[vbconfig.VoicebankConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("voicebank"),
		frame.WithRegisterServerOauth2Client(),
		frame.WithDatastore(),
		frame.WithRegisterPublisher(eventRef, eventURL),
		frame.WithWorkerPoolOptions(
			workerpool.WithPoolCount(cfg.WorkerPoolCount),
			workerpool.WithSinglePoolCapacity(cfg.WorkerPoolCapacity),
		),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	authenticator := srv.SecurityManager().GetAuthenticator(ctx)

	pub := events.NewPublisher(srv.QueueManager(), pool, "voicebank", eventRef)

	// --- Transient recording store ---
	recStore, err := store.New(ctx, store.Config{
		Backend: cfg.RecordingStoreBackend,
		Minio: store.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		},
	})
	if err != nil {
		log.Fatalf("creating recording store: %v", err)
	}

	// --- Recording prompts ---
	loader := recording.NewLoader(cfg.PromptsDir)
	if _, err = loader.LoadAll(); err != nil {
		log.Printf("warning: loading prompts, using built-in set: %v", err)
	}
	if cfg.PromptsDir != "" {
		watcherDone := make(chan struct{})
		defer close(watcherDone)
		_ = pool.Submit(ctx, func() {
			if werr := loader.WatchAndReload(watcherDone); werr != nil {
				log.Printf("warning: prompt watcher stopped: %v", werr)
			}
		})
	}

	// --- Speech engines ---
	engineConfig := map[string]string{
		"elevenlabs_api_key": cfg.ElevenLabsAPIKey,
		"base_url":           cfg.ElevenLabsBaseURL,
		"model":              cfg.SynthesisModel,
		"stability":          fmt.Sprintf("%g", cfg.VoiceStability),
		"similarity_boost":   fmt.Sprintf("%g", cfg.VoiceSimilarity),
		"style":              fmt.Sprintf("%g", cfg.VoiceStyle),
		"use_speaker_boost":  strconv.FormatBool(cfg.VoiceSpeakerBoost),
	}
	cloneEngine, err := registry.Clone.Create(cfg.CloneBackend, engineConfig)
	if err != nil {
		log.Fatalf("creating clone engine: %v", err)
	}
	ttsEngine, err := registry.TTS.Create(cfg.TTSBackend, engineConfig)
	if err != nil {
		log.Fatalf("creating tts engine: %v", err)
	}

	// --- Voice directory ---
	repo := voice.NewRepository(
		srv.DatastoreManager().GetPool(ctx, "__default__pool_name__"),
	)

	creator := voice.NewCreator(recStore, cloneEngine, repo, pub, voice.CreatorConfig{
		MinSegmentBytes: cfg.MinSegmentBytes,
		MinTotalBytes:   cfg.MinTotalBytes,
	})
	synth := voice.NewSynthesizer(ttsEngine, pub)

	// --- Phrase cache ---
	phraseCache, err := cache.New(cache.Config{
		Backend: cfg.CacheBackend,
		Local: cache.LocalConfig{
			DefaultExpiration: cfg.CacheTTL(),
		},
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	})
	if err != nil {
		log.Fatalf("creating phrase cache: %v", err)
	}
	defer phraseCache.Close()

	// --- HTTP Mux ---
	recHandler := recordingapi.NewHandler(loader, recStore, pub, pool, recordingapi.Config{
		SessionTTL: cfg.WizardSessionTTL(),
		MinCapture: time.Duration(cfg.MinCaptureSeconds) * time.Second,
	})
	voiceHandler := voiceapi.NewHandler(repo, creator, synth, phraseCache, cfg.CacheTTL(), pub)

	restMux := http.NewServeMux()
	recHandler.RegisterRoutes(restMux)
	voiceHandler.RegisterRoutes(restMux)

	mux := http.NewServeMux()
	mux.Handle("/api/", httputil.AuthenticatedHTTPMiddleware(
		httputil.LoggingMiddleware(restMux), authenticator))

	recHandler.StartReaper(ctx)

	srv.Init(ctx,
		frame.WithHTTPHandler(httputil.H2CHandler(mux)),
	)

	if err = srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}
