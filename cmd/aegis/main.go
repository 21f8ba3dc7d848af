package main

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/idemlab/aegis/adapters/events"
	"github.com/idemlab/aegis/adapters/store"
	"github.com/idemlab/aegis/adapters/tokenizer"
	"github.com/idemlab/aegis/config"
	"github.com/idemlab/aegis/credential"
	"github.com/idemlab/aegis/ports"
	"github.com/idemlab/aegis/service"
	"github.com/idemlab/aegis/transport/http"
)

func main() {
	cfg := config.FromEnv()
	ctx := context.Background()

	// An unconfigured issuer key is fatal. Serving issuance without a
	// signing key would only produce garbage credentials.
	if cfg.IssuerKeyHex == "" {
		log.Fatal("AEGIS_ISSUER_KEY is not set; refusing to start")
	}
	issuerKey, err := gethcrypto.HexToECDSA(cfg.IssuerKeyHex)
	if err != nil {
		log.Fatalf("AEGIS_ISSUER_KEY is not a valid secp256k1 key: %v", err)
	}

	var (
		challenges  ports.ChallengeStore
		revocations ports.RevocationStore
		publisher   message.Publisher
	)

	wmLogger := watermill.NewStdLogger(false, false)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		challenges = store.NewRedisChallengeStore(redisClient)
		revocations = store.NewRedisRevocationStore(redisClient)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
	} else {
		challenges = store.NewMemoryChallengeStore()
		revocations = store.NewFileRevocationStore(cfg.RevocationFile)
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		revocations = store.NewPostgresRevocationStore(pool)
	}

	sessionTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.SessionSecret))
	if cfg.SessionTTL > 0 {
		sessionTokenizer = tokenizer.NewJWTTokenizerWithTTL([]byte(cfg.SessionSecret), cfg.SessionTTL)
	}
	auditPublisher := events.NewWatermillPublisher(publisher)

	var authOpts []service.AuthOption
	if cfg.ChallengeTTL > 0 {
		authOpts = append(authOpts, service.WithChallengeTTL(cfg.ChallengeTTL))
	}
	authService := service.NewAuthService(challenges, sessionTokenizer, authOpts...)
	issuerService, err := service.NewIssuerService(issuerKey, sessionTokenizer, revocations, auditPublisher)
	if err != nil {
		log.Fatalf("Failed to configure issuer: %v", err)
	}
	verifier := credential.NewVerifier(revocations)

	authService.StartSweeper(ctx)

	log.Printf("issuer identity: %s", issuerService.IssuerID())

	router := http.SetupRouter(authService, issuerService, verifier)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
