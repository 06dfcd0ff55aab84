// Command bidrag-dokument-arkiv serves the journal API used by case handlers
// to read archive entries, apply deviations, edit entries and order
// distribution.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/navikt/bidrag-dokument-arkiv/internal/clients"
	"github.com/navikt/bidrag-dokument-arkiv/internal/config"
	httpapi "github.com/navikt/bidrag-dokument-arkiv/internal/http"
	"github.com/navikt/bidrag-dokument-arkiv/internal/kafka"
	"github.com/navikt/bidrag-dokument-arkiv/internal/observability"
	"github.com/navikt/bidrag-dokument-arkiv/internal/repo"
	"github.com/navikt/bidrag-dokument-arkiv/internal/services"
	"github.com/navikt/bidrag-dokument-arkiv/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 20 * time.Second
	purgeInterval   = time.Hour
)

// @title          bidrag-dokument-arkiv
// @version        1.0
// @description    Journal entry deviations, edits and distribution for child support cases.
// @BasePath       /bidrag-dokument-arkiv
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Azure AD token.
func main() {
	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open idempotency store")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate idempotency store")
	}
	go purgeIdempotency(ctx, db)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal().Err(err).Msg("kafka producer")
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Warn().Err(err).Msg("kafka producer close")
		}
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, wireServices(cfg, producer), cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// wireServices builds the upstream clients and the application services.
func wireServices(cfg config.Config, producer services.Producer) httpapi.Services {
	up := cfg.Upstream

	saf := clients.NewSafClient(up.SafURL, up.Timeout)
	dokarkiv := clients.NewDokarkivClient(up.DokarkivURL, up.Timeout)
	proxy := clients.NewDokarkivProxyClient(up.DokarkivProxyURL, up.Timeout)
	oppgave := clients.NewOppgaveClient(up.OppgaveURL, up.Timeout)
	dokdist := clients.NewDokdistClient(up.DokdistURL, up.Timeout)
	person := clients.NewPersonClient(up.PersonURL, up.Timeout)
	organisasjon := clients.NewOrganisasjonClient(up.OrganisasjonURL, up.Timeout, up.OrganisasjonCacheTTL)

	journalposter := &services.JournalpostService{
		Arkiv:         saf,
		VentIntervall: cfg.Consistency.PollInterval,
		VentForsok:    uint(cfg.Consistency.PollAttempts),
	}
	saksbehandlere := &services.SaksbehandlerInfo{Organisasjon: organisasjon}
	oppgaver := &services.OppgaveService{Gateway: oppgave, Saksbehandlere: saksbehandlere}
	publisher := &services.HendelsePublisher{
		Journalposter:  journalposter,
		Personer:       person,
		Saksbehandlere: saksbehandlere,
		Producer:       producer,
		Retry: services.RetryPolicy{
			InitialInterval: cfg.Publish.InitialInterval,
			Multiplier:      cfg.Publish.Multiplier,
			MaxInterval:     cfg.Publish.MaxInterval,
			MaxForsok:       uint(cfg.Publish.MaxAttempts),
		},
	}
	distribusjon := &services.DistribuerJournalpostService{
		Journalposter: journalposter,
		Mutation:      dokarkiv,
		Distribusjon:  dokdist,
		Personer:      person,
	}
	endre := &services.EndreJournalpostService{
		Journalposter:  journalposter,
		Mutation:       dokarkiv,
		Proxy:          proxy,
		Oppgaver:       oppgaver,
		Saksbehandlere: saksbehandlere,
		Publisher:      publisher,
	}
	avvik := &services.AvvikService{
		Journalposter: journalposter,
		Mutation:      dokarkiv,
		Organisasjon:  organisasjon,
		Endre:         endre,
		Distribusjon:  distribusjon,
		Oppgaver:      oppgaver,
		Publisher:     publisher,
	}

	return httpapi.Services{
		Journalposter: journalposter,
		Avvik:         avvik,
		Endre:         endre,
		Distribusjon:  distribusjon,
	}
}

// purgeIdempotency removes expired idempotency rows until ctx is done.
func purgeIdempotency(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged expired idempotency keys")
			}
		}
	}
}
