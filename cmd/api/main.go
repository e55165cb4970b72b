package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/dataset"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/integrator/openai"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/integrator/openai/openaiclient"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst-api/internal/api"
	"github.com/vfg2006/marketing-analyst-api/internal/config"
	"github.com/vfg2006/marketing-analyst-api/internal/scheduler"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/aggregating"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/authenticating"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A origem das métricas vem do banco quando habilitado; caso contrário,
	// do dataset em arquivo (desenvolvimento)
	var metricRepo repository.MetricRowRepository
	var runRepo repository.AnalysisRunRepository
	var userRepo repository.UserRepository

	if cfg.Database.Enabled {
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		metricRepo = repository.NewMetricRowRepository(pgConn)
		runRepo = repository.NewAnalysisRunRepository(pgConn)
		userRepo = repository.NewUserRepository(pgConn)
	} else {
		fileSource, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao carregar o dataset de métricas")
		}
		metricRepo = fileSource
	}

	authenticator := authenticating.NewService(userRepo, cfg)
	if !cfg.Database.Enabled {
		logrus.Warn("Banco de dados desabilitado: login e histórico de execuções indisponíveis")
	}

	aggregatorService := aggregating.NewService(metricRepo)
	registry := analyzing.NewRegistry(aggregatorService)

	// O colaborador de completion é opcional; sem ele o analista roda apenas
	// na variante determinística
	var completer analyzing.Completer
	if cfg.OpenAI.Enabled {
		openaiClient := openaiclient.NewClient(cfg)
		completer = openai.New(cfg, openaiClient)
		logrus.Info("Integração com o serviço de completion habilitada")
	} else {
		logrus.Info("Integração com o serviço de completion desabilitada, usando somente a variante determinística")
	}

	analystService := analyzing.NewService(registry, completer, runRepo)

	anomalyScanService := scheduler.NewAnomalyScanService(analystService, metricRepo, cfg)

	// Inicia o agendador em background
	if err := anomalyScanService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de varredura de anomalias")
	} else {
		logrus.Info("Agendador de varredura de anomalias iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		aggregatorService,
		analystService,
		authenticator,
		anomalyScanService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
