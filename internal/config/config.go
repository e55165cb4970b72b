package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Database    Database    `mapstructure:",squash"`
	Dataset     Dataset     `mapstructure:",squash"`
	OpenAI      OpenAI      `mapstructure:",squash"`
	Auth        Auth        `mapstructure:",squash"`
	AnomalyScan AnomalyScan `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Enabled  bool   `mapstructure:"database_enabled"`
}

// Dataset define a origem das linhas de métricas quando o banco está desabilitado
type Dataset struct {
	Path string `mapstructure:"dataset_path"`
}

// OpenAI configura o colaborador de text-completion
type OpenAI struct {
	BaseURL        string `mapstructure:"openai_base_url"`
	APIKey         string `mapstructure:"openai_api_key"`
	Model          string `mapstructure:"openai_model"`
	TimeoutSeconds int    `mapstructure:"openai_timeout_seconds"`
	Enabled        bool   `mapstructure:"openai_enabled"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// AnomalyScan configura a narração agendada de anomalias por workspace
type AnomalyScan struct {
	CronSchedule string  `mapstructure:"anomaly_scan_cron"`
	LookbackDays int     `mapstructure:"anomaly_scan_lookback_days"`
	Sensitivity  float64 `mapstructure:"anomaly_scan_sensitivity"`
	Enabled      bool    `mapstructure:"anomaly_scan_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/analyst")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_ENABLED", false)

	viper.SetDefault("DATASET_PATH", "data/sample_metrics.json")

	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_TIMEOUT_SECONDS", 60)
	viper.SetDefault("OPENAI_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	// Defaults do scan agendado de anomalias
	viper.SetDefault("ANOMALY_SCAN_CRON", "0 7 * * *") // Todos os dias às 7h da manhã
	viper.SetDefault("ANOMALY_SCAN_LOOKBACK_DAYS", 7)
	viper.SetDefault("ANOMALY_SCAN_SENSITIVITY", 1.5)
	viper.SetDefault("ANOMALY_SCAN_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
