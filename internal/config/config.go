package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	CSFA      CSFA      `mapstructure:",squash"`
	Report    Report    `mapstructure:",squash"`
	Email     Email     `mapstructure:",squash"`
	Scheduler Scheduler `mapstructure:",squash"`
	Auth      Auth      `mapstructure:",squash"`
	Render    Render    `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"app_env"`
	Timezone string `mapstructure:"timezone"`
	RunMode  string `mapstructure:"run_mode"`
}

// Location devolve o fuso usado para resolver "ontem" e o horário agendado
func (a App) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		logrus.WithError(err).WithField("timezone", a.Timezone).Warn("Fuso horário inválido, usando o local")
		return time.Local
	}
	return loc
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Enabled  bool   `mapstructure:"database_enabled"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// CSFA agrupa a conexão com a API de automação de força de vendas
type CSFA struct {
	BaseURL          string        `mapstructure:"csfa_base_url"`
	AccessToken      string        `mapstructure:"access_token"`
	LaravelToken     string        `mapstructure:"laravel_token"`
	SessionToken     string        `mapstructure:"sat_session"`
	XSRFToken        string        `mapstructure:"xsrf_token"`
	SessionUserID    string        `mapstructure:"sat_user_id"`
	CountryID        string        `mapstructure:"country_id"`
	CallsPath        string        `mapstructure:"csfa_calls_path"`
	PageSize         int           `mapstructure:"csfa_page_size"`
	RequestTimeout   time.Duration `mapstructure:"csfa_request_timeout"`
	MaxRetries       int           `mapstructure:"csfa_max_retries"`
	InitialBackoff   time.Duration `mapstructure:"csfa_initial_backoff"`
	MaxBackoff       time.Duration `mapstructure:"csfa_max_backoff"`
	RequestsPerSec   float64       `mapstructure:"csfa_requests_per_second"`
	DetailWorkers    int           `mapstructure:"csfa_detail_workers"`
	TokenRenderNames []string      `mapstructure:"csfa_token_secret_names"`
}

// Report agrupa as políticas de uma execução
type Report struct {
	OptionalFeeds []string      `mapstructure:"report_optional_feeds"`
	SchemaPolicy  string        `mapstructure:"report_schema_policy"`
	RunTimeout    time.Duration `mapstructure:"report_run_timeout"`
	OutputDir     string        `mapstructure:"report_output_dir"`
	FilePrefix    string        `mapstructure:"report_file_prefix"`
	Currency      string        `mapstructure:"report_currency"`
	Company       string        `mapstructure:"report_company"`
	Date          string        `mapstructure:"order_date"`       // Data fixa (2006-01-02) quando a CLI não informa
	DateRange     string        `mapstructure:"order_date_range"` // Intervalo fixo "2006-01-02 - 2006-01-02"
}

type Email struct {
	Enabled       bool          `mapstructure:"send_email"`
	SMTPServer    string        `mapstructure:"smtp_server"`
	SMTPPort      int           `mapstructure:"smtp_port"`
	SMTPTimeout   time.Duration `mapstructure:"smtp_timeout"`
	SenderEmail   string        `mapstructure:"sender_email"`
	SenderName    string        `mapstructure:"sender_name"`
	Password      string        `mapstructure:"email_password"`
	To            []string      `mapstructure:"email_to"`
	Cc            []string      `mapstructure:"email_cc"`
	Bcc           []string      `mapstructure:"email_bcc"`
	Subject       string        `mapstructure:"email_subject"`
	RecipientName string        `mapstructure:"recipient_name"`
}

type Scheduler struct {
	CronSchedule string `mapstructure:"report_cron"`
	LookbackDays int    `mapstructure:"report_lookback_days"`
	Enabled      bool   `mapstructure:"report_schedule_enabled"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Render struct {
	APIKey    string `mapstructure:"render_api_key"`
	ServiceID string `mapstructure:"render_service_id"`
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("TIMEZONE", "Africa/Maputo")
	viper.SetDefault("RUN_MODE", "once")

	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_ENABLED", false)
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/csfa?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("CSFA_BASE_URL", "https://tintasberger.solutechlabs.com")
	viper.SetDefault("ACCESS_TOKEN", "")
	viper.SetDefault("LARAVEL_TOKEN", "")
	viper.SetDefault("SAT_SESSION", "")
	viper.SetDefault("XSRF_TOKEN", "")
	viper.SetDefault("SAT_USER_ID", "57")
	viper.SetDefault("COUNTRY_ID", "149")
	viper.SetDefault("CSFA_CALLS_PATH", "/api/v1/get-v2-calls")
	viper.SetDefault("CSFA_PAGE_SIZE", 25)
	viper.SetDefault("CSFA_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("CSFA_MAX_RETRIES", 3)             // 4 tentativas no total
	viper.SetDefault("CSFA_INITIAL_BACKOFF", "1s")      // Dobra a cada tentativa
	viper.SetDefault("CSFA_MAX_BACKOFF", "30s")         // Teto do backoff
	viper.SetDefault("CSFA_REQUESTS_PER_SECOND", 5.0)   // Ritmo máximo de requisições
	viper.SetDefault("CSFA_DETAIL_WORKERS", 4)          // Detalhes de pedidos em paralelo
	viper.SetDefault("CSFA_TOKEN_SECRET_NAMES", "")     // Secret files do Render com os tokens

	viper.SetDefault("REPORT_OPTIONAL_FEEDS", "")
	viper.SetDefault("REPORT_SCHEMA_POLICY", "skip")
	viper.SetDefault("REPORT_RUN_TIMEOUT", "10m")
	viper.SetDefault("REPORT_OUTPUT_DIR", ".")
	viper.SetDefault("REPORT_FILE_PREFIX", "CSFA_Report")
	viper.SetDefault("REPORT_CURRENCY", "MZN")
	viper.SetDefault("REPORT_COMPANY", "Tintas Berger")
	viper.SetDefault("ORDER_DATE", "")
	viper.SetDefault("ORDER_DATE_RANGE", "")

	viper.SetDefault("SEND_EMAIL", true)
	viper.SetDefault("SMTP_SERVER", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_TIMEOUT", "30s")
	viper.SetDefault("SENDER_EMAIL", "")
	viper.SetDefault("SENDER_NAME", "CSFA Reports")
	viper.SetDefault("EMAIL_PASSWORD", "")
	viper.SetDefault("EMAIL_TO", "")
	viper.SetDefault("EMAIL_CC", "")
	viper.SetDefault("EMAIL_BCC", "")
	viper.SetDefault("EMAIL_SUBJECT", "Tintas Berger CSFA Report - {date}")
	viper.SetDefault("RECIPIENT_NAME", "Team")

	viper.SetDefault("REPORT_CRON", "0 19 * * 1-5") // Dias úteis às 19h
	viper.SetDefault("REPORT_LOOKBACK_DAYS", 0)     // 0 = relatório do próprio dia
	viper.SetDefault("REPORT_SCHEDULE_ENABLED", true)

	viper.SetDefault("AUTH_SECRET", "your_secret_key")

	viper.SetDefault("RENDER_API_KEY", "")
	viper.SetDefault("RENDER_SERVICE_ID", "")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Debug("Arquivo .env lido pelo Viper com sucesso")
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

	config.Email.To = compact(config.Email.To)
	config.Email.Cc = compact(config.Email.Cc)
	config.Email.Bcc = compact(config.Email.Bcc)
	config.Report.OptionalFeeds = compact(config.Report.OptionalFeeds)
	config.CSFA.TokenRenderNames = compact(config.CSFA.TokenRenderNames)

	// Tokens ausentes no ambiente podem vir dos secret files do Render
	if config.Render.ServiceID != "" && len(config.CSFA.TokenRenderNames) > 0 {
		renderClient := NewRenderClient(config)
		secrets, err := renderClient.ListSecrets(config.Render.ServiceID)
		if err != nil {
			logrus.WithError(err).Error("Erro ao obter secrets do Render")
			return nil, err
		}
		config.CSFA.applySecrets(secrets, config.CSFA.TokenRenderNames)
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

// compact remove entradas vazias produzidas por listas separadas por vírgula
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Debug("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
