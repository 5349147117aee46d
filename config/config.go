package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey       string        `mapstructure:"secretKey"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessTokenTTL  time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `mapstructure:"refreshTokenTTL"`
	CookieDomain    string        `mapstructure:"cookieDomain"`
	SecureCookie    bool          `mapstructure:"secureCookie"`
}

type OAuthProviderConfig struct {
	ClientID     string `mapstructure:"clientID"`
	ClientSecret string `mapstructure:"clientSecret"`
	CallbackURL  string `mapstructure:"callbackURL"`
}

type OAuthConfig struct {
	Google              OAuthProviderConfig `mapstructure:"google"`
	Kakao               OAuthProviderConfig `mapstructure:"kakao"`
	Naver               OAuthProviderConfig `mapstructure:"naver"`
	FrontendRedirectURL string              `mapstructure:"frontendRedirectURL"`
}

type LLMConfig struct {
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	GeminiAPIKey string  `mapstructure:"geminiAPIKey"`
	OpenAIAPIKey string  `mapstructure:"openAIAPIKey"`
}

type SearchConfig struct {
	GoogleMapsAPIKey  string `mapstructure:"googleMapsAPIKey"`
	NaverClientID     string `mapstructure:"naverClientID"`
	NaverClientSecret string `mapstructure:"naverClientSecret"`
	KakaoRESTAPIKey   string `mapstructure:"kakaoRESTAPIKey"`
	SerpAPIKey        string `mapstructure:"serpAPIKey"`
	SerperAPIKey      string `mapstructure:"serperAPIKey"`
	PixabayAPIKey     string `mapstructure:"pixabayAPIKey"`
}

type SSHTunnelConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PrivateKeyFile string `mapstructure:"privateKeyFile"`
	KnownHostsFile string `mapstructure:"knownHostsFile"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort        string        `mapstructure:"HTTPPort"`
		Timeout         time.Duration `mapstructure:"HTTPTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONNS          int32  `mapstructure:"MAXCONNS"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		SSHTunnel SSHTunnelConfig `mapstructure:"sshTunnel"`
	} `mapstructure:"repositories"`
	JWT        JWTConfig    `mapstructure:"jwt"`
	OAuth      OAuthConfig  `mapstructure:"oauth"`
	LLM        LLMConfig    `mapstructure:"llm"`
	Search     SearchConfig `mapstructure:"search"`
	HTTPClient struct {
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxRetries uint          `mapstructure:"maxRetries"`
	} `mapstructure:"httpClient"`
	Agents struct {
		MaxRetries int           `mapstructure:"maxRetries"`
		RetryWait  time.Duration `mapstructure:"retryWait"`
		CacheTTL   time.Duration `mapstructure:"cacheTTL"`
		CacheClean time.Duration `mapstructure:"cacheCleanup"`
		RateLimit  int           `mapstructure:"rateLimitPerMinute"`
	} `mapstructure:"agents"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// TRAVEL_JWT_SECRETKEY overrides jwt.secretKey and so on.
	v.SetEnvPrefix("TRAVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("config: jwt.secretKey is required")
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("config: jwt token TTLs must be positive")
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "":
	default:
		return fmt.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}
	return nil
}
