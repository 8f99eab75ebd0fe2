package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// TrueLayerConfig holds the provider credentials and endpoints. The secret
// fields are required for token, initiation and signing operations.
type TrueLayerConfig struct {
	ClientID          string
	ClientSecret      string
	SigningKeyID      string
	PrivateKeyPEM     []byte
	MerchantAccountID string

	AuthURL          string
	APIURL           string
	HostedPaymentURL string
	ReturnURI        string
	Timeout          time.Duration
}

type PaymentConfig struct {
	ProviderID       string
	SchemeID         string
	AllowRemitterFee bool

	RemitterSortCode      string
	RemitterAccountNumber string
	RemitterHolderName    string

	ColorPrimary   string
	ColorSecondary string
	ColorTertiary  string
}

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	DB             DBConfig
	TrueLayer      TrueLayerConfig
	Payment        PaymentConfig
}

// ConfigError reports required settings that are absent.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

func newViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REQUEST_TIMEOUT", "15s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_NAME", "piggybank")

	v.SetDefault("TL_AUTH_URL", "https://auth.truelayer-sandbox.com")
	v.SetDefault("TL_API_URL", "https://api.truelayer-sandbox.com")
	v.SetDefault("TL_HOSTED_PAYMENT_URL", "https://payment.truelayer-sandbox.com/payments")
	v.SetDefault("TL_RETURN_URI", "http://localhost:3000")
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "10s")

	v.SetDefault("TL_PROVIDER_ID", "mock-payments-gb-redirect")
	v.SetDefault("TL_SCHEME_ID", "faster_payments_service")
	v.SetDefault("TL_ALLOW_REMITTER_FEE", false)
	v.SetDefault("TL_COLOR_PRIMARY", "262626")
	v.SetDefault("TL_COLOR_SECONDARY", "000000")
	v.SetDefault("TL_COLOR_TERTIARY", "000000")

	return v
}

// LoadDBConfig reads only the database settings.
func LoadDBConfig() (DBConfig, error) {
	return dbConfig(newViper()), nil
}

func dbConfig(v *viper.Viper) DBConfig {
	return DBConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		Name:     v.GetString("DB_NAME"),
	}
}

// Load reads the full process configuration from the environment (and a
// .env file when present). It does not validate; call Validate before
// serving.
func Load() (*Config, error) {
	v := newViper()

	privateKey, err := privateKeyPEM(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		DB:             dbConfig(v),
		TrueLayer: TrueLayerConfig{
			ClientID:          v.GetString("CLIENT_ID"),
			ClientSecret:      v.GetString("CLIENT_SECRET"),
			SigningKeyID:      v.GetString("CERTIFICATE_ID"),
			PrivateKeyPEM:     privateKey,
			MerchantAccountID: v.GetString("RVNU_MERCHANT_ACCOUNT_ID"),
			AuthURL:           strings.TrimRight(v.GetString("TL_AUTH_URL"), "/"),
			APIURL:            strings.TrimRight(v.GetString("TL_API_URL"), "/"),
			HostedPaymentURL:  v.GetString("TL_HOSTED_PAYMENT_URL"),
			ReturnURI:         v.GetString("TL_RETURN_URI"),
			Timeout:           v.GetDuration("HTTP_CLIENT_TIMEOUT"),
		},
		Payment: PaymentConfig{
			ProviderID:            v.GetString("TL_PROVIDER_ID"),
			SchemeID:              v.GetString("TL_SCHEME_ID"),
			AllowRemitterFee:      v.GetBool("TL_ALLOW_REMITTER_FEE"),
			RemitterSortCode:      v.GetString("TL_REMITTER_SORT_CODE"),
			RemitterAccountNumber: v.GetString("TL_REMITTER_ACCOUNT_NUMBER"),
			RemitterHolderName:    v.GetString("TL_REMITTER_HOLDER_NAME"),
			ColorPrimary:          v.GetString("TL_COLOR_PRIMARY"),
			ColorSecondary:        v.GetString("TL_COLOR_SECONDARY"),
			ColorTertiary:         v.GetString("TL_COLOR_TERTIARY"),
		},
	}, nil
}

// privateKeyPEM prefers PRIVATE_KEY_PATH over an inline PRIVATE_KEY. Inline
// keys may carry escaped newlines.
func privateKeyPEM(v *viper.Viper) ([]byte, error) {
	if path := v.GetString("PRIVATE_KEY_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		return b, nil
	}

	inline := v.GetString("PRIVATE_KEY")
	if inline == "" {
		return nil, nil
	}
	return []byte(strings.ReplaceAll(inline, `\n`, "\n")), nil
}

// Validate checks the provider secrets. A partial remitter account is also
// rejected since the builder would otherwise emit an unusable instruction.
func (c *Config) Validate() error {
	var missing []string

	required := []struct {
		key   string
		value string
	}{
		{"CLIENT_ID", c.TrueLayer.ClientID},
		{"CLIENT_SECRET", c.TrueLayer.ClientSecret},
		{"CERTIFICATE_ID", c.TrueLayer.SigningKeyID},
		{"PRIVATE_KEY", string(c.TrueLayer.PrivateKeyPEM)},
		{"RVNU_MERCHANT_ACCOUNT_ID", c.TrueLayer.MerchantAccountID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}

	p := c.Payment
	if p.RemitterSortCode != "" || p.RemitterAccountNumber != "" || p.RemitterHolderName != "" {
		if p.RemitterSortCode == "" {
			missing = append(missing, "TL_REMITTER_SORT_CODE")
		}
		if p.RemitterAccountNumber == "" {
			missing = append(missing, "TL_REMITTER_ACCOUNT_NUMBER")
		}
		if p.RemitterHolderName == "" {
			missing = append(missing, "TL_REMITTER_HOLDER_NAME")
		}
	}

	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}
