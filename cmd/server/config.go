package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/willemschots/tuffyestates/internal/db"
	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/email/elasticemail"
	"github.com/willemschots/tuffyestates/internal/email/mailgun"
	"github.com/willemschots/tuffyestates/internal/email/postmark"
	"github.com/willemschots/tuffyestates/internal/geocode"
	"github.com/willemschots/tuffyestates/internal/krypto"
	"github.com/willemschots/tuffyestates/internal/web"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	tlsCert         string
	tlsKey          string
	staticDir       string
	server          web.ServerConfig
}

type dbConfig struct {
	gateway db.Config
	setup   bool
}

type authConfig struct {
	signingKey    krypto.Key
	tokenLifetime time.Duration
}

type emailConfig struct {
	transport    string
	service      email.ServiceConfig
	elasticemail elasticemail.Settings
	postmark     postmark.Settings
	mailgun      mailgun.Settings
}

type imagesConfig struct {
	sweepSchedule string
	sweepGrace    time.Duration
}

// config is the configuration for the server command.
type config struct {
	http    httpConfig
	db      dbConfig
	auth    authConfig
	geocode geocode.Settings
	email   emailConfig
	images  imagesConfig
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":11638",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 30,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
			staticDir:       "./static",
			server: web.ServerConfig{
				SecureCookie:   true,
				MaxUploadBytes: 32 << 20,
			},
		},
		db: dbConfig{
			gateway: db.Config{
				URL:        "mongodb://localhost:27017",
				Name:       "tuffyestates",
				RetryDelay: time.Second * 5,
			},
			setup: true,
		},
		auth: authConfig{
			tokenLifetime: time.Hour * 24,
		},
		email: emailConfig{
			transport: "log",
			service: email.ServiceConfig{
				FromName: "Tuffy Estates",
			},
			elasticemail: elasticemail.Settings{
				APIURL: must(url.Parse("https://api.elasticemail.com")),
			},
			postmark: postmark.Settings{
				APIURL:        must(url.Parse("https://api.postmarkapp.com")),
				MessageStream: "outbound",
			},
			mailgun: mailgun.Settings{
				APIHost:  "api.mailgun.net",
				Username: "api",
			},
		},
		images: imagesConfig{
			sweepSchedule: "@hourly",
			sweepGrace:    time.Minute * 15,
		},
	}
}

// requiredKeys lists the variables without a usable default.
var requiredKeys = []string{
	"AUTH_SIGNING_KEY",
	"GEOCODE_API_KEY",
	"EMAIL_FROM",
}

var emailTransports = []string{"log", "memory", "elasticemail", "postmark", "mailgun"}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"HTTP_TLS_CERT": func(v string, c *config) error {
		c.http.tlsCert = v
		return nil
	},
	"HTTP_TLS_KEY": func(v string, c *config) error {
		c.http.tlsKey = v
		return nil
	},
	"HTTP_SECURE_COOKIE": func(v string, c *config) error {
		return confBool(v, &c.http.server.SecureCookie)
	},
	"HTTP_ALLOWED_ORIGINS": func(v string, c *config) error {
		c.http.server.AllowedOrigins = nil
		for _, raw := range strings.Split(v, ",") {
			origin := strings.TrimSpace(raw)
			if origin == "" {
				continue
			}
			u, err := url.Parse(origin)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid origin %q", origin)
			}
			c.http.server.AllowedOrigins = append(c.http.server.AllowedOrigins, origin)
		}
		return nil
	},
	"HTTP_MAX_UPLOAD_BYTES": func(v string, c *config) error {
		return confInt(v, &c.http.server.MaxUploadBytes, 1, math.MaxInt64)
	},
	"STATIC_DIR": func(v string, c *config) error {
		return confNonEmpty(v, &c.http.staticDir)
	},
	"DB_URL": func(v string, c *config) error {
		u, err := url.Parse(v)
		if err != nil {
			return err
		}
		if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
			return fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		c.db.gateway.URL = v
		return nil
	},
	"DB_NAME": func(v string, c *config) error {
		return confNonEmpty(v, &c.db.gateway.Name)
	},
	"DB_RETRY_DELAY": func(v string, c *config) error {
		return confDuration(v, &c.db.gateway.RetryDelay, 0, math.MaxInt64)
	},
	"DB_SETUP": func(v string, c *config) error {
		return confBool(v, &c.db.setup)
	},
	"AUTH_SIGNING_KEY": func(v string, c *config) error {
		return confKey(v, &c.auth.signingKey)
	},
	"AUTH_TOKEN_LIFETIME": func(v string, c *config) error {
		return confDuration(v, &c.auth.tokenLifetime, time.Minute, math.MaxInt64)
	},
	"GEOCODE_API_KEY": func(v string, c *config) error {
		return confSecret(v, &c.geocode.APIKey)
	},
	"GEOCODE_BASE_URL": func(v string, c *config) error {
		_, err := confURL(v)
		if err != nil {
			return err
		}
		c.geocode.BaseURL = v
		return nil
	},
	"EMAIL_FROM": func(v string, c *config) error {
		addr, err := email.ParseAddress(v)
		if err != nil {
			return err
		}
		c.email.service.From = addr
		return nil
	},
	"EMAIL_FROM_NAME": func(v string, c *config) error {
		c.email.service.FromName = v
		return nil
	},
	"EMAIL_TRANSPORT": func(v string, c *config) error {
		for _, t := range emailTransports {
			if t == v {
				c.email.transport = v
				return nil
			}
		}
		return fmt.Errorf("unknown transport %q, want one of %s", v, strings.Join(emailTransports, ", "))
	},
	"ELASTICEMAIL_API_URL": func(v string, c *config) error {
		u, err := confURL(v)
		if err != nil {
			return err
		}
		c.email.elasticemail.APIURL = u
		return nil
	},
	"ELASTICEMAIL_API_KEY": func(v string, c *config) error {
		return confSecret(v, &c.email.elasticemail.APIKey)
	},
	"POSTMARK_API_URL": func(v string, c *config) error {
		u, err := confURL(v)
		if err != nil {
			return err
		}
		c.email.postmark.APIURL = u
		return nil
	},
	"POSTMARK_SERVER_TOKEN": func(v string, c *config) error {
		return confSecret(v, &c.email.postmark.ServerToken)
	},
	"POSTMARK_MESSAGE_STREAM": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.postmark.MessageStream)
	},
	"MAILGUN_API_HOST": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.mailgun.APIHost)
	},
	"MAILGUN_DOMAIN": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.mailgun.Domain)
	},
	"MAILGUN_USERNAME": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.mailgun.Username)
	},
	"MAILGUN_PASSWORD": func(v string, c *config) error {
		return confSecret(v, &c.email.mailgun.Password)
	},
	"IMAGES_SWEEP_SCHEDULE": func(v string, c *config) error {
		if v != "" {
			_, err := cron.ParseStandard(v)
			if err != nil {
				return err
			}
		}
		c.images.sweepSchedule = v
		return nil
	},
	"IMAGES_SWEEP_GRACE": func(v string, c *config) error {
		return confDuration(v, &c.images.sweepGrace, 0, math.MaxInt64)
	},
}

// loadEnvFiles loads variables from the given dotenv files that exist.
// Variables that are already set take precedence.
func loadEnvFiles(files ...string) ([]string, error) {
	var loaded []string
	for _, f := range files {
		_, err := os.Stat(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}

		err = godotenv.Load(f)
		if err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}

	return loaded, nil
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error
	for _, key := range requiredKeys {
		if _, ok := os.LookupEnv(key); !ok {
			errs = append(errs, fmt.Errorf("missing required env variable %s%s", key, keyHint(key)))
		}
	}

	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	errs = append(errs, c.validate()...)

	return c, errors.Join(errs...)
}

// keyHint suggests a freshly generated value for a missing signing key.
func keyHint(key string) string {
	if key != "AUTH_SIGNING_KEY" {
		return ""
	}

	k, err := krypto.GenerateKey()
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (for example %s)", k.Hex())
}

// validate checks combinations of variables.
func (c config) validate() []error {
	var errs []error

	if (c.http.tlsCert == "") != (c.http.tlsKey == "") {
		errs = append(errs, errors.New("env variables HTTP_TLS_CERT and HTTP_TLS_KEY must be set together"))
	}

	switch c.email.transport {
	case "elasticemail":
		if c.email.elasticemail.APIKey.IsZero() {
			errs = append(errs, errors.New("env variable ELASTICEMAIL_API_KEY is required when EMAIL_TRANSPORT=elasticemail"))
		}
	case "postmark":
		if c.email.postmark.ServerToken.IsZero() {
			errs = append(errs, errors.New("env variable POSTMARK_SERVER_TOKEN is required when EMAIL_TRANSPORT=postmark"))
		}
	case "mailgun":
		if c.email.mailgun.Password.IsZero() {
			errs = append(errs, errors.New("env variable MAILGUN_PASSWORD is required when EMAIL_TRANSPORT=mailgun"))
		}
	}

	return errs
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

func confInt(v string, tgt *int64, min, max int64) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}

	if n < min || n > max {
		return fmt.Errorf("%d not in range [%d, %d] (inclusive)", n, min, max)
	}

	*tgt = n

	return nil
}

func confBool(v string, tgt *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}

	*tgt = b

	return nil
}

func confNonEmpty(v string, tgt *string) error {
	if v == "" {
		return errors.New("empty value")
	}

	*tgt = v

	return nil
}

func confKey(v string, tgt *krypto.Key) error {
	k, err := krypto.ParseKey(v)
	if err != nil {
		return err
	}

	*tgt = k

	return nil
}

func confSecret(v string, tgt *krypto.Secret) error {
	if v == "" {
		return errors.New("empty value")
	}

	*tgt = krypto.NewSecret(v)

	return nil
}

// confURL parses an absolute URL.
func confURL(v string) (*url.URL, error) {
	u, err := url.Parse(v)
	if err != nil {
		return nil, err
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", v)
	}

	return u, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
