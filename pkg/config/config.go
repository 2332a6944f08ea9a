package config

// VideoBoard definition videoboard service YAML structure
type VideoBoard struct {
	Port        string `mapstructure:"port"`
	FrontendURL string `mapstructure:"frontend_url"`

	Mongo DatabaseConfig `mapstructure:"mongo"`
	MinIO MinIOConfig    `mapstructure:"minio"`
	JWT   JWTConfig      `mapstructure:"jwt"`
	SMTP  SMTPConfig     `mapstructure:"smtp"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition object-storage setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// JWTConfig definition signing secrets, one per token kind
type JWTConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
	ResetSecret   string `mapstructure:"reset_secret"`
}

// SMTPConfig definition reset-mail transport setting
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}
