package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	Mongo DatabaseConfig `mapstructure:"mongo"`
	Redis RedisConfig    `mapstructure:"redis"`
	MinIO MinIOConfig    `mapstructure:"minio"`

	// StoreTimeout bounds every persistence call, VerifyTimeout the
	// identity collaborator call made at room creation.
	StoreTimeout  time.Duration `mapstructure:"store_timeout"`
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`

	// cache TTLs of the chat read paths
	RoomListTTL    time.Duration `mapstructure:"room_list_ttl"`
	MessageListTTL time.Duration `mapstructure:"message_list_ttl"`
}

// MinIOConfig definition attachment object store setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
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
