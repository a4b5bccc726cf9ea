package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	GrpcHost string          `yaml:"grpc_host"`
	GrpcPort int             `yaml:"grpc_port"`
	Storage  MStorageConfig  `yaml:"storage"`
	Cache    MCacheConfig    `yaml:"cache"`
	Screener MScreenerConfig `yaml:"screener"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Schema             string `yaml:"schema"` // postgres only
	MaxConnections     int    `yaml:"max_connections"`
	ConnectRetries     int    `yaml:"connect_retries"`
}

type MCacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	RedisAddr  string `yaml:"redis_addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type MScreenerConfig struct {
	ChartLimit     int `yaml:"chart_limit"`     // default number of periods returned by the chart endpoint
	RequestTimeout int `yaml:"request_timeout"` // seconds, applied to collaborator calls
}
