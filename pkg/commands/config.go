package commands

// Config is the global settings of the CLI, passed to every command.
type Config struct {
	IsQuiet         bool
	DisableWarnings bool
	Storage         StorageConfig
}

// StorageConfig defines how to reach the submission storage.
type StorageConfig struct {
	RDBMSDriver    string
	RDBMSDSN       string
	BlobStorageURL string
}
