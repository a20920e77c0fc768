package config

// DefaultConfigPath is the default location of the configuration file,
// overridable via the HERMIT_CONFIG environment variable.
const DefaultConfigPath = "/etc/hermit.yaml"

// Defaults returns the configuration used when no file is present, and the
// baseline that a loaded file's fields are merged onto.
func Defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			ConfigFile: DefaultConfigPath,
			ShardsFile: "/tmp/shard_words.bson",
			PluginDir:  "/var/lib/hermit",
		},
		Commands: CommandsConfig{
			PersistShards:      "cp {0} {0}.persisted",
			BackupShards:       "gzip -c {0} > {0}.bak.gz",
			RestoreBackup:      "gunzip -c {0}.bak.gz > {0}",
			GetPersistedShards: "cat {0}.persisted",
		},
		IO: IOConfig{
			Display:             "ascii",
			Camera:              "imageio",
			QRCodeSequenceDelay: 200,
			XPosition:           0,
			YPosition:           0,
			Width:               300,
			Height:              300,
		},
		Coordinator: CoordinatorConfig{
			SignatureRequired: false,
			PublicKey:         "",
			Algorithm:         AlgorithmECDSASecp256k1SHA256,
			RelockTimeout:     600,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "",
			JSON:  false,
		},
	}
}
