// Package config loads seqkit configuration with Viper.
//
// A YAML file is looked up next to the working directory (seqkit.yml,
// config.yml, config/config.yml) and in the user config directory. An
// optional .env file is loaded with godotenv. Environment variables with the
// SEQKIT_ prefix override file values:
//
//	SEQKIT_PIPELINE_BUFFER_SIZE=64  ->  pipeline.buffer_size
//	SEQKIT_LOGGING_LEVEL=debug      ->  logging.level
//
// # Usage
//
//	cfg, err := config.Load("seqkit")
//	if err != nil {
//	    return err
//	}
//	pipeline.Configure(cfg.Pipeline)
package config
