// Package config loads the whisperbridge configuration.
//
// Values come from a YAML file, then a .env file, then the process
// environment. Environment keys carry the WHISPERBRIDGE_ prefix and use
// underscores for nesting:
//
//	WHISPERBRIDGE_SERVER_PORT=9090
//	WHISPERBRIDGE_ENGINE_MODELS_DIR=/var/lib/whisper
//	WHISPERBRIDGE_SCHEDULER_DRAIN_TIMEOUT=45s
//
// Without an explicit path the loader looks for cmd/whisperbridge/config.yml,
// config/config.yml and ./config.yml relative to the working directory.
package config
