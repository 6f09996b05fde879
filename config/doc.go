// Package config loads AudioSocket settings from a YAML file and the
// environment.
//
// Values are layered: built-in defaults, then the YAML file (if any), then
// AUDIOSOCKET_* environment variables. An optional .env file is loaded into
// the environment first with LoadEnvFile. String values in the YAML file may
// reference environment variables as $VAR or ${VAR}.
//
//	if err := config.LoadEnvFile(); err != nil {
//	    return err
//	}
//	cfg, err := config.Load("audiosocket.yaml")
//	if err != nil {
//	    return err
//	}
//
// Recognised variables:
//
//	AUDIOSOCKET_DESTINATION      host:port to dial
//	AUDIOSOCKET_CONNECT_TIMEOUT  per-address connect timeout ("2s" or milliseconds)
//	AUDIOSOCKET_SESSION_ID       session UUID or 16-byte token
//	AUDIOSOCKET_LISTEN           server listen address
//	AUDIOSOCKET_MAX_SESSIONS     concurrent server sessions
//	AUDIOSOCKET_METRICS_ADDR     metrics exporter address, empty to disable
//	AUDIOSOCKET_LOG_LEVEL        logrus level
//	AUDIOSOCKET_LOG_FORMAT       "text" or "json"
//	AUDIOSOCKET_FRAME_BYTES      bytes per outgoing audio frame
//	AUDIOSOCKET_FRAME_INTERVAL   pacing between outgoing frames
package config
