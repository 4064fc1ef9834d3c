// Package config defines the sudokud server configuration and loads it from
// defaults, a YAML file and SUDOKUD_* environment variables.
//
// Precedence, lowest first: Default, the YAML file, environment variables,
// then CLI flags applied by the caller. Each layer records where a field's
// value came from in ServerConfiguration.Sources.
//
//	cfg, err := config.Load(config.ConfigFileFromEnv())
//	if err != nil {
//	    return err
//	}
//	cfg.Port = 9090
//	cfg.SetSource("port", config.SourceFlag)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// A minimal file:
//
//	port: 8080
//	basePath: /sudoku/server/game
//	engine:
//	  driver: builtin
//	  solveTimeout: 5s
//	log:
//	  level: debug
package config
